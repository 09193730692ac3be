package xoro

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes rows in the Xoro import column layout, header first.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// record lays the row out in Columns order.
func (r Row) record() []string {
	return []string{
		r.ImportError,
		r.ThirdPartyRefNo,
		r.ThirdPartySource,
		r.ThirdPartyIconURL,
		r.ThirdPartyDisplayName,
		r.SaleStoreName,
		r.StoreName,
		r.CurrencyCode,
		r.CustomerName,
		r.CustomerFirstName,
		r.CustomerLastName,
		r.CustomerMainPhone,
		r.CustomerEmailMain,
		r.CustomerPO,
		r.CustomerID,
		r.CustomerAccountNumber,
		r.OrderDate,
		r.DateToBeShipped,
		r.LastDateToBeShipped,
		r.DateToBeCancelled,
		r.OrderClassCode,
		r.OrderClassName,
		r.OrderTypeCode,
		r.OrderTypeName,
		formatFloat(r.ExchangeRate),
		r.Memo,
		r.PaymentTermsName,
		r.PaymentTermsType,
		r.DepositRequiredTypeName,
		formatFloat(r.DepositRequiredAmount),
		r.ItemNumber,
		r.ItemDescription,
		formatFloat(r.UnitPrice),
		strconv.Itoa(r.Qty),
		formatFloat(r.LineTotal),
		formatFloat(r.DiscountAmount),
		formatFloat(r.DiscountPercent),
		formatFloat(r.TaxAmount),
		formatFloat(r.TaxPercent),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
