package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/idi-foods/xorobridge/internal/mapping"
	"github.com/idi-foods/xorobridge/internal/normalize"
)

// listItemMappings returns item mappings, filterable by source, key type,
// active flag and a free-text search.
func (r *Router) listItemMappings(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := mapping.ItemFilter{
		Source:     normalize.CanonicalizeSource(q.Get("source")),
		ActiveOnly: q.Get("active") == "true",
		Search:     q.Get("search"),
	}
	if kt := q.Get("keyType"); kt != "" {
		filter.KeyType = normalize.NormalizeKeyType(kt)
	}

	mappings, err := r.store.ListItemMappings(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list item mappings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(mappings),
		"mappings": mappings,
	})
}

// upsertItemMapping creates or replaces a single item mapping.
func (r *Router) upsertItemMapping(w http.ResponseWriter, req *http.Request) {
	var body mapping.ItemRow
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Single-row writes go through the same validator as file imports, so
	// the uniqueness rule cannot be bypassed from the admin UI.
	result := r.store.BulkUpsertItemMappings([]mapping.ItemRow{body})
	if result.Errors > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type deleteRequest struct {
	IDs  []uint `json:"ids"`
	Soft bool   `json:"soft"`
}

// deleteItemMappings removes item mappings by id; soft deletes deactivate.
func (r *Router) deleteItemMappings(w http.ResponseWriter, req *http.Request) {
	var body deleteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "Request must include mapping ids")
		return
	}

	var affected int64
	var err error
	if body.Soft {
		affected, err = r.store.DeactivateItemMappings(body.IDs)
	} else {
		affected, err = r.store.DeleteItemMappings(body.IDs)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete item mappings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

// bulkItemMappings applies an all-or-nothing batch of item mapping rows.
func (r *Router) bulkItemMappings(w http.ResponseWriter, req *http.Request) {
	var rows []mapping.ItemRow
	if err := json.NewDecoder(req.Body).Decode(&rows); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result := r.store.BulkUpsertItemMappings(rows)
	if result.Errors > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// exportItemMappings streams item mappings as CSV in the import column
// layout, so an export can be edited and re-imported as is.
func (r *Router) exportItemMappings(w http.ResponseWriter, req *http.Request) {
	filter := mapping.ItemFilter{
		Source:     normalize.CanonicalizeSource(req.URL.Query().Get("source")),
		ActiveOnly: req.URL.Query().Get("active") == "true",
	}
	mappings, err := r.store.ListItemMappings(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export item mappings")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="item_mappings.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"Source", "RawKeyType", "RawKeyValue", "MappedItemNumber",
		"Vendor", "MappedDescription", "Priority", "Active", "Notes"})
	for _, m := range mappings {
		cw.Write([]string{
			m.Source, m.KeyType, m.RawItem, m.MappedItem,
			m.Vendor, m.MappedDescription,
			strconv.Itoa(m.Priority), strconv.FormatBool(m.Active), m.Notes,
		})
	}
	cw.Flush()
}

// listStoreMappings returns store mappings for a source.
func (r *Router) listStoreMappings(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	mappings, err := r.store.ListStoreMappings(mapping.NameFilter{
		Source:     normalize.CanonicalizeSource(q.Get("source")),
		ActiveOnly: q.Get("active") == "true",
		Search:     q.Get("search"),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list store mappings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(mappings),
		"mappings": mappings,
	})
}

// upsertStoreMapping creates or replaces a single store mapping.
func (r *Router) upsertStoreMapping(w http.ResponseWriter, req *http.Request) {
	var body mapping.StoreRow
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result := r.store.BulkUpsertStoreMappings([]mapping.StoreRow{body})
	if result.Errors > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// deleteStoreMappings removes store mappings by id.
func (r *Router) deleteStoreMappings(w http.ResponseWriter, req *http.Request) {
	var body deleteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "Request must include mapping ids")
		return
	}

	var affected int64
	var err error
	if body.Soft {
		affected, err = r.store.DeactivateStoreMappings(body.IDs)
	} else {
		affected, err = r.store.DeleteStoreMappings(body.IDs)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete store mappings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

// bulkStoreMappings applies an all-or-nothing batch of store mapping rows.
func (r *Router) bulkStoreMappings(w http.ResponseWriter, req *http.Request) {
	var rows []mapping.StoreRow
	if err := json.NewDecoder(req.Body).Decode(&rows); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result := r.store.BulkUpsertStoreMappings(rows)
	if result.Errors > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// listCustomerMappings returns customer mappings for a source.
func (r *Router) listCustomerMappings(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	mappings, err := r.store.ListCustomerMappings(mapping.NameFilter{
		Source:     normalize.CanonicalizeSource(q.Get("source")),
		ActiveOnly: q.Get("active") == "true",
		Search:     q.Get("search"),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list customer mappings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(mappings),
		"mappings": mappings,
	})
}

// upsertCustomerMapping creates or replaces a single customer mapping.
func (r *Router) upsertCustomerMapping(w http.ResponseWriter, req *http.Request) {
	var body mapping.CustomerRow
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result := r.store.BulkUpsertCustomerMappings([]mapping.CustomerRow{body})
	if result.Errors > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// deleteCustomerMappings removes customer mappings by id.
func (r *Router) deleteCustomerMappings(w http.ResponseWriter, req *http.Request) {
	var body deleteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "Request must include mapping ids")
		return
	}

	var affected int64
	var err error
	if body.Soft {
		affected, err = r.store.DeactivateCustomerMappings(body.IDs)
	} else {
		affected, err = r.store.DeleteCustomerMappings(body.IDs)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete customer mappings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

// bulkCustomerMappings applies an all-or-nothing batch of customer mapping rows.
func (r *Router) bulkCustomerMappings(w http.ResponseWriter, req *http.Request) {
	var rows []mapping.CustomerRow
	if err := json.NewDecoder(req.Body).Decode(&rows); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result := r.store.BulkUpsertCustomerMappings(rows)
	if result.Errors > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ResolveItemRequest carries a bag of typed candidate keys for one item.
type ResolveItemRequest struct {
	Source string            `json:"source"`
	Keys   map[string]string `json:"keys"`
}

// resolveItem resolves candidate keys to a canonical item number. A miss is a
// 404 the caller can fall back from; a storage failure is a 503.
func (r *Router) resolveItem(w http.ResponseWriter, req *http.Request) {
	var body ResolveItemRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Source == "" {
		respondError(w, http.StatusBadRequest, "Source is required")
		return
	}

	candidates := make(map[normalize.KeyType]string, len(body.Keys))
	for k, v := range body.Keys {
		candidates[normalize.NormalizeKeyType(k)] = v
	}

	result := r.resolver.ResolveItem(candidates, body.Source)
	switch result.Kind {
	case mapping.Resolved:
		respondJSON(w, http.StatusOK, map[string]string{
			"itemNumber": result.Value,
			"matchedBy":  string(result.KeyType),
		})
	case mapping.NotFound:
		respondError(w, http.StatusNotFound, "No active mapping for the given keys")
	default:
		respondError(w, http.StatusServiceUnavailable, "Mapping store unavailable")
	}
}

// getHistory returns recent conversion runs.
func (r *Router) getHistory(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	history, err := r.orders.ConversionHistory(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load conversion history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(history),
		"history": history,
	})
}

// getOrders returns recent processed orders with line items.
func (r *Router) getOrders(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	result, err := r.orders.ProcessedOrders(req.URL.Query().Get("source"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load processed orders")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(result),
		"orders": result,
	})
}
