package normalize

import "testing"

func TestStripFloatSuffix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"12345.0", "12345"},
		{"12345", "12345"},
		{"12.3", "12.3"},
		{"00110368.0", "00110368"},
		{"ABC.0", "ABC.0"},
		{".0", ".0"},
		{"", ""},
	}

	for _, c := range cases {
		if got := StripFloatSuffix(c.in); got != c.want {
			t.Errorf("StripFloatSuffix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalizeSource(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"KEHE - SPS", "kehe"},
		{"kehe_sps", "kehe"},
		{"kehe___sps", "kehe"},
		{"kehe", "kehe"},
		{"Whole Foods", "wholefoods"},
		{"wholefoods", "wholefoods"},
		{"UNFI East", "unfi_east"},
		{"unfi_west", "unfi_west"},
		{"TK Maxx", "tkmaxx"},
		{"Some New Vendor", "some_new_vendor"},
	}

	for _, c := range cases {
		if got := CanonicalizeSource(c.in); got != c.want {
			t.Errorf("CanonicalizeSource(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripSeparators(t *testing.T) {
	if got := StripSeparators("17-041-1"); got != "170411" {
		t.Errorf("StripSeparators = %q, want 170411", got)
	}
	if got := StripSeparators("17 041 1"); got != "170411" {
		t.Errorf("StripSeparators = %q, want 170411", got)
	}
	if got := StripSeparators("ABC123"); got != "ABC123" {
		t.Errorf("StripSeparators should not touch %q, got %q", "ABC123", got)
	}
}

func TestZeroPad(t *testing.T) {
	if got := ZeroPad("110368", 8); got != "00110368" {
		t.Errorf("ZeroPad = %q, want 00110368", got)
	}
	if got := ZeroPad("00110368", 8); got != "00110368" {
		t.Errorf("ZeroPad should keep width, got %q", got)
	}
	if got := ZeroPad("AB12", 8); got != "AB12" {
		t.Errorf("ZeroPad should skip non-numeric, got %q", got)
	}
	if got := ZeroPad("", 8); got != "" {
		t.Errorf("ZeroPad(\"\") = %q, want empty", got)
	}
}

func TestParseBool(t *testing.T) {
	trues := []string{"true", "TRUE", "True", "1", "yes", "YES", "on", " on "}
	for _, s := range trues {
		if !ParseBool(s) {
			t.Errorf("ParseBool(%q) = false, want true", s)
		}
	}

	falses := []string{"false", "False", "FALSE", "0", "no", "off", "", "maybe"}
	for _, s := range falses {
		if ParseBool(s) {
			t.Errorf("ParseBool(%q) = true, want false", s)
		}
	}
}

func TestNormalizeKeyType(t *testing.T) {
	cases := []struct {
		in   string
		want KeyType
	}{
		{"vendor_item", KeyVendorItem},
		{"Vendor Item#", KeyVendorItem},
		{"Item Number", KeyVendorItem},
		{"UPC", KeyUPC},
		{"UPC Code", KeyUPC},
		{"ean", KeyEAN},
		{"EAN-13", KeyEAN},
		{"GTIN", KeyGTIN},
		{"SKU", KeySKUAlias},
		{"Vendor SKU", KeySKUAlias},
		{"", KeyVendorItem},
		{"mystery column", KeyVendorItem},
	}

	for _, c := range cases {
		if got := NormalizeKeyType(c.in); got != c.want {
			t.Errorf("NormalizeKeyType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
