package normalize

import (
	"strings"
)

// KeyType identifies the kind of raw identifier used to look up an item.
type KeyType string

const (
	KeyVendorItem KeyType = "vendor_item"
	KeyUPC        KeyType = "upc"
	KeyEAN        KeyType = "ean"
	KeyGTIN       KeyType = "gtin"
	KeySKUAlias   KeyType = "sku_alias"
)

// KeyPriority is the fixed resolution order. Vendor-assigned codes are the
// primary ordering key on the source document, UPC/EAN/GTIN are verifiable
// barcode fallbacks, SKU aliases are vendor free-text and trusted last.
var KeyPriority = []KeyType{KeyVendorItem, KeyUPC, KeyEAN, KeyGTIN, KeySKUAlias}

// sourceAliases collapses known variant spellings of vendor identifiers onto
// their canonical form. Consulted after the lowercase/underscore transform.
var sourceAliases = map[string]string{
	"kehe_sps":           "kehe",
	"kehe_connect":       "kehe",
	"whole_foods":        "wholefoods",
	"whole_foods_market": "wholefoods",
	"wfm":                "wholefoods",
	"unfi_e":             "unfi_east",
	"unfi_w":             "unfi_west",
	"tk_maxx":            "tkmaxx",
}

// CanonicalizeSource lowercases a source tag, replaces spaces and hyphens with
// underscores, collapses runs of underscores and applies the alias table.
// Unrecognized sources pass through the lowercase/underscore transform.
func CanonicalizeSource(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	if canonical, ok := sourceAliases[s]; ok {
		return canonical
	}
	return s
}

// StripFloatSuffix drops a trailing ".0" from values that passed through
// floating-point-typed spreadsheet columns. Non-integer floats are untouched.
func StripFloatSuffix(s string) string {
	if !strings.HasSuffix(s, ".0") {
		return s
	}
	prefix := s[:len(s)-2]
	if prefix == "" {
		return s
	}
	for _, r := range prefix {
		if r == '.' {
			continue
		}
		if r < '0' || r > '9' {
			return s
		}
	}
	return prefix
}

// StripSeparators removes all spaces and hyphens. Used only as a fallback
// match key for item numbers stored inconsistently with or without internal
// punctuation.
func StripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}

// ZeroPad left-pads an all-digit string to the given width. Values that are
// not purely numeric or already at least width long are returned unchanged.
func ZeroPad(s string, width int) string {
	if len(s) >= width || s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return strings.Repeat("0", width-len(s)) + s
}

// ParseBool coerces the boolean spellings seen in vendor CSV exports.
// Upstream sources serialize booleans as the literal string "False", which a
// non-empty-string truthiness check would misread as true.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// NormalizeKeyType maps vendor header spellings like "Vendor Item#", "UPC
// Code" or "Item Number" onto the canonical key types. Unrecognized names
// fall back to vendor_item, the historical single-key behavior.
func NormalizeKeyType(key string) KeyType {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return KeyVendorItem
	}

	switch KeyType(k) {
	case KeyVendorItem, KeyUPC, KeyEAN, KeyGTIN, KeySKUAlias:
		return KeyType(k)
	}

	switch {
	case strings.Contains(k, "upc"):
		return KeyUPC
	case strings.Contains(k, "ean"):
		return KeyEAN
	case strings.Contains(k, "gtin"):
		return KeyGTIN
	case strings.Contains(k, "sku"):
		return KeySKUAlias
	}

	return KeyVendorItem
}
