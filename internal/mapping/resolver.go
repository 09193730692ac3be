package mapping

import (
	"sort"
	"strings"
	"sync"

	"github.com/idi-foods/xorobridge/internal/normalize"
)

// ResultKind classifies a resolution outcome. A miss and a storage failure
// are distinct: callers fall back to the raw value on NotFound but may want
// to retry or alert on Unavailable.
type ResultKind int

const (
	Resolved ResultKind = iota
	NotFound
	Unavailable
)

// Result is the outcome of a resolution attempt. Resolution never returns a
// Go error to its callers; order processing must not block on an unresolved
// mapping.
type Result struct {
	Kind    ResultKind
	Value   string
	KeyType normalize.KeyType
	Err     error
}

// Options tunes the store/customer fallback chain.
type Options struct {
	// AllowPartial enables substring containment matching for store and
	// customer names. Lossy: with several containing keys the longest one
	// wins, then lexicographic order. Off by default.
	AllowPartial bool
}

// DefaultStoreNames are per-source fallbacks applied when store resolution
// finds nothing.
var DefaultStoreNames = map[string]string{
	"wholefoods": "IDI - Richmond",
}

// Resolver answers identity lookups against the mapping store. It is strictly
// read-only over mapping rows; the one write it can trigger is the lazy
// legacy customer-row relocation, which runs at most once per process.
type Resolver struct {
	store *Store
	opts  Options

	legacyOnce sync.Once
	legacyErr  error
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *Store, opts Options) *Resolver {
	return &Resolver{store: store, opts: opts}
}

// ResolveItem maps a bag of typed candidate keys onto the canonical item
// number. Key types are tried in the fixed priority order; the first active
// hit wins and lower-priority candidates are not consulted. Each candidate
// is tried verbatim, with separators stripped, and for barcode key types in
// zero-padded standard width.
func (r *Resolver) ResolveItem(candidates map[normalize.KeyType]string, source string) Result {
	source = normalize.CanonicalizeSource(source)

	for _, keyType := range normalize.KeyPriority {
		raw := strings.TrimSpace(candidates[keyType])
		if raw == "" {
			continue
		}

		for _, key := range candidateForms(keyType, raw) {
			m, err := r.store.GetItemMapping(source, keyType, key, true)
			if err != nil {
				return Result{Kind: Unavailable, Err: err}
			}
			if m != nil {
				return Result{Kind: Resolved, Value: m.MappedItem, KeyType: keyType}
			}
		}
	}

	return Result{Kind: NotFound}
}

// ResolveStore maps a raw store name onto its canonical store name.
// Chain: exact, case-insensitive exact, then opt-in substring containment.
func (r *Resolver) ResolveStore(rawName, source string) Result {
	raw := strings.TrimSpace(rawName)
	if raw == "" {
		return Result{Kind: NotFound}
	}
	source = normalize.CanonicalizeSource(source)

	dict, err := r.storeDict(source)
	if err != nil {
		return Result{Kind: Unavailable, Err: err}
	}

	if mapped, ok := dict[raw]; ok {
		return Result{Kind: Resolved, Value: mapped}
	}
	if mapped, ok := matchFold(dict, raw); ok {
		return Result{Kind: Resolved, Value: mapped}
	}
	if r.opts.AllowPartial {
		if mapped, ok := matchPartial(dict, raw); ok {
			return Result{Kind: Resolved, Value: mapped}
		}
	}
	return Result{Kind: NotFound}
}

// StoreNameOrDefault resolves a raw store name, falling back to the
// per-source default and finally to the raw name itself. Empty input maps to
// UNKNOWN. This mirrors what the per-vendor transform paths expect: store
// resolution never blocks an order.
func (r *Resolver) StoreNameOrDefault(rawName, source string) string {
	raw := strings.TrimSpace(rawName)
	if raw == "" {
		return "UNKNOWN"
	}

	res := r.ResolveStore(raw, source)
	if res.Kind == Resolved {
		return res.Value
	}
	if name, ok := DefaultStoreNames[normalize.CanonicalizeSource(source)]; ok {
		return name
	}
	return raw
}

// ResolveCustomer maps a raw customer code onto its canonical customer name.
// Chain: exact, case-insensitive exact, suffix-code match (a bare code like
// "RCH" matches a stored key "128 RCH"), then opt-in substring containment.
// The first call sweeps legacy customer rows out of the store table.
func (r *Resolver) ResolveCustomer(rawID, source string) Result {
	raw := strings.TrimSpace(rawID)
	if raw == "" {
		return Result{Kind: NotFound}
	}
	source = normalize.CanonicalizeSource(source)

	r.legacyOnce.Do(func() {
		_, r.legacyErr = r.store.MigrateLegacyCustomerMappings()
	})
	if r.legacyErr != nil {
		return Result{Kind: Unavailable, Err: r.legacyErr}
	}

	dict, err := r.customerDict(source)
	if err != nil {
		return Result{Kind: Unavailable, Err: err}
	}

	if mapped, ok := dict[raw]; ok {
		return Result{Kind: Resolved, Value: mapped}
	}
	if mapped, ok := matchFold(dict, raw); ok {
		return Result{Kind: Resolved, Value: mapped}
	}
	if mapped, ok := matchSuffixCode(dict, raw); ok {
		return Result{Kind: Resolved, Value: mapped}
	}
	if r.opts.AllowPartial {
		if mapped, ok := matchPartial(dict, raw); ok {
			return Result{Kind: Resolved, Value: mapped}
		}
	}
	return Result{Kind: NotFound}
}

// CustomerNameOrUnknown resolves a raw customer code, falling back to UNKNOWN.
func (r *Resolver) CustomerNameOrUnknown(rawID, source string) string {
	res := r.ResolveCustomer(rawID, source)
	if res.Kind == Resolved {
		return res.Value
	}
	return "UNKNOWN"
}

func (r *Resolver) storeDict(source string) (map[string]string, error) {
	key := storeCacheKey(source)
	if dict, ok := r.store.cache.Get(key); ok {
		return dict, nil
	}
	dict, err := r.store.storeDictionary(source)
	if err != nil {
		return nil, err
	}
	r.store.cache.Put(key, dict)
	return dict, nil
}

func (r *Resolver) customerDict(source string) (map[string]string, error) {
	key := customerCacheKey(source)
	if dict, ok := r.store.cache.Get(key); ok {
		return dict, nil
	}
	dict, err := r.store.customerDictionary(source)
	if err != nil {
		return nil, err
	}
	r.store.cache.Put(key, dict)
	return dict, nil
}

// candidateForms lists the lookup keys tried for one raw value: verbatim,
// separator-stripped, and for barcode types zero-padded to the standard width
// (UPC-A 12, EAN-13), since vendor exports drop leading zeros.
func candidateForms(keyType normalize.KeyType, raw string) []string {
	forms := []string{raw}
	if alt := normalize.StripSeparators(raw); alt != raw {
		forms = append(forms, alt)
	}

	var width int
	switch keyType {
	case normalize.KeyUPC:
		width = 12
	case normalize.KeyEAN:
		width = 13
	}
	if width > 0 {
		if padded := normalize.ZeroPad(raw, width); padded != raw {
			forms = append(forms, padded)
		}
	}
	return forms
}

// sortedKeys orders dictionary keys longest first, then lexicographically, so
// fallback matching is deterministic regardless of storage backend.
func sortedKeys(dict map[string]string) []string {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func matchFold(dict map[string]string, raw string) (string, bool) {
	for _, key := range sortedKeys(dict) {
		if strings.EqualFold(key, raw) {
			return dict[key], true
		}
	}
	return "", false
}

// matchSuffixCode matches a bare code against keys of the form "NUMBER CODE".
// The code must be a complete trailing token of the key.
func matchSuffixCode(dict map[string]string, raw string) (string, bool) {
	rawLower := strings.ToLower(raw)
	for _, key := range sortedKeys(dict) {
		keyLower := strings.ToLower(strings.TrimSpace(key))
		if strings.HasSuffix(keyLower, " "+rawLower) {
			return dict[key], true
		}
		if strings.HasPrefix(keyLower, rawLower+" ") {
			return dict[key], true
		}
		if fields := strings.Fields(keyLower); len(fields) >= 2 && fields[len(fields)-1] == rawLower {
			return dict[key], true
		}
	}
	return "", false
}

func matchPartial(dict map[string]string, raw string) (string, bool) {
	rawLower := strings.ToLower(raw)
	for _, key := range sortedKeys(dict) {
		keyLower := strings.ToLower(key)
		// A blank key would contains-match every input.
		if keyLower == "" {
			continue
		}
		if strings.Contains(rawLower, keyLower) || strings.Contains(keyLower, rawLower) {
			return dict[key], true
		}
	}
	return "", false
}
