package parsers

import (
	"context"
	"io"
	"testing"
)

type fakeParser struct {
	source string
}

func (p *fakeParser) Source() string      { return p.source }
func (p *fakeParser) DisplayName() string { return p.source }
func (p *fakeParser) Parse(ctx context.Context, r io.Reader, filename string) ([]Record, error) {
	return nil, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&fakeParser{source: "kehe"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	p, err := reg.Get("kehe")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Source() != "kehe" {
		t.Errorf("Source = %s, want kehe", p.Source())
	}

	if !reg.Has("kehe") {
		t.Error("Has(kehe) = false")
	}
	if reg.Has("unfi_east") {
		t.Error("Has(unfi_east) = true for unregistered parser")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&fakeParser{source: "kehe"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register(&fakeParser{source: "kehe"}); err == nil {
		t.Error("Expected an error registering a duplicate source")
	}
	if err := reg.Register(&fakeParser{source: ""}); err == nil {
		t.Error("Expected an error registering an empty source")
	}
}

func TestRegistrySourcesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, s := range []string{"wholefoods", "kehe", "unfi_east"} {
		if err := reg.Register(&fakeParser{source: s}); err != nil {
			t.Fatalf("Register(%s) failed: %v", s, err)
		}
	}

	sources := reg.Sources()
	want := []string{"kehe", "unfi_east", "wholefoods"}
	if len(sources) != len(want) {
		t.Fatalf("Sources length = %d, want %d", len(sources), len(want))
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("Sources[%d] = %s, want %s", i, sources[i], want[i])
		}
	}
}
