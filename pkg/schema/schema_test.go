package schema

import (
	"testing"
	"time"
)

func TestDefaultCatalogShape(t *testing.T) {
	cat := Default()
	if cat.FieldCount() != 19 {
		t.Fatalf("expected 19 columns, got %d", cat.FieldCount())
	}
	if cat.Columns[0] != "datetime" {
		t.Fatalf("expected datetime first, got %q", cat.Columns[0])
	}
}

func TestDefaultLayoutsRoundTrip(t *testing.T) {
	cat := Default()

	parsed, err := time.Parse(cat.SourceTimeLayout, "Jan 5, 2018 3:04:05 PM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := parsed.Format(cat.CanonicalTimeLayout); got != "2018-01-05 15:04:05" {
		t.Fatalf("expected canonical rendering, got %q", got)
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.FieldCount() != Default().FieldCount() {
		t.Fatalf("expected default catalog, got %d columns", cat.FieldCount())
	}
}
