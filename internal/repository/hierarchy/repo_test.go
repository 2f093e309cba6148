package hierarchy

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/discover/internal/domain"
	domhier "github.com/kailas-cloud/discover/internal/domain/hierarchy"
)

func TestSaveLoad(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, "")
	ctx := context.Background()

	edges := []domhier.Edge{
		{Parent: "beckn:Item", Child: "beckn:ElectronicItem"},
		{Parent: "beckn:ElectronicItem", Child: "beckn:SmartphoneItem"},
		{Parent: "beckn:ElectronicItem", Child: "beckn:SmartphoneItem"},
		{Parent: "beckn:Item", Child: "beckn:GroceryItem"},
	}
	if err := repo.Save(ctx, edges); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := ms.hashes["discover:hierarchy"]; !ok {
		t.Fatal("expected hash under discover:hierarchy")
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []domhier.Edge{
		{Parent: "beckn:Item", Child: "beckn:ElectronicItem"},
		{Parent: "beckn:Item", Child: "beckn:GroceryItem"},
		{Parent: "beckn:ElectronicItem", Child: "beckn:SmartphoneItem"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Load = %v, want %v", got, want)
	}
}

func TestSaveLoad_RootTypes(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, "")
	ctx := context.Background()

	edges := []domhier.Edge{
		{Child: "beckn:Item"},
		{Parent: "beckn:Item", Child: "beckn:ElectronicItem"},
		{Child: "beckn:WorkOpportunityItem"},
	}
	if err := repo.Save(ctx, edges); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := ms.hashes["discover:hierarchy"]["beckn:WorkOpportunityItem"]; got != "[]" {
		t.Fatalf("stored root = %q, want []", got)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []domhier.Edge{
		{Parent: "beckn:Item", Child: "beckn:ElectronicItem"},
		{Child: "beckn:Item"},
		{Child: "beckn:WorkOpportunityItem"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Load = %v, want %v", got, want)
	}

	tbl, err := domhier.New(got)
	if err != nil {
		t.Fatalf("hierarchy.New: %v", err)
	}
	if !tbl.Has("beckn:WorkOpportunityItem") {
		t.Fatal("standalone type lost after round trip")
	}
}

func TestSave_ReplacesPrevious(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, "shop:")
	ctx := context.Background()

	_ = repo.Save(ctx, []domhier.Edge{{Parent: "beckn:Item", Child: "beckn:OldItem"}})
	if err := repo.Save(ctx, []domhier.Edge{{Parent: "beckn:Item", Child: "beckn:NewItem"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Child != "beckn:NewItem" {
		t.Fatalf("expected only the new edge, got %v", got)
	}
}

func TestLoad_Empty(t *testing.T) {
	got, err := New(newMockStore(), "").Load(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no edges, got %v, %v", got, err)
	}
}

func TestLoad_Errors(t *testing.T) {
	ms := newMockStore()
	ms.hashes["discover:hierarchy"] = map[string]string{"beckn:X": "not json"}
	if _, err := New(ms, "").Load(context.Background()); !errors.Is(err, domain.ErrInvalidSchemaDefinition) {
		t.Fatalf("expected ErrInvalidSchemaDefinition, got %v", err)
	}

	ms.getErr = errors.New("down")
	if _, err := New(ms, "").Load(context.Background()); !errors.Is(err, domain.ErrCorpusUnavailable) {
		t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
	}
}

func TestSave_Error(t *testing.T) {
	ms := newMockStore()
	ms.hsetErr = errors.New("readonly")
	err := New(ms, "").Save(context.Background(), []domhier.Edge{{Parent: "a", Child: "b"}})
	if !errors.Is(err, ms.hsetErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
