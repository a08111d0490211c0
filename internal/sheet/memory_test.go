package sheet

import (
	"context"
	"testing"
)

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	row := Row{ColPublisherID: "Pabc", ColPublisherName: "Elsevier"}
	if err := store.Insert(ctx, Publishers, []Row{row}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	snap, err := store.ReadTable(ctx, Publishers)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	got, ok := snap["Pabc"]
	if !ok {
		t.Fatal("inserted row not found by key")
	}
	if got[ColPublisherName] != "Elsevier" {
		t.Errorf("name = %q", got[ColPublisherName])
	}

	// Mutating the snapshot must not leak into the store.
	got[ColPublisherName] = "changed"
	snap2, _ := store.ReadTable(ctx, Publishers)
	if snap2["Pabc"][ColPublisherName] != "Elsevier" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestMemStoreDuplicateInsert(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	row := Row{ColPublisherID: "Pabc", ColPublisherName: "Elsevier"}

	if err := store.Insert(ctx, Publishers, []Row{row}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(ctx, Publishers, []Row{row}); err == nil {
		t.Error("duplicate insert must fail")
	}
}

func TestMemStoreUpdateMissing(t *testing.T) {
	store := NewMemStore()
	row := Row{ColPublisherID: "Pabc", ColPublisherName: "Elsevier"}
	if err := store.Update(context.Background(), Publishers, []Row{row}); err == nil {
		t.Error("update of a missing key must fail")
	}
}

func TestKeyOfCompositeKey(t *testing.T) {
	row := Row{ColAuthorID: "A1", ColTitleID: "T1", ColOrder: "1"}
	if got := AuthorTitles.KeyOf(row); got != "A1|T1" {
		t.Errorf("KeyOf() = %q, want A1|T1", got)
	}
}

func TestTableByName(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Title", "Title", true},
		{"title", "Title", true},
		{"AUTHOR-TITLE", "Author-Title", true},
		{"Nope", "", false},
	}
	for _, tt := range tests {
		got, ok := TableByName(tt.input)
		if ok != tt.ok || got.Name != tt.want {
			t.Errorf("TableByName(%q) = %q, %v", tt.input, got.Name, ok)
		}
	}
}
