package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func newItem(typ, name string, createdAt int64) model.Item {
	return model.Item{
		Type:        typ,
		Name:        name,
		Description: name + " description",
		Contact:     "front desk",
		Location:    "Library",
		Date:        "2025-03-14",
		CreatedAt:   createdAt,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	in := newItem(model.TypeLost, "Wallet", 100)
	in.Email = "owner@example.com"
	item, err := CreateItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if item.Status != model.StatusPosted {
		t.Errorf("expected status 'posted', got %q", item.Status)
	}
	if item.Email != "owner@example.com" {
		t.Errorf("expected email to round-trip, got %q", item.Email)
	}
	if item.ImageURL != "" || item.MatchedWith != "" {
		t.Errorf("expected empty optional fields, got %+v", item)
	}

	missing, err := GetItem(ctx, database, "nope")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsSubmissionOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, newItem(model.TypeFound, "second", 200))
	CreateItem(ctx, database, newItem(model.TypeLost, "first", 100))
	CreateItem(ctx, database, newItem(model.TypeLost, "third", 300))

	items, err := ListItems(ctx, database)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("item %d: expected %q, got %q", i, name, items[i].Name)
		}
	}
}

func TestUpdateItemStatusRecordsMatch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l, _ := CreateItem(ctx, database, newItem(model.TypeLost, "Wallet", 100))
	f, _ := CreateItem(ctx, database, newItem(model.TypeFound, "Wallet", 200))

	u := model.StatusUpdate{ID: l.ID, Status: model.StatusMatched, MatchedWith: f.ID}
	for i := 0; i < 2; i++ {
		if err := UpdateItemStatus(ctx, database, l.ID, u); err != nil {
			t.Fatalf("UpdateItemStatus round %d: %v", i, err)
		}
	}

	got, _ := GetItem(ctx, database, l.ID)
	if got.Status != model.StatusMatched || got.MatchedWith != f.ID {
		t.Errorf("expected matched with %s, got %q/%q", f.ID, got.Status, got.MatchedWith)
	}

	matches, err := ListMatches(ctx, database, "")
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match record, got %d", len(matches))
	}
	if matches[0].LostID != l.ID || matches[0].FoundID != f.ID {
		t.Errorf("unexpected match record %+v", matches[0])
	}
	if matches[0].LostName != "Wallet" {
		t.Errorf("expected joined lost name, got %q", matches[0].LostName)
	}

	byFound, _ := ListMatches(ctx, database, f.ID)
	if len(byFound) != 1 {
		t.Errorf("expected 1 match for found item, got %d", len(byFound))
	}
}

func TestUpdateItemStatusMonotonic(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l, _ := CreateItem(ctx, database, newItem(model.TypeLost, "Keys", 100))
	f, _ := CreateItem(ctx, database, newItem(model.TypeFound, "Keys", 200))
	UpdateItemStatus(ctx, database, l.ID, model.StatusUpdate{ID: l.ID, Status: model.StatusMatched, MatchedWith: f.ID})

	err := UpdateItemStatus(ctx, database, l.ID, model.StatusUpdate{ID: l.ID, Status: model.StatusPosted})
	if !errors.Is(err, ErrStatusRegression) {
		t.Errorf("expected ErrStatusRegression, got %v", err)
	}

	err = UpdateItemStatus(ctx, database, "missing", model.StatusUpdate{Status: model.StatusMatched, MatchedWith: f.ID})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItemStatusRejectsMalformed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	l, _ := CreateItem(ctx, database, newItem(model.TypeLost, "Scarf", 100))

	tests := []struct {
		name string
		u    model.StatusUpdate
	}{
		{"posted with match reference", model.StatusUpdate{ID: l.ID, Status: model.StatusPosted, MatchedWith: "x"}},
		{"unknown status", model.StatusUpdate{ID: l.ID, Status: "claimed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UpdateItemStatus(ctx, database, l.ID, tt.u)
			if !errors.Is(err, ErrInvalidUpdate) {
				t.Errorf("expected ErrInvalidUpdate, got %v", err)
			}
		})
	}

	got, err := GetItem(ctx, database, l.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Status != model.StatusPosted || got.MatchedWith != "" {
		t.Errorf("expected item unchanged, got status=%q matchedWith=%q", got.Status, got.MatchedWith)
	}
}

func TestSoftDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem(model.TypeFound, "Delete Me", 100))
	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	items, _ := ListItems(ctx, database)
	if len(items) != 0 {
		t.Errorf("expected 0 items after soft delete, got %d", len(items))
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got != nil {
		t.Error("expected soft-deleted item to be hidden")
	}

	err := UpdateItemStatus(ctx, database, item.ID, model.StatusUpdate{Status: model.StatusMatched})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted item, got %v", err)
	}
}

func TestItemRepository(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	repo := &ItemRepository{DB: database}

	id, err := repo.CreateItem(ctx, newItem(model.TypeLost, "Phone", 100))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	all, err := repo.FetchAllItems(ctx)
	if err != nil {
		t.Fatalf("FetchAllItems: %v", err)
	}
	if len(all) != 1 || all[0].ID != id {
		t.Fatalf("expected the created item, got %+v", all)
	}
}
