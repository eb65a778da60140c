package store

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestVerificationsAndRetrievals(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, _ := CreateUser(ctx, database, "admin", "hash", model.RoleAdmin)
	item, _ := CreateItem(ctx, database, newItem(model.TypeFound, "Umbrella", 100))

	v, err := CreateVerification(ctx, database, item.ID, &admin.ID)
	if err != nil {
		t.Fatalf("CreateVerification: %v", err)
	}
	if v.ItemID != item.ID || v.VerifiedBy == nil || *v.VerifiedBy != admin.ID {
		t.Errorf("unexpected verification %+v", v)
	}
	CreateVerification(ctx, database, item.ID, nil)

	vs, err := ListVerifications(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ListVerifications: %v", err)
	}
	if len(vs) != 2 {
		t.Errorf("expected 2 verifications, got %d", len(vs))
	}

	r, err := CreateRetrieval(ctx, database, item.ID, &admin.ID)
	if err != nil {
		t.Fatalf("CreateRetrieval: %v", err)
	}
	if r.ItemID != item.ID {
		t.Errorf("unexpected retrieval %+v", r)
	}

	rs, _ := ListRetrievals(ctx, database, item.ID)
	if len(rs) != 1 {
		t.Errorf("expected 1 retrieval, got %d", len(rs))
	}

	// Records are side entries and do not touch the item status.
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.StatusPosted {
		t.Errorf("expected status to stay posted, got %q", got.Status)
	}
}
