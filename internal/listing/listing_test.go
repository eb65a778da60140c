package listing

import (
	"testing"

	"github.com/erazemk/lostfound/internal/model"
)

func sample() []model.Item {
	return []model.Item{
		{ID: "1", Type: model.TypeLost, Name: "Black Wallet", Description: "leather", Location: "Library", Contact: "Ana 041"},
		{ID: "2", Type: model.TypeFound, Name: "Keys", Description: "car keys", Location: "Cafeteria", Contact: "desk", ImageURL: "/images/x"},
		{ID: "3", Type: model.TypeFound, Name: "Umbrella", Description: "red", Location: "Gym", Contact: "Ana"},
	}
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3"}},
		{"all", Filter{Type: TypeAll}, []string{"1", "2", "3"}},
		{"found only", Filter{Type: model.TypeFound}, []string{"2", "3"}},
		{"with image", Filter{WithImage: true}, []string{"2"}},
		{"query name", Filter{Query: "  WALLET "}, []string{"1"}},
		{"query location", Filter{Query: "gym"}, []string{"3"}},
		{"contact ignored", Filter{Query: "ana"}, []string{}},
		{"contact searched", Filter{Query: "ana", SearchContact: true}, []string{"1", "3"}},
		{"combined", Filter{Type: model.TypeFound, Query: "ana", SearchContact: true}, []string{"3"}},
	}

	for _, tt := range tests {
		got := tt.filter.Apply(sample())
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %d items, want %d", tt.name, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("%s: item %d = %s, want %s", tt.name, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestSortNewestFirst(t *testing.T) {
	items := []model.Item{
		{ID: "old", CreatedAt: 1000},
		{ID: "dated", Date: "2024-05-01"},
		{ID: "none"},
		{ID: "new", CreatedAt: 1800000000000},
		{ID: "bad-date", Date: "yesterday"},
	}

	got := SortNewestFirst(items)
	want := []string{"new", "dated", "old", "none", "bad-date"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if items[0].ID != "old" {
		t.Error("expected input slice to be left untouched")
	}
}
