package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/erazemk/lostfound/internal/model"
)

func lost(id, name, desc string) model.Item {
	return model.Item{ID: id, Type: model.TypeLost, Name: name, Description: desc, Status: model.StatusPosted}
}

func found(id, name, desc string) model.Item {
	return model.Item{ID: id, Type: model.TypeFound, Name: name, Description: desc, Status: model.StatusPosted}
}

func ids(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFindCandidateMatches_NameAndDescriptionContainment(t *testing.T) {
	l := lost("l1", "Black Wallet", "leather wallet with cards")
	f := found("f1", "Wallet", "leather wallet")

	got := FindCandidateMatches(f, []model.Item{l, f})
	assert.Equal(t, []string{"l1"}, ids(got))
}

func TestFindCandidateMatches_NoRelation(t *testing.T) {
	l := lost("l1", "Blue Backpack", "school bag")
	f := found("f1", "Red Umbrella", "foldable")

	got := FindCandidateMatches(f, []model.Item{l, f})
	assert.Empty(t, got)
}

func TestFindCandidateMatches_EmptyDescriptionMatchesEverything(t *testing.T) {
	items := []model.Item{
		lost("l1", "Blue Backpack", "school bag"),
		lost("l2", "Keys", "three keys on a ring"),
		lost("l3", "Phone", ""),
	}
	f := found("f1", "Red Umbrella", "")

	got := FindCandidateMatches(f, append(items, f))
	assert.Equal(t, []string{"l1", "l2", "l3"}, ids(got))
}

func TestFindCandidateMatches_EmptyLostNameMatches(t *testing.T) {
	l := lost("l1", "", "school bag")
	f := found("f1", "Red Umbrella", "foldable")

	got := FindCandidateMatches(f, []model.Item{l})
	assert.Equal(t, []string{"l1"}, ids(got))
}

func TestFindCandidateMatches_ReverseContainment(t *testing.T) {
	// The found name contains the lost name.
	l := lost("l1", "keys", "silver")
	f := found("f1", "Car KEYS with fob", "black fob")

	got := FindCandidateMatches(f, []model.Item{l})
	assert.Equal(t, []string{"l1"}, ids(got))
}

func TestFindCandidateMatches_KeepsInputOrderAndSkipsFound(t *testing.T) {
	items := []model.Item{
		lost("l3", "umbrella", "x"),
		found("f0", "umbrella", "x"),
		lost("l1", "Umbrella", "y"),
		lost("l2", "hat", "z"),
		lost("l0", "UMBRELLA stand", "w"),
	}
	f := found("f1", "umbrella", "q")

	got := FindCandidateMatches(f, items)
	assert.Equal(t, []string{"l3", "l1", "l0"}, ids(got))
}

func TestComputeMetrics_Scenario(t *testing.T) {
	items := []model.Item{
		{Type: model.TypeLost, Status: model.StatusPosted},
		{Type: model.TypeFound, Status: model.StatusMatched},
		{Type: model.TypeFound, Status: model.StatusPosted},
	}
	assert.Equal(t, model.Metrics{
		Total:          3,
		LostCount:      1,
		FoundCount:     2,
		MatchedCount:   1,
		UnclaimedCount: 1,
	}, ComputeMetrics(items))
}

func TestComputeMetrics_Empty(t *testing.T) {
	assert.Equal(t, model.Metrics{}, ComputeMetrics(nil))
}

func TestComputeMetrics_UnclaimedNotClamped(t *testing.T) {
	// Matched lost items count against found items.
	items := []model.Item{
		{Type: model.TypeLost, Status: model.StatusMatched},
		{Type: model.TypeLost, Status: model.StatusMatched},
		{Type: model.TypeFound, Status: model.StatusPosted},
	}
	m := ComputeMetrics(items)
	assert.Equal(t, 2, m.MatchedCount)
	assert.Equal(t, -1, m.UnclaimedCount)
}

func TestApplyMatch(t *testing.T) {
	f := found("f1", "Wallet", "leather")
	candidates := []model.Item{lost("l1", "a", "b"), lost("l2", "c", "d")}

	updates := ApplyMatch(candidates, f)
	require.Len(t, updates, 2)
	for i, u := range updates {
		assert.Equal(t, candidates[i].ID, u.ID)
		assert.Equal(t, model.StatusMatched, u.Status)
		assert.Equal(t, "f1", u.MatchedWith)
	}
	// Candidates are not mutated.
	assert.Equal(t, model.StatusPosted, candidates[0].Status)
}

func TestApplyIdempotent(t *testing.T) {
	f := found("f1", "Wallet", "leather")
	items := []model.Item{lost("l1", "Wallet", "x"), lost("l2", "Black wallet", "y")}

	for round := 0; round < 2; round++ {
		for _, u := range ApplyMatch(items, f) {
			for i := range items {
				Apply(&items[i], u)
			}
		}
	}
	for _, it := range items {
		assert.Equal(t, model.StatusMatched, it.Status)
		assert.Equal(t, "f1", it.MatchedWith)
	}
	assert.Equal(t, 2, ComputeMetrics(items).MatchedCount)
}

func TestApplyNeverReverts(t *testing.T) {
	it := model.Item{ID: "l1", Type: model.TypeLost, Status: model.StatusMatched, MatchedWith: "f1"}
	ok := Apply(&it, model.StatusUpdate{ID: "l1", Status: model.StatusPosted})
	assert.False(t, ok)
	assert.Equal(t, model.StatusMatched, it.Status)
	assert.Equal(t, "f1", it.MatchedWith)

	assert.False(t, Apply(&it, model.StatusUpdate{ID: "other", Status: model.StatusMatched}))
}

var words = []string{"wallet", "black", "keys", "phone", "blue", "bag", "leather", "umbrella", "card", ""}

func textGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		n := rapid.IntRange(0, 3).Draw(t, "words")
		parts := make([]string, n)
		for i := range parts {
			parts[i] = rapid.SampledFrom(words).Draw(t, "word")
		}
		return strings.Join(parts, " ")
	})
}

func itemGen() *rapid.Generator[model.Item] {
	return rapid.Custom(func(t *rapid.T) model.Item {
		return model.Item{
			ID:          rapid.StringMatching(`[a-f0-9]{8}`).Draw(t, "id"),
			Type:        rapid.SampledFrom([]string{model.TypeLost, model.TypeFound}).Draw(t, "type"),
			Name:        textGen().Draw(t, "name"),
			Description: textGen().Draw(t, "description"),
			Status:      rapid.SampledFrom([]string{model.StatusPosted, model.StatusMatched}).Draw(t, "status"),
		}
	})
}

func recase(t *rapid.T, s string) string {
	var b strings.Builder
	for i, r := range s {
		if rapid.Bool().Draw(t, "upper"+string(rune('a'+i%26))) {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestMetricsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(itemGen()).Draw(t, "items")
		m := ComputeMetrics(items)

		if m.Total != len(items) {
			t.Fatalf("total = %d, want %d", m.Total, len(items))
		}
		if m.LostCount+m.FoundCount != m.Total {
			t.Fatalf("lost %d + found %d != total %d", m.LostCount, m.FoundCount, m.Total)
		}
		if m.UnclaimedCount != m.FoundCount-m.MatchedCount {
			t.Fatalf("unclaimed = %d, want %d", m.UnclaimedCount, m.FoundCount-m.MatchedCount)
		}
	})
}

func TestFindCandidateMatchesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(itemGen()).Draw(t, "items")
		f := itemGen().Draw(t, "found")
		f.Type = model.TypeFound

		got := FindCandidateMatches(f, items)
		for _, it := range got {
			if it.Type != model.TypeLost {
				t.Fatalf("candidate %s has type %q", it.ID, it.Type)
			}
		}

		recased := make([]model.Item, len(items))
		for i, it := range items {
			it.Name = recase(t, it.Name)
			it.Description = recase(t, it.Description)
			recased[i] = it
		}
		rf := f
		rf.Name = recase(t, f.Name)
		rf.Description = recase(t, f.Description)

		again := FindCandidateMatches(rf, recased)
		if strings.Join(ids(got), ",") != strings.Join(ids(again), ",") {
			t.Fatalf("casing changed result: %v vs %v", ids(got), ids(again))
		}
	})
}
