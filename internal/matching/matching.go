// Package matching decides which lost reports a newly found item may belong
// to and summarises an item set for the admin panel.
//
// All functions are pure and operate on an in-memory snapshot. Persisting
// the resulting status updates is the caller's job.
package matching

import (
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

// ComputeMetrics counts items by type and status.
//
// UnclaimedCount is FoundCount minus MatchedCount, where MatchedCount covers
// matched items of either type. The result can be negative and is reported
// as is.
func ComputeMetrics(items []model.Item) model.Metrics {
	m := model.Metrics{Total: len(items)}
	for _, it := range items {
		switch it.Type {
		case model.TypeLost:
			m.LostCount++
		case model.TypeFound:
			m.FoundCount++
		}
		if it.Status == model.StatusMatched {
			m.MatchedCount++
		}
	}
	m.UnclaimedCount = m.FoundCount - m.MatchedCount
	return m
}

// FindCandidateMatches returns the lost items in all whose name or
// description contains, or is contained in, the found item's name or
// description. Comparison is case-insensitive and the input order is kept.
//
// An empty name or description on either side matches every item.
func FindCandidateMatches(found model.Item, all []model.Item) []model.Item {
	fn := strings.ToLower(found.Name)
	fd := strings.ToLower(found.Description)

	var candidates []model.Item
	for _, it := range all {
		if it.Type != model.TypeLost {
			continue
		}
		ln := strings.ToLower(it.Name)
		ld := strings.ToLower(it.Description)
		if containsEither(ln, fn) || containsEither(ld, fd) {
			candidates = append(candidates, it)
		}
	}
	return candidates
}

// ApplyMatch describes the updates that mark every candidate as matched with
// the found item. It does not touch the candidates themselves.
func ApplyMatch(candidates []model.Item, found model.Item) []model.StatusUpdate {
	updates := make([]model.StatusUpdate, 0, len(candidates))
	for _, c := range candidates {
		updates = append(updates, model.StatusUpdate{
			ID:          c.ID,
			Status:      model.StatusMatched,
			MatchedWith: found.ID,
		})
	}
	return updates
}

// Apply applies u to it if the ids agree. Status never moves back from
// matched to posted.
func Apply(it *model.Item, u model.StatusUpdate) bool {
	if it.ID != u.ID {
		return false
	}
	if it.Status == model.StatusMatched && u.Status != model.StatusMatched {
		return false
	}
	it.Status = u.Status
	it.MatchedWith = u.MatchedWith
	return true
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
