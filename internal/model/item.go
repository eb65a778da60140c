package model

// Item is a lost or found report. The JSON field names follow the stored
// document layout.
type Item struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	Email       string `json:"email,omitempty"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	Status      string `json:"status"`
	MatchedWith string `json:"matchedWith,omitempty"`
}

// Item types.
const (
	TypeLost  = "lost"
	TypeFound = "found"
)

// Item statuses.
const (
	StatusPosted  = "posted"
	StatusMatched = "matched"
)

// DateLayout is the calendar date format of Item.Date.
const DateLayout = "2006-01-02"

// ValidType reports whether t is a known item type.
func ValidType(t string) bool {
	return t == TypeLost || t == TypeFound
}

// StatusUpdate describes a status transition for a single item.
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	MatchedWith string `json:"matchedWith"`
}

// Metrics holds aggregate counts over an item set.
type Metrics struct {
	Total          int `json:"total"`
	LostCount      int `json:"lostCount"`
	FoundCount     int `json:"foundCount"`
	MatchedCount   int `json:"matchedCount"`
	UnclaimedCount int `json:"unclaimedCount"`
}
