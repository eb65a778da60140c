package model

import "time"

// Match pairs a lost item with the found item that matched it.
type Match struct {
	LostID    string    `json:"lostId"`
	FoundID   string    `json:"foundId"`
	MatchedAt time.Time `json:"matchedAt"`

	// Joined fields (not always populated).
	LostName  string `json:"lostName,omitempty"`
	FoundName string `json:"foundName,omitempty"`
}

// Verification is an admin confirmation that a post is genuine.
type Verification struct {
	ID         int64     `json:"id"`
	ItemID     string    `json:"itemId"`
	VerifiedAt time.Time `json:"verifiedAt"`
	VerifiedBy *int64    `json:"verifiedBy,omitempty"`
}

// Retrieval records that an item was handed back to its owner.
type Retrieval struct {
	ID          int64     `json:"id"`
	ItemID      string    `json:"itemId"`
	RetrievedAt time.Time `json:"retrievedAt"`
	RetrievedBy *int64    `json:"retrievedBy,omitempty"`
}

// Image is a stored item photo.
type Image struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MIME      string    `json:"mime"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
