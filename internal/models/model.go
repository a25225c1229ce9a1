package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a participant in the auction site
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Category groups listings; category names are unique
type Category struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

// Listing represents an item open for bidding, owned by its originator.
// The (Name, CategoryID) pair is unique across all listings and the
// Active flag only ever flips from true to false.
type Listing struct {
	ListingID     string          `json:"listing_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url,omitempty"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	CategoryID    string          `json:"category_id"`
	OriginatorID  string          `json:"originator_id"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Bid represents a user's priced offer against a listing.
// Bids are immutable once recorded.
type Bid struct {
	BidID     string          `json:"bid_id"`
	ListingID string          `json:"listing_id"`
	BidderID  string          `json:"bidder_id"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// WatchEntry represents a user's bookmark on a listing.
// A user watches a given listing at most once.
type WatchEntry struct {
	WatchID   string    `json:"watch_id"`
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a user's note on a listing; one per author per listing
type Comment struct {
	CommentID string    `json:"comment_id"`
	ListingID string    `json:"listing_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingView is the derived state of a listing, computed on demand
// from its bid and comment sets. HighestPrice falls back to the
// starting price and HighestBidderID is empty when no bids exist.
type ListingView struct {
	Listing         Listing         `json:"listing"`
	HighestPrice    decimal.Decimal `json:"highest_price"`
	HighestBidderID string          `json:"highest_bidder_id,omitempty"`
	BidCount        int             `json:"bid_count"`
	BidderIDs       []string        `json:"bidder_ids"`
	Comments        []Comment       `json:"comments"`
}
