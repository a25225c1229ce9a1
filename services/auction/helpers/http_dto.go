package helpers

import (
	"time"

	model "auction-listings/internal/models"

	"github.com/shopspring/decimal"
)

// Request DTOs
type CreateListingRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	Category      string          `json:"category" binding:"required"`
	OriginatorID  string          `json:"originator_id" binding:"required"`
}

type PlaceBidRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	Price  decimal.Decimal `json:"price" binding:"required"`
}

// UserActionRequest carries the resolved identity for close/watch/unwatch
type UserActionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type AddCommentRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Body   string `json:"body" binding:"required"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// Response DTOs
type BidResponse struct {
	BidID     string `json:"bid_id"`
	ListingID string `json:"listing_id"`
	BidderID  string `json:"bidder_id"`
	Price     string `json:"price"`
	CreatedAt string `json:"created_at"`
}

type ListingResponse struct {
	ListingID     string `json:"listing_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url,omitempty"`
	StartingPrice string `json:"starting_price"`
	CategoryID    string `json:"category_id"`
	OriginatorID  string `json:"originator_id"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
}

type CommentResponse struct {
	CommentID string `json:"comment_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type ListingViewResponse struct {
	Listing         ListingResponse   `json:"listing"`
	HighestPrice    string            `json:"highest_price"`
	HighestBidderID string            `json:"highest_bidder_id,omitempty"`
	BidCount        int               `json:"bid_count"`
	BidderIDs       []string          `json:"bidder_ids"`
	Comments        []CommentResponse `json:"comments"`
}

type WatchEntryResponse struct {
	WatchID   string `json:"watch_id"`
	ListingID string `json:"listing_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

// Converters from domain records
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		ListingID: bid.ListingID,
		BidderID:  bid.BidderID,
		Price:     bid.Price.StringFixed(2),
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewListingResponse(listing model.Listing) ListingResponse {
	return ListingResponse{
		ListingID:     listing.ListingID,
		Name:          listing.Name,
		Description:   listing.Description,
		ImageURL:      listing.ImageURL,
		StartingPrice: listing.StartingPrice.StringFixed(2),
		CategoryID:    listing.CategoryID,
		OriginatorID:  listing.OriginatorID,
		Active:        listing.Active,
		CreatedAt:     listing.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewListingResponses(listings []model.Listing) []ListingResponse {
	responses := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		responses = append(responses, NewListingResponse(l))
	}
	return responses
}

func NewCommentResponse(comment model.Comment) CommentResponse {
	return CommentResponse{
		CommentID: comment.CommentID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewListingViewResponse(view model.ListingView) ListingViewResponse {
	comments := make([]CommentResponse, 0, len(view.Comments))
	for _, c := range view.Comments {
		comments = append(comments, NewCommentResponse(c))
	}
	return ListingViewResponse{
		Listing:         NewListingResponse(view.Listing),
		HighestPrice:    view.HighestPrice.StringFixed(2),
		HighestBidderID: view.HighestBidderID,
		BidCount:        view.BidCount,
		BidderIDs:       view.BidderIDs,
		Comments:        comments,
	}
}

func NewWatchEntryResponse(entry model.WatchEntry) WatchEntryResponse {
	return WatchEntryResponse{
		WatchID:   entry.WatchID,
		ListingID: entry.ListingID,
		UserID:    entry.UserID,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}
