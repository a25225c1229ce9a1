package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNoBids           = errors.New("no bids found for listing")
)

// Bidding rule errors
var (
	ErrInvalidInput        = errors.New("invalid request")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrPriceTooLow         = errors.New("bid must exceed the current highest price")
	ErrOriginatorCannotBid = errors.New("originator cannot bid on own listing")
)

// Listing lifecycle errors
var (
	ErrNotOwner          = errors.New("only the originator may close a listing")
	ErrAlreadyClosed     = errors.New("listing is already closed")
	ErrDuplicateListing  = errors.New("listing name already used in this category")
	ErrDuplicateCategory = errors.New("category already exists")
)

// Watchlist and comment errors
var (
	ErrAlreadyWatching  = errors.New("listing is already on the watchlist")
	ErrNotWatching      = errors.New("listing is not on the watchlist")
	ErrDuplicateComment = errors.New("user has already commented on this listing")
)
