package repository

import (
	"fmt"
	"sort"
	"sync"

	"auction-listings/internal/auctionerrors"
	model "auction-listings/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the storage interface for the auction-listing engine.
// Implementations enforce record-level uniqueness: one (name, category)
// pair per listing, one watch entry per (user, listing) pair and one
// comment per (listing, author) pair.
type AuctionDB interface {
	CreateCategory(category model.Category) error
	GetCategoryByName(name string) (model.Category, error)
	GetCategories() ([]model.Category, error)

	CreateUser(user model.User) error
	GetUser(userID string) (model.User, error)

	CreateListing(listing model.Listing) error
	GetListing(listingID string) (model.Listing, error)
	SetListingInactive(listingID string) error
	DeleteListing(listingID string) error
	GetActiveListings() ([]model.Listing, error)
	GetListingsByCategory(categoryID string) ([]model.Listing, error)
	GetListingsByUser(userID string) ([]model.Listing, error)

	RecordBidForListing(bid model.Bid) error
	GetBidsByListing(listingID string) ([]model.Bid, error)
	GetHighestBid(listingID string) (model.Bid, error)

	AddWatchEntry(entry model.WatchEntry) error
	RemoveWatchEntry(userID, listingID string) error
	GetWatchedListings(userID string) ([]model.Listing, error)

	AddComment(comment model.Comment) error
	GetCommentsByListing(listingID string) ([]model.Comment, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu            sync.RWMutex
	categories    map[string]model.Category     // key: categoryID
	categoryNames map[string]string             // key: category name -> categoryID
	users         map[string]model.User         // key: userID
	listings      map[string]model.Listing      // key: listingID
	listingNames  map[string]string             // key: categoryID + "\x00" + name -> listingID
	bids          map[string][]model.Bid        // key: listingID -> bids in acceptance order
	watches       map[string]map[string]model.WatchEntry // key: userID -> listingID -> entry
	comments      map[string][]model.Comment    // key: listingID -> comments in insertion order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		categories:    make(map[string]model.Category),
		categoryNames: make(map[string]string),
		users:         make(map[string]model.User),
		listings:      make(map[string]model.Listing),
		listingNames:  make(map[string]string),
		bids:          make(map[string][]model.Bid),
		watches:       make(map[string]map[string]model.WatchEntry),
		comments:      make(map[string][]model.Comment),
	}
}

func listingNameKey(categoryID, name string) string {
	return categoryID + "\x00" + name
}

// CreateCategory stores a category; category names are unique
func (r *MemoryRepo) CreateCategory(category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categoryNames[category.Name]; ok {
		return fmt.Errorf("create category %q: %w", category.Name, auctionerrors.ErrDuplicateCategory)
	}
	r.categories[category.CategoryID] = category
	r.categoryNames[category.Name] = category.CategoryID
	return nil
}

// GetCategoryByName resolves a category by its unique name
func (r *MemoryRepo) GetCategoryByName(name string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.categoryNames[name]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %q: %w", name, auctionerrors.ErrCategoryNotFound)
	}
	return r.categories[id], nil
}

// GetCategories returns all categories sorted by name
func (r *MemoryRepo) GetCategories() ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// CreateUser stores a user reference record
func (r *MemoryRepo) CreateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.UserID] = user
	return nil
}

// GetUser returns a user by ID
func (r *MemoryRepo) GetUser(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateListing stores a listing, enforcing (name, category) uniqueness
// atomically with the insert
func (r *MemoryRepo) CreateListing(listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[listing.CategoryID]; !ok {
		return fmt.Errorf("create listing %q: %w", listing.Name, auctionerrors.ErrCategoryNotFound)
	}

	key := listingNameKey(listing.CategoryID, listing.Name)
	if _, ok := r.listingNames[key]; ok {
		return fmt.Errorf("create listing %q: %w", listing.Name, auctionerrors.ErrDuplicateListing)
	}

	r.listings[listing.ListingID] = listing
	r.listingNames[key] = listing.ListingID
	return nil
}

// GetListing returns a listing by ID
func (r *MemoryRepo) GetListing(listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// SetListingInactive flips a listing's active flag to false. The flag
// never transitions back to true.
func (r *MemoryRepo) SetListingInactive(listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	listing.Active = false
	r.listings[listingID] = listing
	return nil
}

// DeleteListing removes a listing together with its bids, watch entries
// and comments. The listing owns its dependents.
func (r *MemoryRepo) DeleteListing(listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	delete(r.listings, listingID)
	delete(r.listingNames, listingNameKey(listing.CategoryID, listing.Name))
	delete(r.bids, listingID)
	delete(r.comments, listingID)
	for userID := range r.watches {
		delete(r.watches[userID], listingID)
	}
	return nil
}

// GetActiveListings returns all active listings, newest first
func (r *MemoryRepo) GetActiveListings() ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0)
	for _, l := range r.listings {
		if l.Active {
			listings = append(listings, l)
		}
	}
	sortListingsNewestFirst(listings)
	return listings, nil
}

// GetListingsByCategory returns the active listings of a category, newest first
func (r *MemoryRepo) GetListingsByCategory(categoryID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.categories[categoryID]; !ok {
		return nil, fmt.Errorf("get listings in category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}

	listings := make([]model.Listing, 0)
	for _, l := range r.listings {
		if l.CategoryID == categoryID && l.Active {
			listings = append(listings, l)
		}
	}
	sortListingsNewestFirst(listings)
	return listings, nil
}

// GetListingsByUser returns all listings created by a user, newest first
func (r *MemoryRepo) GetListingsByUser(userID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0)
	for _, l := range r.listings {
		if l.OriginatorID == userID {
			listings = append(listings, l)
		}
	}
	sortListingsNewestFirst(listings)
	return listings, nil
}

// RecordBidForListing appends an accepted bid to a listing's bid set
func (r *MemoryRepo) RecordBidForListing(bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[bid.ListingID]; !ok {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)
	return nil
}

// GetBidsByListing returns all bids for a listing in acceptance order
func (r *MemoryRepo) GetBidsByListing(listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return append([]model.Bid(nil), r.bids[listingID]...), nil
}

// GetHighestBid returns the highest-priced bid for a listing
func (r *MemoryRepo) GetHighestBid(listingID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	bids := r.bids[listingID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Price.GreaterThan(highest.Price) {
			highest = b
		}
	}
	return highest, nil
}

// AddWatchEntry stores a watch entry; at most one per (user, listing)
func (r *MemoryRepo) AddWatchEntry(entry model.WatchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[entry.ListingID]; !ok {
		return fmt.Errorf("watch listing %s: %w", entry.ListingID, auctionerrors.ErrListingNotFound)
	}

	if r.watches[entry.UserID] == nil {
		r.watches[entry.UserID] = make(map[string]model.WatchEntry)
	}
	if _, ok := r.watches[entry.UserID][entry.ListingID]; ok {
		return fmt.Errorf("watch listing %s: %w", entry.ListingID, auctionerrors.ErrAlreadyWatching)
	}
	r.watches[entry.UserID][entry.ListingID] = entry
	return nil
}

// RemoveWatchEntry deletes a user's watch entry for a listing
func (r *MemoryRepo) RemoveWatchEntry(userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listingID]; !ok {
		return fmt.Errorf("unwatch listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if _, ok := r.watches[userID][listingID]; !ok {
		return fmt.Errorf("unwatch listing %s: %w", listingID, auctionerrors.ErrNotWatching)
	}
	delete(r.watches[userID], listingID)
	return nil
}

// GetWatchedListings returns the listings a user watches, most recently
// watched first
func (r *MemoryRepo) GetWatchedListings(userID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]model.WatchEntry, 0, len(r.watches[userID]))
	for _, e := range r.watches[userID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })

	listings := make([]model.Listing, 0, len(entries))
	for _, e := range entries {
		if l, ok := r.listings[e.ListingID]; ok {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// AddComment stores a comment; one per (listing, author) pair
func (r *MemoryRepo) AddComment(comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[comment.ListingID]; !ok {
		return fmt.Errorf("comment on listing %s: %w", comment.ListingID, auctionerrors.ErrListingNotFound)
	}
	for _, c := range r.comments[comment.ListingID] {
		if c.AuthorID == comment.AuthorID {
			return fmt.Errorf("comment on listing %s: %w", comment.ListingID, auctionerrors.ErrDuplicateComment)
		}
	}
	r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
	return nil
}

// GetCommentsByListing returns a listing's comments, newest first
func (r *MemoryRepo) GetCommentsByListing(listingID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	comments := append([]model.Comment(nil), r.comments[listingID]...)
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func sortListingsNewestFirst(listings []model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool { return listings[i].CreatedAt.After(listings[j].CreatedAt) })
}
