package auction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-listings/internal/auctionerrors"
	"auction-listings/internal/models"
	"auction-listings/internal/repository"
	"auction-listings/internal/rules"
	"auction-listings/utils"

	"github.com/shopspring/decimal"
)

// AuctionService orchestrates the bidding and listing-lifecycle rules
// against the storage collaborator. Every mutating operation on a
// listing runs under that listing's lock so the rules always evaluate a
// consistent snapshot: at most one bid acceptance per observed highest
// price, and no racing close or watch toggles. Reads bypass the lock;
// a stale snapshot is acceptable for display.
type AuctionService struct {
	repo repository.AuctionDB

	lockMu       sync.Mutex
	listingLocks map[string]*sync.Mutex
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB) *AuctionService {
	return &AuctionService{
		repo:         repo,
		listingLocks: make(map[string]*sync.Mutex),
	}
}

// lockListing returns the serialization lock for a listing, creating it
// on first use. Lock entries are never removed; listings are not
// deleted in normal operation.
func (s *AuctionService) lockListing(listingID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.listingLocks[listingID]
	if !ok {
		lock = &sync.Mutex{}
		s.listingLocks[listingID] = lock
	}
	return lock
}

// PlaceBid validates and records a user's bid on a listing. The bid is
// evaluated against the highest price observed under the listing lock,
// so concurrent bids are accepted in strictly increasing price order.
func (s *AuctionService) PlaceBid(listingID, bidderID string, price decimal.Decimal) (models.Bid, error) {
	if listingID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID or bidderID", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if !listing.Active {
		return models.Bid{}, fmt.Errorf("service: %w - bidding is over", auctionerrors.ErrAlreadyClosed)
	}

	current := listing.StartingPrice
	highest, err := s.repo.GetHighestBid(listingID)
	if err == nil {
		current = highest.Price
	} else if !errors.Is(err, auctionerrors.ErrNoBids) {
		return models.Bid{}, fmt.Errorf("service: failed to check highest bid: %w", err)
	}

	if err := rules.EvaluateBid(current, listing.OriginatorID, bidderID, price); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listingID,
		BidderID:  bidderID,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.RecordBidForListing(bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, bidderID, err)
	}

	return bid, nil
}

// CloseListing transitions a listing from active to closed on behalf of
// its originator. The transition is one-way; a repeated close reports
// ErrAlreadyClosed and leaves state unchanged.
func (s *AuctionService) CloseListing(listingID, requestingUserID string) error {
	if listingID == "" || requestingUserID == "" {
		return fmt.Errorf("service: %w - missing listingID or userID", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	if err := rules.CloseListing(listing, requestingUserID); err != nil {
		return err
	}

	if err := s.repo.SetListingInactive(listingID); err != nil {
		return fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}

	return nil
}

// CreateListing creates a new active listing in the named category.
// The (name, category) uniqueness check happens atomically with the
// insert in storage.
func (s *AuctionService) CreateListing(name, description, imageURL string, startingPrice decimal.Decimal, categoryName, originatorID string) (models.Listing, error) {
	if originatorID == "" || categoryName == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing originatorID or category", auctionerrors.ErrInvalidInput)
	}
	if err := rules.ValidateNewListing(name, startingPrice); err != nil {
		return models.Listing{}, err
	}

	category, err := s.repo.GetCategoryByName(categoryName)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to resolve category %q: %w", categoryName, err)
	}
	if _, err := s.repo.GetUser(originatorID); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to resolve originator %s: %w", originatorID, err)
	}

	listing := models.Listing{
		ListingID:     utils.GenerateID(),
		Name:          name,
		Description:   description,
		ImageURL:      imageURL,
		StartingPrice: startingPrice,
		CategoryID:    category.CategoryID,
		OriginatorID:  originatorID,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateListing(listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing %q: %w", name, err)
	}

	return listing, nil
}

// Watch adds a listing to a user's watchlist. Watching twice leaves
// exactly one entry and reports ErrAlreadyWatching.
func (s *AuctionService) Watch(listingID, userID string) (models.WatchEntry, error) {
	if listingID == "" || userID == "" {
		return models.WatchEntry{}, fmt.Errorf("service: %w - missing listingID or userID", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	entry := models.WatchEntry{
		WatchID:   utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AddWatchEntry(entry); err != nil {
		return models.WatchEntry{}, fmt.Errorf("service: failed to watch listing %s for user %s: %w", listingID, userID, err)
	}

	return entry, nil
}

// Unwatch removes a listing from a user's watchlist; removing an absent
// entry reports ErrNotWatching.
func (s *AuctionService) Unwatch(listingID, userID string) error {
	if listingID == "" || userID == "" {
		return fmt.Errorf("service: %w - missing listingID or userID", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.RemoveWatchEntry(userID, listingID); err != nil {
		return fmt.Errorf("service: failed to unwatch listing %s for user %s: %w", listingID, userID, err)
	}

	return nil
}

// AddComment records a user's comment on a listing; one comment slot
// per author per listing.
func (s *AuctionService) AddComment(listingID, authorID, body string) (models.Comment, error) {
	if listingID == "" || authorID == "" || body == "" {
		return models.Comment{}, fmt.Errorf("service: %w - missing listingID, authorID or body", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	comment := models.Comment{
		CommentID: utils.GenerateID(),
		ListingID: listingID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AddComment(comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to comment on listing %s: %w", listingID, err)
	}

	return comment, nil
}

// CreateCategory registers a new category with a unique name
func (s *AuctionService) CreateCategory(name string) (models.Category, error) {
	if name == "" {
		return models.Category{}, fmt.Errorf("service: %w - missing category name", auctionerrors.ErrInvalidInput)
	}

	category := models.Category{
		CategoryID: utils.GenerateID(),
		Name:       name,
	}

	if err := s.repo.CreateCategory(category); err != nil {
		return models.Category{}, fmt.Errorf("service: failed to create category %q: %w", name, err)
	}

	return category, nil
}

// GetListingView returns a listing together with its derived state:
// highest price (starting price when no bids), highest bidder, bid
// count, bidder list and comments newest-first.
func (s *AuctionService) GetListingView(listingID string) (models.ListingView, error) {
	if listingID == "" {
		return models.ListingView{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidInput)
	}

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.ListingView{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	bids, err := s.repo.GetBidsByListing(listingID)
	if err != nil {
		return models.ListingView{}, fmt.Errorf("service: failed to load bids for listing %s: %w", listingID, err)
	}

	comments, err := s.repo.GetCommentsByListing(listingID)
	if err != nil {
		return models.ListingView{}, fmt.Errorf("service: failed to load comments for listing %s: %w", listingID, err)
	}

	view := models.ListingView{
		Listing:      listing,
		HighestPrice: listing.StartingPrice,
		BidCount:     len(bids),
		BidderIDs:    make([]string, 0, len(bids)),
		Comments:     comments,
	}
	for i, b := range bids {
		view.BidderIDs = append(view.BidderIDs, b.BidderID)
		if i == 0 || b.Price.GreaterThan(view.HighestPrice) {
			view.HighestPrice = b.Price
			view.HighestBidderID = b.BidderID
		}
	}

	return view, nil
}

// GetActiveListings returns all active listings, newest first
func (s *AuctionService) GetActiveListings() ([]models.Listing, error) {
	listings, err := s.repo.GetActiveListings()
	if err != nil {
		return nil, fmt.Errorf("service: failed to get active listings: %w", err)
	}
	return listings, nil
}

// GetListingsInCategory returns the active listings of a named category
func (s *AuctionService) GetListingsInCategory(categoryName string) ([]models.Listing, error) {
	if categoryName == "" {
		return nil, fmt.Errorf("service: %w - empty category name", auctionerrors.ErrInvalidInput)
	}

	category, err := s.repo.GetCategoryByName(categoryName)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve category %q: %w", categoryName, err)
	}

	listings, err := s.repo.GetListingsByCategory(category.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings in category %q: %w", categoryName, err)
	}
	return listings, nil
}

// GetUserWatchlist returns the listings a user watches, most recently
// watched first
func (s *AuctionService) GetUserWatchlist(userID string) ([]models.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidInput)
	}

	listings, err := s.repo.GetWatchedListings(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}
	return listings, nil
}

// GetUserListings returns all listings created by a user, newest first
func (s *AuctionService) GetUserListings(userID string) ([]models.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidInput)
	}

	listings, err := s.repo.GetListingsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings for user %s: %w", userID, err)
	}
	return listings, nil
}

// GetCategories returns all categories sorted by name
func (s *AuctionService) GetCategories() ([]models.Category, error) {
	categories, err := s.repo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("service: failed to get categories: %w", err)
	}
	return categories, nil
}
