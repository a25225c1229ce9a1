package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-listings/internal/auctionerrors"
	model "auction-listings/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Helper to create a new Listing
func newListing(listingID, name, categoryID, originatorID string, createdAt time.Time) model.Listing {
	return model.Listing{
		ListingID:     listingID,
		Name:          name,
		Description:   fmt.Sprintf("%s description", name),
		StartingPrice: decimal.RequireFromString("50.00"),
		CategoryID:    categoryID,
		OriginatorID:  originatorID,
		Active:        true,
		CreatedAt:     createdAt,
	}
}

// Helper to create a new Bid
func newBid(bidID, listingID, bidderID, price string, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		ListingID: listingID,
		BidderID:  bidderID,
		Price:     decimal.RequireFromString(price),
		CreatedAt: createdAt,
	}
}

func seedRepo(t *testing.T) *MemoryRepo {
	t.Helper()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateCategory(model.Category{CategoryID: "cat-home", Name: "Home"}))
	require.NoError(t, repo.CreateCategory(model.Category{CategoryID: "cat-garden", Name: "Garden"}))
	require.NoError(t, repo.CreateUser(model.User{UserID: "owner", Username: "owner"}))
	require.NoError(t, repo.CreateUser(model.User{UserID: "user1", Username: "user1"}))
	return repo
}

// Test CreateListing uniqueness per (name, category)
func TestMemoryRepo_CreateListing(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()

	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now)))

	// Same name in the same category is rejected
	err := repo.CreateListing(newListing("l2", "Lamp", "cat-home", "owner", now))
	require.True(t, errors.Is(err, auctionerrors.ErrDuplicateListing))

	// Same name in a different category is fine
	require.NoError(t, repo.CreateListing(newListing("l3", "Lamp", "cat-garden", "owner", now)))

	// Unknown category is rejected
	err = repo.CreateListing(newListing("l4", "Chair", "cat-missing", "owner", now))
	require.True(t, errors.Is(err, auctionerrors.ErrCategoryNotFound))

	// The rejected duplicate must not be visible
	_, err = repo.GetListing("l2")
	require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))
}

// Test GetActiveListings and SetListingInactive
func TestMemoryRepo_ActiveListings(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()

	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now.Add(-2*time.Hour))))
	require.NoError(t, repo.CreateListing(newListing("l2", "Chair", "cat-home", "owner", now.Add(-1*time.Hour))))
	require.NoError(t, repo.CreateListing(newListing("l3", "Rake", "cat-garden", "owner", now)))

	require.NoError(t, repo.SetListingInactive("l2"))

	active, err := repo.GetActiveListings()
	require.NoError(t, err)
	require.Len(t, active, 2)
	// Newest first
	require.Equal(t, "l3", active[0].ListingID)
	require.Equal(t, "l1", active[1].ListingID)

	// The flag never flips back; closing again is a storage no-op
	require.NoError(t, repo.SetListingInactive("l2"))
	closed, err := repo.GetListing("l2")
	require.NoError(t, err)
	require.False(t, closed.Active)

	inCategory, err := repo.GetListingsByCategory("cat-home")
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	require.Equal(t, "l1", inCategory[0].ListingID)

	_, err = repo.GetListingsByCategory("cat-missing")
	require.True(t, errors.Is(err, auctionerrors.ErrCategoryNotFound))
}

// Test RecordBidForListing and GetHighestBid
func TestMemoryRepo_Bids(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()
	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now)))

	_, err := repo.GetHighestBid("l1")
	require.True(t, errors.Is(err, auctionerrors.ErrNoBids))

	bid1 := newBid("b1", "l1", "user1", "60.00", now)
	bid2 := newBid("b2", "l1", "user2", "75.50", now.Add(time.Second))
	require.NoError(t, repo.RecordBidForListing(bid1))
	require.NoError(t, repo.RecordBidForListing(bid2))

	highest, err := repo.GetHighestBid("l1")
	require.NoError(t, err)
	require.Equal(t, "b2", highest.BidID)
	require.True(t, highest.Price.Equal(decimal.RequireFromString("75.50")))

	bids, err := repo.GetBidsByListing("l1")
	require.NoError(t, err)
	require.Equal(t, []model.Bid{bid1, bid2}, bids)

	// Unknown listing
	require.Error(t, repo.RecordBidForListing(newBid("b3", "missing", "user1", "10.00", now)))
	_, err = repo.GetBidsByListing("missing")
	require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))

	// Concurrent writes stay consistent
	t.Run("concurrent_bids", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", time.Now().UTC())))

		var wg sync.WaitGroup
		concurrentCount := 50
		for i := 0; i < concurrentCount; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				b := newBid(fmt.Sprintf("bid-%d", i), "l1", fmt.Sprintf("user-%d", i), fmt.Sprintf("%d.00", 100+i), time.Now())
				require.NoError(t, repo.RecordBidForListing(b))
			}()
		}
		wg.Wait()

		bids, err := repo.GetBidsByListing("l1")
		require.NoError(t, err)
		require.Len(t, bids, concurrentCount)
	})
}

// Test watch entry uniqueness per (user, listing)
func TestMemoryRepo_WatchEntries(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()
	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now)))
	require.NoError(t, repo.CreateListing(newListing("l2", "Chair", "cat-home", "owner", now.Add(time.Minute))))

	entry := model.WatchEntry{WatchID: "w1", ListingID: "l1", UserID: "user1", CreatedAt: now}
	require.NoError(t, repo.AddWatchEntry(entry))

	// Adding twice leaves exactly one entry and signals the duplicate
	err := repo.AddWatchEntry(model.WatchEntry{WatchID: "w2", ListingID: "l1", UserID: "user1", CreatedAt: now.Add(time.Second)})
	require.True(t, errors.Is(err, auctionerrors.ErrAlreadyWatching))

	watched, err := repo.GetWatchedListings("user1")
	require.NoError(t, err)
	require.Len(t, watched, 1)

	// Second listing, most recently watched first
	require.NoError(t, repo.AddWatchEntry(model.WatchEntry{WatchID: "w3", ListingID: "l2", UserID: "user1", CreatedAt: now.Add(2 * time.Second)}))
	watched, err = repo.GetWatchedListings("user1")
	require.NoError(t, err)
	require.Equal(t, "l2", watched[0].ListingID)
	require.Equal(t, "l1", watched[1].ListingID)

	// Removing works once, then reports not watching
	require.NoError(t, repo.RemoveWatchEntry("user1", "l1"))
	err = repo.RemoveWatchEntry("user1", "l1")
	require.True(t, errors.Is(err, auctionerrors.ErrNotWatching))

	// Concurrent adds for the same pair: exactly one may win
	t.Run("concurrent_watch_same_pair", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", time.Now().UTC())))

		var wg sync.WaitGroup
		var successes int64
		var mu sync.Mutex
		for i := 0; i < 20; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				e := model.WatchEntry{WatchID: fmt.Sprintf("w-%d", i), ListingID: "l1", UserID: "user1", CreatedAt: time.Now()}
				if err := repo.AddWatchEntry(e); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.EqualValues(t, 1, successes)
		watched, err := repo.GetWatchedListings("user1")
		require.NoError(t, err)
		require.Len(t, watched, 1)
	})
}

// Test comment uniqueness per (listing, author) and ordering
func TestMemoryRepo_Comments(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()
	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now)))

	first := model.Comment{CommentID: "c1", ListingID: "l1", AuthorID: "user1", Body: "first", CreatedAt: now}
	second := model.Comment{CommentID: "c2", ListingID: "l1", AuthorID: "user2", Body: "second", CreatedAt: now.Add(time.Second)}
	require.NoError(t, repo.AddComment(first))
	require.NoError(t, repo.AddComment(second))

	// One comment slot per author per listing
	err := repo.AddComment(model.Comment{CommentID: "c3", ListingID: "l1", AuthorID: "user1", Body: "again", CreatedAt: now.Add(2 * time.Second)})
	require.True(t, errors.Is(err, auctionerrors.ErrDuplicateComment))

	comments, err := repo.GetCommentsByListing("l1")
	require.NoError(t, err)
	// Newest first
	require.Equal(t, []model.Comment{second, first}, comments)
}

// Test DeleteListing cascades to bids, watches and comments
func TestMemoryRepo_DeleteListingCascades(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()
	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now)))
	require.NoError(t, repo.RecordBidForListing(newBid("b1", "l1", "user1", "60.00", now)))
	require.NoError(t, repo.AddWatchEntry(model.WatchEntry{WatchID: "w1", ListingID: "l1", UserID: "user1", CreatedAt: now}))
	require.NoError(t, repo.AddComment(model.Comment{CommentID: "c1", ListingID: "l1", AuthorID: "user1", Body: "hi", CreatedAt: now}))

	require.NoError(t, repo.DeleteListing("l1"))

	_, err := repo.GetListing("l1")
	require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))

	watched, err := repo.GetWatchedListings("user1")
	require.NoError(t, err)
	require.Empty(t, watched)

	// The (name, category) slot frees up again
	require.NoError(t, repo.CreateListing(newListing("l5", "Lamp", "cat-home", "owner", now)))
}

// Test categories and users
func TestMemoryRepo_CategoriesAndUsers(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)

	err := repo.CreateCategory(model.Category{CategoryID: "cat-x", Name: "Home"})
	require.True(t, errors.Is(err, auctionerrors.ErrDuplicateCategory))

	categories, err := repo.GetCategories()
	require.NoError(t, err)
	require.Len(t, categories, 2)
	// Sorted by name
	require.Equal(t, "Garden", categories[0].Name)
	require.Equal(t, "Home", categories[1].Name)

	_, err = repo.GetCategoryByName("Electronics")
	require.True(t, errors.Is(err, auctionerrors.ErrCategoryNotFound))

	_, err = repo.GetUser("ghost")
	require.True(t, errors.Is(err, auctionerrors.ErrUserNotFound))

	user, err := repo.GetUser("user1")
	require.NoError(t, err)
	require.Equal(t, "user1", user.Username)
}

// Test GetListingsByUser ordering
func TestMemoryRepo_GetListingsByUser(t *testing.T) {
	t.Parallel()

	repo := seedRepo(t)
	now := time.Now().UTC()
	require.NoError(t, repo.CreateListing(newListing("l1", "Lamp", "cat-home", "owner", now.Add(-time.Hour))))
	require.NoError(t, repo.CreateListing(newListing("l2", "Chair", "cat-home", "owner", now)))
	require.NoError(t, repo.CreateListing(newListing("l3", "Rake", "cat-garden", "user1", now)))

	listings, err := repo.GetListingsByUser("owner")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "l2", listings[0].ListingID)
	require.Equal(t, "l1", listings[1].ListingID)

	none, err := repo.GetListingsByUser("ghost")
	require.NoError(t, err)
	require.Empty(t, none)
}
