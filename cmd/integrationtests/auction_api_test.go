package integrationtests

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"auction-listings/services/auction/helpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Full listing lifecycle: create, bid, and inspect the catalog view.
func TestBidSequence(t *testing.T) {
	router := SetupTestRouter(t)
	listingID := CreateTestListing(t, router, "Lamp", "Home", "owner", "50")

	// Before any bids the view reports the starting price as highest.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := resp["data"].(map[string]any)
	require.Equal(t, "50.00", view["highest_price"])
	require.Equal(t, float64(0), view["bid_count"])

	// A bid strictly above the starting price is accepted.
	bidResp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", helpers.PlaceBidRequest{
		UserID: "user1",
		Price:  decimal.RequireFromString("60"),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "user1", bidResp["bidder_id"])
	require.Equal(t, "60.00", bidResp["price"])
	_, err := time.Parse(time.RFC3339, bidResp["created_at"].(string))
	require.NoError(t, err)

	// An equal bid is rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", helpers.PlaceBidRequest{
		UserID: "user2",
		Price:  decimal.RequireFromString("60"),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// A lower bid is rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", helpers.PlaceBidRequest{
		UserID: "user2",
		Price:  decimal.RequireFromString("45"),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// The originator may not bid, even above the current highest.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", helpers.PlaceBidRequest{
		UserID: "owner",
		Price:  decimal.RequireFromString("100"),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Only the accepted bid is reflected in the view.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = resp["data"].(map[string]any)
	require.Equal(t, "60.00", view["highest_price"])
	require.Equal(t, "user1", view["highest_bidder_id"])
	require.Equal(t, float64(1), view["bid_count"])
}

// Listing names must be unique within a category but may repeat across categories.
func TestDuplicateListingNames(t *testing.T) {
	router := SetupTestRouter(t)
	CreateTestListing(t, router, "Lamp", "Home", "owner", "50")

	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings", helpers.CreateListingRequest{
		Name:          "Lamp",
		StartingPrice: decimal.RequireFromString("30"),
		Category:      "Home",
		OriginatorID:  "owner",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	CreateTestListing(t, router, "Lamp", "Garden", "owner", "30")
}

func TestCloseListing(t *testing.T) {
	router := SetupTestRouter(t)
	listingID := CreateTestListing(t, router, "Lamp", "Home", "owner", "50")

	// Only the originator may close.
	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", helpers.UserActionRequest{UserID: "user1"})
	require.Equal(t, http.StatusConflict, w.Code)

	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", helpers.UserActionRequest{UserID: "owner"})
	require.Equal(t, http.StatusOK, w.Code)

	// Closing twice is rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/close", helpers.UserActionRequest{UserID: "owner"})
	require.Equal(t, http.StatusConflict, w.Code)

	// Bids on a closed listing are rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/bids", helpers.PlaceBidRequest{
		UserID: "user1",
		Price:  decimal.RequireFromString("60"),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Closed listings disappear from the active catalog.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 0)
}

func TestWatchToggle(t *testing.T) {
	router := SetupTestRouter(t)
	listingID := CreateTestListing(t, router, "Lamp", "Home", "owner", "50")

	_, w := ExecuteRequestAndParse(t, router, http.MethodPut, "/listings/"+listingID+"/watch", helpers.UserActionRequest{UserID: "user1"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Watching again is rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPut, "/listings/"+listingID+"/watch", helpers.UserActionRequest{UserID: "user1"})
	require.Equal(t, http.StatusConflict, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/users/user1/watchlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	watchlist := resp["data"].([]any)
	require.Len(t, watchlist, 1)
	require.Equal(t, "Lamp", watchlist[0].(map[string]any)["name"])

	_, w = ExecuteRequestAndParse(t, router, http.MethodDelete, "/listings/"+listingID+"/watch", helpers.UserActionRequest{UserID: "user1"})
	require.Equal(t, http.StatusOK, w.Code)

	// Removing an absent entry is rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodDelete, "/listings/"+listingID+"/watch", helpers.UserActionRequest{UserID: "user1"})
	require.Equal(t, http.StatusConflict, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/users/user1/watchlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 0)
}

func TestComments(t *testing.T) {
	router := SetupTestRouter(t)
	listingID := CreateTestListing(t, router, "Lamp", "Home", "owner", "50")

	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/comments", helpers.AddCommentRequest{
		UserID: "user1",
		Body:   "Does it include the shade?",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// One comment per user per listing.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/comments", helpers.AddCommentRequest{
		UserID: "user1",
		Body:   "Second attempt",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/listings/"+listingID+"/comments", helpers.AddCommentRequest{
		UserID: "user2",
		Body:   "Watching this one",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	comments := resp["data"].(map[string]any)["comments"].([]any)
	require.Len(t, comments, 2)
	// Newest first.
	require.Equal(t, "user2", comments[0].(map[string]any)["author_id"])
}

func TestCategoryQueries(t *testing.T) {
	router := SetupTestRouter(t)
	CreateTestListing(t, router, "Lamp", "Home", "owner", "50")
	CreateTestListing(t, router, "Hose", "Garden", "owner", "15")

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/categories/Home/listings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listings := resp["data"].([]any)
	require.Len(t, listings, 1)
	require.Equal(t, "Lamp", listings[0].(map[string]any)["name"])

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/categories/Nope/listings", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/users/owner/listings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 2)
}

// Two racing bids above the current highest: the higher one must always win.
func TestConcurrentBidRace(t *testing.T) {
	router := SetupTestRouter(t)
	listingID := CreateTestListing(t, router, "Lamp", "Home", "owner", "100")

	prices := []string{"105", "106"}
	bidders := []string{"user1", "user2"}

	var wg sync.WaitGroup
	for i := range prices {
		wg.Add(1)
		go func(price, bidder string) {
			defer wg.Done()
			ExecuteRequest(t, router, http.MethodPost, "/listings/"+listingID+"/bids",
				[]byte(`{"user_id":"`+bidder+`","price":"`+price+`"}`))
		}(prices[i], bidders[i])
	}
	wg.Wait()

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/listings/"+listingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := resp["data"].(map[string]any)
	require.Equal(t, "106.00", view["highest_price"])
	require.Equal(t, "user2", view["highest_bidder_id"])
}
