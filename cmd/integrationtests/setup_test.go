package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	auction "auction-listings/internal/auctionService"
	model "auction-listings/internal/models"
	"auction-listings/internal/repository"
	"auction-listings/internal/server"
	"auction-listings/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the router with an in-memory repository seeded
// with the categories and users the API tests operate on.
func SetupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()

	categories := []model.Category{
		{CategoryID: "cat-home", Name: "Home"},
		{CategoryID: "cat-garden", Name: "Garden"},
	}
	for _, category := range categories {
		require.NoError(t, repo.CreateCategory(category))
	}

	users := []model.User{
		{UserID: "owner", Username: "owner"},
		{UserID: "user1", Username: "alice"},
		{UserID: "user2", Username: "bob"},
	}
	for _, user := range users {
		require.NoError(t, repo.CreateUser(user))
	}

	service := auction.NewAuctionService(repo)
	return server.SetupRouter(service)
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if w.Code == 201 {
			resp = resp["data"].(map[string]any)
		}
	}

	return resp, w
}

// CreateTestListing creates a listing through the API and returns its generated ID.
func CreateTestListing(t *testing.T, router *gin.Engine, name, category, originatorID, startingPrice string) string {
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/listings", helpers.CreateListingRequest{
		Name:          name,
		Description:   "integration test listing",
		StartingPrice: decimal.RequireFromString(startingPrice),
		Category:      category,
		OriginatorID:  originatorID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	listingID := resp["listing_id"].(string)
	require.NotEmpty(t, listingID)
	return listingID
}
