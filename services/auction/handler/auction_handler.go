package handler

import (
	"fmt"
	"net/http"

	model "auction-listings/internal/models"
	"auction-listings/services/auction/helpers"
	"auction-listings/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	PlaceBid(listingID, bidderID string, price decimal.Decimal) (model.Bid, error)
	CloseListing(listingID, requestingUserID string) error
	CreateListing(name, description, imageURL string, startingPrice decimal.Decimal, categoryName, originatorID string) (model.Listing, error)
	Watch(listingID, userID string) (model.WatchEntry, error)
	Unwatch(listingID, userID string) error
	AddComment(listingID, authorID, body string) (model.Comment, error)
	CreateCategory(name string) (model.Category, error)
	GetListingView(listingID string) (model.ListingView, error)
	GetActiveListings() ([]model.Listing, error)
	GetListingsInCategory(categoryName string) ([]model.Listing, error)
	GetUserWatchlist(userID string) ([]model.Listing, error)
	GetUserListings(userID string) ([]model.Listing, error)
	GetCategories() ([]model.Category, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(listingID, req.UserID, req.Price)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"user_id":    bid.BidderID,
		"price":      bid.Price.StringFixed(2),
	})
}

// CloseListingHandler handles POST /listings/:listing_id/close
func (h *AuctionHandler) CloseListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CloseListingHandler", err)
		return
	}

	if err := h.service.CloseListing(listingID, req.UserID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CloseListingHandler: close rejected", map[string]any{
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"listing_id": listingID, "active": false}, "listing closed successfully")
	helpers.LogSuccess("CloseListingHandler", "listing closed successfully", map[string]any{
		"listing_id": listingID,
		"user_id":    req.UserID,
	})
}

// CreateListingHandler handles POST /listings
func (h *AuctionHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	listing, err := h.service.CreateListing(req.Name, req.Description, req.ImageURL, req.StartingPrice, req.Category, req.OriginatorID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CreateListingHandler: creation rejected", map[string]any{
			"name":     req.Name,
			"category": req.Category,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ListingID,
		"name":       listing.Name,
		"category":   req.Category,
	})
}

// WatchHandler handles PUT /listings/:listing_id/watch
func (h *AuctionHandler) WatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WatchHandler", err)
		return
	}

	entry, err := h.service.Watch(listingID, req.UserID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WatchHandler: watch rejected", map[string]any{
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewWatchEntryResponse(entry), "listing added to watchlist")
	helpers.LogSuccess("WatchHandler", "listing added to watchlist", map[string]any{
		"listing_id": listingID,
		"user_id":    req.UserID,
	})
}

// UnwatchHandler handles DELETE /listings/:listing_id/watch
func (h *AuctionHandler) UnwatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UnwatchHandler", err)
		return
	}

	if err := h.service.Unwatch(listingID, req.UserID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UnwatchHandler: unwatch rejected", map[string]any{
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"listing_id": listingID, "user_id": req.UserID}, "listing removed from watchlist")
	helpers.LogSuccess("UnwatchHandler", "listing removed from watchlist", map[string]any{
		"listing_id": listingID,
		"user_id":    req.UserID,
	})
}

// AddCommentHandler handles POST /listings/:listing_id/comments
func (h *AuctionHandler) AddCommentHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddCommentHandler", err)
		return
	}

	comment, err := h.service.AddComment(listingID, req.UserID, req.Body)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("AddCommentHandler: comment rejected", map[string]any{
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewCommentResponse(comment), "comment added successfully")
	helpers.LogSuccess("AddCommentHandler", "comment added successfully", map[string]any{
		"comment_id": comment.CommentID,
		"listing_id": listingID,
		"user_id":    req.UserID,
	})
}

// CreateCategoryHandler handles POST /categories
func (h *AuctionHandler) CreateCategoryHandler(c *gin.Context) {
	var req helpers.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCategoryHandler", err)
		return
	}

	category, err := h.service.CreateCategory(req.Name)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CreateCategoryHandler: creation rejected", map[string]any{
			"name":  req.Name,
			"error": err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, category, "category created successfully")
	helpers.LogSuccess("CreateCategoryHandler", "category created successfully", map[string]any{
		"category_id": category.CategoryID,
		"name":        category.Name,
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *AuctionHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	view, err := h.service.GetListingView(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingViewResponse(view), "listing retrieved successfully")
}

// ListActiveListingsHandler handles GET /listings
func (h *AuctionHandler) ListActiveListingsHandler(c *gin.Context) {
	listings, err := h.service.GetActiveListings()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListActiveListingsHandler: error retrieving listings", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponses(listings), "active listings retrieved successfully")
}

// ListCategoriesHandler handles GET /categories
func (h *AuctionHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.service.GetCategories()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListCategoriesHandler: error retrieving categories", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// ListingsInCategoryHandler handles GET /categories/:category_name/listings
func (h *AuctionHandler) ListingsInCategoryHandler(c *gin.Context) {
	categoryName := c.Param("category_name")

	listings, err := h.service.GetListingsInCategory(categoryName)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListingsInCategoryHandler: error retrieving listings", map[string]any{"category": categoryName, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponses(listings), "listings retrieved successfully")
}

// WatchlistHandler handles GET /users/:user_id/watchlist
func (h *AuctionHandler) WatchlistHandler(c *gin.Context) {
	userID := c.Param("user_id")

	listings, err := h.service.GetUserWatchlist(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WatchlistHandler: error retrieving watchlist", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponses(listings), "watchlist retrieved successfully")
}

// UserListingsHandler handles GET /users/:user_id/listings
func (h *AuctionHandler) UserListingsHandler(c *gin.Context) {
	userID := c.Param("user_id")

	listings, err := h.service.GetUserListings(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UserListingsHandler: error retrieving listings", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponses(listings), "listings retrieved successfully")
}
