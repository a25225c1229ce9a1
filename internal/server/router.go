package server

import (
	auction "auction-listings/internal/auctionService"
	handler "auction-listings/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)

	listings := router.Group("/listings")
	{
		listings.POST("", auctionHandler.CreateListingHandler)
		listings.GET("", auctionHandler.ListActiveListingsHandler)
		listings.GET("/:listing_id", auctionHandler.GetListingHandler)
		listings.POST("/:listing_id/bids", auctionHandler.PlaceBidHandler)
		listings.POST("/:listing_id/close", auctionHandler.CloseListingHandler)
		listings.PUT("/:listing_id/watch", auctionHandler.WatchHandler)
		listings.DELETE("/:listing_id/watch", auctionHandler.UnwatchHandler)
		listings.POST("/:listing_id/comments", auctionHandler.AddCommentHandler)
	}

	categories := router.Group("/categories")
	{
		categories.POST("", auctionHandler.CreateCategoryHandler)
		categories.GET("", auctionHandler.ListCategoriesHandler)
		categories.GET("/:category_name/listings", auctionHandler.ListingsInCategoryHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/watchlist", auctionHandler.WatchlistHandler)
		users.GET("/:user_id/listings", auctionHandler.UserListingsHandler)
	}

	return router
}
