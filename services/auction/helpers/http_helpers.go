package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-listings/internal/auctionerrors"
	"auction-listings/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, auctionerrors.ErrCategoryNotFound):
		return http.StatusNotFound, "category not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrInvalidPrice):
		return http.StatusBadRequest, "invalid price"
	case errors.Is(err, auctionerrors.ErrPriceTooLow):
		return http.StatusConflict, "bid price too low"
	case errors.Is(err, auctionerrors.ErrOriginatorCannotBid):
		return http.StatusConflict, "originator cannot bid on own listing"
	case errors.Is(err, auctionerrors.ErrNotOwner):
		return http.StatusConflict, "only the originator may close this listing"
	case errors.Is(err, auctionerrors.ErrAlreadyClosed):
		return http.StatusConflict, "listing is already closed"
	case errors.Is(err, auctionerrors.ErrDuplicateListing):
		return http.StatusConflict, "listing name already used in this category"
	case errors.Is(err, auctionerrors.ErrDuplicateCategory):
		return http.StatusConflict, "category already exists"
	case errors.Is(err, auctionerrors.ErrAlreadyWatching):
		return http.StatusConflict, "already watching this listing"
	case errors.Is(err, auctionerrors.ErrNotWatching):
		return http.StatusConflict, "not watching this listing"
	case errors.Is(err, auctionerrors.ErrDuplicateComment):
		return http.StatusConflict, "already commented on this listing"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusOK, "no bids found for listing"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
