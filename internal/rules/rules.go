package rules

import (
	"fmt"

	"auction-listings/internal/auctionerrors"
	"auction-listings/internal/models"

	"github.com/shopspring/decimal"
)

// EvaluateBid decides whether a proposed bid may be accepted against a
// consistent snapshot of the listing's current highest price. It has no
// side effects; the caller is responsible for holding the snapshot
// stable until the accepted bid is persisted.
func EvaluateBid(currentHighest decimal.Decimal, originatorID, bidderID string, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("rules: %w - got %s", auctionerrors.ErrInvalidPrice, price.String())
	}
	if bidderID == originatorID {
		return auctionerrors.ErrOriginatorCannotBid
	}
	// Equal bids lose; strictly greater is required.
	if price.LessThanOrEqual(currentHighest) {
		return fmt.Errorf("rules: %w - current highest is %s", auctionerrors.ErrPriceTooLow, currentHighest.String())
	}
	return nil
}

// CloseListing decides whether the requesting user may close the
// listing. The active flag only ever transitions true to false; a
// repeated close is reported, not silently ignored.
func CloseListing(listing models.Listing, requestingUserID string) error {
	if listing.OriginatorID != requestingUserID {
		return auctionerrors.ErrNotOwner
	}
	if !listing.Active {
		return auctionerrors.ErrAlreadyClosed
	}
	return nil
}

// ValidateNewListing checks the field-level rules for listing creation.
// The (name, category) uniqueness check belongs to storage, where it is
// enforced atomically with the insert.
func ValidateNewListing(name string, startingPrice decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("rules: %w - missing listing name", auctionerrors.ErrInvalidInput)
	}
	if startingPrice.IsNegative() {
		return fmt.Errorf("rules: %w - starting price %s", auctionerrors.ErrInvalidPrice, startingPrice.String())
	}
	return nil
}
