package rules

import (
	"errors"
	"testing"

	"auction-listings/internal/auctionerrors"
	"auction-listings/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// Tests EvaluateBid
func TestEvaluateBid(t *testing.T) {
	t.Parallel()

	// Table-driven test cases
	tests := []struct {
		name           string
		currentHighest string
		originatorID   string
		bidderID       string
		price          string
		expectedError  error
	}{
		{name: "first_bid_over_starting_price", currentHighest: "50.00", originatorID: "owner", bidderID: "user1", price: "60.00", expectedError: nil},
		{name: "equal_bid_rejected", currentHighest: "60.00", originatorID: "owner", bidderID: "user2", price: "60.00", expectedError: auctionerrors.ErrPriceTooLow},
		{name: "lower_bid_rejected", currentHighest: "60.00", originatorID: "owner", bidderID: "user2", price: "45.00", expectedError: auctionerrors.ErrPriceTooLow},
		{name: "originator_cannot_bid", currentHighest: "60.00", originatorID: "owner", bidderID: "owner", price: "100.00", expectedError: auctionerrors.ErrOriginatorCannotBid},
		{name: "negative_price_rejected", currentHighest: "60.00", originatorID: "owner", bidderID: "user3", price: "-1.00", expectedError: auctionerrors.ErrInvalidPrice},
		{name: "negative_price_by_originator", currentHighest: "60.00", originatorID: "owner", bidderID: "owner", price: "-5.00", expectedError: auctionerrors.ErrInvalidPrice},
		{name: "zero_bid_on_zero_start_rejected", currentHighest: "0.00", originatorID: "owner", bidderID: "user4", price: "0.00", expectedError: auctionerrors.ErrPriceTooLow},
		{name: "cent_over_highest_accepted", currentHighest: "60.00", originatorID: "owner", bidderID: "user5", price: "60.01", expectedError: nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := EvaluateBid(dec(t, tc.currentHighest), tc.originatorID, tc.bidderID, dec(t, tc.price))

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Tests CloseListing
func TestCloseListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		active        bool
		originatorID  string
		requesterID   string
		expectedError error
	}{
		{name: "owner_closes_active_listing", active: true, originatorID: "owner", requesterID: "owner", expectedError: nil},
		{name: "non_owner_rejected", active: true, originatorID: "owner", requesterID: "intruder", expectedError: auctionerrors.ErrNotOwner},
		{name: "repeated_close_rejected", active: false, originatorID: "owner", requesterID: "owner", expectedError: auctionerrors.ErrAlreadyClosed},
		{name: "non_owner_on_closed_listing", active: false, originatorID: "owner", requesterID: "intruder", expectedError: auctionerrors.ErrNotOwner},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			listing := models.Listing{
				ListingID:    "listing1",
				Name:         "Lamp",
				OriginatorID: tc.originatorID,
				Active:       tc.active,
			}

			err := CloseListing(listing, tc.requesterID)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Tests ValidateNewListing
func TestValidateNewListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		listingName   string
		startingPrice string
		expectedError error
	}{
		{name: "valid_listing", listingName: "Lamp", startingPrice: "50.00", expectedError: nil},
		{name: "zero_starting_price_allowed", listingName: "Freebie", startingPrice: "0.00", expectedError: nil},
		{name: "empty_name", listingName: "", startingPrice: "50.00", expectedError: auctionerrors.ErrInvalidInput},
		{name: "negative_starting_price", listingName: "Lamp", startingPrice: "-0.01", expectedError: auctionerrors.ErrInvalidPrice},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateNewListing(tc.listingName, dec(t, tc.startingPrice))

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
