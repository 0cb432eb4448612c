package core

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"happiness.app/happiness-creator/internal/metrics"
)

func newTestMarketplace(t *testing.T) *MarketplaceService {
	t.Helper()
	return NewMarketplaceService(newTestStore(t), NewAccessGate([]string{"HARRO1"}), metrics.NewNop())
}

func TestCreateListingRequiresFields(t *testing.T) {
	svc := newTestMarketplace(t)

	_, err := svc.CreateListing("alice", ListingForm{Title: "Sofa", Description: "  ", Price: "80"})
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Contains(t, err.Error(), "Description")

	listing, err := svc.CreateListing("alice", ListingForm{Title: " Sofa ", Description: "grün", Price: "80"})
	require.NoError(t, err)
	assert.Equal(t, "Sofa", listing.Title)
	assert.Empty(t, listing.ContactEmail)

	listings, err := svc.Listings()
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestContactSellerGate(t *testing.T) {
	svc := newTestMarketplace(t)
	listing, err := svc.CreateListing("alice", ListingForm{Title: "Sofa", Description: "grün", Price: "80"})
	require.NoError(t, err)

	for _, code := range []string{"", "WRONG"} {
		_, err := svc.ContactSeller("bob", code, listing.ID, "Noch da?")
		assert.ErrorIs(t, err, ErrAccessDenied)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.metrics.ContactDenied))
	assert.False(t, svc.CanContact(""))
	assert.True(t, svc.CanContact("HARRO1"))

	msg, err := svc.ContactSeller("bob", "HARRO1", listing.ID, "Noch da?")
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.ReceiverID)
	assert.Equal(t, "Sofa", msg.ItemTitle)

	inbox, err := svc.Inbox("alice")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "bob", inbox[0].SenderID)
}

func TestContactSellerRejections(t *testing.T) {
	svc := newTestMarketplace(t)
	listing, err := svc.CreateListing("alice", ListingForm{Title: "Sofa", Description: "grün", Price: "80"})
	require.NoError(t, err)

	_, err = svc.ContactSeller("bob", "HARRO1", listing.ID, " ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.ContactSeller("bob", "HARRO1", listing.ID+100, "Hallo")
	assert.ErrorIs(t, err, ErrListingNotFound)

	_, err = svc.ContactSeller("alice", "HARRO1", listing.ID, "Hallo")
	assert.ErrorIs(t, err, ErrOwnListing)

	inbox, err := svc.Inbox("alice")
	require.NoError(t, err)
	assert.Empty(t, inbox)
}
