package core

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/metrics"
	"happiness.app/happiness-creator/internal/store"
	"happiness.app/happiness-creator/internal/utils"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrOwnListing      = errors.New("cannot contact yourself about your own listing")
)

type ListingForm struct {
	Title        string `validate:"required"`
	Description  string `validate:"required"`
	Price        string `validate:"required"`
	ContactEmail string
}

func (f *ListingForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.ContactEmail = strings.TrimSpace(f.ContactEmail)
}

type MarketplaceService struct {
	dbStore *store.SQLiteStore
	gate    *AccessGate
	metrics *metrics.Metrics
}

func NewMarketplaceService(db *store.SQLiteStore, gate *AccessGate, m *metrics.Metrics) *MarketplaceService {
	return &MarketplaceService{dbStore: db, gate: gate, metrics: m}
}

func (s *MarketplaceService) CanContact(accessCode string) bool {
	return s.gate.Allows(accessCode)
}

func (s *MarketplaceService) CreateListing(userID string, form ListingForm) (*store.Listing, error) {
	form.trim()
	if err := validateForm(form); err != nil {
		return nil, err
	}

	listing := store.Listing{
		UserID:       userID,
		Title:        form.Title,
		Description:  form.Description,
		Price:        form.Price,
		ContactEmail: form.ContactEmail,
	}
	if err := s.dbStore.CreateListing(&listing); err != nil {
		return nil, fmt.Errorf("failed to publish listing: %w", err)
	}
	s.metrics.Listings.Inc()
	return &listing, nil
}

func (s *MarketplaceService) Listings() ([]store.Listing, error) {
	return s.dbStore.GetListings()
}

// ContactSeller sends body to the seller of listingID. The listing title is
// copied into the message, so later listing changes do not affect it.
func (s *MarketplaceService) ContactSeller(senderID, accessCode string, listingID int64, body string) (*store.PrivateMessage, error) {
	if !s.gate.Allows(accessCode) {
		s.metrics.ContactDenied.Inc()
		return nil, ErrAccessDenied
	}
	if utils.IsBlank(body) {
		return nil, ErrEmptyMessage
	}

	listing, err := s.dbStore.GetListingByID(listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.UserID == senderID {
		return nil, ErrOwnListing
	}

	msg := store.PrivateMessage{
		SenderID:   senderID,
		ReceiverID: listing.UserID,
		ItemID:     listing.ID,
		ItemTitle:  listing.Title,
		Body:       strings.TrimSpace(body),
	}
	if err := s.dbStore.CreatePrivateMessage(&msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	s.metrics.PrivateMessages.Inc()
	log.WithFields(log.Fields{"listing": listing.ID, "sender": senderID}).Info("Private message sent")
	return &msg, nil
}

func (s *MarketplaceService) Inbox(userID string) ([]store.PrivateMessage, error) {
	return s.dbStore.GetInbox(userID)
}
