package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Listing methods
func (s *SQLiteStore) CreateListing(listing *Listing) error {
	listing.Timestamp = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO marketplace (user_id, title, description, price, kontakt_email, timestamp) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare listing insert: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(listing.UserID, listing.Title, listing.Description, listing.Price, listing.ContactEmail, listing.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to execute listing insert: %w", err)
	}
	listing.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetListingByID(id int64) (*Listing, error) {
	row := s.db.QueryRow("SELECT id, user_id, title, description, price, kontakt_email, timestamp FROM marketplace WHERE id = ?", id)
	listing, err := scanListing(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (s *SQLiteStore) GetListings() ([]Listing, error) {
	rows, err := s.db.Query("SELECT id, user_id, title, description, price, kontakt_email, timestamp FROM marketplace ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, *listing)
	}
	return listings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var listing Listing
	var email sql.NullString
	if err := row.Scan(&listing.ID, &listing.UserID, &listing.Title, &listing.Description, &listing.Price, &email, &listing.Timestamp); err != nil {
		return nil, err
	}
	listing.ContactEmail = email.String
	return &listing, nil
}

// Private message methods
func (s *SQLiteStore) CreatePrivateMessage(msg *PrivateMessage) error {
	msg.Timestamp = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO messages (sender_id, receiver_id, item_id, item_title, message, timestamp) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(msg.SenderID, msg.ReceiverID, msg.ItemID, msg.ItemTitle, msg.Body, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	msg.ID, _ = res.LastInsertId()
	return nil
}

// GetInbox returns the messages received by userID, newest first.
func (s *SQLiteStore) GetInbox(userID string) ([]PrivateMessage, error) {
	query := `
        SELECT id, sender_id, receiver_id, item_id, item_title, message, timestamp
        FROM messages
        WHERE receiver_id = ?
        ORDER BY timestamp DESC, id DESC
    `
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []PrivateMessage
	for rows.Next() {
		var msg PrivateMessage
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.ItemID, &msg.ItemTitle, &msg.Body, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
