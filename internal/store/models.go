package store

import "time"

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ChatTurn struct {
	UserID    string    `json:"user_id"`
	Topic     string    `json:"topic"`
	Subtopic  string    `json:"subtopic"`
	Message   string    `json:"message"` // Empty for the auto-generated opener
	Response  string    `json:"response"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

type CommunityPost struct {
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Listing struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        string    `json:"price"` // Free text
	ContactEmail string    `json:"contact_email"`
	Timestamp    time.Time `json:"timestamp"`
}

type PrivateMessage struct {
	ID         int64     `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	ItemID     int64     `json:"item_id"`
	ItemTitle  string    `json:"item_title"` // Copied from the listing at send time
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

type DatingProfile struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Interest    string    `json:"interest"`
	Description string    `json:"description"`
	ImagePath   *string   `json:"image_path"` // Nullable
	Timestamp   time.Time `json:"timestamp"`
}
