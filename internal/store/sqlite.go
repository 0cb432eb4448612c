package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

// initSchema is idempotent; it runs on every startup.
func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        name TEXT
    );

    CREATE TABLE IF NOT EXISTS chat (
        user_id TEXT,
        topic TEXT,
        subtopic TEXT,
        message TEXT,
        response TEXT,
        summary TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS community (
        user_id TEXT,
        content TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS marketplace (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT,
        title TEXT,
        description TEXT,
        price TEXT,
        kontakt_email TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        sender_id TEXT,
        receiver_id TEXT,
        item_id INTEGER,
        item_title TEXT,
        message TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS dating (
        user_id TEXT PRIMARY KEY,
        name TEXT,
        interesse TEXT,
        beschreibung TEXT,
        image_path TEXT,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_chat_conversation ON chat (user_id, topic, subtopic);
    CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages (receiver_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

// EnsureUser inserts the user unless the identity already exists. The stored
// name is never updated.
func (s *SQLiteStore) EnsureUser(id, name string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO users (id, name) VALUES (?, ?)", id, name)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	var user User
	var name sql.NullString
	err := s.db.QueryRow("SELECT id, name FROM users WHERE id = ?", id).Scan(&user.ID, &name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	user.Name = name.String
	return &user, nil
}

// Chat methods
func (s *SQLiteStore) CreateChatTurn(turn *ChatTurn) error {
	turn.Timestamp = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO chat (user_id, topic, subtopic, message, response, summary, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chat insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(turn.UserID, turn.Topic, turn.Subtopic, turn.Message, turn.Response, turn.Summary, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to execute chat insert: %w", err)
	}
	return nil
}

// GetChatTurns returns the transcript of one conversation, oldest first.
func (s *SQLiteStore) GetChatTurns(userID, topic, subtopic string) ([]ChatTurn, error) {
	query := `
        SELECT user_id, topic, subtopic, message, response, summary, timestamp
        FROM chat
        WHERE user_id = ? AND topic = ? AND subtopic = ?
        ORDER BY timestamp ASC, rowid ASC
    `
	rows, err := s.db.Query(query, userID, topic, subtopic)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat turns: %w", err)
	}
	defer rows.Close()

	var turns []ChatTurn
	for rows.Next() {
		var turn ChatTurn
		var message, summary sql.NullString
		if err := rows.Scan(&turn.UserID, &turn.Topic, &turn.Subtopic, &message, &turn.Response, &summary, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		turn.Message = message.String
		turn.Summary = summary.String
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// Community methods
func (s *SQLiteStore) CreateCommunityPost(post *CommunityPost) error {
	post.Timestamp = time.Now()

	_, err := s.db.Exec("INSERT INTO community (user_id, content, timestamp) VALUES (?, ?, ?)", post.UserID, post.Content, post.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert community post: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCommunityPosts() ([]CommunityPost, error) {
	rows, err := s.db.Query("SELECT user_id, content, timestamp FROM community ORDER BY timestamp DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query community posts: %w", err)
	}
	defer rows.Close()

	var posts []CommunityPost
	for rows.Next() {
		var post CommunityPost
		if err := rows.Scan(&post.UserID, &post.Content, &post.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan community row: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
