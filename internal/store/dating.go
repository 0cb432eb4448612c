package store

import (
	"database/sql"
	"fmt"
	"time"
)

// UpsertDatingProfile replaces any existing profile of the same user.
// Concurrent writers race; the last one wins.
func (s *SQLiteStore) UpsertDatingProfile(profile *DatingProfile) error {
	profile.Timestamp = time.Now()

	stmt, err := s.db.Prepare("INSERT OR REPLACE INTO dating (user_id, name, interesse, beschreibung, image_path, timestamp) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare dating upsert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(profile.UserID, profile.Name, profile.Interest, profile.Description, profile.ImagePath, profile.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to execute dating upsert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDatingProfile(userID string) (*DatingProfile, error) {
	row := s.db.QueryRow("SELECT user_id, name, interesse, beschreibung, image_path, timestamp FROM dating WHERE user_id = ?", userID)
	profile, err := scanDatingProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get dating profile: %w", err)
	}
	return profile, nil
}

// GetOtherDatingProfiles lists up to limit profiles not owned by userID,
// newest first.
func (s *SQLiteStore) GetOtherDatingProfiles(userID string, limit int) ([]DatingProfile, error) {
	query := `
        SELECT user_id, name, interesse, beschreibung, image_path, timestamp
        FROM dating
        WHERE user_id != ?
        ORDER BY timestamp DESC, rowid DESC
        LIMIT ?
    `
	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dating profiles: %w", err)
	}
	defer rows.Close()

	var profiles []DatingProfile
	for rows.Next() {
		profile, err := scanDatingProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dating row: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func scanDatingProfile(row rowScanner) (*DatingProfile, error) {
	var profile DatingProfile
	var description, imagePath sql.NullString
	if err := row.Scan(&profile.UserID, &profile.Name, &profile.Interest, &description, &imagePath, &profile.Timestamp); err != nil {
		return nil, err
	}
	profile.Description = description.String
	if imagePath.Valid {
		profile.ImagePath = &imagePath.String
	}
	return &profile, nil
}
