package core

import (
	"fmt"

	"happiness.app/happiness-creator/internal/auth"
	"happiness.app/happiness-creator/internal/store"
)

type UserService struct {
	dbStore *store.SQLiteStore
}

func NewUserService(db *store.SQLiteStore) *UserService {
	return &UserService{dbStore: db}
}

// Login resolves the identity of displayName and records the user on first
// sight. Repeated logins with the same name are idempotent.
func (s *UserService) Login(displayName string) (*store.User, error) {
	id, err := auth.IdentityFor(displayName)
	if err != nil {
		return nil, err
	}
	if err := s.dbStore.EnsureUser(id, displayName); err != nil {
		return nil, fmt.Errorf("failed to record user: %w", err)
	}
	return &store.User{ID: id, Name: displayName}, nil
}

func (s *UserService) GetUser(id string) (*store.User, error) {
	return s.dbStore.GetUserByID(id)
}
