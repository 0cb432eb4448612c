package core

import (
	"fmt"
	"strings"

	"happiness.app/happiness-creator/internal/metrics"
	"happiness.app/happiness-creator/internal/store"
	"happiness.app/happiness-creator/internal/utils"
)

type CommunityService struct {
	dbStore *store.SQLiteStore
	metrics *metrics.Metrics
}

func NewCommunityService(db *store.SQLiteStore, m *metrics.Metrics) *CommunityService {
	return &CommunityService{dbStore: db, metrics: m}
}

func (s *CommunityService) Post(userID, content string) (*store.CommunityPost, error) {
	if utils.IsBlank(content) {
		return nil, ErrEmptyMessage
	}
	post := store.CommunityPost{UserID: userID, Content: strings.TrimSpace(content)}
	if err := s.dbStore.CreateCommunityPost(&post); err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}
	s.metrics.CommunityPosts.Inc()
	return &post, nil
}

func (s *CommunityService) Posts() ([]store.CommunityPost, error) {
	return s.dbStore.GetCommunityPosts()
}
