package core

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"happiness.app/happiness-creator/internal/metrics"
	"happiness.app/happiness-creator/internal/store"
	"happiness.app/happiness-creator/internal/utils"
)

const summaryLength = 100

var ErrEmptyMessage = errors.New("message is empty")

type ChatService struct {
	dbStore    *store.SQLiteStore
	llmService Completer
	catalogue  *Catalogue
	metrics    *metrics.Metrics
	openers    singleflight.Group
}

func NewChatService(db *store.SQLiteStore, llm Completer, catalogue *Catalogue, m *metrics.Metrics) *ChatService {
	return &ChatService{
		dbStore:    db,
		llmService: llm,
		catalogue:  catalogue,
		metrics:    m,
	}
}

func (s *ChatService) Catalogue() *Catalogue {
	return s.catalogue
}

// LoadConversation returns the transcript for (userID, topic, subtopic),
// oldest turn first. An empty conversation is opened by the model before it
// is returned, so the result always holds at least one turn.
func (s *ChatService) LoadConversation(ctx context.Context, userID, topic, subtopic string) ([]store.ChatTurn, error) {
	turns, err := s.dbStore.GetChatTurns(userID, topic, subtopic)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if len(turns) > 0 {
		return turns, nil
	}

	// Concurrent first renders of the same conversation share one opener.
	key := userID + "\x00" + topic + "\x00" + subtopic
	_, err, _ = s.openers.Do(key, func() (interface{}, error) {
		existing, err := s.dbStore.GetChatTurns(userID, topic, subtopic)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, nil
		}
		return nil, s.createOpener(ctx, userID, topic, subtopic)
	})
	if err != nil {
		return nil, err
	}

	turns, err = s.dbStore.GetChatTurns(userID, topic, subtopic)
	if err != nil {
		return nil, fmt.Errorf("failed to reload conversation: %w", err)
	}
	return turns, nil
}

func (s *ChatService) createOpener(ctx context.Context, userID, topic, subtopic string) error {
	log.WithFields(log.Fields{"user": userID, "topic": topic, "subtopic": subtopic}).Debug("Generating conversation opener")

	opener, err := s.llmService.Complete(ctx, SystemPrompt(topic, subtopic), nil, "")
	if err != nil {
		return fmt.Errorf("failed to generate opener: %w", err)
	}

	turn := store.ChatTurn{
		UserID:   userID,
		Topic:    topic,
		Subtopic: subtopic,
		Message:  "",
		Response: opener,
		Summary:  utils.Summarize(opener, summaryLength),
	}
	if err := s.dbStore.CreateChatTurn(&turn); err != nil {
		return fmt.Errorf("failed to store opener: %w", err)
	}
	s.metrics.ChatTurns.WithLabelValues("opener").Inc()
	return nil
}

// PostMessage replays the stored transcript to the model, appends input and
// persists the reply as a new turn.
func (s *ChatService) PostMessage(ctx context.Context, userID, topic, subtopic, input string) (*store.ChatTurn, error) {
	if utils.IsBlank(input) {
		return nil, ErrEmptyMessage
	}

	stored, err := s.dbStore.GetChatTurns(userID, topic, subtopic)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	history := make([]Turn, 0, len(stored))
	for _, t := range stored {
		history = append(history, Turn{Message: t.Message, Response: t.Response})
	}

	reply, err := s.llmService.Complete(ctx, SystemPrompt(topic, subtopic), history, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get model reply: %w", err)
	}

	turn := store.ChatTurn{
		UserID:   userID,
		Topic:    topic,
		Subtopic: subtopic,
		Message:  input,
		Response: reply,
		Summary:  utils.Summarize(reply, summaryLength),
	}
	if err := s.dbStore.CreateChatTurn(&turn); err != nil {
		return nil, fmt.Errorf("failed to store chat turn: %w", err)
	}
	s.metrics.ChatTurns.WithLabelValues("reply").Inc()
	return &turn, nil
}
