package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"happiness.app/happiness-creator/internal/metrics"
)

const (
	defaultChatModelName = "gemini-1.5-flash-latest"

	roleUser  = "user"
	roleModel = "model"
)

var errEmptyResponse = errors.New("model returned no text")

// Turn is one user message / model reply pair replayed to the model.
type Turn struct {
	Message  string
	Response string
}

// Completer produces a single model reply for a system prompt, the prior
// turns of a conversation and a new user input.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []Turn, input string) (string, error)
}

type LLMOptions struct {
	APIKey            string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

type sendFunc func(ctx context.Context, systemPrompt string, history []*genai.Content, input string) (string, error)

type LLMService struct {
	client     *genai.Client
	send       sendFunc
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	metrics    *metrics.Metrics
}

func NewLLMService(ctx context.Context, opts LLMOptions, m *metrics.Metrics) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = defaultChatModelName
	}

	s := newLLMService(opts, m)
	s.client = client
	s.send = func(ctx context.Context, systemPrompt string, history []*genai.Content, input string) (string, error) {
		model := client.GenerativeModel(modelName)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}

		chatSession := model.StartChat()
		chatSession.History = history

		resp, err := chatSession.SendMessage(ctx, genai.Text(input))
		if err != nil {
			return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
		}
		return responseText(resp)
	}
	return s, nil
}

func newLLMService(opts LLMOptions, m *metrics.Metrics) *LLMService {
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &LLMService{
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    opts.Timeout,
		maxRetries: maxRetries,
		backoff:    500 * time.Millisecond,
		metrics:    m,
	}
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

// Complete replays history as alternating user/model contents and sends
// input as the next user message. Each attempt is rate limited and bounded by
// the configured timeout; failed attempts are retried with linear backoff.
func (s *LLMService) Complete(ctx context.Context, systemPrompt string, history []Turn, input string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)*2)
	for _, turn := range history {
		contents = append(contents,
			&genai.Content{Role: roleUser, Parts: []genai.Part{genai.Text(wireMessage(turn.Message))}},
			&genai.Content{Role: roleModel, Parts: []genai.Part{genai.Text(turn.Response)}},
		)
	}

	start := time.Now()
	defer func() {
		s.metrics.LLMRequestLength.Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		reply, err := s.attempt(ctx, systemPrompt, contents, wireMessage(input))
		if err == nil {
			s.metrics.LLMRequests.WithLabelValues("success").Inc()
			return reply, nil
		}
		lastErr = err
		s.metrics.LLMRequests.WithLabelValues("error").Inc()
		log.WithFields(log.Fields{"attempt": attempt + 1, "error": err}).Warn("Model call failed")
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

func (s *LLMService) attempt(ctx context.Context, systemPrompt string, history []*genai.Content, input string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.send(ctx, systemPrompt, history, input)
}

func wireMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return openerCue
	}
	return msg
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", errEmptyResponse
	}
	return text.String(), nil
}
