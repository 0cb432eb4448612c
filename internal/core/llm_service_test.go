package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"happiness.app/happiness-creator/internal/metrics"
)

func newTestLLMService(opts LLMOptions, send sendFunc) *LLMService {
	s := newLLMService(opts, metrics.NewNop())
	s.backoff = time.Millisecond
	s.send = send
	return s
}

func TestCompleteBuildsAlternatingHistory(t *testing.T) {
	var gotHistory []*genai.Content
	var gotInput, gotPrompt string
	s := newTestLLMService(LLMOptions{}, func(_ context.Context, prompt string, history []*genai.Content, input string) (string, error) {
		gotPrompt, gotHistory, gotInput = prompt, history, input
		return "antwort", nil
	})

	reply, err := s.Complete(context.Background(), "persona", []Turn{
		{Message: "", Response: "opener"},
		{Message: "hallo", Response: "hi"},
	}, "wie geht's?")
	require.NoError(t, err)
	assert.Equal(t, "antwort", reply)
	assert.Equal(t, "persona", gotPrompt)
	assert.Equal(t, "wie geht's?", gotInput)

	require.Len(t, gotHistory, 4)
	roles := []string{gotHistory[0].Role, gotHistory[1].Role, gotHistory[2].Role, gotHistory[3].Role}
	assert.Equal(t, []string{"user", "model", "user", "model"}, roles)
	assert.Equal(t, genai.Text(openerCue), gotHistory[0].Parts[0])
	assert.Equal(t, genai.Text("opener"), gotHistory[1].Parts[0])
	assert.Equal(t, genai.Text("hallo"), gotHistory[2].Parts[0])
}

func TestCompleteSendsCueForEmptyInput(t *testing.T) {
	var gotInput string
	s := newTestLLMService(LLMOptions{}, func(_ context.Context, _ string, _ []*genai.Content, input string) (string, error) {
		gotInput = input
		return "willkommen", nil
	})

	_, err := s.Complete(context.Background(), "persona", nil, "")
	require.NoError(t, err)
	assert.Equal(t, openerCue, gotInput)
}

func TestCompleteRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	s := newTestLLMService(LLMOptions{MaxRetries: 2}, func(context.Context, string, []*genai.Content, string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("temporary")
		}
		return "ok", nil
	})

	reply, err := s.Complete(context.Background(), "persona", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.LLMRequests.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.LLMRequests.WithLabelValues("success")))
}

func TestCompleteGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	s := newTestLLMService(LLMOptions{MaxRetries: 1}, func(context.Context, string, []*genai.Content, string) (string, error) {
		attempts++
		return "", errors.New("unauthorized")
	})

	_, err := s.Complete(context.Background(), "persona", nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
	assert.Equal(t, 2, attempts)
}

func TestCompleteAppliesTimeoutPerAttempt(t *testing.T) {
	s := newTestLLMService(LLMOptions{Timeout: 10 * time.Millisecond}, func(ctx context.Context, _ string, _ []*genai.Content, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := s.Complete(context.Background(), "persona", nil, "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestLLMService(LLMOptions{MaxRetries: 5}, func(context.Context, string, []*genai.Content, string) (string, error) {
		cancel()
		return "", errors.New("boom")
	})

	_, err := s.Complete(ctx, "persona", nil, "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, errEmptyResponse)

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hallo "), genai.Text("Freund")}},
	}}}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hallo Freund", text)

	blank := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}},
	}}}
	_, err = responseText(blank)
	assert.ErrorIs(t, err, errEmptyResponse)
}
