package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"happiness.app/happiness-creator/internal/store"
)

type completerCall struct {
	SystemPrompt string
	History      []Turn
	Input        string
}

// fakeCompleter answers with "reply N" and records every call.
type fakeCompleter struct {
	mu    sync.Mutex
	calls []completerCall
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt string, history []Turn, input string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, completerCall{SystemPrompt: systemPrompt, History: append([]Turn(nil), history...), Input: input})
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("reply %d", len(f.calls)), nil
}

func (f *fakeCompleter) Calls() []completerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completerCall(nil), f.calls...)
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
