package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama stands in for a local Ollama server.
type fakeOllama struct {
	tagsCalls  atomic.Int32
	chatStatus int
	reply      string
	streamed   []string
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		f.tagsCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if f.chatStatus != 0 && f.chatStatus != http.StatusOK {
			http.Error(w, "model not found", f.chatStatus)
			return
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		enc := json.NewEncoder(w)
		if !req.Stream {
			enc.Encode(ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: f.reply}})
			return
		}
		for _, delta := range f.streamed {
			enc.Encode(ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: delta}})
		}
		enc.Encode(ollamaChatResponse{Done: true})
	})
	return mux
}

func testProvider(t *testing.T, f *fakeOllama) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	return NewOllamaProvider(Config{Host: server.URL, Model: "test-model", Timeout: 5})
}

func TestOllamaAvailable(t *testing.T) {
	t.Run("probe result is cached", func(t *testing.T) {
		fake := &fakeOllama{}
		p := testProvider(t, fake)

		ctx := context.Background()
		assert.True(t, p.Available(ctx))
		assert.True(t, p.Available(ctx))
		assert.Equal(t, int32(1), fake.tagsCalls.Load())
	})

	t.Run("reset forces a new probe", func(t *testing.T) {
		fake := &fakeOllama{}
		p := testProvider(t, fake)

		ctx := context.Background()
		p.Available(ctx)
		p.ResetAvailability()
		p.Available(ctx)
		assert.Equal(t, int32(2), fake.tagsCalls.Load())
	})

	t.Run("unreachable server", func(t *testing.T) {
		p := NewOllamaProvider(Config{Host: "http://127.0.0.1:1", Model: "m", Timeout: 1})
		assert.False(t, p.Available(context.Background()))
	})
}

func TestOllamaGenerate(t *testing.T) {
	t.Run("returns response content", func(t *testing.T) {
		p := testProvider(t, &fakeOllama{reply: "Aria Moonwhisper"})

		got, err := p.Generate(context.Background(), "you are a helper", "suggest a name")
		require.NoError(t, err)
		assert.Equal(t, "Aria Moonwhisper", got)
	})

	t.Run("non-200 maps to API error", func(t *testing.T) {
		p := testProvider(t, &fakeOllama{chatStatus: http.StatusNotFound})

		_, err := p.Generate(context.Background(), "", "hello")
		assert.ErrorIs(t, err, ErrAPIError)
	})

	t.Run("unreachable server yields UnavailableError", func(t *testing.T) {
		p := NewOllamaProvider(Config{Host: "http://127.0.0.1:1", Model: "m", Timeout: 1})

		_, err := p.Generate(context.Background(), "", "hello")
		var unavail *UnavailableError
		assert.ErrorAs(t, err, &unavail)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestOllamaStream(t *testing.T) {
	t.Run("delivers deltas then done", func(t *testing.T) {
		p := testProvider(t, &fakeOllama{streamed: []string{"Once", " upon", " a time"}})

		chunks, err := p.Stream(context.Background(), "", "tell a story")
		require.NoError(t, err)

		var got string
		done := false
		for chunk := range chunks {
			require.NoError(t, chunk.Err)
			got += chunk.Delta
			done = chunk.Done
		}
		assert.Equal(t, "Once upon a time", got)
		assert.True(t, done)
	})

	t.Run("abandoned stream exits after cancel", func(t *testing.T) {
		deltas := make([]string, 300)
		for i := range deltas {
			deltas[i] = "chunk"
		}
		p := testProvider(t, &fakeOllama{streamed: deltas})

		before := runtime.NumGoroutine()
		ctx, cancel := context.WithCancel(context.Background())
		_, err := p.Stream(ctx, "", "x")
		require.NoError(t, err)

		// The consumer walks away without reading a single chunk.
		cancel()
		assert.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= before+2
		}, 5*time.Second, 20*time.Millisecond, "stream goroutine must exit without a consumer")
	})

	t.Run("channel closes after done", func(t *testing.T) {
		p := testProvider(t, &fakeOllama{streamed: []string{"hi"}})

		chunks, err := p.Stream(context.Background(), "", "x")
		require.NoError(t, err)

		deadline := time.After(5 * time.Second)
		for {
			select {
			case _, ok := <-chunks:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("stream channel never closed")
			}
		}
	})
}
