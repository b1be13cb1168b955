package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/matchstick/internal/llm"
	"github.com/robalobadob/matchstick/internal/puzzle"
)

type chatBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
}

func newClient(url string, opts llm.Options) *llm.Client {
	opts.BaseURL = url
	if opts.APIKey == "" {
		opts.APIKey = "test-key"
	}
	if opts.Model == "" {
		opts.Model = "test-model"
	}
	return llm.NewClient(http.DefaultClient, opts, zerolog.Nop())
}

func TestGenerate_Success(t *testing.T) {
	var got chatBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		reply(w, `{"originalEquation":"3+9=6","targetMoves":1,"hint":"Look at the 9."}`)
	}))
	defer srv.Close()

	pz, err := newClient(srv.URL+"/", llm.Options{}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, puzzle.Puzzle{Equation: "3+9=6", TargetMoves: 1, Hint: "Look at the 9."}, pz)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "matchstick puzzle generator")
}

func TestGenerate_CodeFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, "```json\n{\"originalEquation\":\"6+4=4\",\"targetMoves\":1,\"hint\":\"h\"}\n```")
	}))
	defer srv.Close()

	pz, err := newClient(srv.URL, llm.Options{}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6+4=4", pz.Equation)
}

func TestGenerate_RetryOnInvalidJSON(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			reply(w, "here is a puzzle: 6+4=4")
			return
		}
		var body chatBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Contains(t, body.Messages[1].Content, "not valid JSON")
		reply(w, `{"originalEquation":"6+4=4","targetMoves":1,"hint":"h"}`)
	}))
	defer srv.Close()

	pz, err := newClient(srv.URL, llm.Options{}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6+4=4", pz.Equation)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerate_InvalidJSONAfterRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, "not json")
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, llm.Options{}).Generate(context.Background())
	assert.ErrorIs(t, err, puzzle.ErrUpstream)
}

func TestGenerate_FallbackModel(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		models = append(models, body.Model)
		if body.Model == "primary" {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		reply(w, `{"originalEquation":"6+4=4","targetMoves":1,"hint":"h"}`)
	}))
	defer srv.Close()

	c := newClient(srv.URL, llm.Options{Model: "primary", FallbackModels: []string{"backup"}})
	_, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "backup"}, models)
}

func TestGenerate_ErrorClassification(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		c := llm.NewClient(nil, llm.Options{BaseURL: "http://127.0.0.1:1", Model: "m"}, zerolog.Nop())
		_, err := c.Generate(context.Background())
		assert.ErrorIs(t, err, puzzle.ErrNoCredentials)
		assert.Equal(t, puzzle.ReasonNoCredentials, puzzle.Reason(err))
	})

	t.Run("forbidden stops fallbacks", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		c := newClient(srv.URL, llm.Options{FallbackModels: []string{"a", "b"}})
		_, err := c.Generate(context.Background())
		assert.ErrorIs(t, err, puzzle.ErrPermissionDenied)
		assert.Equal(t, puzzle.ReasonPermissionDenied, puzzle.Reason(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := newClient(url, llm.Options{}).Generate(context.Background())
		assert.ErrorIs(t, err, puzzle.ErrUnavailable)
		assert.Equal(t, puzzle.ReasonUnavailable, puzzle.Reason(err))
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := newClient(srv.URL, llm.Options{}).Generate(context.Background())
		assert.ErrorIs(t, err, puzzle.ErrUpstream)
	})

	t.Run("upstream body stays out of the reason", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"internal trace id 42"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newClient(srv.URL, llm.Options{}).Generate(context.Background())
		require.ErrorIs(t, err, puzzle.ErrUpstream)
		assert.Contains(t, err.Error(), "trace id 42")
		assert.Equal(t, puzzle.ReasonUpstream, puzzle.Reason(err))
	})
}

func TestHint(t *testing.T) {
	var got chatBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply(w, "  Look closely at the first digit.  ")
	}))
	defer srv.Close()

	c := newClient(srv.URL, llm.Options{Language: "ko"})
	text, err := c.Hint(context.Background(), puzzle.HintRequest{Original: "6+4=4", Current: "?+4=4"})
	require.NoError(t, err)
	assert.Equal(t, "Look closely at the first digit.", text)

	require.Len(t, got.Messages, 2)
	user := got.Messages[1].Content
	assert.True(t, strings.HasPrefix(user, "Original: 6+4=4, Current User Board: ?+4=4, Goal: Make it valid math."))
	assert.Contains(t, user, "Language: Korean.")
}
