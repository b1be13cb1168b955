// internal/llm/client.go
//
// Client for an OpenAI-compatible chat-completions service.
// Responsibilities:
//   - Generate: ask for a one-move matchstick puzzle as a JSON object, with
//     one corrective retry when the reply is not valid JSON.
//   - Hint: ask for a short progressive hint for a board in progress.
//   - Try the primary model, then each fallback model in order.
//   - Classify failures into the puzzle package's sentinel errors so the
//     provider can report a degraded-mode reason.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/matchstick/internal/puzzle"
)

// Options configures a Client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	FallbackModels []string
	Language       string // BCP 47 code for hint text; "" or "en" means English
}

// Client implements puzzle.Generator and puzzle.Hinter.
type Client struct {
	httpClient *http.Client
	opts       Options
	logger     zerolog.Logger
}

var (
	_ puzzle.Generator = (*Client)(nil)
	_ puzzle.Hinter    = (*Client)(nil)
)

func NewClient(httpClient *http.Client, opts Options, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		httpClient: httpClient,
		opts:       opts,
		logger:     logger.With().Str("component", "llm").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate returns a puzzle exactly as the model described it. Vetting is
// the caller's job (see puzzle.Vet).
func (c *Client) Generate(ctx context.Context) (puzzle.Puzzle, error) {
	var out puzzle.Puzzle
	err := c.eachModel(ctx, func(model string) error {
		pz, err := c.generateWithModel(ctx, model)
		if err == nil {
			out = pz
		}
		return err
	})
	return out, err
}

func (c *Client) generateWithModel(ctx context.Context, model string) (puzzle.Puzzle, error) {
	content, err := c.callLLM(ctx, model, generatorPrompt, "Generate a new matchstick puzzle.")
	if err != nil {
		return puzzle.Puzzle{}, err
	}

	var pz puzzle.Puzzle
	if err := json.Unmarshal([]byte(stripFences(content)), &pz); err != nil {
		c.logger.Warn().Str("model", model).Err(err).Msg("model returned invalid JSON, retrying")
		content, err = c.callLLM(ctx, model, generatorPrompt, retryPrompt(content))
		if err != nil {
			return puzzle.Puzzle{}, err
		}
		if err := json.Unmarshal([]byte(stripFences(content)), &pz); err != nil {
			return puzzle.Puzzle{}, fmt.Errorf("%w: invalid JSON after retry: %w", puzzle.ErrUpstream, err)
		}
	}
	pz.Error = ""
	return pz, nil
}

// Hint returns a short hint in the configured language.
func (c *Client) Hint(ctx context.Context, req puzzle.HintRequest) (string, error) {
	var out string
	err := c.eachModel(ctx, func(model string) error {
		text, err := c.callLLM(ctx, model, hintSystemPrompt, hintUserPrompt(req, c.opts.Language))
		if err == nil {
			out = text
		}
		return err
	})
	return out, err
}

// eachModel runs fn for the primary model and then each fallback until one
// succeeds. Credential failures stop the loop since every model shares the key.
func (c *Client) eachModel(ctx context.Context, fn func(model string) error) error {
	if c.opts.APIKey == "" {
		return puzzle.ErrNoCredentials
	}
	models := make([]string, 0, 1+len(c.opts.FallbackModels))
	models = append(models, c.opts.Model)
	models = append(models, c.opts.FallbackModels...)

	var lastErr error
	for _, model := range models {
		err := fn(model)
		if err == nil {
			return nil
		}
		lastErr = err
		if isCredentialError(err) || ctx.Err() != nil {
			break
		}
		if len(models) > 1 {
			c.logger.Warn().Str("model", model).Err(err).Msg("model failed, trying next")
		}
	}
	return lastErr
}

func (c *Client) callLLM(ctx context.Context, model, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", puzzle.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", puzzle.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d", puzzle.ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d: %s", puzzle.ErrUpstream, resp.StatusCode, truncate(string(respBody), 200))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", puzzle.ErrUpstream, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", puzzle.ErrUpstream)
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func isCredentialError(err error) bool {
	return errors.Is(err, puzzle.ErrPermissionDenied) || errors.Is(err, puzzle.ErrNoCredentials)
}

// stripFences removes a surrounding ``` or ```json block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
