package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Failure classes returned by apiClient. Server-reported failures are *apiError.
var (
	errTransport = errors.New("transport failure")
	errDecode    = errors.New("undecodable response")
)

// apiClient handles HTTP communication with the game server.
type apiClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// newAPIClient creates a new API client with the given configuration.
func newAPIClient(cfg appConfig) (*apiClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &apiClient{
		baseURL:   u.String(),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.RequestTimeout},
	}
	if c.userAgent == "" {
		c.userAgent = defaultUA
	}
	return c, nil
}

// apiError represents an error reported by the server, either through a
// non-2xx status or an {"error": ...} payload.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %d", e.StatusCode)
}

// failureKind names the class of err for log lines.
func failureKind(err error) string {
	var ae *apiError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ae):
		return "server"
	case errors.Is(err, errTransport):
		return "transport"
	case errors.Is(err, errDecode):
		return "decode"
	default:
		return "request"
	}
}

// doJSON performs an HTTP request with an optional JSON body and decodes a
// 2xx response into out when out is non-nil. It returns the status code.
func (c *apiClient) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	reqURL := c.baseURL + path

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, buf)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	const maxResponseSize = 1 << 20
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read response: %w", errTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(b, &e)
		return resp.StatusCode, &apiError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return resp.StatusCode, fmt.Errorf("%w: empty response body", errDecode)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", errDecode, err)
	}
	return resp.StatusCode, nil
}

// createGameResponse is the POST /game body. Error is set instead of GameID
// when the server rejects the request.
type createGameResponse struct {
	GameID string `json:"game_id"`
	Error  string `json:"error"`
}

// createGame starts a new game on the server and returns its id.
func (c *apiClient) createGame(ctx context.Context) (string, error) {
	var out createGameResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/game", nil, &out)
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", &apiError{StatusCode: status, Message: out.Error}
	}
	if out.GameID == "" {
		return "", fmt.Errorf("%w: missing game_id", errDecode)
	}
	return out.GameID, nil
}

// guessRequest is the POST /guess body.
type guessRequest struct {
	GameID string `json:"game_id"`
	Guess  string `json:"guess"`
}

// guessResponse is the POST /guess reply. Pointers distinguish a zero count
// from an absent field.
type guessResponse struct {
	Black *int   `json:"black"`
	White *int   `json:"white"`
	Error string `json:"error"`
}

// submitGuess sends one guess for the given game and returns the feedback.
func (c *apiClient) submitGuess(ctx context.Context, gameID, guess string) (feedback, error) {
	var out guessResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/guess", guessRequest{GameID: gameID, Guess: guess}, &out)
	if err != nil {
		return feedback{}, err
	}
	if out.Error != "" {
		return feedback{}, &apiError{StatusCode: status, Message: out.Error}
	}
	if out.Black == nil || out.White == nil {
		return feedback{}, fmt.Errorf("%w: missing black/white", errDecode)
	}
	return feedback{Black: *out.Black, White: *out.White}, nil
}

// deleteGame removes the game on the server. Only 204 No Content counts as
// success; any other outcome is returned as an error.
func (c *apiClient) deleteGame(ctx context.Context, gameID string) error {
	status, err := c.doJSON(ctx, http.MethodDelete, "/game/"+url.PathEscape(gameID), nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &apiError{StatusCode: status, Message: "unexpected status"}
	}
	return nil
}
