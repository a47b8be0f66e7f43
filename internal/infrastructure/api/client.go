// Package api provides the HTTP client for backend communication
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cookchat/cookchat/internal/domain/recipe"
	"github.com/cookchat/cookchat/internal/infrastructure/config"
	"github.com/cookchat/cookchat/pkg/errors"
	"go.uber.org/zap"
)

// Client handles communication with the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client instance
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.API.Timeout,
		},
		logger: logger.Named("api-client"),
	}
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents login response
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AgentRequest represents the recipe agent run payload
type AgentRequest struct {
	Input string `json:"input"`
}

// Login authenticates a user and returns the opaque token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.post(ctx, "/auth/login", "", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.NewRequestFailedError("unexpected login response", err)
	}
	if resp.Token == "" {
		return "", errors.NewRequestFailedError("login response carried no token", nil)
	}

	return resp.Token, nil
}

// Register creates a new account; the backend answers with plain text
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	body, err := c.post(ctx, "/auth/register", "", RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// FetchIdentity returns the plain-text greeting for the token's user
func (c *Client) FetchIdentity(ctx context.Context, token string) (string, error) {
	body, err := c.get(ctx, "/user/me", token)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// RunAgent submits free-text input to the recipe agent. The response is
// plain text: either a conversational reply or an opaque set id.
func (c *Client) RunAgent(ctx context.Context, token, input string) (string, error) {
	body, err := c.post(ctx, "/api/recipe_agent/run", token, AgentRequest{Input: input})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// FetchRecipeSet returns the recipes of a generated set.
// The path segment is misspelled on the backend; it is part of the wire
// contract.
func (c *Client) FetchRecipeSet(ctx context.Context, token, setID string) ([]recipe.Recipe, error) {
	body, err := c.get(ctx, "/recpies/"+url.PathEscape(setID), token)
	if err != nil {
		return nil, err
	}

	var recipes []recipe.Recipe
	if err := json.Unmarshal(body, &recipes); err != nil {
		return nil, errors.NewRequestFailedError("unexpected recipe set response", err)
	}
	return recipes, nil
}

// FetchRecipeByTitle returns a single recipe of a set by exact title
func (c *Client) FetchRecipeByTitle(ctx context.Context, token, setID, title string) (recipe.Recipe, error) {
	path := "/recpies/set/" + url.PathEscape(setID) + "/title/" + url.PathEscape(title)
	body, err := c.get(ctx, path, token)
	if err != nil {
		return recipe.Recipe{}, err
	}

	var r recipe.Recipe
	if err := json.Unmarshal(body, &r); err != nil {
		return recipe.Recipe{}, errors.NewRequestFailedError("unexpected recipe response", err)
	}
	return r, nil
}

// Helper methods

func (c *Client) post(ctx context.Context, path, token string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, token)
}

func (c *Client) get(ctx context.Context, path, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, token)
}

func (c *Client) doRequest(req *http.Request, token string) ([]byte, error) {
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewRequestFailedError("backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewRequestFailedError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := errorReason(resp, body)
		c.logger.Error("API error response",
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason),
		)
		return nil, errors.NewRequestFailedError(reason, nil)
	}

	return body, nil
}

// errorReason resolves the failure reason of a non-2xx response in
// priority order: JSON body field ("message" or "error"), else plain-text
// body, else transport status text.
func errorReason(resp *http.Response, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("HTTP error %d", resp.StatusCode)
}
