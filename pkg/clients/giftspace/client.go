package giftspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ClientInterface defines the operations exposed by the giftspace API.
type ClientInterface interface {
	// Auth operations
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context) (*User, error)

	// Registry operations
	CreateRegistry(ctx context.Context, req *CreateRegistryRequest) (*Registry, error)
	UpdateRegistry(ctx context.Context, registryID string, req *UpdateRegistryRequest) (*Registry, error)
	GetRegistry(ctx context.Context, registryID string) (*Registry, error)
	GetPublicRegistry(ctx context.Context, slug string) (*PublicRegistryResponse, error)

	// Fund operations
	BulkUpsertFunds(ctx context.Context, registryID string, funds []Fund) (*BulkUpsertFundsResponse, error)
	ListFunds(ctx context.Context, registryID string) ([]Fund, error)

	// Contribution operations
	CreateContribution(ctx context.Context, req *CreateContributionRequest) (*Contribution, error)
	ListContributions(ctx context.Context, fundID string) ([]Contribution, error)
	GetAnalytics(ctx context.Context, registryID string) (*RegistryAnalytics, error)
	ExportContributionsCSV(ctx context.Context, registryID string) ([]byte, error)

	// Collaborator operations
	AddCollaborator(ctx context.Context, registryID, email string) (*Registry, error)
	RemoveCollaborator(ctx context.Context, registryID, userID string) (*Registry, error)

	// Chunked upload operations
	InitiateUpload(ctx context.Context, req *InitiateUploadRequest) (*InitiateUploadResponse, error)
	UploadChunk(ctx context.Context, uploadID string, index int64, chunk []byte) (*UploadChunkResponse, error)
	CompleteUpload(ctx context.Context, uploadID string) (*CompleteUploadResponse, error)
}

// Client provides a high-level interface for interacting with the giftspace API.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new giftspace client with the given options.
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// SetToken replaces the bearer token used for authenticated requests, e.g.
// after a login through the same client.
func (c *Client) SetToken(token string) {
	c.config.Token = token
}

// BaseURL returns the configured API origin. Relative file paths returned by
// CompleteUpload must be prefixed with it to obtain a fetchable URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, "POST", "/api/auth/register", req)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	var result AuthResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process register response: %w", err)
	}

	return &result, nil
}

func (c *Client) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, "POST", "/api/auth/login", req)
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	var result AuthResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process login response: %w", err)
	}

	return &result, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	var result User
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process current user response: %w", err)
	}

	return &result, nil
}

// CreateRegistry creates a registry. The server may normalize the slug; the
// returned record carries the authoritative value.
func (c *Client) CreateRegistry(ctx context.Context, req *CreateRegistryRequest) (*Registry, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	resp, err := c.doRequest(ctx, "POST", "/api/registries", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	var result Registry
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process create registry response: %w", err)
	}

	return &result, nil
}

// UpdateRegistry replaces the listed fields of an existing registry.
func (c *Client) UpdateRegistry(ctx context.Context, registryID string, req *UpdateRegistryRequest) (*Registry, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s", registryID)

	resp, err := c.doRequest(ctx, "PUT", path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update registry: %w", err)
	}

	var result Registry
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process update registry response: %w", err)
	}

	return &result, nil
}

func (c *Client) GetRegistry(ctx context.Context, registryID string) (*Registry, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s", registryID)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}

	var result Registry
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process get registry response: %w", err)
	}

	return &result, nil
}

// GetPublicRegistry retrieves the guest-facing view of a registry by slug.
// No bearer token is required.
func (c *Client) GetPublicRegistry(ctx context.Context, slug string) (*PublicRegistryResponse, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}

	path := fmt.Sprintf("/api/registries/%s/public", url.PathEscape(slug))

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get public registry: %w", err)
	}

	var result PublicRegistryResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process public registry response: %w", err)
	}

	return &result, nil
}

// BulkUpsertFunds replaces or inserts the full fund collection of a registry
// in a single request.
func (c *Client) BulkUpsertFunds(ctx context.Context, registryID string, funds []Fund) (*BulkUpsertFundsResponse, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s/funds/bulk_upsert", registryID)

	resp, err := c.doRequest(ctx, "POST", path, &BulkUpsertFundsRequest{Funds: funds})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk upsert funds: %w", err)
	}

	var result BulkUpsertFundsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process bulk upsert response: %w", err)
	}

	return &result, nil
}

func (c *Client) ListFunds(ctx context.Context, registryID string) ([]Fund, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s/funds", registryID)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	var result []Fund
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process list funds response: %w", err)
	}

	return result, nil
}

func (c *Client) CreateContribution(ctx context.Context, req *CreateContributionRequest) (*Contribution, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	resp, err := c.doRequest(ctx, "POST", "/api/contributions", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create contribution: %w", err)
	}

	var result Contribution
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process create contribution response: %w", err)
	}

	return &result, nil
}

func (c *Client) ListContributions(ctx context.Context, fundID string) ([]Contribution, error) {
	if fundID == "" {
		return nil, fmt.Errorf("fund ID is required")
	}

	path := fmt.Sprintf("/api/funds/%s/contributions", fundID)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}

	var result []Contribution
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process list contributions response: %w", err)
	}

	return result, nil
}

func (c *Client) GetAnalytics(ctx context.Context, registryID string) (*RegistryAnalytics, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s/analytics", registryID)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}

	var result RegistryAnalytics
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process analytics response: %w", err)
	}

	return &result, nil
}

// ExportContributionsCSV returns the raw CSV export of a registry's
// contributions.
func (c *Client) ExportContributionsCSV(ctx context.Context, registryID string) ([]byte, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s/contributions/export", registryID)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to export contributions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("export contributions failed with status %d", resp.StatusCode),
			Body:       string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	return body, nil
}

func (c *Client) AddCollaborator(ctx context.Context, registryID, email string) (*Registry, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	path := fmt.Sprintf("/api/registries/%s/collaborators", registryID)

	resp, err := c.doRequest(ctx, "POST", path, &AddCollaboratorRequest{Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	var result Registry
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process add collaborator response: %w", err)
	}

	return &result, nil
}

func (c *Client) RemoveCollaborator(ctx context.Context, registryID, userID string) (*Registry, error) {
	if registryID == "" {
		return nil, fmt.Errorf("registry ID is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	path := fmt.Sprintf("/api/registries/%s/collaborators/%s", registryID, userID)

	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to remove collaborator: %w", err)
	}

	var result Registry
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process remove collaborator response: %w", err)
	}

	return &result, nil
}

// InitiateUpload opens a chunked upload session scoped to a registry.
func (c *Client) InitiateUpload(ctx context.Context, req *InitiateUploadRequest) (*InitiateUploadResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	resp, err := c.doRequest(ctx, "POST", "/api/uploads/initiate", req)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate upload: %w", err)
	}

	var result InitiateUploadResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process initiate upload response: %w", err)
	}

	return &result, nil
}

// UploadChunk sends one chunk as a multipart form part. Chunk sends are never
// retried: a replayed chunk would be rejected as out of sequence.
func (c *Client) UploadChunk(ctx context.Context, uploadID string, index int64, chunk []byte) (*UploadChunkResponse, error) {
	if uploadID == "" {
		return nil, fmt.Errorf("upload ID is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("upload_id", uploadID); err != nil {
		return nil, fmt.Errorf("failed to write upload_id field: %w", err)
	}
	if err := writer.WriteField("index", strconv.FormatInt(index, 10)); err != nil {
		return nil, fmt.Errorf("failed to write index field: %w", err)
	}

	part, err := writer.CreateFormFile("chunk", fmt.Sprintf("%s.part", uploadID))
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk part: %w", err)
	}
	if _, err := part.Write(chunk); err != nil {
		return nil, fmt.Errorf("failed to write chunk data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/uploads/chunk", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send chunk %d: %w", index, err)
	}

	var result UploadChunkResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process chunk response: %w", err)
	}

	return &result, nil
}

// CompleteUpload finalizes a session into a stored object and returns its
// relative URL path.
func (c *Client) CompleteUpload(ctx context.Context, uploadID string) (*CompleteUploadResponse, error) {
	if uploadID == "" {
		return nil, fmt.Errorf("upload ID is required")
	}

	body := map[string]string{"upload_id": uploadID}

	resp, err := c.doRequest(ctx, "POST", "/api/uploads/complete", body)
	if err != nil {
		return nil, fmt.Errorf("failed to complete upload: %w", err)
	}

	var result CompleteUploadResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process complete upload response: %w", err)
	}

	return &result, nil
}

func (c *Client) applyAuth(req *http.Request) {
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
}

// doRequest performs a JSON HTTP request with retry on server errors.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyBytes []byte
	var requestBody io.Reader

	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		requestBody = bytes.NewBuffer(bodyBytes)
	}

	url := c.config.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
			if bodyBytes != nil {
				requestBody = bytes.NewBuffer(bodyBytes)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range c.config.DefaultHeaders {
			req.Header.Set(key, value)
		}

		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}

		c.applyAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			log.Error().
				Int("status_code", resp.StatusCode).
				Str("path", path).
				Str("request_id", resp.Header.Get("X-Request-ID")).
				Msg("server error")

			resp.Body.Close()
			lastErr = &Error{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

// handleResponse processes the HTTP response and unmarshals JSON if successful.
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResponse struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}

		if json.Unmarshal(body, &errorResponse) == nil && errorResponse.Error != "" {
			return &Error{
				StatusCode: resp.StatusCode,
				Message:    errorResponse.Error,
				Body:       string(body),
				RequestID:  resp.Header.Get("X-Request-ID"),
			}
		}

		if json.Unmarshal(body, &errorResponse) == nil && errorResponse.Message != "" {
			return &Error{
				StatusCode: resp.StatusCode,
				Message:    errorResponse.Message,
				Body:       string(body),
				RequestID:  resp.Header.Get("X-Request-ID"),
			}
		}

		return &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			Body:       string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
