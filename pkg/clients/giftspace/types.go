// Package giftspace provides a Go SDK for interacting with the giftspace API.
// This package has no dependencies on server internals.
package giftspace

import "time"

// Registry is a cash-registry page as returned by the API.
type Registry struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	CoupleNames   string    `json:"couple_names"`
	EventDate     string    `json:"event_date"`
	Location      string    `json:"location"`
	Currency      string    `json:"currency"`
	HeroImage     string    `json:"hero_image"`
	Slug          string    `json:"slug"`
	Theme         string    `json:"theme"`
	Collaborators []string  `json:"collaborators"`
	Locked        bool      `json:"locked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateRegistryRequest creates a registry. The server normalizes the slug;
// callers must adopt the returned value.
type CreateRegistryRequest struct {
	CoupleNames string `json:"couple_names"`
	EventDate   string `json:"event_date,omitempty"`
	Location    string `json:"location,omitempty"`
	Currency    string `json:"currency,omitempty"`
	HeroImage   string `json:"hero_image,omitempty"`
	Slug        string `json:"slug"`
	Theme       string `json:"theme,omitempty"`
}

// UpdateRegistryRequest replaces the listed registry fields.
type UpdateRegistryRequest struct {
	CoupleNames string `json:"couple_names"`
	EventDate   string `json:"event_date,omitempty"`
	Location    string `json:"location,omitempty"`
	Currency    string `json:"currency,omitempty"`
	HeroImage   string `json:"hero_image,omitempty"`
	Slug        string `json:"slug"`
	Theme       string `json:"theme,omitempty"`
}

// Fund is a gift goal in the bulk upsert payload. IDs are client-generated
// and accepted idempotently by the server.
type Fund struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Goal        float64 `json:"goal"`
	CoverURL    string  `json:"cover_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	Visible     bool    `json:"visible"`
	Order       int     `json:"order"`
	Pinned      bool    `json:"pinned"`
}

type BulkUpsertFundsRequest struct {
	Funds []Fund `json:"funds"`
}

type BulkUpsertFundsResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type PublicFund struct {
	Fund
	Raised   float64 `json:"raised"`
	Progress int     `json:"progress"`
}

type PublicRegistryResponse struct {
	Registry Registry           `json:"registry"`
	Funds    []PublicFund       `json:"funds"`
	Totals   map[string]float64 `json:"totals"`
}

type CreateContributionRequest struct {
	FundID  string  `json:"fund_id"`
	Name    string  `json:"name,omitempty"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message,omitempty"`
	Public  bool    `json:"public"`
	Method  string  `json:"method,omitempty"`
}

type Contribution struct {
	ID        string    `json:"id"`
	FundID    string    `json:"fund_id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Message   string    `json:"message"`
	Public    bool      `json:"public"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}

type AddCollaboratorRequest struct {
	Email string `json:"email"`
}

type RegistryAnalytics struct {
	Total    float64        `json:"total"`
	Count    int64          `json:"count"`
	Average  float64        `json:"average"`
	ByFund   []FundTotal    `json:"by_fund"`
	ByMethod []MethodTotal  `json:"by_method"`
	Recent   []Contribution `json:"recent"`
	Daily    []DailyTotal   `json:"daily"`
}

type FundTotal struct {
	FundID string  `json:"fund_id"`
	Title  string  `json:"title"`
	Sum    float64 `json:"sum"`
	Count  int64   `json:"count"`
}

type MethodTotal struct {
	Method string  `json:"method"`
	Sum    float64 `json:"sum"`
	Count  int64   `json:"count"`
}

type DailyTotal struct {
	Date string  `json:"date"`
	Sum  float64 `json:"sum"`
}

// Auth types.

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Upload types.

type InitiateUploadRequest struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Mime       string `json:"mime"`
	RegistryID string `json:"registry_id"`
}

type InitiateUploadResponse struct {
	UploadID  string `json:"upload_id"`
	ChunkSize int64  `json:"chunk_size"`
}

type UploadChunkResponse struct {
	Index         int64 `json:"index"`
	ReceivedBytes int64 `json:"received_bytes"`
}

type CompleteUploadResponse struct {
	// URL is relative to the API origin; prefix it with the backend base URL
	// to obtain a fetchable address.
	URL string `json:"url"`
}
