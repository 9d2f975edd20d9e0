package domain

import (
	"context"
	"time"
)

// Fund is a single gift goal inside a registry. Fund ids are supplied by the
// editing client and kept as-is, so repeated bulk upserts stay idempotent.
type Fund struct {
	ID          string    `json:"id" bson:"id"`
	RegistryID  string    `json:"registry_id" bson:"registry_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Goal        float64   `json:"goal" bson:"goal"`
	CoverURL    string    `json:"cover_url" bson:"cover_url"`
	Category    string    `json:"category" bson:"category"`
	Visible     bool      `json:"visible" bson:"visible"`
	Order       int       `json:"order" bson:"order"`
	Pinned      bool      `json:"pinned" bson:"pinned"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type UpsertFundsResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type FundRepository interface {
	Upsert(ctx context.Context, fund *Fund) (created bool, err error)
	GetByID(ctx context.Context, id string) (*Fund, error)
	ListByRegistry(ctx context.Context, registryID string) ([]Fund, error)
	Count(ctx context.Context) (int64, error)
}

type FundService interface {
	BulkUpsertFunds(ctx context.Context, userID, registryID string, funds []Fund) (*UpsertFundsResult, error)
	ListFunds(ctx context.Context, userID, registryID string) ([]Fund, error)
}
