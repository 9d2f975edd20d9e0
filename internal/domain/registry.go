package domain

import (
	"context"
	"time"
)

// Registry is a couple's cash-registry page, the owning entity for funds,
// contributions and uploaded images.
type Registry struct {
	ID            string    `json:"id" bson:"id"`
	OwnerID       string    `json:"owner_id" bson:"owner_id"`
	CoupleNames   string    `json:"couple_names" bson:"couple_names"`
	EventDate     string    `json:"event_date" bson:"event_date"` // YYYY-MM-DD
	Location      string    `json:"location" bson:"location"`
	Currency      string    `json:"currency" bson:"currency"`
	HeroImage     string    `json:"hero_image" bson:"hero_image"`
	Slug          string    `json:"slug" bson:"slug"`
	Theme         string    `json:"theme" bson:"theme"`
	Collaborators []string  `json:"collaborators" bson:"collaborators"`
	Locked        bool      `json:"locked" bson:"locked"`
	LockReason    string    `json:"lock_reason,omitempty" bson:"lock_reason"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// CanEdit reports whether the given user may modify the registry.
func (r *Registry) CanEdit(userID string) bool {
	if r.OwnerID == userID {
		return true
	}
	for _, c := range r.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

type CreateRegistryParams struct {
	OwnerID     string
	CoupleNames string
	EventDate   string
	Location    string
	Currency    string
	HeroImage   string
	Slug        string
	Theme       string
}

type UpdateRegistryParams struct {
	CoupleNames string
	EventDate   string
	Location    string
	Currency    string
	HeroImage   string
	Slug        string
	Theme       string
}

// PublicFund is a fund decorated with contribution totals for the guest view.
type PublicFund struct {
	Fund
	Raised   float64 `json:"raised"`
	Progress int     `json:"progress"`
}

// PublicRegistryView is the guest-facing projection of a registry.
type PublicRegistryView struct {
	Registry Registry           `json:"registry"`
	Funds    []PublicFund       `json:"funds"`
	Totals   map[string]float64 `json:"totals"`
}

type RegistryRepository interface {
	Insert(ctx context.Context, registry *Registry) error
	Update(ctx context.Context, registry *Registry) error
	GetByID(ctx context.Context, id string) (*Registry, error)
	GetBySlug(ctx context.Context, slug string) (*Registry, error)
	ListByUser(ctx context.Context, userID string) ([]Registry, error)
	List(ctx context.Context, limit int) ([]Registry, error)
	Count(ctx context.Context) (int64, error)
}

type RegistryService interface {
	CreateRegistry(ctx context.Context, params CreateRegistryParams) (*Registry, error)
	UpdateRegistry(ctx context.Context, userID, registryID string, params UpdateRegistryParams) (*Registry, error)
	GetRegistry(ctx context.Context, userID, registryID string) (*Registry, error)
	ListMyRegistries(ctx context.Context, userID string) ([]Registry, error)
	GetPublicView(ctx context.Context, slug string) (*PublicRegistryView, error)
	AddCollaborator(ctx context.Context, userID, registryID, email string) (*Registry, error)
	RemoveCollaborator(ctx context.Context, userID, registryID, collaboratorID string) (*Registry, error)
	ListAuditEvents(ctx context.Context, userID, registryID string) ([]AuditEvent, error)
}
