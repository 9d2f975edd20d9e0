package domain

import (
	"context"
	"time"
)

// AuditEvent records a mutation against a registry for the owner's audit trail.
type AuditEvent struct {
	ID         string    `json:"id" bson:"id"`
	RegistryID string    `json:"registry_id" bson:"registry_id"`
	ActorID    string    `json:"actor_id" bson:"actor_id"`
	Action     string    `json:"action" bson:"action"`
	Detail     string    `json:"detail,omitempty" bson:"detail"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

const (
	AuditRegistryCreated     = "registry_created"
	AuditRegistryUpdated     = "registry_updated"
	AuditRegistryLocked      = "registry_locked"
	AuditRegistryUnlocked    = "registry_unlocked"
	AuditFundsUpserted       = "funds_upserted"
	AuditCollaboratorAdded   = "collaborator_added"
	AuditCollaboratorRemoved = "collaborator_removed"
)

type AuditRepository interface {
	Insert(ctx context.Context, event *AuditEvent) error
	ListByRegistry(ctx context.Context, registryID string, limit int) ([]AuditEvent, error)
}
