package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kshadid/thegiftspace/internal/domain"
)

const auditEventsCollection = "audit_events"

// AuditRepository implements domain.AuditRepository using MongoDB.
type AuditRepository struct {
	database *mongo.Database
}

func NewAuditRepository(database *mongo.Database) *AuditRepository {
	repo := &AuditRepository{
		database: database,
	}
	repo.ensureIndexes()
	return repo
}

func (r *AuditRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(auditEventsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "registry_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for audit_events")
	}
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	collection := r.database.Collection(auditEventsCollection)

	_, err := collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	return nil
}

func (r *AuditRepository) ListByRegistry(ctx context.Context, registryID string, limit int) ([]domain.AuditEvent, error) {
	collection := r.database.Collection(auditEventsCollection)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, bson.M{"registry_id": registryID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []domain.AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	return events, nil
}
