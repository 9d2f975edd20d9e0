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

const uploadSessionsCollection = "upload_sessions"

// UploadSessionRepository implements domain.UploadSessionRepository using MongoDB.
type UploadSessionRepository struct {
	database *mongo.Database
}

func NewUploadSessionRepository(database *mongo.Database) *UploadSessionRepository {
	repo := &UploadSessionRepository{
		database: database,
	}
	repo.ensureIndexes()
	return repo
}

func (r *UploadSessionRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(uploadSessionsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for upload_sessions")
	}
}

func (r *UploadSessionRepository) Insert(ctx context.Context, session *domain.UploadSession) error {
	collection := r.database.Collection(uploadSessionsCollection)

	_, err := collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to insert upload session: %w", err)
	}

	return nil
}

func (r *UploadSessionRepository) Update(ctx context.Context, session *domain.UploadSession) error {
	collection := r.database.Collection(uploadSessionsCollection)

	filter := bson.M{"id": session.ID}

	update := bson.M{
		"$set": bson.M{
			"next_index":     session.NextIndex,
			"received_bytes": session.ReceivedBytes,
			"status":         session.Status,
			"stored_path":    session.StoredPath,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update upload session: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrUploadNotFound
	}

	return nil
}

func (r *UploadSessionRepository) GetByID(ctx context.Context, id string) (*domain.UploadSession, error) {
	collection := r.database.Collection(uploadSessionsCollection)

	var session domain.UploadSession
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUploadNotFound
		}
		return nil, fmt.Errorf("failed to find upload session: %w", err)
	}

	return &session, nil
}

// AdvanceChunk records chunk progress only if the stored session still
// expects fromIndex, so a replayed chunk that raced past the in-memory check
// cannot double count.
func (r *UploadSessionRepository) AdvanceChunk(ctx context.Context, session *domain.UploadSession, fromIndex int64) error {
	collection := r.database.Collection(uploadSessionsCollection)

	filter := bson.M{
		"id":         session.ID,
		"status":     domain.UploadStatusPending,
		"next_index": fromIndex,
	}

	update := bson.M{
		"$set": bson.M{
			"next_index":     session.NextIndex,
			"received_bytes": session.ReceivedBytes,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to advance upload session: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrChunkOutOfSequence
	}

	return nil
}

// ListExpired returns pending sessions past their expiry.
func (r *UploadSessionRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.UploadSession, error) {
	collection := r.database.Collection(uploadSessionsCollection)

	filter := bson.M{
		"status":     domain.UploadStatusPending,
		"expires_at": bson.M{"$lt": now},
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired upload sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []domain.UploadSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode expired upload sessions: %w", err)
	}

	return sessions, nil
}

func (r *UploadSessionRepository) Delete(ctx context.Context, id string) error {
	collection := r.database.Collection(uploadSessionsCollection)

	_, err := collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete upload session: %w", err)
	}

	return nil
}
