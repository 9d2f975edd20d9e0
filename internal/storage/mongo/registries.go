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

const registriesCollection = "registries"

// RegistryRepository implements domain.RegistryRepository using MongoDB.
type RegistryRepository struct {
	database *mongo.Database
}

func NewRegistryRepository(database *mongo.Database) *RegistryRepository {
	repo := &RegistryRepository{
		database: database,
	}
	repo.ensureIndexes()
	return repo
}

func (r *RegistryRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(registriesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "collaborators", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for registries")
	}
}

func (r *RegistryRepository) Insert(ctx context.Context, registry *domain.Registry) error {
	collection := r.database.Collection(registriesCollection)

	_, err := collection.InsertOne(ctx, registry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert registry: %w", err)
	}

	return nil
}

func (r *RegistryRepository) Update(ctx context.Context, registry *domain.Registry) error {
	collection := r.database.Collection(registriesCollection)

	filter := bson.M{"id": registry.ID}

	update := bson.M{
		"$set": bson.M{
			"couple_names":  registry.CoupleNames,
			"event_date":    registry.EventDate,
			"location":      registry.Location,
			"currency":      registry.Currency,
			"hero_image":    registry.HeroImage,
			"slug":          registry.Slug,
			"theme":         registry.Theme,
			"collaborators": registry.Collaborators,
			"locked":        registry.Locked,
			"lock_reason":   registry.LockReason,
			"updated_at":    registry.UpdatedAt,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("failed to update registry: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *RegistryRepository) GetByID(ctx context.Context, id string) (*domain.Registry, error) {
	collection := r.database.Collection(registriesCollection)

	var registry domain.Registry
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&registry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find registry: %w", err)
	}

	return &registry, nil
}

func (r *RegistryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Registry, error) {
	collection := r.database.Collection(registriesCollection)

	var registry domain.Registry
	err := collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&registry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find registry by slug: %w", err)
	}

	return &registry, nil
}

// ListByUser returns registries the user owns or collaborates on.
func (r *RegistryRepository) ListByUser(ctx context.Context, userID string) ([]domain.Registry, error) {
	collection := r.database.Collection(registriesCollection)

	filter := bson.M{
		"$or": []bson.M{
			{"owner_id": userID},
			{"collaborators": userID},
		},
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find registries: %w", err)
	}
	defer cursor.Close(ctx)

	var registries []domain.Registry
	if err := cursor.All(ctx, &registries); err != nil {
		return nil, fmt.Errorf("failed to decode registries: %w", err)
	}

	return registries, nil
}

func (r *RegistryRepository) List(ctx context.Context, limit int) ([]domain.Registry, error) {
	collection := r.database.Collection(registriesCollection)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list registries: %w", err)
	}
	defer cursor.Close(ctx)

	var registries []domain.Registry
	if err := cursor.All(ctx, &registries); err != nil {
		return nil, fmt.Errorf("failed to decode registries: %w", err)
	}

	return registries, nil
}

func (r *RegistryRepository) Count(ctx context.Context) (int64, error) {
	collection := r.database.Collection(registriesCollection)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count registries: %w", err)
	}

	return count, nil
}
