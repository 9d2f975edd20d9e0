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

const fundsCollection = "funds"

// FundRepository implements domain.FundRepository using MongoDB.
type FundRepository struct {
	database *mongo.Database
}

func NewFundRepository(database *mongo.Database) *FundRepository {
	repo := &FundRepository{
		database: database,
	}
	repo.ensureIndexes()
	return repo
}

func (r *FundRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(fundsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "registry_id", Value: 1},
				{Key: "order", Value: 1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for funds")
	}
}

// Upsert inserts or updates a fund keyed on its client-supplied id and
// reports whether a new document was created.
func (r *FundRepository) Upsert(ctx context.Context, fund *domain.Fund) (bool, error) {
	collection := r.database.Collection(fundsCollection)

	filter := bson.M{"id": fund.ID}

	update := bson.M{
		"$set": bson.M{
			"registry_id": fund.RegistryID,
			"title":       fund.Title,
			"description": fund.Description,
			"goal":        fund.Goal,
			"cover_url":   fund.CoverURL,
			"category":    fund.Category,
			"visible":     fund.Visible,
			"order":       fund.Order,
			"pinned":      fund.Pinned,
			"updated_at":  fund.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"id":         fund.ID,
			"created_at": fund.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("failed to upsert fund: %w", err)
	}

	return result.UpsertedCount > 0, nil
}

func (r *FundRepository) GetByID(ctx context.Context, id string) (*domain.Fund, error) {
	collection := r.database.Collection(fundsCollection)

	var fund domain.Fund
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&fund)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fund: %w", err)
	}

	return &fund, nil
}

func (r *FundRepository) ListByRegistry(ctx context.Context, registryID string) ([]domain.Fund, error) {
	collection := r.database.Collection(fundsCollection)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := collection.Find(ctx, bson.M{"registry_id": registryID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find funds: %w", err)
	}
	defer cursor.Close(ctx)

	var funds []domain.Fund
	if err := cursor.All(ctx, &funds); err != nil {
		return nil, fmt.Errorf("failed to decode funds: %w", err)
	}

	return funds, nil
}

func (r *FundRepository) Count(ctx context.Context) (int64, error) {
	collection := r.database.Collection(fundsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count funds: %w", err)
	}

	return count, nil
}
