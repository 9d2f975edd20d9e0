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

const contributionsCollection = "contributions"

// ContributionRepository implements domain.ContributionRepository using MongoDB.
type ContributionRepository struct {
	database *mongo.Database
}

func NewContributionRepository(database *mongo.Database) *ContributionRepository {
	repo := &ContributionRepository{
		database: database,
	}
	repo.ensureIndexes()
	return repo
}

func (r *ContributionRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(contributionsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "fund_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for contributions")
	}
}

func (r *ContributionRepository) Insert(ctx context.Context, contribution *domain.Contribution) error {
	collection := r.database.Collection(contributionsCollection)

	_, err := collection.InsertOne(ctx, contribution)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}

	return nil
}

func (r *ContributionRepository) ListByFund(ctx context.Context, fundID string) ([]domain.Contribution, error) {
	return r.list(ctx, bson.M{"fund_id": fundID})
}

func (r *ContributionRepository) ListByFunds(ctx context.Context, fundIDs []string) ([]domain.Contribution, error) {
	if len(fundIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, bson.M{"fund_id": bson.M{"$in": fundIDs}})
}

func (r *ContributionRepository) list(ctx context.Context, filter bson.M) ([]domain.Contribution, error) {
	collection := r.database.Collection(contributionsCollection)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find contributions: %w", err)
	}
	defer cursor.Close(ctx)

	var contributions []domain.Contribution
	if err := cursor.All(ctx, &contributions); err != nil {
		return nil, fmt.Errorf("failed to decode contributions: %w", err)
	}

	return contributions, nil
}

// SumsByFund aggregates contribution totals grouped by fund id.
func (r *ContributionRepository) SumsByFund(ctx context.Context, fundIDs []string) (map[string]float64, error) {
	sums := make(map[string]float64, len(fundIDs))
	if len(fundIDs) == 0 {
		return sums, nil
	}

	collection := r.database.Collection(contributionsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fund_id": bson.M{"$in": fundIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$fund_id",
			"sum": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contribution sums: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			FundID string  `bson:"_id"`
			Sum    float64 `bson:"sum"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode contribution sum: %w", err)
		}
		sums[row.FundID] = row.Sum
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contribution sums: %w", err)
	}

	return sums, nil
}

func (r *ContributionRepository) Count(ctx context.Context) (int64, error) {
	collection := r.database.Collection(contributionsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count contributions: %w", err)
	}

	return count, nil
}

// TotalAmount sums every contribution on the platform.
func (r *ContributionRepository) TotalAmount(ctx context.Context) (float64, error) {
	collection := r.database.Collection(contributionsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"sum": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate total amount: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		var row struct {
			Sum float64 `bson:"sum"`
		}
		if err := cursor.Decode(&row); err != nil {
			return 0, fmt.Errorf("failed to decode total amount: %w", err)
		}
		return row.Sum, nil
	}

	return 0, cursor.Err()
}
