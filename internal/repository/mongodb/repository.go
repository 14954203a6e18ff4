package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// ErrSnapshotNotFound is returned when no snapshot exists for the month.
var ErrSnapshotNotFound = errors.New("workload snapshot not found")

// Repository defines the interface for workload snapshot storage.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.WorkloadSnapshot) error
	LatestSnapshot(ctx context.Context, month string) (models.WorkloadSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "workload_snapshots",
	}, nil
}

// SaveSnapshot stores a closed month's aggregation.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.WorkloadSnapshot) error {
	if _, err := r.collection().InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert workload snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot stored for a YYYY-MM month.
func (r *MongoDBRepository) LatestSnapshot(ctx context.Context, month string) (models.WorkloadSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var snapshot models.WorkloadSnapshot
	err := r.collection().FindOne(ctx, bson.M{"workload.month": month}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.WorkloadSnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return models.WorkloadSnapshot{}, fmt.Errorf("failed to load workload snapshot %s: %w", month, err)
	}
	return snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}
