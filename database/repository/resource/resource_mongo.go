package resourceRepo

import (
	"context"
	"fmt"
	"time"

	"stayops/database"
	"stayops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoResourceRepo implements ResourceRepository using MongoDB.
type MongoResourceRepo struct {
	coll *mongo.Collection
}

// NewMongoResourceRepo constructs a new instance of MongoResourceRepo.
func NewMongoResourceRepo() ResourceRepository {
	repo := &MongoResourceRepo{
		coll: database.DB().Collection("resources"),
	}
	if err := repo.ensureIndexes(); err != nil {
		panic(fmt.Sprintf("resource repo: failed to ensure indexes: %v", err))
	}
	return repo
}

func (repo *MongoResourceRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "capacity", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create resource indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a resource document by ID.
func (repo *MongoResourceRepo) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var r models.Resource
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching resource %s: %w", id, err)
	}
	return &r, nil
}

// List returns resources matching the filter, sorted by name for stable grids.
func (repo *MongoResourceRepo) List(ctx context.Context, f ResourceFilter) ([]models.Resource, error) {
	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.MinCapacity > 0 {
		filter["capacity"] = bson.M{"$gte": f.MinCapacity}
	}
	for k, v := range f.Attributes {
		filter["attributes."+k] = v
	}
	if !f.IncludeRetired {
		filter["retired"] = bson.M{"$ne": true}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Resource
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding resources: %w", err)
	}
	return out, nil
}

// Create inserts a new resource document.
func (repo *MongoResourceRepo) Create(ctx context.Context, r *models.Resource) error {
	if _, err := repo.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("error creating resource: %w", err)
	}
	return nil
}

// SetOperationalStatus flips the staff-facing status. Pure status mutation; it
// never touches bookings referencing the resource.
func (repo *MongoResourceRepo) SetOperationalStatus(ctx context.Context, id string, status models.OperationalStatus) (*models.Resource, error) {
	update := bson.M{"$set": bson.M{"operational_status": status}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.Resource
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating resource %s status: %w", id, err)
	}
	return &r, nil
}

// SetRetired soft-retires (or restores) a resource. Resources referenced by
// bookings are never deleted.
func (repo *MongoResourceRepo) SetRetired(ctx context.Context, id string, retired bool) (*models.Resource, error) {
	update := bson.M{"$set": bson.M{"retired": retired}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.Resource
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retiring resource %s: %w", id, err)
	}
	return &r, nil
}
