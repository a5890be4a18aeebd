// AngelaMos | 2026
// repository.go

package customer

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

const collectionName = "customers"

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	Replace(ctx context.Context, c *Customer) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, page core.PageRequest) ([]Customer, int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection(collectionName)}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("active_email_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_deleted": false}),
		},
		{
			Keys:    bson.D{{Key: "is_deleted", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("listing"),
		},
	}

	if _, err := db.Collection(collectionName).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("ensure customer indexes: %w", err)
	}

	return nil
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return core.MapMongoError("create customer", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&c)
	if err != nil {
		return nil, core.MapMongoError("get customer", err)
	}

	return &c, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	var c Customer
	err := r.coll.FindOne(ctx, bson.M{"email": email, "is_deleted": false}).Decode(&c)
	if err != nil {
		return nil, core.MapMongoError("get customer by email", err)
	}

	return &c, nil
}

// Replace writes c only if the stored version still equals c.Version.
// On success c carries the new version.
func (r *repository) Replace(ctx context.Context, c *Customer) error {
	expected := c.Version
	next := *c
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": c.ID, "version": expected, "is_deleted": false},
		&next,
	)
	if err != nil {
		return core.MapMongoError("replace customer", err)
	}

	if res.MatchedCount == 0 {
		n, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": c.ID, "is_deleted": false})
		if countErr != nil {
			return core.MapMongoError("replace customer", countErr)
		}
		if n == 0 {
			return fmt.Errorf("replace customer: %w", core.ErrNotFound)
		}
		return fmt.Errorf("replace customer: %w", core.ErrConcurrencyConflict)
	}

	*c = next
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{
			"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return core.MapMongoError("delete customer", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("delete customer: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context, page core.PageRequest) ([]Customer, int64, error) {
	filter := bson.M{"is_deleted": false}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, core.MapMongoError("count customers", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, core.MapMongoError("list customers", err)
	}

	customers := []Customer{}
	if err := cur.All(ctx, &customers); err != nil {
		return nil, 0, core.MapMongoError("decode customers", err)
	}

	return customers, total, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"is_deleted": false})
	if err != nil {
		return 0, core.MapMongoError("count customers", err)
	}
	return n, nil
}
