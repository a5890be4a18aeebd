// AngelaMos | 2026
// repository.go

package role

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

const collectionName = "roles"

type Repository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	Update(ctx context.Context, role *Role) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Role, error)
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup index on role name. Names are not
// unique at the storage layer.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "is_deleted", Value: 1}},
		Options: options.Index().SetName("name_lookup"),
	})
	if err != nil {
		return fmt.Errorf("ensure role indexes: %w", err)
	}

	return nil
}

func (r *repository) Create(ctx context.Context, role *Role) error {
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, role); err != nil {
		return core.MapMongoError("create role", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Role, error) {
	var role Role
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&role)
	if err != nil {
		return nil, core.MapMongoError("get role", err)
	}

	return &role, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.coll.FindOne(ctx, bson.M{"name": name, "is_deleted": false}).Decode(&role)
	if err != nil {
		return nil, core.MapMongoError("get role by name", err)
	}

	return &role, nil
}

func (r *repository) Update(ctx context.Context, role *Role) error {
	role.UpdatedAt = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": role.ID, "is_deleted": false},
		bson.M{"$set": bson.M{
			"name":        role.Name,
			"description": role.Description,
			"updated_at":  role.UpdatedAt,
		}},
	)
	if err != nil {
		return core.MapMongoError("update role", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return core.MapMongoError("delete role", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("delete role: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"is_deleted": false},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, core.MapMongoError("list roles", err)
	}

	roles := []Role{}
	if err := cur.All(ctx, &roles); err != nil {
		return nil, core.MapMongoError("decode roles", err)
	}

	return roles, nil
}
