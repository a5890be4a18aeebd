// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

const collectionName = "users"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountActiveByRole(ctx context.Context, roleID string) (int64, error)
	ListByRole(ctx context.Context, roleID string, page core.PageRequest) ([]User, int64, error)
	ListByCustomer(ctx context.Context, customerID string, page core.PageRequest) ([]User, int64, error)
	List(ctx context.Context, page core.PageRequest) ([]User, int64, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
	SoftDeleteByCustomer(ctx context.Context, customerID string) (int64, error)
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
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "admin_slot", Value: 1}},
			Options: options.Index().
				SetName("single_global_admin").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"admin_slot": bson.M{"$exists": true},
				}),
		},
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetName("customer_lookup"),
		},
		{
			Keys:    bson.D{{Key: "role_id", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetName("role_lookup"),
		},
	}

	if _, err := db.Collection(collectionName).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	return nil
}

func active(filter bson.M) bson.M {
	filter["is_deleted"] = false
	return filter
}

func (r *repository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return core.MapMongoError("create user", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := r.coll.FindOne(ctx, active(bson.M{"_id": id})).Decode(&user); err != nil {
		return nil, core.MapMongoError("get user", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.coll.FindOne(ctx, active(bson.M{"email": email})).Decode(&user); err != nil {
		return nil, core.MapMongoError("get user by email", err)
	}

	return &user, nil
}

// ExistsByEmail also matches soft-deleted records since the email index
// spans them.
func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, core.MapMongoError("check email exists", err)
	}

	return n > 0, nil
}

func (r *repository) CountActiveByRole(ctx context.Context, roleID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, active(bson.M{"role_id": roleID}))
	if err != nil {
		return 0, core.MapMongoError("count users by role", err)
	}

	return n, nil
}

func (r *repository) ListByRole(
	ctx context.Context,
	roleID string,
	page core.PageRequest,
) ([]User, int64, error) {
	return r.list(ctx, active(bson.M{"role_id": roleID}), page)
}

func (r *repository) ListByCustomer(
	ctx context.Context,
	customerID string,
	page core.PageRequest,
) ([]User, int64, error) {
	return r.list(ctx, active(bson.M{"customer_id": customerID}), page)
}

func (r *repository) List(ctx context.Context, page core.PageRequest) ([]User, int64, error) {
	return r.list(ctx, active(bson.M{}), page)
}

func (r *repository) list(
	ctx context.Context,
	filter bson.M,
	page core.PageRequest,
) ([]User, int64, error) {
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, core.MapMongoError("count users", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, core.MapMongoError("list users", err)
	}

	users := []User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, core.MapMongoError("decode users", err)
	}

	return users, total, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"email":          user.Email,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"password_hash":  user.PasswordHash,
		"role_id":        user.RoleID,
		"customer_id":    user.CustomerID,
		"email_verified": user.EmailVerified,
		"updated_at":     user.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if user.AdminSlot != nil {
		set["admin_slot"] = *user.AdminSlot
	} else {
		update["$unset"] = bson.M{"admin_slot": ""}
	}

	res, err := r.coll.UpdateOne(ctx, active(bson.M{"_id": user.ID}), update)
	if err != nil {
		return core.MapMongoError("update user", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		active(bson.M{"_id": id}),
		bson.M{"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return core.MapMongoError("update password", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		active(bson.M{"_id": id}),
		bson.M{
			"$set":   bson.M{"is_deleted": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"admin_slot": ""},
		},
	)
	if err != nil {
		return core.MapMongoError("delete user", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SoftDeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		active(bson.M{"customer_id": customerID}),
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, core.MapMongoError("delete tenant users", err)
	}

	return res.ModifiedCount, nil
}
