// AngelaMos | 2026
// entity.go

package role

import (
	"time"
)

type Role struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	IsDeleted   bool      `bson:"is_deleted"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}
