// internal/app/system/refcheck/mongo.go
package refcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOwner resolves owners from the application collections.
type MongoOwner struct {
	users     *mongo.Collection
	vehicles  *mongo.Collection
	companies *mongo.Collection
	turnos    *mongo.Collection
}

// NewMongoOwner binds to db.
func NewMongoOwner(db *mongo.Database) *MongoOwner {
	return &MongoOwner{
		users:     db.Collection("users"),
		vehicles:  db.Collection("vehicles"),
		companies: db.Collection("companies"),
		turnos:    db.Collection("turnos"),
	}
}

type ownerDoc struct {
	OrganizationID *primitive.ObjectID `bson:"organization_id"`
	Role           models.Role         `bson:"role,omitempty"`
}

// OwnerOf implements Owner. A taxista reference only resolves to a user
// whose role is taxista.
func (m *MongoOwner) OwnerOf(ctx context.Context, kind Kind, id primitive.ObjectID) (primitive.ObjectID, bool, error) {
	var c *mongo.Collection
	proj := bson.M{"organization_id": 1}
	switch kind {
	case Taxista:
		c = m.users
		proj["role"] = 1
	case Vehiculo:
		c = m.vehicles
	case Empresa:
		c = m.companies
	case Turno:
		c = m.turnos
	default:
		return primitive.NilObjectID, false, fmt.Errorf("unknown reference kind %q", kind)
	}

	var doc ownerDoc
	err := c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(proj)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if kind == Taxista && doc.Role != models.RoleTaxista {
		return primitive.NilObjectID, false, nil
	}
	if doc.OrganizationID == nil {
		return primitive.NilObjectID, false, nil
	}
	return *doc.OrganizationID, true, nil
}
