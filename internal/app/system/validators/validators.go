// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Every tenant-owned collection requires an ObjectId organization_id, and
// users require one unless their role is superadmin.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("organizations", orgsSchema())
	ensure("users", usersSchema())
	ensure("vehicles", vehiclesSchema())
	ensure("companies", companiesSchema())
	ensure("turnos", turnosSchema())
	ensure("services", servicesSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID = bson.M{"bsonType": "objectId"}
)

// tenantSchema requires organization_id plus the given fields.
func tenantSchema(required []string, props bson.M) bson.M {
	req := bson.A{"organization_id"}
	for _, f := range required {
		req = append(req, f)
	}
	props["organization_id"] = objectID
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   req,
			"properties": props,
		},
	}
}

func orgsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "slug"},
			"properties": bson.M{
				"name":     nonBlank,
				"name_ci":  nonBlank,
				"slug":     nonBlank,
				"features": bson.M{"bsonType": "object"},
				"active":   bson.M{"bsonType": "bool"},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "role"},
			"properties": bson.M{
				"username":    nonBlank,
				"username_ci": nonBlank,
				"role":        bson.M{"enum": bson.A{"superadmin", "admin", "taxista"}},
			},
			// Only superadmins may exist without an organization.
			"anyOf": bson.A{
				bson.M{"properties": bson.M{"role": bson.M{"enum": bson.A{"superadmin"}}}},
				bson.M{
					"required":   bson.A{"organization_id"},
					"properties": bson.M{"organization_id": objectID},
				},
			},
		},
	}
}

func vehiclesSchema() bson.M {
	return tenantSchema([]string{"matricula"}, bson.M{
		"matricula": nonBlank,
	})
}

func companiesSchema() bson.M {
	return tenantSchema([]string{"numero_cliente", "nombre"}, bson.M{
		"numero_cliente": nonBlank,
		"nombre":         nonBlank,
	})
}

func turnosSchema() bson.M {
	return tenantSchema([]string{"taxista_id", "vehiculo_id", "estado"}, bson.M{
		"taxista_id":  objectID,
		"vehiculo_id": objectID,
		"estado":      bson.M{"enum": bson.A{"open", "closed", "liquidated"}},
	})
}

func servicesSchema() bson.M {
	return tenantSchema([]string{"taxista_id", "vehiculo_id"}, bson.M{
		"taxista_id":  objectID,
		"vehiculo_id": objectID,
		"empresa_id":  objectID,
		"turno_id":    objectID,
		"client_uuid": bson.M{"bsonType": "string", "minLength": 8},
	})
}
