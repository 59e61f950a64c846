// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/uniqueness"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
The per-organization unique indexes here are the authoritative guard for
plates, client numbers, open shifts and client_uuid keys.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"organizations", ensureOrganizations},
		{"vehicles", ensureVehicles},
		{"companies", ensureCompanies},
		{"turnos", ensureTurnos},
		{"services", ensureServices},
		{"audit_events", ensureAuditEvents},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func partialSig(v any) string {
	if v == nil {
		return ""
	}
	b, err := bson.MarshalExtJSON(v, true, false)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func boolOf(p *bool) bool { return p != nil && *p }

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

type desired struct {
	model   mongo.IndexModel
	name    string
	unique  bool
	keys    string
	partial string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, keys: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = boolOf(m.Options.Unique)
		if m.Options.PartialFilterExpression != nil {
			d.partial = partialSig(m.Options.PartialFilterExpression)
		}
	}
	return d
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{} // key sig -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A missing collection lists as an error on some servers; CreateOne creates it.
		existing = map[string]existingIndex{}
	}

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.keys),
			zap.Bool("unique", d.unique))

		if ex, ok := existing[d.keys]; ok {
			sameOpts := boolOf(ex.Unique) == d.unique && partialSig(ex.Partial) == d.partial
			if sameOpts && (d.name == "" || ex.Name == d.name) {
				log.Debug("reusing existing index", zap.Duration("took", time.Since(start)))
				continue
			}
			// Options or name differ: drop and recreate under the desired definition.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), d.name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
			if isDuplicateKeyErr(err) && d.unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present); run flotaudit scan", coll.Name(), d.name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err))
			}
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Username is the login identity and is global.
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
		// Org-scoped user lists sorted by username.
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "role", Value: 1},
				{Key: "username_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_org_role_usernameci_id"),
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("organizations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Enforce global uniqueness of organization names (case/diacritics folded).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orgs_nameci"),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orgs_slug"),
		},
	})
}

func ensureVehicles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("vehicles")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Plate is unique within an organization only.
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "matricula", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(uniqueness.VehiclePlate.Index),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "matricula", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_vehicles_org_matricula_id"),
		},
	})
}

func ensureCompanies(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("companies")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Client number is unique within an organization only.
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "numero_cliente", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(uniqueness.CompanyClientNumber.Index),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "nombre_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_companies_org_nombreci_id"),
		},
	})
}

func ensureTurnos(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("turnos")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one open shift per taxista.
		{
			Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "taxista_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(uniqueness.OpenTurno.Index).
				SetPartialFilterExpression(bson.D{{Key: "estado", Value: "open"}}),
		},
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "taxista_id", Value: 1},
				{Key: "fecha_inicio", Value: -1},
			},
			Options: options.Index().SetName("idx_turnos_org_taxista_fecha"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "vehiculo_id", Value: 1}},
			Options: options.Index().SetName("idx_turnos_org_vehiculo"),
		},
	})
}

func ensureServices(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("services")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Idempotency key space is partitioned by organization. Services
		// without a key are not indexed.
		{
			Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "client_uuid", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_services_org_client_uuid").
				SetPartialFilterExpression(bson.D{{Key: "client_uuid", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "turno_id", Value: 1}},
			Options: options.Index().SetName("idx_services_org_turno"),
		},
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "taxista_id", Value: 1},
				{Key: "fecha", Value: -1},
			},
			Options: options.Index().SetName("idx_services_org_taxista_fecha"),
		},
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "empresa_id", Value: 1},
				{Key: "fecha", Value: -1},
			},
			Options: options.Index().SetName("idx_services_org_empresa_fecha"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "vehiculo_id", Value: 1}},
			Options: options.Index().SetName("idx_services_org_vehiculo"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_org_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
