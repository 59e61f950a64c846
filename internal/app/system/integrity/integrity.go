// internal/app/system/integrity/integrity.go
// Package integrity scans stored data for tenant-isolation violations:
// documents without an organization, tenant users without one, and
// references that dangle or cross organizations. Reference validity is
// decided by refcheck, the same predicate used at request time.
package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Problem classifies a finding.
type Problem string

const (
	MissingOrganization     Problem = "missing_organization"
	UserWithoutOrganization Problem = "user_without_organization"
	DanglingReference       Problem = "dangling_reference"
	CrossOrgReference       Problem = "cross_organization_reference"
)

// Finding is one violation.
type Finding struct {
	Collection string              `json:"collection"`
	ID         primitive.ObjectID  `json:"id"`
	Problem    Problem             `json:"problem"`
	Field      string              `json:"field,omitempty"`
	Ref        *primitive.ObjectID `json:"ref,omitempty"`
}

func (f Finding) String() string {
	s := fmt.Sprintf("%s/%s: %s", f.Collection, f.ID.Hex(), f.Problem)
	if f.Field != "" {
		s += " " + f.Field
	}
	if f.Ref != nil {
		s += "=" + f.Ref.Hex()
	}
	return s
}

// Report is the result of a scan.
type Report struct {
	Findings []Finding        `json:"findings"`
	Scanned  map[string]int64 `json:"scanned"`
	// Quarantined counts users deactivated by Fix.
	Quarantined int64 `json:"quarantined"`
}

// Clean reports whether the scan found nothing.
func (r Report) Clean() bool { return len(r.Findings) == 0 }

// Count returns the number of findings of problem p.
func (r Report) Count(p Problem) int {
	n := 0
	for _, f := range r.Findings {
		if f.Problem == p {
			n++
		}
	}
	return n
}

// scanned lists tenant-owned collections and the references each carries.
var scanned = []struct {
	coll string
	refs []refcheck.Kind
}{
	{"vehicles", nil},
	{"companies", nil},
	{"turnos", []refcheck.Kind{refcheck.Taxista, refcheck.Vehiculo}},
	{"services", []refcheck.Kind{refcheck.Taxista, refcheck.Vehiculo, refcheck.Empresa, refcheck.Turno}},
}

// Auditor runs scans against one database.
type Auditor struct {
	db   *mongo.Database
	refs *refcheck.Validator
	log  *zap.Logger
}

// New constructs an Auditor. refs must be the validator used by the API.
func New(db *mongo.Database, refs *refcheck.Validator, log *zap.Logger) *Auditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auditor{db: db, refs: refs, log: log}
}

// NewForDB wires an Auditor to the Mongo-backed reference validator.
func NewForDB(db *mongo.Database, log *zap.Logger) *Auditor {
	return New(db, refcheck.New(refcheck.NewMongoOwner(db)), log)
}

var noOrg = bson.A{
	bson.M{"organization_id": bson.M{"$exists": false}},
	bson.M{"organization_id": nil},
}

type scanDoc struct {
	ID             primitive.ObjectID  `bson:"_id"`
	OrganizationID *primitive.ObjectID `bson:"organization_id"`
	TaxistaID      *primitive.ObjectID `bson:"taxista_id"`
	VehiculoID     *primitive.ObjectID `bson:"vehiculo_id"`
	EmpresaID      *primitive.ObjectID `bson:"empresa_id"`
	TurnoID        *primitive.ObjectID `bson:"turno_id"`
}

func (d scanDoc) ref(k refcheck.Kind) *primitive.ObjectID {
	switch k {
	case refcheck.Taxista:
		return d.TaxistaID
	case refcheck.Vehiculo:
		return d.VehiculoID
	case refcheck.Empresa:
		return d.EmpresaID
	case refcheck.Turno:
		return d.TurnoID
	}
	return nil
}

// Scan reads every tenant-owned collection and reports violations. It
// never writes.
func (a *Auditor) Scan(ctx context.Context) (Report, error) {
	start := time.Now()
	rep := Report{Scanned: map[string]int64{}}

	if err := a.scanUsers(ctx, &rep); err != nil {
		return rep, err
	}
	for _, s := range scanned {
		if err := a.scanCollection(ctx, s.coll, s.refs, &rep); err != nil {
			return rep, err
		}
	}
	a.log.Info("integrity scan finished",
		zap.Int("findings", len(rep.Findings)),
		zap.Duration("elapsed", time.Since(start)))
	return rep, nil
}

func (a *Auditor) scanUsers(ctx context.Context, rep *Report) error {
	users := a.db.Collection("users")
	n, err := users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	rep.Scanned["users"] = n

	cur, err := users.Find(ctx, bson.M{
		"role": bson.M{"$ne": models.RoleSuperadmin},
		"$or":  noOrg,
	}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return fmt.Errorf("scan users: %w", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var d scanDoc
		if err := cur.Decode(&d); err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
		rep.Findings = append(rep.Findings, Finding{Collection: "users", ID: d.ID, Problem: UserWithoutOrganization})
	}
	return cur.Err()
}

func (a *Auditor) scanCollection(ctx context.Context, coll string, kinds []refcheck.Kind, rep *Report) error {
	proj := bson.M{"_id": 1, "organization_id": 1}
	for _, k := range kinds {
		proj[string(k)] = 1
	}
	cur, err := a.db.Collection(coll).Find(ctx, bson.M{}, options.Find().SetProjection(proj))
	if err != nil {
		return fmt.Errorf("scan %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var d scanDoc
		if err := cur.Decode(&d); err != nil {
			return fmt.Errorf("decode %s: %w", coll, err)
		}
		rep.Scanned[coll]++
		if d.OrganizationID == nil || d.OrganizationID.IsZero() {
			rep.Findings = append(rep.Findings, Finding{Collection: coll, ID: d.ID, Problem: MissingOrganization})
			continue
		}
		for _, k := range kinds {
			id := d.ref(k)
			if id == nil {
				continue
			}
			ok, err := a.refs.Belongs(ctx, *d.OrganizationID, k, *id)
			if err != nil {
				return fmt.Errorf("check %s.%s: %w", coll, k, err)
			}
			if ok {
				continue
			}
			problem := DanglingReference
			exists, err := a.refs.Exists(ctx, k, *id)
			if err != nil {
				return fmt.Errorf("check %s.%s: %w", coll, k, err)
			}
			if exists {
				problem = CrossOrgReference
			}
			ref := *id
			rep.Findings = append(rep.Findings, Finding{Collection: coll, ID: d.ID, Problem: problem, Field: string(k), Ref: &ref})
		}
	}
	return cur.Err()
}

// Fix quarantines every user reported without an organization: the
// account is deactivated and flagged for manual assignment. No
// organization is ever guessed, and other findings are left for review.
func (a *Auditor) Fix(ctx context.Context, rep *Report) error {
	var ids []primitive.ObjectID
	for _, f := range rep.Findings {
		if f.Problem == UserWithoutOrganization {
			ids = append(ids, f.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	res, err := a.db.Collection("users").UpdateMany(ctx,
		bson.M{
			"_id":  bson.M{"$in": ids},
			"role": bson.M{"$ne": models.RoleSuperadmin},
			"$or":  noOrg,
		},
		bson.M{"$set": bson.M{
			"active":               false,
			"needs_org_assignment": true,
			"updated_at":           time.Now().UTC(),
		}},
		options.Update().SetBypassDocumentValidation(true))
	if err != nil {
		return fmt.Errorf("quarantine users: %w", err)
	}
	rep.Quarantined = res.ModifiedCount
	a.log.Warn("quarantined users without organization", zap.Int64("count", res.ModifiedCount))
	return nil
}
