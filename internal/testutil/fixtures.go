package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plain password of every fixture user.
const FixturePassword = "secret123"

// Fixtures inserts test data directly into Mongo, bypassing stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert %s fixture: %v", coll, err)
	}
}

// CreateOrganization creates an active organization with default features.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()
	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      strings.ReplaceAll(text.Fold(name), " ", "-"),
		Features:  models.DefaultFeatures(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "organizations", org)
	return org
}

// CreateUser creates an active user. org must be nil for superadmins.
func (f *Fixtures) CreateUser(ctx context.Context, username string, role models.Role, org *primitive.ObjectID) models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: org,
		Username:       username,
		UsernameCI:     text.Fold(username),
		FullName:       "Test " + username,
		Role:           role,
		PasswordHash:   string(hash),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateSuperadmin creates a superadmin.
func (f *Fixtures) CreateSuperadmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RoleSuperadmin, nil)
}

// CreateAdmin creates an admin of org.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string, org primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RoleAdmin, &org)
}

// CreateTaxista creates a taxista of org.
func (f *Fixtures) CreateTaxista(ctx context.Context, username string, org primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RoleTaxista, &org)
}

// CreateVehicle creates an active vehicle with the given plate.
func (f *Fixtures) CreateVehicle(ctx context.Context, org primitive.ObjectID, matricula string) models.Vehicle {
	f.t.Helper()
	now := time.Now().UTC()
	v := models.Vehicle{
		ID:             primitive.NewObjectID(),
		OrganizationID: org,
		Matricula:      matricula,
		Marca:          "Toyota",
		Modelo:         "Prius",
		Plazas:         4,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "vehicles", v)
	return v
}

// CreateCompany creates an active company with the given client number.
func (f *Fixtures) CreateCompany(ctx context.Context, org primitive.ObjectID, numero, nombre string) models.Company {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Company{
		ID:             primitive.NewObjectID(),
		OrganizationID: org,
		NumeroCliente:  numero,
		Nombre:         nombre,
		NombreCI:       text.Fold(nombre),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "companies", c)
	return c
}

// CreateOpenTurno starts a shift for taxista on vehicle.
func (f *Fixtures) CreateOpenTurno(ctx context.Context, taxista models.User, vehicle models.Vehicle, kmInicio int) models.Turno {
	f.t.Helper()
	now := time.Now().UTC()
	tr := models.Turno{
		ID:             primitive.NewObjectID(),
		OrganizationID: vehicle.OrganizationID,
		TaxistaID:      taxista.ID,
		VehiculoID:     vehicle.ID,
		Estado:         models.TurnoOpen,
		FechaInicio:    now.Format("2006-01-02"),
		HoraInicio:     "08:00",
		KmInicio:       kmInicio,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "turnos", tr)
	return tr
}

// CreateService inserts a minimal service attached to turno.
func (f *Fixtures) CreateService(ctx context.Context, turno models.Turno, importe float64) models.Service {
	f.t.Helper()
	now := time.Now().UTC()
	tid := turno.ID
	s := models.Service{
		ID:             primitive.NewObjectID(),
		OrganizationID: turno.OrganizationID,
		TaxistaID:      turno.TaxistaID,
		VehiculoID:     turno.VehiculoID,
		TurnoID:        &tid,
		Fecha:          turno.FechaInicio,
		Hora:           "09:00",
		Origen:         "A",
		Destino:        "B",
		Importe:        importe,
		Tipo:           models.ServiceParticular,
		FormaPago:      models.PagoEfectivo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "services", s)
	return s
}
