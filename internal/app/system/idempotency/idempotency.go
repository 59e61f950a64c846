// internal/app/system/idempotency/idempotency.go
// Package idempotency deduplicates service writes keyed by a client
// supplied client_uuid, scoped to the organization. Lookups give the fast
// answer; the (organization_id, client_uuid) unique index settles races and
// the loser re-reads the stored winner.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/metrics"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinKeyLength is the shortest accepted client_uuid.
const MinKeyLength = 8

// Status is the outcome of one write.
type Status string

const (
	StatusCreated       Status = "created"
	StatusExisting      Status = "existing"
	StatusCreatedNoUUID Status = "created_no_uuid"
	StatusError         Status = "error"
)

// constraintName labels duplicate-key recoveries in metrics.
const constraintName = "uniq_services_org_client_uuid"

var (
	ErrKeyTooShort = apperr.Validationf("client_uuid must be at least %d characters", MinKeyLength)

	// ErrDuplicateKey is returned by Store.Insert when another service in
	// the organization already holds the client_uuid.
	ErrDuplicateKey = errors.New("duplicate client_uuid")
)

// Store persists services.
type Store interface {
	// FindByClientUUID returns nil when no service in org holds key.
	FindByClientUUID(ctx context.Context, org primitive.ObjectID, key string) (*models.Service, error)
	Insert(ctx context.Context, s models.Service) (models.Service, error)
}

// BuildFunc validates a payload and returns the service to insert. It runs
// only when no stored service matches the key.
type BuildFunc func(ctx context.Context) (models.Service, error)

// NormalizeKey trims key and rejects keys shorter than MinKeyLength
// characters. A nil or blank key means
// the write is not idempotent.
func NormalizeKey(key *string) (*string, error) {
	if key == nil {
		return nil, nil
	}
	k := strings.TrimSpace(*key)
	if k == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(k) < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	return &k, nil
}

// Engine runs idempotent creates against a Store.
type Engine struct {
	store Store
}

// New constructs an Engine.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Create writes one service. With a key, the first write wins and every
// retry gets the stored record back unchanged; build is not invoked for
// retries. Without a key every call creates a new record.
func (e *Engine) Create(ctx context.Context, org primitive.ObjectID, key *string, build BuildFunc) (models.Service, Status, error) {
	svc, st, err := e.create(ctx, org, key, build)
	if err != nil {
		metrics.IdempotencyOutcome(string(StatusError))
		return models.Service{}, StatusError, err
	}
	metrics.IdempotencyOutcome(string(st))
	return svc, st, nil
}

func (e *Engine) create(ctx context.Context, org primitive.ObjectID, key *string, build BuildFunc) (models.Service, Status, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return models.Service{}, StatusError, err
	}

	if k != nil {
		existing, err := e.store.FindByClientUUID(ctx, org, *k)
		if err != nil {
			return models.Service{}, StatusError, apperr.Internal("find by client_uuid", err)
		}
		if existing != nil {
			return *existing, StatusExisting, nil
		}
	}

	svc, err := build(ctx)
	if err != nil {
		return models.Service{}, StatusError, err
	}
	if svc.OrganizationID != org {
		return models.Service{}, StatusError, apperr.Internal("create service", errors.New("organization mismatch"))
	}
	svc.ClientUUID = k

	created, err := e.store.Insert(ctx, svc)
	switch {
	case err == nil:
		if k == nil {
			return created, StatusCreatedNoUUID, nil
		}
		return created, StatusCreated, nil
	case k != nil && errors.Is(err, ErrDuplicateKey):
		// Lost a race with a concurrent write of the same key.
		winner, ferr := e.store.FindByClientUUID(ctx, org, *k)
		if ferr != nil {
			return models.Service{}, StatusError, apperr.Internal("re-read client_uuid winner", ferr)
		}
		if winner == nil {
			return models.Service{}, StatusError, apperr.Internal("re-read client_uuid winner", err)
		}
		metrics.DuplicateKeyRecovered(constraintName)
		return *winner, StatusExisting, nil
	default:
		return models.Service{}, StatusError, apperr.Internal("insert service", err)
	}
}

// Item is one batch entry.
type Item struct {
	ClientUUID *string
	Build      BuildFunc
}

// Result reports one batch entry in input order.
type Result struct {
	Index      int
	Status     Status
	ServerID   *primitive.ObjectID
	ClientUUID *string
	Detail     string
	Err        error
	Service    *models.Service
}

// Sync processes items in order. A failing item is reported with
// StatusError and never stops the batch. Two items sharing a key yield one
// created and one existing result with the same server id.
func (e *Engine) Sync(ctx context.Context, org primitive.ObjectID, items []Item) []Result {
	results := make([]Result, len(items))
	for i, it := range items {
		res := Result{Index: i, ClientUUID: it.ClientUUID}
		svc, st, err := e.Create(ctx, org, it.ClientUUID, it.Build)
		if err != nil {
			res.Status = StatusError
			res.Detail = apperr.Message(err)
			res.Err = err
			results[i] = res
			continue
		}
		id := svc.ID
		res.Status = st
		res.ServerID = &id
		res.ClientUUID = svc.ClientUUID
		res.Service = &svc
		results[i] = res
	}
	return results
}
