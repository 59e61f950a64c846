// internal/app/system/turnostate/turnostate.go
// Package turnostate governs the shift lifecycle open -> closed ->
// liquidated and the rule that services are only logged during an open
// shift.
package turnostate

import (
	"context"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	dateLayout = "2006-01-02"
	hourLayout = "15:04"
)

var (
	ErrNoActiveShift    = apperr.Validation("no active shift: start a turno before logging services")
	ErrMultipleOpen     = apperr.Validation("multiple open shifts found; close the extra shifts first")
	ErrAlreadyOpen      = apperr.Validation("you already have an open shift")
	ErrNotActiveShift   = apperr.Validation("turno_id does not match your active shift")
	ErrNotOpen          = apperr.Validation("turno is not open")
	ErrNotClosed        = apperr.Validation("only closed turnos can be liquidated")
	ErrKmFinBeforeStart = apperr.Validation("km_fin must be greater than or equal to km_inicio")
	ErrEndBeforeStart   = apperr.Validation("shift end must not be before its start")
	ErrEndIncomplete    = apperr.Validation("fecha_fin, hora_fin and km_fin are required")
)

// next lists the single legal successor of each state.
var next = map[models.TurnoState]models.TurnoState{
	models.TurnoOpen:   models.TurnoClosed,
	models.TurnoClosed: models.TurnoLiquidated,
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to models.TurnoState) bool {
	n, ok := next[from]
	return ok && n == to
}

// Terminal reports whether s has no successor.
func Terminal(s models.TurnoState) bool {
	_, ok := next[s]
	return !ok
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidHour reports whether s is an HH:MM time of day.
func ValidHour(s string) bool {
	if len(s) != len(hourLayout) {
		return false
	}
	_, err := time.Parse(hourLayout, s)
	return err == nil
}

// End is the end-of-shift record required to close a turno.
type End struct {
	FechaFin string
	HoraFin  string
	KmFin    *int
}

// Close moves t from open to closed. t is unchanged on error.
func Close(t *models.Turno, end End, now time.Time) error {
	if !CanTransition(t.Estado, models.TurnoClosed) {
		return ErrNotOpen
	}
	if end.FechaFin == "" || end.HoraFin == "" || end.KmFin == nil {
		return ErrEndIncomplete
	}
	if !ValidDate(end.FechaFin) {
		return apperr.Validation("fecha_fin must be YYYY-MM-DD")
	}
	if !ValidHour(end.HoraFin) {
		return apperr.Validation("hora_fin must be HH:MM")
	}
	if *end.KmFin < t.KmInicio {
		return ErrKmFinBeforeStart
	}
	// Fixed-width layouts compare correctly as strings.
	if end.FechaFin+" "+end.HoraFin < t.FechaInicio+" "+t.HoraInicio {
		return ErrEndBeforeStart
	}

	fecha, hora, km := end.FechaFin, end.HoraFin, *end.KmFin
	t.Estado = models.TurnoClosed
	t.FechaFin = &fecha
	t.HoraFin = &hora
	t.KmFin = &km
	t.UpdatedAt = now
	return nil
}

// Liquidate moves t from closed to liquidated. Liquidated is terminal.
func Liquidate(t *models.Turno, by primitive.ObjectID, now time.Time) error {
	if !CanTransition(t.Estado, models.TurnoLiquidated) {
		return ErrNotClosed
	}
	t.Estado = models.TurnoLiquidated
	t.LiquidatedAt = &now
	t.LiquidatedBy = &by
	t.UpdatedAt = now
	return nil
}

// OpenLookup lists a taxista's open turnos.
type OpenLookup interface {
	OpenFor(ctx context.Context, org, taxista primitive.ObjectID) ([]models.Turno, error)
}

// Gate enforces the active-shift rules.
type Gate struct {
	turnos OpenLookup
}

// NewGate constructs a Gate.
func NewGate(turnos OpenLookup) *Gate {
	return &Gate{turnos: turnos}
}

// Active returns the taxista's single open turno.
func (g *Gate) Active(ctx context.Context, org, taxista primitive.ObjectID) (models.Turno, error) {
	open, err := g.turnos.OpenFor(ctx, org, taxista)
	if err != nil {
		return models.Turno{}, apperr.Internal("lookup open turno", err)
	}
	switch len(open) {
	case 0:
		return models.Turno{}, ErrNoActiveShift
	case 1:
		return open[0], nil
	default:
		return models.Turno{}, ErrMultipleOpen
	}
}

// CanStart rejects a new turno while the taxista still holds an open one.
func (g *Gate) CanStart(ctx context.Context, org, taxista primitive.ObjectID) error {
	open, err := g.turnos.OpenFor(ctx, org, taxista)
	if err != nil {
		return apperr.Internal("lookup open turno", err)
	}
	if len(open) > 0 {
		return ErrAlreadyOpen
	}
	return nil
}

// ForService resolves the turno a new service attaches to. When requested
// is nil the active turno is used; otherwise it must be the active turno.
func (g *Gate) ForService(ctx context.Context, org, taxista primitive.ObjectID, requested *primitive.ObjectID) (models.Turno, error) {
	active, err := g.Active(ctx, org, taxista)
	if err != nil {
		return models.Turno{}, err
	}
	if requested != nil && *requested != active.ID {
		return models.Turno{}, ErrNotActiveShift
	}
	return active, nil
}
