// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/store/audit"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/ratelimit"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for one category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// ValidSetting reports whether s is a known destination setting.
func ValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Config selects the destination per category.
type Config struct {
	Auth  string
	Admin string
	Fleet string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.OrganizationID != nil {
		fields = append(fields, zap.String("organization_id", event.OrganizationID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case audit.CategoryAuth:
		s = l.config.Auth
	case audit.CategoryAdmin:
		s = l.config.Admin
	case audit.CategoryFleet:
		s = l.config.Fleet
	}
	if s == "" {
		return All
	}
	return s
}

// Log records event according to the category's setting. A nil Logger is
// a no-op so handlers under test can leave it unset.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	setting := l.setting(event.Category)
	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// actorEvent fills the fields shared by every action a principal performs.
func actorEvent(r *http.Request, actor *auth.Principal, category, eventType string, org *primitive.ObjectID) audit.Event {
	e := audit.Event{
		Category:       category,
		EventType:      eventType,
		OrganizationID: org,
		IP:             ratelimit.ClientIP(r),
		UserAgent:      r.UserAgent(),
		Success:        true,
		Details:        map[string]string{},
	}
	if actor != nil {
		id := actor.UserID
		e.ActorID = &id
		e.Details["actor_role"] = actor.Role.String()
	}
	return e
}

// --- Authentication ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, u models.User) {
	id := u.ID
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryAuth,
		EventType:      audit.EventLoginSuccess,
		UserID:         &id,
		OrganizationID: u.OrganizationID,
		IP:             ratelimit.ClientIP(r),
		UserAgent:      r.UserAgent(),
		Success:        true,
		Details:        map[string]string{"username": u.Username},
	})
}

// LoginFailed logs a rejected login. u is nil when the username is
// unknown.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, username string, u *models.User, eventType, reason string) {
	e := audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"username": username},
	}
	if u != nil {
		id := u.ID
		e.UserID = &id
		e.OrganizationID = u.OrganizationID
	}
	l.Log(ctx, e)
}

// --- Administration ---

// UserCreated logs a user account created by actor.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actor *auth.Principal, u models.User) {
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventUserCreated, u.OrganizationID)
	id := u.ID
	e.UserID = &id
	e.Details["role"] = u.Role.String()
	l.Log(ctx, e)
}

// UserUpdated logs changed fields of a user.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actor *auth.Principal, u models.User, fields []string) {
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventUserUpdated, u.OrganizationID)
	id := u.ID
	e.UserID = &id
	e.Details["fields_changed"] = strings.Join(fields, ",")
	l.Log(ctx, e)
}

// UserDeleted logs a removed user.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actor *auth.Principal, u models.User) {
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventUserDeleted, u.OrganizationID)
	id := u.ID
	e.UserID = &id
	e.Details["role"] = u.Role.String()
	l.Log(ctx, e)
}

// OrgCreated logs a new organization.
func (l *Logger) OrgCreated(ctx context.Context, r *http.Request, actor *auth.Principal, org models.Organization) {
	id := org.ID
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventOrgCreated, &id)
	e.Details["org_name"] = org.Name
	l.Log(ctx, e)
}

// OrgUpdated logs changed fields of an organization.
func (l *Logger) OrgUpdated(ctx context.Context, r *http.Request, actor *auth.Principal, org models.Organization, fields []string) {
	id := org.ID
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventOrgUpdated, &id)
	e.Details["fields_changed"] = strings.Join(fields, ",")
	l.Log(ctx, e)
}

// OrgFeaturesSet logs a feature flag merge.
func (l *Logger) OrgFeaturesSet(ctx context.Context, r *http.Request, actor *auth.Principal, orgID primitive.ObjectID, changes models.Features) {
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventOrgFeaturesSet, &orgID)
	for k, v := range changes {
		e.Details["feature_"+k] = strconv.FormatBool(v)
	}
	l.Log(ctx, e)
}

// OrgDeleted logs a removed organization.
func (l *Logger) OrgDeleted(ctx context.Context, r *http.Request, actor *auth.Principal, org models.Organization) {
	id := org.ID
	e := actorEvent(r, actor, audit.CategoryAdmin, audit.EventOrgDeleted, &id)
	e.Details["org_name"] = org.Name
	l.Log(ctx, e)
}

// --- Fleet ---

// TurnoLiquidated logs the settlement of a closed turno.
func (l *Logger) TurnoLiquidated(ctx context.Context, r *http.Request, actor *auth.Principal, t models.Turno) {
	org := t.OrganizationID
	e := actorEvent(r, actor, audit.CategoryFleet, audit.EventTurnoLiquidated, &org)
	taxista := t.TaxistaID
	e.UserID = &taxista
	e.Details["turno_id"] = t.ID.Hex()
	l.Log(ctx, e)
}

// TurnoDeleted logs a turno removed together with its services.
func (l *Logger) TurnoDeleted(ctx context.Context, r *http.Request, actor *auth.Principal, t models.Turno, services int64) {
	org := t.OrganizationID
	e := actorEvent(r, actor, audit.CategoryFleet, audit.EventTurnoDeleted, &org)
	taxista := t.TaxistaID
	e.UserID = &taxista
	e.Details["turno_id"] = t.ID.Hex()
	e.Details["deleted_services"] = strconv.FormatInt(services, 10)
	l.Log(ctx, e)
}

// ServiceDeleted logs a removed service.
func (l *Logger) ServiceDeleted(ctx context.Context, r *http.Request, actor *auth.Principal, s models.Service) {
	org := s.OrganizationID
	e := actorEvent(r, actor, audit.CategoryFleet, audit.EventServiceDeleted, &org)
	taxista := s.TaxistaID
	e.UserID = &taxista
	e.Details["service_id"] = s.ID.Hex()
	if s.ClientUUID != nil {
		e.Details["client_uuid"] = *s.ClientUUID
	}
	l.Log(ctx, e)
}
