// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size when the client does not ask for one.
const DefaultLimit = 50

// MaxLimit caps the page size a client may request.
const MaxLimit = 200

// Params are the keyset paging inputs of a list request.
type Params struct {
	Limit  int
	Before string
	After  string
}

// ParseParams reads limit, before and after from the query string. A
// missing or invalid limit falls back to DefaultLimit; larger values are
// clamped to MaxLimit.
func ParseParams(r *http.Request) Params {
	q := r.URL.Query()
	p := Params{
		Limit:  DefaultLimit,
		Before: strings.TrimSpace(q.Get("before")),
		After:  strings.TrimSpace(q.Get("after")),
	}
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Page is the JSON envelope of a paged list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // ascending, "gt" cursor
	Backward                  // descending, "lt" cursor
)

// KeysetConfig holds the result of configuring keyset pagination.
type KeysetConfig struct {
	Direction Direction
	SortOrder int
	Cursor    *wafflemongo.Cursor
	Limit     int
}

// Configure determines direction and decodes the cursor. An undecodable
// cursor is ignored and the first page is returned.
func (p Params) Configure() KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1, Limit: p.Limit}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if p.Before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(p.Before); ok {
			cfg.Cursor = &c
		}
	} else if p.After != "" {
		if c, ok := wafflemongo.DecodeCursor(p.After); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// FindOptions sorts by sortField then _id and fetches one extra row to
// detect a further page.
func (cfg KeysetConfig) FindOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{
			{Key: sortField, Value: cfg.SortOrder},
			{Key: "_id", Value: cfg.SortOrder},
		}).
		SetLimit(int64(cfg.Limit + 1))
}

// Window returns the cursor condition for the query filter, or nil.
func (cfg KeysetConfig) Window(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Apply merges the cursor window into filter.
func (cfg KeysetConfig) Apply(filter bson.M, sortField string) bson.M {
	w := cfg.Window(sortField)
	if w == nil {
		return filter
	}
	if len(filter) == 0 {
		return w
	}
	return bson.M{"$and": []bson.M{filter, w}}
}

// Finish trims the look-ahead row, restores ascending order for backward
// pages and builds the cursors.
func Finish[T any](cfg KeysetConfig, rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) Page[T] {
	more := len(rows) > cfg.Limit
	if more {
		rows = rows[:cfg.Limit]
	}
	if cfg.Direction == Backward {
		Reverse(rows)
	}
	if rows == nil {
		rows = []T{}
	}
	page := Page[T]{Items: rows}
	if len(rows) == 0 {
		return page
	}
	prev, next := BuildCursors(rows, keyFn, idFn)
	switch cfg.Direction {
	case Backward:
		page.NextCursor = next
		if more {
			page.PrevCursor = prev
		}
	default:
		if more {
			page.NextCursor = next
		}
		if cfg.Cursor != nil {
			page.PrevCursor = prev
		}
	}
	return page
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last elements.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first := rows[0]
	last := rows[len(rows)-1]
	prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
	next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
	return prev, next
}
