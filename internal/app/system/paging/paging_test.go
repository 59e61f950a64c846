package paging

import (
	"net/http/httptest"
	"testing"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type row struct {
	Key string
	ID  primitive.ObjectID
}

func rowKey(r row) string            { return r.Key }
func rowID(r row) primitive.ObjectID    { return r.ID }

func rows(keys ...string) []row {
	out := make([]row, len(keys))
	for i, k := range keys {
		out[i] = row{Key: k, ID: primitive.NewObjectID()}
	}
	return out
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{"default", "", DefaultLimit},
		{"explicit", "?limit=10", 10},
		{"clamped", "?limit=5000", MaxLimit},
		{"garbage", "?limit=abc", DefaultLimit},
		{"negative", "?limit=-3", DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/vehiculos"+tt.query, nil)
			if got := ParseParams(r).Limit; got != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", got, tt.wantLimit)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	cursor := wafflemongo.EncodeCursor("abc", primitive.NewObjectID())
	tests := []struct {
		name       string
		p          Params
		wantDir    Direction
		wantOrder  int
		wantCursor bool
	}{
		{"first page", Params{}, Forward, 1, false},
		{"after", Params{After: cursor}, Forward, 1, true},
		{"before", Params{Before: cursor}, Backward, -1, true},
		{"before wins", Params{Before: cursor, After: cursor}, Backward, -1, true},
		{"undecodable", Params{After: "not-a-cursor"}, Forward, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.Configure()
			if got.Direction != tt.wantDir || got.SortOrder != tt.wantOrder {
				t.Errorf("Configure() = %v/%d, want %v/%d", got.Direction, got.SortOrder, tt.wantDir, tt.wantOrder)
			}
			if (got.Cursor != nil) != tt.wantCursor {
				t.Errorf("Cursor set = %v, want %v", got.Cursor != nil, tt.wantCursor)
			}
			if got.Limit != DefaultLimit {
				t.Errorf("Limit = %d, want %d", got.Limit, DefaultLimit)
			}
		})
	}
}

func TestFinish_FirstPageWithMore(t *testing.T) {
	cfg := Params{Limit: 2}.Configure()
	page := Finish(cfg, rows("a", "b", "c"), rowKey, rowID)
	if len(page.Items) != 2 || page.Items[1].Key != "b" {
		t.Fatalf("items = %+v", page.Items)
	}
	if page.NextCursor == "" {
		t.Error("expected next cursor")
	}
	if page.PrevCursor != "" {
		t.Error("first page should have no prev cursor")
	}
}

func TestFinish_LastPage(t *testing.T) {
	cfg := Params{Limit: 2, After: wafflemongo.EncodeCursor("a", primitive.NewObjectID())}.Configure()
	page := Finish(cfg, rows("b"), rowKey, rowID)
	if len(page.Items) != 1 {
		t.Fatalf("items = %+v", page.Items)
	}
	if page.NextCursor != "" {
		t.Error("last page should have no next cursor")
	}
	if page.PrevCursor == "" {
		t.Error("expected prev cursor after paging forward")
	}
}

func TestFinish_Backward(t *testing.T) {
	cfg := Params{Limit: 2, Before: wafflemongo.EncodeCursor("z", primitive.NewObjectID())}.Configure()
	// Backward queries sort descending.
	page := Finish(cfg, rows("d", "c", "b"), rowKey, rowID)
	if len(page.Items) != 2 || page.Items[0].Key != "c" || page.Items[1].Key != "d" {
		t.Fatalf("items = %+v", page.Items)
	}
	if page.PrevCursor == "" || page.NextCursor == "" {
		t.Error("expected both cursors")
	}
}

func TestFinish_Empty(t *testing.T) {
	page := Finish(Params{}.Configure(), []row(nil), rowKey, rowID)
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("Items = %#v, want empty slice", page.Items)
	}
}

func TestApply(t *testing.T) {
	cfg := Params{}.Configure()
	f := cfg.Apply(map[string]any{"x": 1}, "k")
	if _, ok := f["x"]; !ok {
		t.Error("filter without cursor should be unchanged")
	}
	cfg = Params{After: wafflemongo.EncodeCursor("a", primitive.NewObjectID())}.Configure()
	f = cfg.Apply(map[string]any{"x": 1}, "k")
	if _, ok := f["$and"]; !ok {
		t.Errorf("expected $and, got %v", f)
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  []int
	}{
		{"empty", []int{}, []int{}},
		{"single", []int{1}, []int{1}},
		{"three", []int{1, 2, 3}, []int{3, 2, 1}},
		{"four", []int{1, 2, 3, 4}, []int{4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := append([]int(nil), tt.input...)
			Reverse(rows)
			for i, v := range rows {
				if v != tt.want[i] {
					t.Errorf("Reverse() got %v, want %v", rows, tt.want)
					break
				}
			}
		})
	}
}

func TestBuildCursors(t *testing.T) {
	prev, next := BuildCursors([]row{}, rowKey, rowID)
	if prev != "" || next != "" {
		t.Errorf("BuildCursors(empty) = (%q, %q)", prev, next)
	}
	r := rows("first", "last")
	prev, next = BuildCursors(r, rowKey, rowID)
	if prev == next {
		t.Error("prev and next should differ for multiple rows")
	}
	c, ok := wafflemongo.DecodeCursor(next)
	if !ok || c.CI != "last" || c.ID != r[1].ID {
		t.Errorf("next cursor decodes to %+v", c)
	}
}
