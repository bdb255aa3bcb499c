package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorustyt/polynav/navmesh"
	"github.com/gorustyt/polynav/store"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

var squareLayer = map[string]any{
	"id":   1,
	"mode": "region",
	"polygons": []any{
		map[string]any{"points": [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
	},
}

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	h := New(opts...).Handler()
	w := do(t, h, http.MethodPost, "/layers", squareLayer)
	if w.Code != http.StatusCreated {
		t.Fatalf("create layer: %d %s", w.Code, w.Body.String())
	}
	return h
}

func TestEditsAndPath(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/layers/1/obstacles", map[string]any{
		"points": [][2]float64{{3, 3}, {7, 3}, {7, 7}, {3, 7}},
	})
	assertTrue(t, w.Code == http.StatusCreated, "Add obstacle")
	var added struct {
		ID   string  `json:"id"`
		Area float64 `json:"area"`
	}
	decode(t, w, &added)
	assertTrue(t, added.ID == "1" && added.Area == 84, "Obstacle id and area")

	w = do(t, h, http.MethodPost, "/layers/1/bridges", map[string]any{
		"id":     "north",
		"points": [][2]float64{{8, 9}, {12, 9}, {12, 13}, {8, 13}},
	})
	assertTrue(t, w.Code == http.StatusCreated, "Add named bridge")
	w = do(t, h, http.MethodPost, "/layers/1/bridges", map[string]any{
		"id":     "north",
		"points": [][2]float64{{8, 9}, {12, 9}, {12, 13}, {8, 13}},
	})
	assertTrue(t, w.Code == http.StatusConflict, "Duplicate edit id")

	var path struct {
		Path [][2]float64 `json:"path"`
		Cost float64      `json:"cost"`
	}
	w = do(t, h, http.MethodPost, "/layers/1/path", map[string]any{"start": [2]float64{1, 1}, "end": [2]float64{9, 11}})
	assertTrue(t, w.Code == http.StatusOK, "Path query")
	decode(t, w, &path)
	assertTrue(t, len(path.Path) >= 2 && path.Cost > 0, "Path over the bridge")

	w = do(t, h, http.MethodDelete, "/layers/1/bridges/north", nil)
	assertTrue(t, w.Code == http.StatusOK, "Remove bridge")
	var removed struct {
		Removed bool `json:"removed"`
	}
	decode(t, w, &removed)
	assertTrue(t, removed.Removed, "Bridge existed")

	w = do(t, h, http.MethodDelete, "/layers/1/obstacles/nope", nil)
	decode(t, w, &removed)
	assertTrue(t, w.Code == http.StatusOK && !removed.Removed, "Unknown edit is a no-op")

	w = do(t, h, http.MethodPost, "/layers/1/path", map[string]any{"start": [2]float64{1, 1}, "end": [2]float64{9, 11}})
	decode(t, w, &path)
	assertTrue(t, len(path.Path) == 0 && path.Path != nil, "Empty path once the bridge is gone")

	var inside struct {
		Inside  bool `json:"inside"`
		Polygon int  `json:"polygon"`
	}
	w = do(t, h, http.MethodPost, "/layers/1/contains", map[string]any{"point": [2]float64{5, 5}})
	decode(t, w, &inside)
	assertTrue(t, !inside.Inside && inside.Polygon == -1, "Obstacle is outside")
	w = do(t, h, http.MethodPost, "/layers/1/contains", map[string]any{"point": [2]float64{1, 1}})
	decode(t, w, &inside)
	assertTrue(t, inside.Inside && inside.Polygon == 0, "Corner is inside")

	var view layerView
	w = do(t, h, http.MethodGet, "/layers/1", nil)
	decode(t, w, &view)
	assertTrue(t, view.ID == 1 && view.Mode == "region", "Layer header")
	assertTrue(t, len(view.Polygons) == 1 && len(view.Polygons[0].Holes) == 1, "Region with the cut")
	assertTrue(t, len(view.Edits) == 1 && view.Edits[0].Kind == "obstacle", "Remaining edits")
}

func TestErrors(t *testing.T) {
	h := newTestServer(t)
	assertTrue(t, do(t, h, http.MethodGet, "/layers/2", nil).Code == http.StatusNotFound, "Unknown layer")
	assertTrue(t, do(t, h, http.MethodGet, "/layers/abc", nil).Code == http.StatusBadRequest, "Bad layer id")
	assertTrue(t, do(t, h, http.MethodPost, "/layers/1/path", "{").Code == http.StatusBadRequest, "Bad json")

	w := do(t, h, http.MethodPost, "/layers/1/obstacles", map[string]any{"points": [][2]float64{{0, 0}, {1, 1}}})
	assertTrue(t, w.Code == http.StatusBadRequest, "Degenerate ring")
	w = do(t, h, http.MethodPost, "/layers", map[string]any{"id": 5, "mode": "voxel"})
	assertTrue(t, w.Code == http.StatusBadRequest, "Unknown mode")
	w = do(t, h, http.MethodGet, "/layers/1/snapshot?format=xml", nil)
	assertTrue(t, w.Code == http.StatusBadRequest, "Unknown format")
	w = do(t, h, http.MethodPut, "/layers/1/save", nil)
	assertTrue(t, w.Code == http.StatusServiceUnavailable, "No store")
}

func TestSnapshot(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/layers/1/obstacles", map[string]any{
		"points": [][2]float64{{3, 3}, {7, 3}, {7, 7}, {3, 7}},
	})
	for _, format := range []string{"bin", "msgpack", "proto"} {
		w := do(t, h, http.MethodGet, "/layers/1/snapshot?format="+format, nil)
		assertTrue(t, w.Code == http.StatusOK, format+": snapshot")
		codec, _ := navmesh.CodecByName(format)
		snap, err := codec.Decode(w.Body.Bytes())
		assertTrue(t, err == nil && snap.LayerID == 1 && len(snap.Edits) == 1, format+": decodable")
	}
}

func TestSaveLoad(t *testing.T) {
	st, err := store.Open("sqlite://file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	h := newTestServer(t, WithStore(st))
	do(t, h, http.MethodPost, "/layers/1/obstacles", map[string]any{
		"points": [][2]float64{{3, 3}, {7, 3}, {7, 7}, {3, 7}},
	})
	assertTrue(t, do(t, h, http.MethodPut, "/layers/1/save", nil).Code == http.StatusOK, "Save")

	// replace the layer, then load the saved copy back
	assertTrue(t, do(t, h, http.MethodPost, "/layers", squareLayer).Code == http.StatusCreated, "Recreate")
	w := do(t, h, http.MethodPost, "/layers/1/load", nil)
	assertTrue(t, w.Code == http.StatusOK, "Load")
	var view layerView
	decode(t, w, &view)
	assertTrue(t, view.Area == 84 && len(view.Edits) == 1, "Saved edits are back")

	assertTrue(t, do(t, h, http.MethodPost, "/layers/9/load", nil).Code == http.StatusNotFound, "Nothing saved")
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, WithRateLimit(0.001, 2))
	assertTrue(t, do(t, h, http.MethodGet, "/layers/1", nil).Code == http.StatusOK, "Within burst")
	assertTrue(t, do(t, h, http.MethodGet, "/layers/1", nil).Code == http.StatusTooManyRequests, "Over the limit")
}
