package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hepevd/internal/codec"
	"hepevd/internal/domain"
	"hepevd/internal/repository/sqlite"
	"hepevd/internal/service"
)

const testEvent = `{"name": "run3", "hits": [
  {"type": "3D", "position": {"x": 0, "y": 0, "z": 0}, "energy": 1, "properties": [{"charge": 2}]},
  {"type": "3D", "hitType": "U", "position": {"x": 1, "y": 0, "z": 0}, "energy": 2},
  {"type": "2D", "position": {"x": 1, "y": 1, "z": 0}, "energy": 3}
],
"particles": [{"id": "p1", "interactionType": "Cosmic",
  "hits": [{"type": "3D", "position": {"x": 0, "y": 0, "z": 0}, "energy": 1}]}]
}`

func newTestService(t *testing.T) *service.EventService {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return service.NewEventService(repo, service.NewEventBus())
}

func loadTestEvent(t *testing.T, svc *service.EventService) *domain.EventRecord {
	t.Helper()
	rec, err := svc.Import(context.Background(), strings.NewReader(testEvent), codec.NewJSONCodec(), service.SourceAPI)
	if err != nil {
		t.Fatalf("failed to import event: %v", err)
	}
	return rec
}

func newTestMux(h *EventHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hits", h.GetHits)
	mux.HandleFunc("GET /mcHits", h.GetMCHits)
	mux.HandleFunc("GET /markers", h.GetMarkers)
	mux.HandleFunc("GET /particles", h.GetParticles)
	mux.HandleFunc("GET /geometry", h.GetGeometry)
	mux.HandleFunc("GET /api/current", h.GetCurrent)
	mux.HandleFunc("GET /api/events", h.ListEvents)
	mux.HandleFunc("POST /api/events", h.CreateEvent)
	mux.HandleFunc("GET /api/events/{id}", h.GetEvent)
	mux.HandleFunc("DELETE /api/events/{id}", h.DeleteEvent)
	mux.HandleFunc("POST /api/events/{id}/select", h.SelectEvent)
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	return Chain(mux, Recover, CORS)
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCurrentEventEndpoints(t *testing.T) {
	svc := newTestService(t)
	loadTestEvent(t, svc)
	h := newTestMux(NewEventHandler(svc))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"all hits", "/hits", 3},
		{"3D hits", "/hits?dim=3D", 2},
		{"2D hits", "/hits?dim=2D", 1},
		{"particles", "/particles", 1},
		{"2D particles", "/particles?dim=2D", 0},
		{"mc hits", "/mcHits", 0},
		{"markers", "/markers", 0},
		{"geometry", "/geometry", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			var items []json.RawMessage
			if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("len = %d, want %d", len(items), tt.want)
			}
		})
	}

	t.Run("invalid dimension", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/hits?dim=4D", "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("current", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/current", "", "")
		var resp CurrentResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Version != 1 || resp.Summary.Hits != 3 || resp.Record == nil {
			t.Errorf("current = %+v, want version 1 with 3 hits", resp)
		}
	})
}

func TestEventLibrary(t *testing.T) {
	svc := newTestService(t)
	h := newTestMux(NewEventHandler(svc))

	var created domain.EventRecord
	t.Run("create json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/events", "application/json", testEvent)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("failed to decode record: %v", err)
		}
		if created.Name != "run3" || created.Source != service.SourceAPI {
			t.Errorf("record = %+v", created)
		}
	})

	t.Run("create yaml", func(t *testing.T) {
		body := "name: run4\nhits:\n  - type: 2D\n    position: {x: 1, y: 2, z: 0}\n    energy: 4\n"
		rec := do(t, h, http.MethodPost, "/api/events", "application/yaml", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/events", "application/json", `{"hits": [{"type": "4D"}]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/events", "", "")
		var records []domain.EventRecord
		if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
			t.Fatalf("failed to decode list: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("len = %d, want 2", len(records))
		}
		if records[0].Name != "run4" {
			t.Errorf("newest = %s, want run4", records[0].Name)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/events/"+created.ID, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var ev domain.Event
		if err := json.NewDecoder(rec.Body).Decode(&ev); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if len(ev.Hits) != 3 {
			t.Errorf("len(Hits) = %d, want 3", len(ev.Hits))
		}
	})

	t.Run("select", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/events/"+created.ID+"/select", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		ev, _ := svc.Current()
		if ev.Name != "run3" {
			t.Errorf("current = %s, want run3", ev.Name)
		}
	})

	t.Run("export yaml", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/export/yaml?id="+created.ID, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "yaml") {
			t.Errorf("Content-Type = %s, want yaml", ct)
		}
		if !strings.Contains(rec.Body.String(), "name: run3") {
			t.Errorf("export missing name:\n%s", rec.Body.String())
		}
	})

	t.Run("export unknown format", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/export/xml", "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/api/events/"+created.ID, "", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		rec = do(t, h, http.MethodGet, "/api/events/"+created.ID, "", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status after delete = %d, want 404", rec.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
			t.Errorf("expected error body, got %q", rec.Body.String())
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/api/events/nope", "", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("recover", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}), Recover, Logger)
		rec := do(t, h, http.MethodGet, "/", "", "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		called := false
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}), CORS)
		rec := do(t, h, http.MethodOptions, "/api/events", "", "")
		if rec.Code != http.StatusNoContent || called {
			t.Errorf("status = %d called = %v, want 204 without calling next", rec.Code, called)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing Access-Control-Allow-Origin")
		}
	})

	t.Run("chain order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(http.NotFoundHandler(), mark("a"), mark("b"))
		do(t, h, http.MethodGet, "/", "", "")
		if strings.Join(order, ",") != "a,b" {
			t.Errorf("order = %v, want [a b]", order)
		}
	})
}

func TestQuit(t *testing.T) {
	stopped := make(chan struct{})
	rec := do(t, Quit(func() { close(stopped) }), http.MethodGet, "/quit", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	select {
	case <-stopped:
	default:
		t.Error("stop was not called")
	}
}
