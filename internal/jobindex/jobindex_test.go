package jobindex

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(zap.NewNop(), "test-token", server.URL)
}

func TestGetJobByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/tool/search_by_id_vacante" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if body["id_vacante"] != "101" {
			t.Errorf("expected id_vacante 101, got %q", body["id_vacante"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id_vacante":           "101",
			"nombre_de_la_vacante": "Vendedor de piso",
			"empresa":              "Tiendas del Valle",
			"sueldo":               "$9,500 mensuales",
			"Estatus":              "Abierta",
			"score":                3.7,
		})
	})

	job, err := client.GetJobByID(context.Background(), "101")
	if err != nil {
		t.Fatalf("GetJobByID failed: %v", err)
	}

	if job.ID != "101" || job.Title != "Vendedor de piso" || job.Company != "Tiendas del Valle" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Raw["sueldo"] != "$9,500 mensuales" {
		t.Fatalf("expected raw field kept, got %v", job.Raw)
	}
	if _, ok := job.Raw["score"]; ok {
		t.Fatalf("expected non-string field dropped, got %v", job.Raw)
	}
}

func TestGetJobByIDRejectsMismatchedEcho(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id_vacante":           "202",
			"nombre_de_la_vacante": "Otra vacante",
		})
	})

	if _, err := client.GetJobByID(context.Background(), "101"); err == nil {
		t.Fatal("expected error for mismatched posting id")
	}
}

func TestGetJobByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	if _, err := client.GetJobByID(context.Background(), "101"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetJobByIDGzipResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		json.NewEncoder(gz).Encode(map[string]interface{}{
			"id_vacante":           "101",
			"nombre_de_la_vacante": "Vendedor de piso",
		})
	})

	job, err := client.GetJobByID(context.Background(), "101")
	if err != nil {
		t.Fatalf("GetJobByID failed: %v", err)
	}
	if job.Title != "Vendedor de piso" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestListAvailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tool/search_available_vacancies" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if body["offset"] != 5 || body["limit"] != 5 {
			t.Errorf("unexpected paging request: %v", body)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"id_vacante": "101", "nombre_de_la_vacante": "Vendedor de piso"},
				{"id_vacante": "202", "nombre_de_la_vacante": "Cajero"},
			},
			"total":       12,
			"offset":      5,
			"limit":       5,
			"has_more":    true,
			"next_offset": 10,
		})
	})

	page, err := client.ListAvailable(context.Background(), 5, 5)
	if err != nil {
		t.Fatalf("ListAvailable failed: %v", err)
	}

	if page.Jobs.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d", page.Jobs.Len())
	}
	if page.Total != 12 || !page.HasMore || page.NextOffset != 10 {
		t.Fatalf("unexpected page cursor: %+v", page)
	}
	if page.Jobs.FindByID("202") == nil {
		t.Fatal("expected posting 202 in page")
	}
}

func TestListAvailableClampsLimit(t *testing.T) {
	var gotLimit int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		gotLimit = body["limit"]
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []map[string]interface{}{}})
	})
	client.MaxPageSize = 20

	if _, err := client.ListAvailable(context.Background(), 0, 500); err != nil {
		t.Fatalf("ListAvailable failed: %v", err)
	}
	if gotLimit != 20 {
		t.Errorf("limit sent = %d, want the configured maximum", gotLimit)
	}

	if _, err := client.ListAvailable(context.Background(), 0, 0); err != nil {
		t.Fatalf("ListAvailable failed: %v", err)
	}
	if gotLimit != DefaultPageSize {
		t.Errorf("limit sent = %d, want the default page size", gotLimit)
	}
}

func TestStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/status" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Status(context.Background()); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
}

func TestStatusBadGateway(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	if err := client.Status(context.Background()); err == nil {
		t.Fatal("expected error for unhealthy index")
	}
}
