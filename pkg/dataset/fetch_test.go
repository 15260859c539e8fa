package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/safetymap/pkg/errors"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://example.org/safety.json", true},
		{"http://localhost:8000/d.yaml", true},
		{"safety.json", false},
		{"./https/safety.json", false},
		{"ftp://example.org/d.json", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.source); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.yaml":
			w.Write([]byte("categories:\n  - id: 1\n    name: Data\ntechniques:\n  - id: 1\n    name: Filtering\n    categoryId: 1\n"))
		case "/api/data":
			w.Write([]byte(`{"categories":[{"id":1,"name":"Data"}],"techniques":[],"evidence":[]}`))
		case "/bad.json":
			w.Write([]byte(`{"categories":`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	ctx := context.Background()

	t.Run("yaml by extension", func(t *testing.T) {
		ds, err := Open(ctx, ts.URL+"/data.yaml")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if len(ds.Categories) != 1 || len(ds.Techniques) != 1 {
			t.Errorf("got %d categories, %d techniques", len(ds.Categories), len(ds.Techniques))
		}
	})

	t.Run("json without extension", func(t *testing.T) {
		ds, err := Fetch(ctx, ts.URL+"/api/data")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if ds.Categories[0].ID != "1" {
			t.Errorf("category id = %q, want \"1\"", ds.Categories[0].ID)
		}
	})

	tests := []struct {
		path string
		code errors.Code
	}{
		{"/bad.json", errors.ErrCodeInvalidDataset},
		{"/missing.json", errors.ErrCodeNotFound},
		{"/data.csv", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if _, err := Fetch(ctx, ts.URL+tt.path); !errors.Is(err, tt.code) {
				t.Errorf("Fetch(%s) = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}
