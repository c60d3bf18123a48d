package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/testutil"
)

func TestNewPicksFetcher(t *testing.T) {
	if _, ok := New("https://example.com/data.json", 0).(*HTTP); !ok {
		t.Error("https location should use HTTP fetcher")
	}
	if _, ok := New("http://localhost:8080/data.json", 0).(*HTTP); !ok {
		t.Error("http location should use HTTP fetcher")
	}
	f, ok := New("", 0).(*File)
	if !ok {
		t.Fatal("empty location should use file fetcher")
	}
	if f.Path() != DefaultLocation {
		t.Errorf("path = %q, want %q", f.Path(), DefaultLocation)
	}
	if _, ok := New("./fixtures/data.json", 0).(*File); !ok {
		t.Error("relative path should use file fetcher")
	}
}

func TestFileFetch(t *testing.T) {
	path := testutil.WriteJSON(t, t.TempDir(), "data.json", testutil.Sample())
	records, err := NewFile(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := testutil.Sample()
	if len(records) != len(want) {
		t.Fatalf("records = %d, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestFileFetchEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	_ = os.WriteFile(path, []byte("[]"), 0o644)
	records, err := NewFile(path).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d", len(records))
	}
}

func TestFileFetchErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"malformed":     `[{"name": "A",`,
		"not an array":  `{"name": "A"}`,
		"missing field": `[{"name": "A", "description": "d", "logo": "l"}]`,
		"wrong type":    `[{"name": "A", "description": "d", "logo": "l", "isActive": "yes"}]`,
		"empty name":    `[{"name": "", "description": "d", "logo": "l", "isActive": true}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".json")
			_ = os.WriteFile(path, []byte(body), 0o644)
			_, err := NewFile(path).Fetch(context.Background())
			if !errors.Is(err, apperr.ErrLoad) {
				t.Fatalf("err = %v, want ErrLoad", err)
			}
			if !strings.Contains(err.Error(), "failed to load "+path) {
				t.Errorf("error should name the location: %v", err)
			}
		})
	}
}

func TestFileFetchMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.json")).Fetch(context.Background())
	if !errors.Is(err, apperr.ErrLoad) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestDecodeStripsMarkup(t *testing.T) {
	data := []byte(`[{"name":"<b>Dev</b>Lens","description":"Fast & <script>alert(1)</script>small","logo":" logo.svg ","isActive":true}]`)
	records, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	got := records[0]
	if got.Name != "DevLens" {
		t.Errorf("name = %q", got.Name)
	}
	if strings.Contains(got.Description, "<") || !strings.Contains(got.Description, "Fast & ") {
		t.Errorf("description = %q", got.Description)
	}
	if got.Logo != "logo.svg" {
		t.Errorf("logo = %q", got.Logo)
	}
}

func TestDecodeKeepsLessThanInProse(t *testing.T) {
	data := []byte(`[{"name":"Cmp <3","description":"Use a<b and x <y filters","logo":"c.svg","isActive":false}]`)
	records, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := records[0].Description; got != "Use a<b and x <y filters" {
		t.Errorf("description = %q", got)
	}
	if got := records[0].Name; got != "Cmp <3" {
		t.Errorf("name = %q", got)
	}
}

func TestDecodeRejectsBlankName(t *testing.T) {
	for _, name := range []string{"   ", "<b></b>", "<i> </i>"} {
		data := []byte(`[{"name":"A","description":"a","logo":"a.svg","isActive":true},` +
			`{"name":"` + name + `","description":"b","logo":"b.svg","isActive":true}]`)
		_, err := Decode(data)
		if err == nil {
			t.Errorf("name %q: expected error", name)
			continue
		}
		if !strings.Contains(err.Error(), "record 1") {
			t.Errorf("name %q: error should name the record: %v", name, err)
		}
	}
}

func TestFileFetchBlankName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`[{"name":" ","description":"d","logo":"x.svg","isActive":true}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewFile(path).Fetch(context.Background())
	if !errors.Is(err, apperr.ErrLoad) {
		t.Errorf("err = %v, want ErrLoad", err)
	}
}

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"A","description":"a","logo":"a.svg","isActive":true}]`))
	}))
	defer srv.Close()

	records, err := NewHTTP(srv.URL+"/data.json", time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].Name != "A" || !records[0].IsActive {
		t.Errorf("records = %+v", records)
	}
}

func TestHTTPFetchStatusNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second).Fetch(context.Background())
	if !errors.Is(err, apperr.ErrLoad) {
		t.Fatalf("err = %v, want ErrLoad", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry the status: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1", calls)
	}
}

func TestHTTPFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	if _, err := NewHTTP(srv.URL, time.Second).Fetch(context.Background()); !errors.Is(err, apperr.ErrLoad) {
		t.Errorf("err = %v", err)
	}
}

func TestFetcherFunc(t *testing.T) {
	f := FetcherFunc(func(context.Context) ([]models.Extension, error) {
		return testutil.Pair(), nil
	})
	records, err := f.Fetch(context.Background())
	if err != nil || len(records) != 2 {
		t.Errorf("records=%v err=%v", records, err)
	}
}
