package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/stackmesa/depstack/pkg/cache"
	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/store"
)

const typeMem = coord.Type("mem")

type memProvider struct {
	repo map[string][]coord.Dep
}

func (p *memProvider) Type() coord.Type { return typeMem }

func (p *memProvider) Canonicalize(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Lib, coord.Coord, error) {
	return lib, c, nil
}

func (p *memProvider) DepID(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.ID, error) {
	return coord.ID(c.Version), nil
}

func (p *memProvider) ManifestType(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Coord, error) {
	return c, nil
}

func (p *memProvider) Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]coord.Dep, error) {
	return p.repo[lib.Name+" "+c.Version], nil
}

func (p *memProvider) CompareVersions(lib coord.Lib, a, b coord.Coord, cfg provider.Config) (int, error) {
	return strings.Compare(a.Version, b.Version), nil
}

func (p *memProvider) Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]string, error) {
	return []string{lib.Name + "-" + c.Version + ".jar"}, nil
}

func (p *memProvider) Location(lib coord.Lib, c coord.Coord, cfg provider.Config) (string, error) {
	return "", nil
}

func (p *memProvider) Summary(lib coord.Lib, c coord.Coord) string { return c.Version }

func testServer(repo map[string][]coord.Dep) *Server {
	reg := provider.NewRegistry(&memProvider{repo: repo})
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewServer(reg, provider.Config{}, store.NewMemoryStore(), cache.NewNullCache(), logger)
}

func TestResolveEndpoint(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {{Lib: coord.Lib{Group: "b", Name: "b"}, Coord: coord.Coord{Type: typeMem, Version: "2"}}},
	}
	s := testServer(repo)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	body := `{"deps":[{"lib":"a/a","coord":{"type":"mem","version":"1"}}]}`
	resp, err := http.Post(ts.URL+"/api/resolve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}

	var got struct {
		ID   string                     `json:"id"`
		Libs map[string]json.RawMessage `json:"libs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" {
		t.Error("response has no resolution ID")
	}
	if len(got.Libs) != 2 {
		t.Errorf("libs = %v, want a/a and b/b", got.Libs)
	}

	// The archived resolution is retrievable.
	archived, err := http.Get(ts.URL + "/api/resolutions/" + got.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer archived.Body.Close()
	if archived.StatusCode != http.StatusOK {
		t.Errorf("archived status = %d", archived.StatusCode)
	}
}

func TestResolveBadRequest(t *testing.T) {
	s := testServer(nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/resolve", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetMissingResolution(t *testing.T) {
	s := testServer(nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/resolutions/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	s := testServer(nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
