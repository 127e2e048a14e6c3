package profiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "profiles.yaml", `
profiles:
  - id: imprese
    description: company lookups
    scopes:
      - GET:test.imprese.openapi.it/advance
      - " POST:test.postontarget.com/fields/country "
    ttl_seconds: 7200
  - id: short
    scopes: ["GET:test.imprese.openapi.it/base"]
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	p, ok := reg.ByID("imprese")
	if !ok {
		t.Fatalf("expected profile imprese")
	}
	if len(p.Scopes) != 2 || p.Scopes[1] != "POST:test.postontarget.com/fields/country" {
		t.Fatalf("unexpected scopes %v", p.Scopes)
	}
	if p.TTL() != 2*time.Hour {
		t.Fatalf("unexpected ttl %v", p.TTL())
	}

	short, _ := reg.ByID("short")
	if short.TTLSeconds != DefaultTTLSeconds {
		t.Fatalf("expected default ttl, got %d", short.TTLSeconds)
	}
	all := reg.All()
	if len(all) != 2 || all[0].ID != "imprese" || all[1].ID != "short" {
		t.Fatalf("unexpected All() %+v", all)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "profiles.json", `{"profiles":[{"id":"p","scopes":["DELETE:oauth.openapi.it/token"],"ttl_seconds":60}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if p, ok := reg.ByID("p"); !ok || p.TTLSeconds != 60 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
profiles:
  - id: a
    scopes: ["GET:h/p"]
  - id: a
    scopes: ["GET:h/q"]
`,
		"no scopes": `
profiles:
  - id: a
`,
		"bad scope": `
profiles:
  - id: a
    scopes: ["FETCH:h/p"]
`,
		"empty": `profiles: []`,
		"ttl overflow": `
profiles:
  - id: a
    scopes: ["GET:h/p"]
    ttl_seconds: 10000000000
`,
	}
	for name, content := range cases {
		path := writeFile(t, "profiles.yaml", content)
		if _, err := LoadRegistry(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	reg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if len(reg.All()) != 0 {
		t.Fatalf("expected empty registry")
	}
	if _, ok := reg.ByID("x"); ok {
		t.Fatalf("empty registry should have no profiles")
	}
}
