package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/taxonscope/pkg/errors"
)

func fakeGBIF(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/species/match", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Felidae" {
			w.Write([]byte(`{"usageKey":9703,"canonicalName":"Felidae","rank":"FAMILY","matchType":"EXACT"}`))
			return
		}
		w.Write([]byte(`{"matchType":"NONE"}`))
	})
	mux.HandleFunc("/species/9703/children", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"offset":0,"limit":100,"endOfRecords":true,"results":[
			{"key":2435194,"canonicalName":"Panthera","rank":"GENUS","numDescendants":12},
			{"key":9700,"canonicalName":"Pantherinae","rank":"SUBFAMILY"}]}`))
	})
	mux.HandleFunc("/species/2435194/children", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"offset":0,"limit":100,"endOfRecords":true,"results":[
			{"key":5219404,"canonicalName":"Panthera leo","rank":"SPECIES"}]}`))
	})
	mux.HandleFunc("/occurrence/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"offset":0,"limit":300,"endOfRecords":true,"results":[
			{"key":11,"species":"Panthera leo","decimalLatitude":-1.5,"decimalLongitude":36.5},
			{"key":12,"decimalLatitude":0,"decimalLongitude":0}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// runCLI executes the root command against a fake GBIF and returns stdout
// of the command itself (status lines go to the package-level stdout).
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GBIF_API_URL", "")
	t.Setenv("TAXONSCOPE_REDIS_ADDR", "")
	t.Setenv("TAXONSCOPE_PACE", "")
	t.Setenv("TAXONSCOPE_CACHE_SCOPE", "")

	srv := fakeGBIF(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cfg := `
[api]
base_url = "` + srv.URL + `"
timeout = "2s"
retry_attempts = 1

[occurrence]
pace = "1ms"
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	prev := stdout
	stdout = io.Discard
	t.Cleanup(func() { stdout = prev })

	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestTreeCommand(t *testing.T) {
	out, err := runCLI(t, "tree", "Felidae", "--rank", "family", "--format", "json")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{`"name": "Felidae"`, `"name": "Panthera"`, `"name": "Panthera leo"`} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Pantherinae") {
		t.Errorf("strict mode kept a subfamily:\n%s", out)
	}
}

func TestTreeCommand_PermissiveText(t *testing.T) {
	out, err := runCLI(t, "tree", "Felidae", "--rank", "family", "--mode", "permissive", "--max-depth", "1", "--plain")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "Pantherinae") || !strings.Contains(out, "Panthera genus …") {
		t.Errorf("permissive text output:\n%s", out)
	}
}

func TestTreeCommand_DOTFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "felidae.dot")
	if _, err := runCLI(t, "tree", "Felidae", "--rank", "family", "-f", "dot", "-o", path); err != nil {
		t.Fatalf("tree: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") || !strings.Contains(string(data), "Panthera") {
		t.Errorf("dot output:\n%s", data)
	}
}

func TestTreeCommand_Unresolved(t *testing.T) {
	out, err := runCLI(t, "tree", "Animalia", "--plain")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "(not found)") {
		t.Errorf("unresolved root output = %q", out)
	}
}

func TestTreeCommand_InvalidFlags(t *testing.T) {
	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"tree", "Felidae", "--rank", "tribe"}, errors.ErrCodeInvalidRank},
		{[]string{"tree", "Felidae", "--format", "png"}, errors.ErrCodeInvalidFormat},
		{[]string{"tree", "Felidae", "--mode", "lenient"}, errors.ErrCodeInvalidMode},
		{[]string{"--session", "team one", "tree", "Felidae"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRichnessCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "maps", "felidae")
	if _, err := runCLI(t, "richness", "Felidae", "--format", "csv,json", "-o", base, "--region", "Africa,Asia"); err != nil {
		t.Fatalf("richness: %v", err)
	}

	csv, err := os.ReadFile(base + ".csv")
	if err != nil {
		t.Fatal(err)
	}
	if string(csv) != "lat,lon,weight\n-2,36,1\n" {
		t.Errorf("csv = %q", csv)
	}
	js, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(js)) != "[[-2,36,1]]" {
		t.Errorf("json = %q", js)
	}
}

func TestRichnessCommand_Errors(t *testing.T) {
	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"richness", "Nonexistidae", "-o", filepath.Join(t.TempDir(), "x")}, errors.ErrCodeTaxonNotFound},
		{[]string{"richness", "Felidae", "--rank", "tribe"}, errors.ErrCodeInvalidRank},
		{[]string{"richness", "Felidae", "--format", "svg"}, errors.ErrCodeInvalidFormat},
		{[]string{"richness", "Felidae", "--region", "Atlantis"}, errors.ErrCodeInvalidInput},
		{[]string{"richness", "Felidae", "--page-size", "500"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestTreeCommand_SharedSession(t *testing.T) {
	out, err := runCLI(t, "--session", "felids", "tree", "Felidae", "--rank", "family", "--format", "json")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, `"name": "Panthera"`) {
		t.Errorf("tree output with a shared session:\n%s", out)
	}
}

func TestCacheInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	c := New(io.Discard, LogInfo)
	if err := c.cacheInfoCommand().RunE(nil, nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"memory", "private per run"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("cache info missing %q: %q", want, buf.String())
		}
	}
}

func TestCompletion(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "taxonscope") {
		t.Error("bash completion does not mention the command")
	}
}
