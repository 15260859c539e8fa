package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := filepath.Join(t.TempDir(), "custom-cache")
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, ".config", appName); dir != expected {
		t.Errorf("configDir() = %q, want %q", dir, expected)
	}

	custom := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", custom)
	if got, want := defaultConfigPath(), filepath.Join(custom, appName, "config.toml"); got != want {
		t.Errorf("defaultConfigPath() = %q, want %q", got, want)
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		dataset string
		want    string
	}{
		{"safety.json", "safety"},
		{filepath.Join("data", "safety.yaml"), filepath.Join("data", "safety")},
		{"https://example.com/sets/safety.json?rev=3", "safety"},
		{"https://example.com/", "example"},
		{"", appName},
	}
	for _, tt := range tests {
		if got := outputBase(tt.dataset); got != tt.want {
			t.Errorf("outputBase(%q) = %q, want %q", tt.dataset, got, tt.want)
		}
	}
}

func TestArtifactPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived", "", []string{"svg"}, map[string]string{"svg": "safety.svg"}},
		{"single explicit", "chart.out", []string{"png"}, map[string]string{"png": "chart.out"}},
		{"multiple with base", "out/chart", []string{"svg", "pdf"}, map[string]string{"svg": "out/chart.svg", "pdf": "out/chart.pdf"}},
		{"multiple derived", "", []string{"json", "dot"}, map[string]string{"json": "safety.json", "dot": "safety.dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPaths("safety.json", tt.output, tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("artifactPaths() = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("artifactPaths()[%s] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"Acme", []string{"Acme"}},
		{" Acme , Globex ,,", []string{"Acme", "Globex"}},
	}
	for _, tt := range tests {
		got := splitList(tt.input)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("splitList(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,pdf,png", []string{"svg", "pdf", "png"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if !needsConverter([]string{"svg", "pdf"}) || needsConverter([]string{"svg", "json"}) {
		t.Error("needsConverter should only report png and pdf")
	}
}
