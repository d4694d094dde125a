package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fusion.BucketSize != 10 || cfg.Motion.WindowSize != 10 || cfg.Taxonomy.MinScore != 2 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Storage.Backend != BackendLocal {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vodclip.yaml")
	data := `
storage:
  backend: supabase
  bucket: vod-clips
timeouts:
  download: 45m
fusion:
  weights:
    transcript: 3
taxonomy:
  realization:
    tag: aha
    weight: 5
    phrases: ["eureka"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSupabase || cfg.Storage.Bucket != "vod-clips" {
		t.Fatalf("storage not loaded: %+v", cfg.Storage)
	}
	if cfg.Storage.LocalRoot != "./clips" {
		t.Fatalf("unset field lost its default: %+v", cfg.Storage)
	}
	if cfg.Timeouts.Download != 45*time.Minute || cfg.Timeouts.Trim != 2*time.Minute {
		t.Fatalf("unexpected timeouts %+v", cfg.Timeouts)
	}
	if cfg.Fusion.Weights.Transcript != 3 || cfg.Fusion.Weights.Motion != 1.5 {
		t.Fatalf("unexpected weights %+v", cfg.Fusion.Weights)
	}
	if got := cfg.Taxonomy.Realization.Phrases; len(got) != 1 || got[0] != "eureka" {
		t.Fatalf("unexpected realization phrases %v", got)
	}
	if len(cfg.Taxonomy.Explanation.Phrases) == 0 {
		t.Fatalf("other tiers must keep their defaults")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fusion: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_SecretsFromEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("TRANSCRIPT_API_URL", "https://transcripts.example.com")
	t.Setenv("TRANSCRIPT_API_KEY", "tk")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Secrets{
		SupabaseURL:      "https://proj.supabase.co",
		SupabaseKey:      "service-key",
		TranscriptAPIURL: "https://transcripts.example.com",
		TranscriptAPIKey: "tk",
	}
	if cfg.Secrets != want {
		t.Fatalf("got %+v want %+v", cfg.Secrets, want)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("SUPABASE_SERVICE_KEY", "do-not-write")
	path := filepath.Join(t.TempDir(), "nested", "vodclip.yaml")
	cfg := Default()
	cfg.Secrets.SupabaseKey = "do-not-write"
	cfg.Timeouts.Trim = 90 * time.Second
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if strings.Contains(string(raw), "do-not-write") {
		t.Fatalf("secrets must not be written to disk")
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Timeouts.Trim != 90*time.Second {
		t.Fatalf("unexpected trim timeout %v", got.Timeouts.Trim)
	}
	if len(got.Taxonomy.Technical.Terms) != len(cfg.Taxonomy.Technical.Terms) {
		t.Fatalf("taxonomy did not round-trip")
	}
}
