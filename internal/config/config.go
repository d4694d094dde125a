package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/vodclip/internal/domain/fusion"
	"github.com/forPelevin/vodclip/internal/domain/motion"
	"github.com/forPelevin/vodclip/internal/domain/transcript"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`

	Tools         ToolsConfig         `yaml:"tools"`
	Timeouts      TimeoutsConfig      `yaml:"timeouts"`
	Storage       StorageConfig       `yaml:"storage"`
	TranscriptAPI TranscriptAPIConfig `yaml:"transcript_api"`

	// Scoring
	Taxonomy transcript.Taxonomy `yaml:"taxonomy"`
	Motion   motion.Config       `yaml:"motion"`
	Fusion   fusion.Config       `yaml:"fusion"`

	// Secrets come from the environment only.
	Secrets Secrets `yaml:"-"`
}

type ToolsConfig struct {
	YTDLP        string `yaml:"yt_dlp"`
	FFmpeg       string `yaml:"ffmpeg"`
	FFprobe      string `yaml:"ffprobe"`
	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
}

type TimeoutsConfig struct {
	Metadata    time.Duration `yaml:"metadata"`
	Download    time.Duration `yaml:"download"`
	Captions    time.Duration `yaml:"captions"`
	SceneDetect time.Duration `yaml:"scene_detect"`
	Trim        time.Duration `yaml:"trim"`
	Audio       time.Duration `yaml:"audio"`
	Probe       time.Duration `yaml:"probe"`
	Transcript  time.Duration `yaml:"transcript_api"`
	Whisper     time.Duration `yaml:"whisper"`
}

const (
	BackendSupabase = "supabase"
	BackendLocal    = "local"
)

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Bucket    string `yaml:"bucket"`
	LocalRoot string `yaml:"local_root"`
}

type TranscriptAPIConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts"`
}

type Secrets struct {
	SupabaseURL      string
	SupabaseKey      string
	TranscriptAPIURL string
	TranscriptAPIKey string
}

// Load reads configuration from file or returns defaults, then applies
// secrets from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	defer cfg.applyEnv()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() *Config {
	return &Config{
		WorkDir: filepath.Join(os.TempDir(), "vodclip"),
		Tools: ToolsConfig{
			YTDLP:      "yt-dlp",
			FFmpeg:     "ffmpeg",
			FFprobe:    "ffprobe",
			WhisperBin: "whisper-cli",
		},
		Timeouts: TimeoutsConfig{
			Metadata:    time.Minute,
			Download:    30 * time.Minute,
			Captions:    2 * time.Minute,
			SceneDetect: 20 * time.Minute,
			Trim:        2 * time.Minute,
			Audio:       10 * time.Minute,
			Probe:       30 * time.Second,
			Transcript:  time.Minute,
			Whisper:     30 * time.Minute,
		},
		Storage: StorageConfig{
			Backend:   BackendLocal,
			Bucket:    "clips",
			LocalRoot: "./clips",
		},
		Taxonomy: transcript.DefaultTaxonomy(),
		Motion:   motion.DefaultConfig(),
		Fusion:   fusion.DefaultConfig(),
	}
}

func (c *Config) applyEnv() {
	c.Secrets = Secrets{
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_SERVICE_KEY"),
		TranscriptAPIURL: os.Getenv("TRANSCRIPT_API_URL"),
		TranscriptAPIKey: os.Getenv("TRANSCRIPT_API_KEY"),
	}
}

func findConfigFile() string {
	candidates := []string{
		"./vodclip.yaml",
		"./vodclip.yml",
		filepath.Join(os.Getenv("HOME"), ".vodclip", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
