package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Attendance AttendanceConfig
	Embedding  EmbeddingConfig
	Database   DatabaseConfig
	API        APIConfig
}

type AttendanceConfig struct {
	SimilarityThreshold float64 // minimum cosine similarity (exclusive) for a match
	CheckInWindow       string  // "HH:MM-HH:MM"
	CheckOutWindow      string  // "HH:MM-HH:MM"
}

type EmbeddingConfig struct {
	URL            string // embedding provider base URL (defaults to http://localhost:8000)
	Dim            int    // embedding dimension (defaults to 128)
	TimeoutSeconds int    // per-frame provider timeout (default 5)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty runs in-memory only
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type APIConfig struct {
	Key string // static pre-shared key for the identification endpoint
}

// defaults mirrors the embedded defaults.yaml file.
type defaults struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	EmbeddingDim        int     `yaml:"embedding_dim"`
	Windows             struct {
		CheckIn  string `yaml:"check_in"`
		CheckOut string `yaml:"check_out"`
	} `yaml:"windows"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in [0, 1].
// Returns the default value if the env var is unset, empty, or out of range.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f <= 1 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable, falling back to a default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var d defaults
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic(fmt.Sprintf("failed to unmarshal embedded defaults.yaml: %v", err))
	}

	return &Config{
		Attendance: AttendanceConfig{
			SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", d.SimilarityThreshold),
			CheckInWindow:       envString("CHECKIN_WINDOW", d.Windows.CheckIn),
			CheckOutWindow:      envString("CHECKOUT_WINDOW", d.Windows.CheckOut),
		},
		Embedding: EmbeddingConfig{
			URL:            os.Getenv("EMBEDDING_URL"),
			Dim:            envInt("EMBEDDING_DIM", d.EmbeddingDim),
			TimeoutSeconds: envInt("EMBEDDING_TIMEOUT_SECONDS", 5),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		API: APIConfig{
			Key: os.Getenv("API_KEY"),
		},
	}
}
