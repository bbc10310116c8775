package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Database  DatabaseConfig
	School    SchoolConfig
	Embedding EmbeddingConfig
	Replica   ReplicaConfig
	Match     MatchConfig
	Data      DataConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// SchoolConfig points at the school information system's MariaDB, which owns
// timetables and subjects. Read-only from here.
type SchoolConfig struct {
	DatabaseURL string // MariaDB DSN (e.g. school:school@tcp(mariadb:3306)/school)
}

type EmbeddingConfig struct {
	URL string // embedding server base URL, defaults to http://localhost:8000
	Dim int    // expected embedding dimension, defaults to 512
}

// ReplicaConfig configures the optional S3-compatible remote mirror of the
// reference embeddings. Disabled when Endpoint is empty.
type ReplicaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether a remote replica is configured.
func (c *ReplicaConfig) Enabled() bool {
	return c.Endpoint != ""
}

type MatchConfig struct {
	CosineThreshold float64 `yaml:"cosine_threshold"`
	L2Threshold     float64 `yaml:"l2_threshold"`
}

type DataConfig struct {
	Dir string // local data directory for the file store fallback
}

// thresholdsFile is the layout of the embedded thresholds.yaml.
type thresholdsFile struct {
	Match MatchConfig `yaml:"match"`
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

// envFloat reads an environment variable and parses it as a non-negative
// float. Returns the default value only if the env var is unset, empty, or
// invalid; an explicit zero is kept.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var thresholds thresholdsFile
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		School: SchoolConfig{
			DatabaseURL: os.Getenv("SCHOOL_DATABASE_URL"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 512),
		},
		Replica: ReplicaConfig{
			Endpoint:  os.Getenv("REPLICA_ENDPOINT"),
			AccessKey: os.Getenv("REPLICA_ACCESS_KEY"),
			SecretKey: os.Getenv("REPLICA_SECRET_KEY"),
			Bucket:    envString("REPLICA_BUCKET", "attendcore"),
			UseSSL:    os.Getenv("REPLICA_USE_SSL") == "true",
		},
		Match: MatchConfig{
			CosineThreshold: envFloat("MATCH_COSINE_THRESHOLD", thresholds.Match.CosineThreshold),
			L2Threshold:     envFloat("MATCH_L2_THRESHOLD", thresholds.Match.L2Threshold),
		},
		Data: DataConfig{
			Dir: envString("DATA_DIR", "data"),
		},
	}
}
