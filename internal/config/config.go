package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Storage Storage
	Facer   FacerConfig
	Web     WebConfig
	Log     LogConfig
}

// Storage describes the on-disk layout for the flat-file stores.
// All paths derive from DataDir unless overridden individually.
type Storage struct {
	DataDir       string
	UsersFile     string // JSON object, username -> password
	ScansFile     string // JSON array of scan records
	ScanImagesDir string // scanned_images/<user>/
	FaceDBDir     string // face_db/<user>/<person>/

	// SeedUsername/SeedPassword are written to a fresh users.json so a
	// brand new installation has one working login.
	SeedUsername string
	SeedPassword string

	// ImageExtensions lists the accepted image file extensions.
	ImageExtensions []string

	// CacheExtensions lists file extensions treated as disposable matcher
	// index caches directly under face_db/<user>/.
	CacheExtensions []string
}

type FacerConfig struct {
	URL     string // base URL of the face analysis sidecar; empty disables it
	Timeout int    // request timeout in seconds
}

type WebConfig struct {
	SessionSecret string
}

type LogConfig struct {
	Level string // debug, info, warn, error
}

// defaults mirrors the embedded defaults.yaml.
type defaults struct {
	Seed struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"seed"`
	Images struct {
		Extensions []string `yaml:"extensions"`
	} `yaml:"images"`
	Gallery struct {
		CacheExtensions []string `yaml:"cache_extensions"`
	} `yaml:"gallery"`
}

// envStr reads an environment variable, falling back to a default.
func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
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

func Load() *Config {
	var def defaults
	if err := yaml.Unmarshal(defaultsYAML, &def); err != nil {
		// Embedded file, cannot fail at runtime unless the build is broken.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	dataDir := envStr("NAUTILUS_DATA_DIR", ".")

	return &Config{
		Storage: Storage{
			DataDir:         dataDir,
			UsersFile:       envStr("NAUTILUS_USERS_FILE", filepath.Join(dataDir, "users.json")),
			ScansFile:       envStr("NAUTILUS_SCANS_FILE", filepath.Join(dataDir, "scans.json")),
			ScanImagesDir:   envStr("NAUTILUS_SCAN_IMAGES_DIR", filepath.Join(dataDir, "scanned_images")),
			FaceDBDir:       envStr("NAUTILUS_FACE_DB_DIR", filepath.Join(dataDir, "face_db")),
			SeedUsername:    envStr("NAUTILUS_SEED_USER", def.Seed.Username),
			SeedPassword:    envStr("NAUTILUS_SEED_PASSWORD", def.Seed.Password),
			ImageExtensions: def.Images.Extensions,
			CacheExtensions: def.Gallery.CacheExtensions,
		},
		Facer: FacerConfig{
			URL:     os.Getenv("FACER_URL"),
			Timeout: envInt("FACER_TIMEOUT", 120),
		},
		Web: WebConfig{
			SessionSecret: os.Getenv("WEB_SESSION_SECRET"),
		},
		Log: LogConfig{
			Level: envStr("NAUTILUS_LOG_LEVEL", "info"),
		},
	}
}

// WithDataDir rebases all default storage paths onto dir. Paths that were
// overridden through their own environment variables are left alone.
func (c *Config) WithDataDir(dir string) *Config {
	if dir == "" || dir == c.Storage.DataDir {
		return c
	}
	rebase := func(envKey, name, current string) string {
		if os.Getenv(envKey) != "" {
			return current
		}
		return filepath.Join(dir, name)
	}
	c.Storage.UsersFile = rebase("NAUTILUS_USERS_FILE", "users.json", c.Storage.UsersFile)
	c.Storage.ScansFile = rebase("NAUTILUS_SCANS_FILE", "scans.json", c.Storage.ScansFile)
	c.Storage.ScanImagesDir = rebase("NAUTILUS_SCAN_IMAGES_DIR", "scanned_images", c.Storage.ScanImagesDir)
	c.Storage.FaceDBDir = rebase("NAUTILUS_FACE_DB_DIR", "face_db", c.Storage.FaceDBDir)
	c.Storage.DataDir = dir
	return c
}

// IsImageExtension reports whether ext (including the leading dot) is an
// accepted image extension.
func (s *Storage) IsImageExtension(ext string) bool {
	for _, e := range s.ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
