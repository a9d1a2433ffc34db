// Package config loads enrolsync settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Feed
	FeedEndpoint string        `env:"ENROLSYNC_FEED_ENDPOINT"`
	FeedToken    string        `env:"ENROLSYNC_FEED_TOKEN"`
	FeedTimeout  time.Duration `env:"ENROLSYNC_FEED_TIMEOUT" envDefault:"2m"`

	// Platform
	DBPath        string           `env:"ENROLSYNC_DB"              envDefault:"enrolsync.db"`
	CategoryID    int64            `env:"ENROLSYNC_CATEGORY_ID"     envDefault:"1"`
	DefaultRoleID int64            `env:"ENROLSYNC_DEFAULT_ROLE_ID" envDefault:"5"`
	RoleTokens    map[string]int64 `env:"ENROLSYNC_ROLE_TOKENS"     envDefault:"professor:3" envSeparator:"," envKeyValSeparator:":"`
	RoleMapFile   string           `env:"ENROLSYNC_ROLE_MAP_FILE"`

	// Pass
	FailurePolicy string `env:"ENROLSYNC_FAILURE_POLICY" envDefault:"abort"`
	LockFile      string `env:"ENROLSYNC_LOCK_FILE"`

	// Logging
	LogLevel  string `env:"ENROLSYNC_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"ENROLSYNC_LOG_FORMAT" envDefault:"console"`

	// SFTP
	SFTPHost                  string `env:"SFTP_HOST"`
	SFTPPort                  int    `env:"SFTP_PORT" envDefault:"22"`
	SFTPUser                  string `env:"SFTP_USER"`
	SFTPPass                  string `env:"SFTP_PASS"`
	SFTPDir                   string `env:"SFTP_DIR"  envDefault:"/"`
	SFTPKnownHosts            string `env:"SFTP_KNOWN_HOSTS"`
	SFTPInsecureIgnoreHostKey bool   `env:"SFTP_INSECURE_IGNORE_HOSTKEY"`

	// Metrics
	OTLPEndpoint string `env:"ENROLSYNC_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"ENROLSYNC_OTLP_INSECURE"`
}

// Load parses the environment. When ENROLSYNC_ROLE_MAP_FILE is set the file
// replaces the default role id and the token table.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RoleMapFile != "" {
		rm, err := LoadRoleMap(cfg.RoleMapFile)
		if err != nil {
			return Config{}, err
		}
		if rm.DefaultRoleID > 0 {
			cfg.DefaultRoleID = rm.DefaultRoleID
		}
		if rm.Tokens != nil {
			cfg.RoleTokens = rm.Tokens
		}
	}

	return cfg, cfg.Validate()
}

// LockPath is ENROLSYNC_LOCK_FILE, or the database path with a ".lock" suffix.
func (c Config) LockPath() string {
	if c.LockFile != "" {
		return c.LockFile
	}
	return c.DBPath + ".lock"
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	if c.DefaultRoleID <= 0 {
		return fmt.Errorf("config: ENROLSYNC_DEFAULT_ROLE_ID must be positive, got %d", c.DefaultRoleID)
	}
	if c.CategoryID <= 0 {
		return fmt.Errorf("config: ENROLSYNC_CATEGORY_ID must be positive, got %d", c.CategoryID)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: ENROLSYNC_DB is required")
	}
	for token, id := range c.RoleTokens {
		if id <= 0 {
			return fmt.Errorf("config: role token %q maps to non-positive role id %d", token, id)
		}
	}
	return nil
}

// RoleMap is the YAML role-map file:
//
//	default_role_id: 5
//	tokens:
//	  professor: 3
//	  editingteacher: 3
type RoleMap struct {
	DefaultRoleID int64            `yaml:"default_role_id"`
	Tokens        map[string]int64 `yaml:"tokens"`
}

func LoadRoleMap(path string) (RoleMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return RoleMap{}, fmt.Errorf("role map: %w", err)
	}
	defer f.Close()

	var rm RoleMap
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&rm); err != nil {
		return RoleMap{}, fmt.Errorf("role map %s: %w", path, err)
	}
	return rm, nil
}
