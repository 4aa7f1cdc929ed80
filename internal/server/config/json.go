package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avolkovs/tabshare/internal/flagx"
	"github.com/avolkovs/tabshare/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for the token lifetime, which allows parsing
// both string values such as "24h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	Addr                  string         `json:"address"`
	DataDir               string         `json:"data_dir"`
	UploadDir             string         `json:"upload_folder"`
	SecretKey             string         `json:"secret_key"`
	JWTSecretKey          string         `json:"jwt_secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	MaxUploadBytes        int64          `json:"max_upload_bytes"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	SeedDemoUser          bool           `json:"seed_demo_user"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics: a requested-but-broken config file is a
// startup error, not something to limp past.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.UploadDir != "" {
		config.UploadDir = c.UploadDir
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.JWTSecretKey != "" {
		config.JWTSecretKey = c.JWTSecretKey
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.SeedDemoUser {
		config.SeedDemoUser = true
	}
}
