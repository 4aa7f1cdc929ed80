// Package config handles configuration for the server component, including
// defaults, environment variables, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the tabshare server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DataDir: directory holding the persisted user collection (users.json).
//   - UploadDir: storage root for uploaded tablature files.
//   - SecretKey: application secret; also the JWT fallback secret.
//   - JWTSecretKey: HMAC secret for signing JWTs (HS256); falls back to
//     SecretKey when empty, matching the original backend's behavior.
//   - TokenValidityDuration: access token lifetime.
//   - MaxUploadBytes: request body cap for uploads.
//   - CORSAllowedOrigins: allowed origins; ["*"] means any.
//   - SeedDemoUser: create the demo account at startup when true.
type Config struct {
	Addr                  string
	DataDir               string
	UploadDir             string
	SecretKey             string
	JWTSecretKey          string
	TokenValidityDuration time.Duration
	MaxUploadBytes        int64
	CORSAllowedOrigins    []string
	SeedDemoUser          bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":5000"
	c.DataDir = "data"
	c.UploadDir = "uploads"
	c.SecretKey = "dev_secret_key"
	c.JWTSecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.MaxUploadBytes = 16 << 20
	c.CORSAllowedOrigins = []string{"*"}
	c.SeedDemoUser = false
}

// JWTSecret returns the secret used for token signing: JWTSecretKey when set,
// SecretKey otherwise.
func (c *Config) JWTSecret() []byte {
	if c.JWTSecretKey != "" {
		return []byte(c.JWTSecretKey)
	}
	return []byte(c.SecretKey)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (including an optional .env file), an optional JSON
// file, and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
