package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a .env
// file first if one exists in the working directory. Variable names follow
// the original deployment: PORT, UPLOAD_FOLDER, SECRET_KEY, JWT_SECRET_KEY.
//
// Recognized variables:
//
//	ADDRESS           full bind address (":5000", "0.0.0.0:8080")
//	PORT              port only; ignored when ADDRESS is set
//	DATA_DIR          user collection directory
//	UPLOAD_FOLDER     tab storage root
//	SECRET_KEY        application secret
//	JWT_SECRET_KEY    JWT signing secret
//	TOKEN_VALIDITY    token lifetime as a Go duration ("24h")
//	MAX_UPLOAD_BYTES  request body cap, integer bytes
//	CORS_ORIGINS      comma-separated origin list, "*" for any
//	SEED_DEMO_USER    "1"/"true" to create the demo account at startup
func parseEnv(config *Config) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		config.Addr = ":" + v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		config.DataDir = v
	}
	if v := os.Getenv("UPLOAD_FOLDER"); v != "" {
		config.UploadDir = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		config.JWTSecretKey = v
	}
	if v := os.Getenv("TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.TokenValidityDuration = d
		}
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			config.CORSAllowedOrigins = origins
		}
	}
	if v := os.Getenv("SEED_DEMO_USER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.SeedDemoUser = b
		}
	}
}
