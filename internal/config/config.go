package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		IssuerURL    string
		ClientID     string
		ClientSecret string
		RedirectURI  string
		Scopes       string
	}
	SessionLifetime time.Duration
	MaxRequestBytes int64
	InsecureCookies bool
}

// Load reads config from environment (HQ_ prefix) and an optional
// historyquiz.yaml. The canonical OIDC variable names (OIDC_ISSUER_URL etc.)
// are accepted without the prefix as well, so provider credentials can be
// shared with other deployments.
//
// The OIDC values are deliberately not validated here: they are resolved and
// checked per request by the oidc package, so the server can boot and serve
// anonymous pages with sign-in unconfigured.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("historyquiz")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	_ = v.BindEnv("oidc.issuer_url", "HQ_OIDC_ISSUER_URL", "OIDC_ISSUER_URL")
	_ = v.BindEnv("oidc.client_id", "HQ_OIDC_CLIENT_ID", "OIDC_CLIENT_ID")
	_ = v.BindEnv("oidc.client_secret", "HQ_OIDC_CLIENT_SECRET", "OIDC_CLIENT_SECRET")
	_ = v.BindEnv("oidc.redirect_uri", "HQ_OIDC_REDIRECT_URI", "OIDC_REDIRECT_URI")
	_ = v.BindEnv("oidc.scopes", "HQ_OIDC_SCOPES", "OIDC_SCOPES")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("session.lifetime", "168h")
	v.SetDefault("max_request_bytes", 1<<20)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.IssuerURL = v.GetString("oidc.issuer_url")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURI = v.GetString("oidc.redirect_uri")
	cfg.OIDC.Scopes = v.GetString("oidc.scopes")
	cfg.MaxRequestBytes = v.GetInt64("max_request_bytes")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid HQ_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("HQ_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("HQ_DB_DSN is required")
	}

	return cfg, nil
}
