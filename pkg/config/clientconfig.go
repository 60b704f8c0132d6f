package config

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/milan604/restkit/pkg/validator"
)

// Default values for the http section.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultRequestIDHeader = "X-Request-ID"
)

// ClientConfig is the http section of a configuration: everything needed to
// build a transport.
type ClientConfig struct {
	Timeout            time.Duration `mapstructure:"timeout" validate:"gte=0"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	UserAgent          string        `mapstructure:"user_agent"`
	RateLimit          float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst          int           `mapstructure:"rate_burst" validate:"gte=0"`
	RequestIDHeader    string        `mapstructure:"request_id_header"`
	MetricsNamespace   string        `mapstructure:"metrics_namespace"`

	BearerToken  string `mapstructure:"bearer_token"`
	TokenURL     string `mapstructure:"token_url" validate:"omitempty,url"`
	ClientID     string `mapstructure:"client_id" validate:"required_with=TokenURL"`
	ClientSecret string `mapstructure:"client_secret" validate:"required_with=TokenURL"`
	Scope        string `mapstructure:"scope"`
}

// LoadClientConfig reads the http.* keys (file, env and flags all apply) and validates them.
func LoadClientConfig(c *Config) (ClientConfig, error) {
	cc := ClientConfig{
		Timeout:            c.GetDurationD("http.timeout", DefaultTimeout),
		InsecureSkipVerify: c.GetBoolD("http.insecure_skip_verify", false),
		UserAgent:          c.GetString("http.user_agent"),
		RateLimit:          c.GetFloat64D("http.rate_limit", 0),
		RateBurst:          c.GetIntD("http.rate_burst", 1),
		RequestIDHeader:    c.GetStringD("http.request_id_header", DefaultRequestIDHeader),
		MetricsNamespace:   c.GetString("http.metrics_namespace"),
		BearerToken:        c.GetString("http.bearer_token"),
		TokenURL:           c.GetString("http.token_url"),
		ClientID:           c.GetString("http.client_id"),
		ClientSecret:       c.GetString("http.client_secret"),
		Scope:              c.GetString("http.scope"),
	}

	if verr := validator.New(nil).Struct(cc); verr != nil {
		return ClientConfig{}, verr
	}
	return cc, nil
}

// ClientFlags registers the http.* keys on fs. Bind the parsed set with WithPFlags.
func ClientFlags(fs *pflag.FlagSet) {
	fs.Duration("http.timeout", DefaultTimeout, "per-request timeout")
	fs.Bool("http.insecure_skip_verify", false, "accept any server certificate (testing only)")
	fs.String("http.user_agent", "", "User-Agent header")
	fs.Float64("http.rate_limit", 0, "requests per second, 0 disables throttling")
	fs.Int("http.rate_burst", 1, "rate limiter burst")
	fs.String("http.request_id_header", DefaultRequestIDHeader, "header carrying the request id")
	fs.String("http.bearer_token", "", "static bearer token")
	fs.String("http.token_url", "", "OAuth2 token endpoint for the client credentials grant")
	fs.String("http.client_id", "", "OAuth2 client id")
	fs.String("http.client_secret", "", "OAuth2 client secret")
	fs.String("http.scope", "", "OAuth2 scope")
	fs.String("http.metrics_namespace", "", "enable Prometheus client metrics under this namespace")
}

// SensitiveClientKeys lists the http keys that must be masked when printing configuration.
var SensitiveClientKeys = []string{"http.bearer_token", "http.client_secret"}
