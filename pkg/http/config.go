package http

import (
	"github.com/milan604/restkit/pkg/config"
	"github.com/milan604/restkit/pkg/logger"
	"github.com/milan604/restkit/pkg/observability"
)

// NewClientFromConfig builds a Client from the http.* keys of cfg.
// A token_url selects the OAuth2 client credentials provider; otherwise a
// bearer_token selects the static provider. Extra options are applied last.
func NewClientFromConfig(log logger.LogManager, cfg *config.Config, extra ...ClientOption) (*Client, *observability.ClientMetrics, error) {
	cc, err := config.LoadClientConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []ClientOption{
		WithLogger(log),
		WithTimeout(cc.Timeout),
		WithInsecureSkipVerify(cc.InsecureSkipVerify),
		WithRequestIDHeader(cc.RequestIDHeader),
		WithRateLimit(cc.RateLimit, cc.RateBurst),
	}
	if cc.UserAgent != "" {
		opts = append(opts, WithUserAgent(cc.UserAgent))
	}

	switch {
	case cc.TokenURL != "":
		opts = append(opts, WithTokenProvider(NewOAuth2ClientCredentialsProvider(cc.TokenURL, cc.ClientID, cc.ClientSecret, cc.Scope), DefaultRefreshBuffer))
	case cc.BearerToken != "":
		opts = append(opts, WithTokenProvider(NewStaticTokenProvider(cc.BearerToken), DefaultRefreshBuffer))
	}

	var metrics *observability.ClientMetrics
	if cc.MetricsNamespace != "" {
		metrics = observability.NewClientMetrics(cc.MetricsNamespace)
		opts = append(opts, WithMetrics(metrics))
	}

	return NewClient(append(opts, extra...)...), metrics, nil
}
