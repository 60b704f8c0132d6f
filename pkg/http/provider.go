package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/milan604/restkit/pkg/media"
)

// OAuth2ClientCredentialsProvider implements TokenProvider for the OAuth2
// client credentials grant. The request is sent form encoded; the reply may
// be JSON or form encoded.
type OAuth2ClientCredentialsProvider struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	// Doer sends the token request. Defaults to a plain client with a 10s timeout.
	Doer Doer
}

// NewOAuth2ClientCredentialsProvider creates a new OAuth2 client credentials token provider.
func NewOAuth2ClientCredentialsProvider(tokenURL, clientID, clientSecret, scope string) *OAuth2ClientCredentialsProvider {
	hc := &http.Client{Timeout: 10 * time.Second}
	return &OAuth2ClientCredentialsProvider{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        scope,
		Doer: DoerFunc(func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return hc.Do(req.WithContext(ctx))
		}),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token" form:"access_token"`
	TokenType   string `json:"token_type" form:"token_type"`
	ExpiresIn   int    `json:"expires_in" form:"expires_in"`
	Scope       string `json:"scope" form:"scope"`
}

// FetchToken retrieves a token using OAuth2 client credentials flow.
func (p *OAuth2ClientCredentialsProvider) FetchToken(ctx context.Context) (string, time.Time, error) {
	form := media.Form{}.
		Add("grant_type", "client_credentials").
		Add("client_id", p.ClientID).
		Add("client_secret", p.ClientSecret)
	if p.Scope != "" {
		form = form.Add("scope", p.Scope)
	}

	body, err := media.Serialize(form, media.FormURLEncoded)
	if err != nil {
		return "", time.Time{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(body.(string)))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token request: %w", err)
	}
	formMime, _ := media.MimeOf(media.FormURLEncoded)
	jsonMime, _ := media.MimeOf(media.JSON)
	req.Header.Set("Content-Type", formMime)
	req.Header.Set("Accept", jsonMime)

	doer := p.Doer
	if doer == nil {
		doer = DoerFunc(func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return http.DefaultClient.Do(req.WithContext(ctx))
		})
	}

	resp, err := doer.Do(ctx, req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to fetch token: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	kind := media.JSON
	if t, perr := media.Parse(resp.Header.Get("Content-Type")); perr == nil && t == media.FormURLEncoded {
		kind = t
	}
	tokenResp, err := media.Deserialize[tokenResponse](string(raw), kind)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", time.Time{}, ErrEmptyToken
	}

	expiresAt := time.Now()
	if tokenResp.ExpiresIn > 0 {
		expiresAt = expiresAt.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	} else {
		expiresAt = expiresAt.Add(1 * time.Hour)
	}

	return tokenResp.AccessToken, expiresAt, nil
}

// StaticTokenProvider serves a token managed outside the client.
// When the token is a JWT carrying an exp claim, that expiry is reported
// and an expired token is refused; otherwise the token never expires.
// The signature is not verified.
type StaticTokenProvider struct {
	Token string
}

// NewStaticTokenProvider creates a new static token provider.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{Token: token}
}

// FetchToken returns the static token and its JWT expiry if any.
func (p *StaticTokenProvider) FetchToken(ctx context.Context) (string, time.Time, error) {
	exp, ok := jwtExpiry(p.Token)
	if !ok {
		return p.Token, time.Time{}, nil
	}
	if !time.Now().Before(exp) {
		return "", time.Time{}, fmt.Errorf("static bearer token expired at %s: %w", exp.Format(time.RFC3339), jwt.ErrTokenExpired)
	}
	return p.Token, exp, nil
}

func jwtExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// CustomTokenProvider allows you to provide a custom function for fetching tokens.
type CustomTokenProvider struct {
	FetchFunc func(ctx context.Context) (token string, expiresAt time.Time, err error)
}

// NewCustomTokenProvider creates a new custom token provider.
func NewCustomTokenProvider(fetchFunc func(ctx context.Context) (string, time.Time, error)) *CustomTokenProvider {
	return &CustomTokenProvider{FetchFunc: fetchFunc}
}

// FetchToken calls the custom fetch function.
func (p *CustomTokenProvider) FetchToken(ctx context.Context) (string, time.Time, error) {
	if p.FetchFunc == nil {
		return "", time.Time{}, fmt.Errorf("fetch function is nil")
	}
	return p.FetchFunc(ctx)
}
