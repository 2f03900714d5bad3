package client

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/stravaexport/internal/version"

	httpclient "github.com/appleboy/go-httpclient"
)

// NewHTTPClient builds the client used for token exchange and activity pages.
// A zero timeout leaves requests unbounded.
func NewHTTPClient(timeout time.Duration, insecureSkipVerify bool) (*http.Client, error) {
	if insecureSkipVerify {
		log.Printf("WARNING: Strava TLS verification is disabled (STRAVA_INSECURE_SKIP_VERIFY=true)")
	}

	transport := CreateOptimizedTransport(insecureSkipVerify)

	httpClient, err := httpclient.NewClient(
		httpclient.WithTimeout(timeout),
		httpclient.WithTransport(transport),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	httpClient.Transport = &userAgentTransport{
		base:      httpClient.Transport,
		userAgent: version.UserAgent(),
	}

	return httpClient, nil
}

// userAgentTransport names this service on every outbound request
// unless the caller already set a User-Agent.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
