package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// maxRedirects bounds redirect chains when following image links
const maxRedirects = 5

// NewImageClient creates the client used for untrusted image hosts.
// It sets a User-Agent on every request, refuses non-HTTP(S) redirect targets
// and stops after maxRedirects hops. timeout is a backstop; callers also bound
// each request with a context deadline.
func NewImageClient(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return errors.New("redirect to unsupported scheme " + req.URL.Scheme)
			}
			return nil
		},
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
