package oracle

import (
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/oraclegrid/node/pkg/chain"
)

// fetchCapBytes bounds how much of a response body is read into memory
// regardless of the eventual filtered result size; it only guards
// against unbounded reads, the actual ResponseTooLarge decision is made
// by the response builder against the filtered result.
const fetchCapBytes = 16 * chain.MaxResultSize

// httpsFetcher is the reference Protocol implementation: a single
// wall-clock budget covering connect, headers and body, an SSRF guard on
// the resolved address, and a Content-Type allowlist.
type httpsFetcher struct {
	client              *http.Client
	timeout             time.Duration
	allowPrivateHost    bool
	allowedContentTypes map[string]bool
}

// newHTTPSFetcher builds a fetcher whose single http.Client dials through
// resolveAndCheck so every connection this fetcher opens, including the
// ones made while following redirects, is subject to the SSRF guard.
func newHTTPSFetcher(timeout time.Duration, allowPrivateHost bool, allowedContentTypes []string) *httpsFetcher {
	allowed := make(map[string]bool, len(allowedContentTypes))
	for _, ct := range allowedContentTypes {
		allowed[ct] = true
	}
	f := &httpsFetcher{
		timeout:             timeout,
		allowPrivateHost:    allowPrivateHost,
		allowedContentTypes: allowed,
	}
	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		DisableKeepAlives: true,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			if !f.allowPrivateHost {
				if _, err := resolveAndCheck("ip", host); err != nil {
					return nil, err
				}
			}
			return dialer.DialContext(ctx, network, net.JoinHostPort(host, port))
		},
	}
	f.client = &http.Client{Transport: transport}
	return f
}

// Process implements Protocol.
func (f *httpsFetcher) Process(ctx context.Context, uri *url.URL) (chain.OracleResponseCode, []byte) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return chain.ErrorCode, nil
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, errSSRFForbidden) {
			return chain.Forbidden, nil
		}
		if ctx.Err() != nil {
			return chain.Timeout, nil
		}
		return chain.ErrorCode, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return chain.Forbidden, nil
	case resp.StatusCode == http.StatusNotFound:
		return chain.NotFound, nil
	case resp.StatusCode == http.StatusRequestTimeout:
		return chain.Timeout, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return chain.ErrorCode, nil
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !f.allowedContentTypes[mediaType] {
		return chain.ProtocolNotSupported, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchCapBytes))
	if err != nil {
		if ctx.Err() != nil {
			return chain.Timeout, nil
		}
		return chain.ErrorCode, nil
	}
	return chain.Success, body
}
