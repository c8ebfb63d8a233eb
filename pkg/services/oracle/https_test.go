package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oraclegrid/node/pkg/chain"
)

func TestHTTPSFetcher_AllowedContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := newHTTPSFetcher(2*time.Second, true, []string{"application/json"})
	uri, err := url.Parse(srv.URL)
	require.NoError(t, err)

	code, body := f.Process(context.Background(), uri)
	require.Equal(t, chain.Success, code)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestHTTPSFetcher_DisallowedContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	f := newHTTPSFetcher(2*time.Second, true, []string{"application/json"})
	uri, err := url.Parse(srv.URL)
	require.NoError(t, err)

	code, _ := f.Process(context.Background(), uri)
	require.Equal(t, chain.ProtocolNotSupported, code)
}

func TestHTTPSFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newHTTPSFetcher(2*time.Second, true, nil)
	uri, err := url.Parse(srv.URL)
	require.NoError(t, err)

	code, _ := f.Process(context.Background(), uri)
	require.Equal(t, chain.NotFound, code)
}

func TestHTTPSFetcher_RejectsPrivateHostByDefault(t *testing.T) {
	f := newHTTPSFetcher(2*time.Second, false, []string{"application/json"})
	uri, err := url.Parse("http://127.0.0.1:1/data")
	require.NoError(t, err)

	code, body := f.Process(context.Background(), uri)
	require.Equal(t, chain.Forbidden, code)
	require.Nil(t, body)
}
