package rpc

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	solrpc "github.com/gagliardetto/solana-go/rpc"
	soljsonrpc "github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/klauspost/compress/gzhttp"
	"github.com/malbeclabs/farms/tools/solana/pkg/jsonrpc"
)

const (
	defaultMaxIdleConnsPerHost = 9
	defaultTimeout             = 5 * time.Minute
	defaultKeepAlive           = 180 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
)

// Options configures a Solana RPC client.
type Options struct {
	// Headers are sent with every request, e.g. a provider API key.
	Headers map[string]string
	Retry   *jsonrpc.RetryOptions
	// Timeout bounds a single HTTP request. Zero means the default.
	Timeout time.Duration
}

// New creates a Solana JSON-RPC client over a gzip-aware HTTP transport whose
// calls are retried on transient failures.
func New(rpcEndpoint string, opts Options) *solrpc.Client {
	clientOpts := &soljsonrpc.RPCClientOpts{
		HTTPClient:    newHTTP(opts.Timeout),
		CustomHeaders: opts.Headers,
	}
	inner := soljsonrpc.NewClientWithOpts(rpcEndpoint, clientOpts)
	return solrpc.NewWithCustomRPCClient(jsonrpc.WithRetry(inner, opts.Retry))
}

var ErrInvalidHeader = errors.New("invalid header, want \"Name: value\"")

// ParseHeaders parses "Name: value" pairs as given on the command line.
func ParseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, h)
		}
		headers[http.CanonicalHeaderKey(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// newHTTP returns a client safe for concurrent use by multiple goroutines.
func newHTTP(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(newHTTPTransport()),
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		IdleConnTimeout:     defaultTimeout,
		MaxConnsPerHost:     defaultMaxIdleConnsPerHost,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultTimeout,
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
	}
}
