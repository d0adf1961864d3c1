package jsonrpc

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

const (
	defaultMaxAttempts = 4
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 5 * time.Second
)

// RetryOptions bounds the retries of a single JSON-RPC call. Delays grow
// exponentially from BaseBackoff up to MaxBackoff.
type RetryOptions struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func WithRetry(inner solanarpc.JSONRPCClient, opt *RetryOptions) solanarpc.JSONRPCClient {
	if opt == nil {
		opt = &RetryOptions{}
	}
	if opt.MaxAttempts <= 0 {
		opt.MaxAttempts = defaultMaxAttempts
	}
	if opt.BaseBackoff <= 0 {
		opt.BaseBackoff = defaultBaseBackoff
	}
	if opt.MaxBackoff <= 0 {
		opt.MaxBackoff = defaultMaxBackoff
	}
	return &retryingJSONRPCClient{inner: inner, opt: *opt}
}

type retryingJSONRPCClient struct {
	inner solanarpc.JSONRPCClient
	opt   RetryOptions
}

func (c *retryingJSONRPCClient) CallForInto(ctx context.Context, out any, method string, params []any) error {
	_, err := doRetry(ctx, c.opt, func() (struct{}, error) {
		return struct{}{}, c.inner.CallForInto(ctx, out, method, params)
	})
	return err
}

func (c *retryingJSONRPCClient) CallWithCallback(ctx context.Context, method string, params []any, callback func(*http.Request, *http.Response) error) error {
	_, err := doRetry(ctx, c.opt, func() (struct{}, error) {
		return struct{}{}, c.inner.CallWithCallback(ctx, method, params, callback)
	})
	return err
}

func (c *retryingJSONRPCClient) CallBatch(ctx context.Context, requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	return doRetry(ctx, c.opt, func() (jsonrpc.RPCResponses, error) {
		return c.inner.CallBatch(ctx, requests)
	})
}

func newBackOff(opt RetryOptions) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opt.BaseBackoff
	b.MaxInterval = opt.MaxBackoff
	return b
}

func doRetry[T any](ctx context.Context, opt RetryOptions, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		res, err := op()
		if err != nil && !isRetryableJSONRPC(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(newBackOff(opt)),
		backoff.WithMaxTries(uint(opt.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
}

// Solana RPC server error codes a caller can outlast.
const (
	codeBlockNotAvailable        = -32004
	codeNodeUnhealthy            = -32005
	codeBlockStatusNotAvailable  = -32014
	codeMinContextSlotNotReached = -32016
)

var retryableRPCCodes = map[int]bool{
	codeBlockNotAvailable:        true,
	codeNodeUnhealthy:            true,
	codeBlockStatusNotAvailable:  true,
	codeMinContextSlotNotReached: true,
}

var retryableHTTPStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// isRetryableJSONRPC classifies err as transient. Cancellation always wins.
func isRetryableJSONRPC(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		return retryableHTTPStatus[httpErr.Code]
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return retryableRPCCodes[rpcErr.Code]
	}

	return isTransportError(err)
}

func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, target := range []error{io.EOF, io.ErrUnexpectedEOF, syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.EPIPE, syscall.ETIMEDOUT} {
		if errors.Is(err, target) {
			return true
		}
	}
	// Some transports flatten the syscall error into the message.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset by peer") || strings.Contains(msg, "use of closed network connection")
}
