package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/malbeclabs/farms/tools/solana/pkg/jsonrpc"
	"github.com/stretchr/testify/require"
)

// slotServer answers getSlot with slot after failing the first busy requests
// with 503.
func slotServer(t *testing.T, busy int32, slot uint64, check func(*http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		if hits.Add(1) <= busy {
			http.Error(w, "node is busy", http.StatusServiceUnavailable)
			return
		}
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": slot})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func fastRetry(attempts int) *jsonrpc.RetryOptions {
	return &jsonrpc.RetryOptions{MaxAttempts: attempts, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestTools_Solana_RPC_RetriesBusyNode(t *testing.T) {
	t.Parallel()

	srv, hits := slotServer(t, 2, 4242, nil)
	client := New(srv.URL, Options{Retry: fastRetry(3)})

	slot, err := client.GetSlot(t.Context(), "")
	require.NoError(t, err)
	require.Equal(t, uint64(4242), slot)
	require.Equal(t, int32(3), hits.Load())
}

func TestTools_Solana_RPC_BusyNodeExhaustsAttempts(t *testing.T) {
	t.Parallel()

	srv, hits := slotServer(t, 10, 1, nil)
	client := New(srv.URL, Options{Retry: fastRetry(2)})

	_, err := client.GetSlot(t.Context(), "")
	require.Error(t, err)
	require.Equal(t, int32(2), hits.Load())
}

func TestTools_Solana_RPC_SendsHeaders(t *testing.T) {
	t.Parallel()

	headers, err := ParseHeaders([]string{"x-api-key: secret"})
	require.NoError(t, err)

	var seen atomic.Value
	srv, _ := slotServer(t, 0, 7, func(r *http.Request) {
		seen.Store(r.Header.Get("X-Api-Key"))
	})
	client := New(srv.URL, Options{Headers: headers, Retry: fastRetry(1)})

	_, err = client.GetSlot(t.Context(), "")
	require.NoError(t, err)
	require.Equal(t, "secret", seen.Load())
}

func TestTools_Solana_RPC_ParseHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr bool
	}{
		{name: "none", raw: nil, want: nil},
		{name: "canonical names", raw: []string{"x-api-key: abc", "authorization:Bearer t"}, want: map[string]string{"X-Api-Key": "abc", "Authorization": "Bearer t"}},
		{name: "value keeps colons", raw: []string{"X-Url: http://a:1"}, want: map[string]string{"X-Url": "http://a:1"}},
		{name: "missing separator", raw: []string{"x-api-key"}, wantErr: true},
		{name: "empty name", raw: []string{": abc"}, wantErr: true},
		{name: "space in name", raw: []string{"x api: abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseHeaders(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidHeader)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTools_Solana_RPC_RequestTimeout(t *testing.T) {
	t.Parallel()

	require.Equal(t, defaultTimeout, newHTTP(0).Timeout)
	require.Equal(t, 30*time.Second, newHTTP(30*time.Second).Timeout)
}
