package muncho

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *memSink) Record(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *memSink) last(t *testing.T) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.entries)
	return s.entries[len(s.entries)-1]
}

func newTestClient(t *testing.T, srvURL string, opts ...Option) (*Client, *memSink) {
	t.Helper()
	sink := &memSink{}
	base := []Option{
		WithSink(sink),
		WithOnlineCheck(func() bool { return true }),
		WithBackoff(func(int) time.Duration { return 0 }),
	}
	c, err := New(srvURL, "test-token", zap.NewNop(), append(base, opts...)...)
	require.NoError(t, err)
	return c, sink
}

func TestEnvelopeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":true,"data":{"id":"m1","name":"Breakfast"}}`))
	}))
	defer srv.Close()

	c, sink := newTestClient(t, srv.URL)
	res, err := c.Get(context.Background(), "/menus/m1")
	require.NoError(t, err)
	require.True(t, res.Status)

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, res.Decode(&out))
	require.Equal(t, "Breakfast", out.Name)

	entry := sink.last(t)
	require.True(t, entry.OK)
	require.Equal(t, 1, entry.Attempts)
}

func TestStatusFalseOnHTTP200IsApplicationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"denied"}`))
	}))
	defer srv.Close()

	c, sink := newTestClient(t, srv.URL)
	res, err := c.Patch(context.Background(), "/categories/c1/stock", map[string]bool{"in_stock": true})
	require.NoError(t, err, "application failures are not transport errors")
	require.False(t, res.Status)
	require.Equal(t, "denied", res.Message)
	require.False(t, sink.last(t).OK)
}

func TestHTTPErrorForcesStatusFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":true}`)) // body lies; HTTP status wins
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	res, err := c.Get(context.Background(), "/menus")
	require.NoError(t, err)
	require.False(t, res.Status)
	require.Equal(t, "Internal Server Error", res.Message)
}

type flakyTransport struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	rec := httptest.NewRecorder()
	rec.WriteString(`{"status":true}`)
	return rec.Result(), nil
}

func TestTransportFailureRetriedThenSucceeds(t *testing.T) {
	ft := &flakyTransport{failures: 2}
	c, sink := newTestClient(t, "http://api.example.test",
		WithHTTPClient(&http.Client{Transport: ft}))

	res, err := c.Post(context.Background(), "/dishes", map[string]string{"name": "Idli"})
	require.NoError(t, err)
	require.True(t, res.Status)
	require.Equal(t, 3, sink.last(t).Attempts)
}

func TestRetriesExhaustedSurfaceTransportError(t *testing.T) {
	ft := &flakyTransport{failures: 100}
	c, sink := newTestClient(t, "http://api.example.test",
		WithHTTPClient(&http.Client{Transport: ft}),
		WithMaxRetries(2))

	_, err := c.Get(context.Background(), "/menus")
	require.Error(t, err)
	require.Equal(t, 3, ft.calls, "initial attempt plus two retries")
	require.Equal(t, 3, sink.last(t).Attempts)
}

func TestOfflineRejectedBeforeTransmission(t *testing.T) {
	ft := &flakyTransport{}
	c, _ := newTestClient(t, "http://api.example.test",
		WithHTTPClient(&http.Client{Transport: ft}),
		WithOnlineCheck(func() bool { return false }))

	_, err := c.Get(context.Background(), "/menus")
	require.ErrorIs(t, err, ErrOffline)
	require.Zero(t, ft.calls)
}

func TestBackoffSchedule(t *testing.T) {
	c, err := New("https://api.example.test", "", zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, 2*time.Second, c.backoff(1))
	require.Equal(t, 4*time.Second, c.backoff(2))
	require.Equal(t, 8*time.Second, c.backoff(3))
}

func TestCallClosureMapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"out of stock"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	ok, message, err := c.Call(http.MethodPatch, "/dishes/d1/stock", nil)(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "out of stock", message)
}
