package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestCompositeHealthChecker_NoChecks(t *testing.T) {
	status := NewCompositeHealthChecker("v1").Check(context.Background())

	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Equal(t, "No health checks registered", status.Message)
	assert.Equal(t, "v1", status.Version)
}

func TestCompositeHealthChecker_AllPass(t *testing.T) {
	c := NewCompositeHealthChecker("v1")
	c.AddCheck("database", NewPingCheck(stubPinger{}))
	c.AddOptionalCheck("cache", NewPingCheck(stubPinger{}))

	status := c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "All checks passed", status.Message)
	require.Len(t, status.Checks, 2)
	assert.True(t, status.Checks["cache"].Optional)
}

func TestCompositeHealthChecker_RequiredFailure(t *testing.T) {
	c := NewCompositeHealthChecker("v1")
	c.AddCheck("database", NewPingCheck(stubPinger{err: errors.New("dial tcp: refused")}))
	c.AddCheck("queue", NewPingCheck(stubPinger{err: errors.New("down")}))

	status := c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.False(t, status.Ready)
	assert.Equal(t, "Some checks failed: database, queue", status.Message)
	assert.Equal(t, "dial tcp: refused", status.Checks["database"].Message)
}

func TestCompositeHealthChecker_OptionalFailureDegrades(t *testing.T) {
	c := NewCompositeHealthChecker("v1")
	c.AddCheck("database", NewPingCheck(stubPinger{}))
	c.AddOptionalCheck("cache", NewPingCheck(stubPinger{err: errors.New("timeout")}))

	status := c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Equal(t, "Degraded: cache", status.Message)
	assert.False(t, status.Checks["cache"].Healthy)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	c := NewCompositeHealthChecker("v1")
	c.SetTimeout(20 * time.Millisecond)
	c.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"].Message)

	c.RemoveCheck("slow")
	assert.True(t, c.Check(context.Background()).Healthy)
}

type recordedRequest struct {
	method, route string
	status        int
}

type recordingObserver struct{ got []recordedRequest }

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.got = append(o.got, recordedRequest{method, route, status})
}

func TestMetricsMiddleware_UsesMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	obs := &recordingObserver{}
	h := MetricsMiddleware(obs)(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, obs.got, 2)
	assert.Equal(t, recordedRequest{"GET", "GET /items/{id}", http.StatusAccepted}, obs.got[0])
	assert.Equal(t, recordedRequest{"GET", UnmatchedRoute, http.StatusNotFound}, obs.got[1])
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(mark("outer"), mark("inner"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestSecurityAndNoCacheHeaders(t *testing.T) {
	h := Chain(SecurityHeadersMiddleware, NoCacheMiddleware)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}
