// Package handlers contains reusable HTTP building blocks: health checks
// and middleware.
//
// # Health Checks
//
// The CompositeHealthChecker runs named checks in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewPingCheck(db))
//	checker.AddOptionalCheck("cache", handlers.NewPingCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("health check failed: %s", status.Message)
//	}
//
// # Middleware
//
// MetricsMiddleware reports method, matched route pattern, status and
// latency of each request to a RequestObserver. Chain composes middleware
// with the first argument outermost.
package handlers
