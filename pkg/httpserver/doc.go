// Package httpserver is the serving shell for the service's HTTP
// surface: the tracking endpoints, the notification admin API and the
// health probes all mount behind it.
//
// Server wraps net/http with graceful shutdown. Run blocks until the
// context is cancelled or the process receives SIGINT/SIGTERM, then
// drains in-flight requests within the configured shutdown deadline.
// Construction goes through New with functional options or through
// NewFromConfig with an environment-backed Config. WithStartHook and
// WithStopHook bracket the lifecycle for side effects such as logging
// the bound address.
//
// HealthCheckHandler doubles as liveness probe (no checks) and
// readiness probe (database and cache ping functions).
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Mount("/", trackingHandler.Routes())
//	r.Mount("/notifications", notificationHandler.Routes())
//	r.Get("/health", httpserver.HealthCheckHandler(log))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
