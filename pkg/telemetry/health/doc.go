// Package health provides liveness and readiness probes for DialGuard.
//
// # Overview
//
// The health package implements liveness and readiness probes for
// orchestration systems, along with a version information endpoint.
// Component checks are registered as functions, so each store decides
// what "healthy" means for it.
//
// # Liveness vs Readiness
//
// Liveness only reports that the process is running; it never touches a
// store. Readiness runs every registered check. An evaluation cannot
// complete without a durable audit append, so a process whose audit
// store is unreachable reports degraded and should be taken out of
// rotation rather than fail every request closed.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("audit", func(ctx context.Context) error {
//	    return auditStore.Ping(ctx)
//	})
//	checker.RegisterCheck("accounts", func(ctx context.Context) error {
//	    return crmStore.Ping(ctx)
//	})
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
package health
