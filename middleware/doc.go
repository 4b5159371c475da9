// Package middleware provides composable middleware around engine
// operations (enqueue, pop, clear, status updates, failure recording).
//
// A [Middleware] receives the [Op] being performed and the next handler.
// The engine runs every operation through the configured chain, so
// cross-cutting concerns live here rather than in the queue and status
// code:
//
//	eng, _ := engine.Build(r, engine.WithMiddleware(
//	    middleware.Recover(logger),
//	    middleware.Logging(logger),
//	    middleware.Tracing(),
//	    middleware.Metrics(),
//	))
//
// The handler may fill in Op fields it learns while running, such as the
// job id of a popped payload, so outer middleware observe them after next
// returns.
package middleware
