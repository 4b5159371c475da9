// Package engine wires the resque subsystems together and provides the
// application-level API for enqueuing and inspecting work.
//
// The engine package exists to break an import cycle: the root resque
// package holds configuration and sentinel errors that every subsystem
// imports, so it cannot import those subsystems back. Engine sits above
// all subsystem packages and below the application layer.
//
// # Building an Engine
//
//	r, err := resque.New(
//	    resque.WithStore(redis.New(client)),
//	    resque.WithKeyPrefix("myapp"),
//	)
//
//	eng, err := engine.Build(r,
//	    engine.WithExtension(myExtension),
//	    engine.WithMiddleware(middleware.Logging(logger)),
//	)
//
// # Enqueuing Jobs
//
//	jobID, err := eng.Enqueue(ctx, "mail", "SendEmail",
//	    map[string]any{"to": "user@example.com"},
//	    engine.WithTrackStatus(),
//	)
//
//	// Typed definitions
//	var SendEmail = job.NewDefinition[EmailArgs]("SendEmail", job.WithQueue("mail"))
//	jobID, err := engine.EnqueueDefinition(ctx, eng, SendEmail, EmailArgs{To: "user@example.com"})
//
// # Options
//
//   - [WithExtension]: register a lifecycle extension
//   - [WithMiddleware]: add a middleware to the operation chain
//   - [WithStatusTracker]: replace the store-backed status tracker
//   - [WithFailureBackend]: replace the store-backed failure backend
//   - [WithEnumerator]: replace the shell process enumerator
//   - [WithTracerProvider]: set the OpenTelemetry tracer provider
//   - [WithMeterProvider]: set the OpenTelemetry meter provider
package engine
