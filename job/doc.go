// Package job defines the serialized job payload and its argument type.
//
// # Payload
//
// A [Payload] is what travels through a queue. It is encoded as a JSON
// object:
//
//	{"handlerName": "SendWelcome", "args": {"user": 42}, "jobId": "job_01h2x..."}
//
// Key order is not significant. Values round-trip exactly because [Args]
// keeps the raw JSON it was built from.
//
// # Args
//
// [Args] is a tagged variant: either absent (encoded as null) or a JSON
// object. Scalars, arrays and strings are rejected by [NewArgs] with
// resque.ErrInvalidArgument, so a bad enqueue fails before anything is
// written.
//
// # Definitions
//
// A [Definition] binds a handler name to a typed argument struct and a
// default queue, so call sites cannot misspell either:
//
//	var SendWelcome = job.NewDefinition[WelcomeArgs]("SendWelcome",
//	    job.WithQueue("mail"),
//	)
//
//	engine.EnqueueDefinition(ctx, eng, SendWelcome, WelcomeArgs{UserID: 42})
package job
