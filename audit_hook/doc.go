// Package audithook is a resque extension that bridges lifecycle events
// to an audit trail backend.
//
// Every queue, status and failure hook emits a structured audit event
// through the [Recorder] interface. The extension assigns severity levels
// (info for normal operations, warning for failed status transitions,
// critical for recorded failures) and metadata such as handler name,
// queue and job id.
//
// # Usage
//
//	eng, err := engine.Build(r, engine.WithExtension(
//	    audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	        return auditLog.Write(ctx, evt)
//	    })),
//	))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionQueueCleared,
//	        audithook.ActionFailureRecorded,
//	    ),
//	)
package audithook
