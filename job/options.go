package job

// Options configures how a definition is enqueued.
type Options struct {
	// Queue is the queue name jobs of this definition are pushed to.
	Queue string

	// TrackStatus creates a status record for every enqueued job.
	TrackStatus bool
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Queue: "default",
	}
}

// Option is a functional option for configuring a job definition.
type Option func(*Options)

// WithQueue sets the queue name for the job.
func WithQueue(q string) Option {
	return func(o *Options) {
		o.Queue = q
	}
}

// WithTrackStatus enables status tracking for every job of the definition.
func WithTrackStatus() Option {
	return func(o *Options) {
		o.TrackStatus = true
	}
}
