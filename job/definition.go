package job

// Definition is a typed job definition. T is the argument type and must
// encode to a JSON object.
type Definition[T any] struct {
	// Name is the handler name written into every payload.
	Name string

	// Opts configures the default queue and status tracking.
	Opts Options
}

// NewDefinition creates a typed job definition.
func NewDefinition[T any](name string, opts ...Option) *Definition[T] {
	def := &Definition[T]{
		Name: name,
		Opts: DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&def.Opts)
	}
	return def
}

// Args converts typed arguments into Args.
func (d *Definition[T]) Args(v T) (Args, error) {
	return NewArgs(v)
}
