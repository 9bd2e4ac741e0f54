package solver

import (
	"context"

	"timetable-service/internal/encoder"
)

// Options configure one generate invocation.
type Options struct {
	// TimeLimitSeconds bounds the solve; zero or negative means unbounded.
	TimeLimitSeconds float64

	// NumSearchWorkers is an engine hint. The bundled deterministic engine
	// runs single-threaded and ignores it; an external multi-worker engine
	// would receive it as a search parameter.
	NumSearchWorkers int

	// DesiredLessonsPerDay is the soft daily cap used by the late-slot
	// penalty, in [1, MaxLessonsPerDay]. Out-of-range values are clamped to
	// the maximum.
	DesiredLessonsPerDay int
}

// Response is what an engine returns for a solved model. Initialized is
// false when the engine failed or found no feasible assignment within its
// limits; Values is only meaningful when Initialized is true.
type Response struct {
	Initialized bool
	Values      []bool
	Objective   int64
}

// Engine is a pluggable boolean-constraint solver. Implementations block
// until they produce a response or their deadline expires; on deadline
// expiry they return the best feasible assignment found so far, or an
// uninitialized response if none exists.
type Engine interface {
	Solve(ctx context.Context, model *encoder.Model, opts Options) Response
}
