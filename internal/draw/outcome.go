package draw

// Outcome is the tagged result of a pipeline stage: either a resolved value
// together with the stage that produced it, or unresolved.
type Outcome[T any] struct {
	Value    T
	Stage    Stage
	Resolved bool
}

// Resolved wraps a value produced by stage.
func Resolved[T any](v T, stage Stage) Outcome[T] {
	return Outcome[T]{Value: v, Stage: stage, Resolved: true}
}

// Unresolved returns an outcome that carries no value.
func Unresolved[T any]() Outcome[T] {
	return Outcome[T]{}
}

// FirstResolved evaluates stages in order and returns the first resolved
// outcome. Later stages are not evaluated once one resolves.
func FirstResolved[T any](stages ...func() Outcome[T]) Outcome[T] {
	for _, stage := range stages {
		if out := stage(); out.Resolved {
			return out
		}
	}
	return Unresolved[T]()
}
