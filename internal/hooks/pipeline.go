package hooks

// Pipeline is an ordered list of value transformations.
type Pipeline[T any] struct {
	stages []func(T) T
}

func (p *Pipeline[T]) Add(fn func(T) T) {
	if fn != nil {
		p.stages = append(p.stages, fn)
	}
}

func (p *Pipeline[T]) Len() int {
	return len(p.stages)
}

// Apply threads v through every stage. Results rejected by keep are
// discarded and the previous value carries on.
func (p Pipeline[T]) Apply(v T, keep func(T) bool) T {
	for _, stage := range p.stages {
		next := stage(v)
		if keep == nil || keep(next) {
			v = next
		}
	}
	return v
}

func (p *Pipeline[T]) snapshot() Pipeline[T] {
	return Pipeline[T]{stages: append([]func(T) T(nil), p.stages...)}
}
