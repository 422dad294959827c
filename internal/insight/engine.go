package insight

// Engine runs registered rules against a context and collects the items
// they emit, in registration order.
type Engine[C any] struct {
	rules []Rule[C]
}

// NewEngine creates an engine with the given rules.
func NewEngine[C any](rules ...Rule[C]) *Engine[C] {
	return &Engine[C]{rules: rules}
}

// Run executes every rule against ctx and returns the collected items.
// A nil context yields no items.
func (e *Engine[C]) Run(ctx *C) []Item {
	if ctx == nil {
		return nil
	}
	all := []Item{}
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	return all
}
