package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/altihold/internal/dynamo"
)

var (
	_ dynamo.Solver = (*RK45)(nil)
	_ dynamo.Solver = (*RK4)(nil)
)

var solvers = map[string]func(dynamo.Config) dynamo.Solver{
	"rk45":   func(cfg dynamo.Config) dynamo.Solver { return NewRK45(cfg) },
	"dopri5": func(cfg dynamo.Config) dynamo.Solver { return NewRK45(cfg) },
	"rk4":    func(cfg dynamo.Config) dynamo.Solver { return NewRK4(cfg) },
}

// New builds the named solver.
func New(name string, cfg dynamo.Config) (dynamo.Solver, error) {
	fn, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(cfg), nil
}

// Known reports whether name is a registered solver.
func Known(name string) bool {
	_, ok := solvers[name]
	return ok
}

func List() []string {
	names := make([]string, 0, len(solvers))
	for name := range solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
