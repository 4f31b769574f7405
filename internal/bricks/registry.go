package bricks

import (
	"sort"
	"sync"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// Factory produces a fresh rule object.
type Factory[T any] func() T

// Registry maps rule names to factories. It is append-only: a name can be
// registered once and never replaced.
type Registry[T any] struct {
	mu         sync.RWMutex
	family     string
	generators map[string]Factory[T]
}

// NewRegistry creates an empty registry. family names the kind of rule it
// holds and is used in error messages.
func NewRegistry[T any](family string) *Registry[T] {
	return &Registry[T]{
		family:     family,
		generators: make(map[string]Factory[T]),
	}
}

// Family returns the kind of rule held by the registry.
func (r *Registry[T]) Family() string {
	return r.family
}

// AddGenerator registers a factory under name.
func (r *Registry[T]) AddGenerator(name string, f Factory[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.generators[name]; exists {
		return &cerr.NameCollisionError{Name: name, Context: r.family}
	}
	r.generators[name] = f
	return nil
}

// Generate returns a new rule object built by the factory registered under
// name.
func (r *Registry[T]) Generate(name string) (T, error) {
	r.mu.RLock()
	f, ok := r.generators[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, &cerr.UnknownRuleError{
			Name:       name,
			Family:     r.family,
			Suggestion: cerr.Suggest(name, r.Names()),
		}
	}
	return f(), nil
}

// Contains reports whether name is registered.
func (r *Registry[T]) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.generators[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for n := range r.generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustAdd[T any](r *Registry[T], name string, f Factory[T]) {
	if err := r.AddGenerator(name, f); err != nil {
		panic(err)
	}
}

// ── Process-wide registries ──

// Registries groups the process-wide rule registries.
type Registries struct {
	StressCriteria          *Registry[StressCriterion]
	KinematicHardeningRules *Registry[KinematicHardeningRule]
	IsotropicHardeningRules *Registry[IsotropicHardeningRule]
	InelasticFlows          *Registry[InelasticFlow]
	Bricks                  *Registry[Brick]
}

var (
	global     *Registries
	globalOnce sync.Once
)

// NewRegistries creates registries holding every built-in rule.
func NewRegistries() *Registries {
	r := &Registries{
		StressCriteria:          NewRegistry[StressCriterion]("stress criterion"),
		KinematicHardeningRules: NewRegistry[KinematicHardeningRule]("kinematic hardening rule"),
		IsotropicHardeningRules: NewRegistry[IsotropicHardeningRule]("isotropic hardening rule"),
		InelasticFlows:          NewRegistry[InelasticFlow]("inelastic flow"),
		Bricks:                  NewRegistry[Brick]("brick"),
	}
	registerStressCriteria(r.StressCriteria)
	registerKinematicHardeningRules(r.KinematicHardeningRules)
	registerIsotropicHardeningRules(r.IsotropicHardeningRules)
	registerInelasticFlows(r)
	registerBricks(r)
	return r
}

// Global returns the process-wide registries, creating them with the
// built-in rules on first call. Call it before parsing files in parallel.
func Global() *Registries {
	globalOnce.Do(func() {
		global = NewRegistries()
	})
	return global
}

// ResetGlobal discards the process-wide registries.
// This is NOT thread-safe and should only be used in tests.
func ResetGlobal() {
	globalOnce = sync.Once{}
	global = nil
}
