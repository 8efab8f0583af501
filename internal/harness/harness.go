package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/valsem/internal/compiler"
	"github.com/roach88/valsem/internal/engine"
	"github.com/roach88/valsem/internal/ir"
	"github.com/roach88/valsem/internal/records"
	"github.com/roach88/valsem/internal/shape"
)

// Harness holds a scenario's records and instances, built against one
// engine.
type Harness struct {
	scenario   *Scenario
	engine     *engine.Engine
	types      *records.Types
	env        records.Env
	schemaHash string
	logger     *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger that receives check diagnostics. Without it a
// harness logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario against e and returns the result.
//
// Execution flow:
//  1. Compile and check the scenario's schema
//  2. Build dynamic records for it in the engine's registry
//  3. Build the instances in declaration order
//  4. Evaluate the checks in order
//
// An error means the scenario could not be run. Failed checks are reported
// in the result. Scenarios sharing one engine may run concurrently.
func Run(scenario *Scenario, e *engine.Engine, opts ...Option) (*Result, error) {
	h, err := Build(scenario, e, opts...)
	if err != nil {
		return nil, err
	}
	return h.Evaluate(), nil
}

// Build prepares a scenario for evaluation: steps 1 to 3 of Run.
func Build(scenario *Scenario, e *engine.Engine, opts ...Option) (*Harness, error) {
	schema, err := LoadSchema(scenario)
	if err != nil {
		return nil, err
	}
	schemaHash, err := ir.SchemaHash(schema)
	if err != nil {
		return nil, fmt.Errorf("hashing schema: %w", err)
	}

	reg, err := registry(e)
	if err != nil {
		return nil, err
	}
	types, err := records.Build(schema, reg)
	if err != nil {
		return nil, fmt.Errorf("building records: %w", err)
	}

	h := &Harness{
		scenario:   scenario,
		engine:     e,
		types:      types,
		env:        make(records.Env, len(scenario.Instances)),
		schemaHash: schemaHash,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("scenario", scenario.Name)
	if err := h.buildInstances(scenario.Instances); err != nil {
		return nil, err
	}
	return h, nil
}

// Evaluate evaluates the scenario's checks in order.
func (h *Harness) Evaluate() *Result {
	result := NewResult(h.scenario.Name)
	result.SchemaHash = h.schemaHash
	result.Salt = h.engine.Salt()
	for i, c := range h.scenario.Checks {
		result.AddVerdict(h.evaluate(i, c))
	}

	h.logger.Debug("scenario finished",
		"pass", result.Pass,
		"checks", len(result.Verdicts),
		"schema_hash", h.schemaHash,
	)
	return result
}

// Instance returns the named instance.
func (h *Harness) Instance(name string) (any, bool) {
	v, ok := h.env[name]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// Hash returns the structural hash of the named instance.
func (h *Harness) Hash(name string) (int32, error) {
	o, ok := h.Instance(name)
	if !ok {
		return 0, fmt.Errorf("unknown instance %q", name)
	}
	return h.engine.Hash(o)
}

// SchemaHash identifies the scenario's compiled schema.
func (h *Harness) SchemaHash() string {
	return h.schemaHash
}

// LoadSchema compiles the scenario's specs and inline schema into one schema
// and checks it.
func LoadSchema(scenario *Scenario) (*ir.Schema, error) {
	merged := &ir.Schema{}
	for _, path := range scenario.Specs {
		s, err := loadSpec(path)
		if err != nil {
			return nil, err
		}
		merged.Types = append(merged.Types, s.Types...)
	}
	if scenario.Schema != "" {
		s, err := compiler.CompileSource(scenario.Name+".cue", scenario.Schema)
		if err != nil {
			return nil, fmt.Errorf("inline schema: %w", err)
		}
		merged.Types = append(merged.Types, s.Types...)
	}

	if errs := compiler.Check(merged); len(errs) > 0 {
		return nil, fmt.Errorf("schema rejected: %w", errors.Join(errs...))
	}
	return merged, nil
}

func loadSpec(path string) (*ir.Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("spec %s: %w", path, err)
	}
	if info.IsDir() {
		res, err := compiler.LoadDir(path)
		if err != nil {
			return nil, fmt.Errorf("spec %s: %w", path, err)
		}
		return res.Schema, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("spec %s: %w", path, err)
	}
	s, err := compiler.CompileSource(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("spec %s: %w", path, err)
	}
	return s, nil
}

// registry returns the registry e's introspector marks composites with.
func registry(e *engine.Engine) (*shape.Registry, error) {
	r, ok := e.Introspector().(interface{ Registry() *shape.Registry })
	if !ok {
		return nil, fmt.Errorf("engine introspector %T cannot register dynamic records", e.Introspector())
	}
	return r.Registry(), nil
}

func (h *Harness) buildInstances(instances Instances) error {
	for _, inst := range instances {
		v, err := h.types.Instance(inst.Type, inst.Value, h.env)
		if err != nil {
			return fmt.Errorf("instances.%s: %w", inst.Name, err)
		}
		h.env[inst.Name] = v
	}
	return nil
}

// operand returns the named instance. Check operands are validated against
// the instances when the scenario is parsed.
func (h *Harness) operand(name string) any {
	o, _ := h.Instance(name)
	return o
}
