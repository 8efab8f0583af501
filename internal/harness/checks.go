package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/valsem/internal/engine"
)

// evaluate reaches the verdict for check c at index i. Engine errors fail
// the verdict; they never abort the scenario.
func (h *Harness) evaluate(i int, c Check) Verdict {
	v := Verdict{
		Index:    i,
		Check:    c.Type,
		Operands: c.Operands,
		Expected: c.Expected(),
	}

	var err error
	switch c.Type {
	case CheckSubstitutable:
		err = h.checkSubstitutable(&v)
	case CheckSameHash:
		err = h.checkSameHash(&v)
	case CheckStableHash:
		err = h.checkStableHash(&v)
	default:
		err = fmt.Errorf("unknown check type %q", c.Type)
	}
	if err != nil {
		v.Pass = false
		v.Detail = err.Error()
	}

	h.logger.Debug("check evaluated",
		"index", i,
		"check", c.Type,
		"operands", c.Operands,
		"pass", v.Pass,
	)
	return v
}

// checkSubstitutable compares both operands and hashes them. Substitutable
// operands with different hashes fail regardless of the expectation.
func (h *Harness) checkSubstitutable(v *Verdict) error {
	a, b := h.operand(v.Operands[0]), h.operand(v.Operands[1])
	got, err := h.engine.Substitutable(a, b)
	if err != nil {
		return err
	}
	v.Got = got
	if v.HashA, v.HashB, err = h.hashPair(a, b); err != nil {
		return err
	}

	v.Pass = v.Got == v.Expected
	if got && v.HashA != v.HashB {
		v.Pass = false
		v.Detail = fmt.Sprintf("substitutable operands hash differently: %d != %d", v.HashA, v.HashB)
	}
	return nil
}

func (h *Harness) checkSameHash(v *Verdict) error {
	var err error
	v.HashA, v.HashB, err = h.hashPair(h.operand(v.Operands[0]), h.operand(v.Operands[1]))
	if err != nil {
		return err
	}
	v.Got = v.HashA == v.HashB
	v.Pass = v.Got == v.Expected
	return nil
}

// checkStableHash hashes the operand twice on the scenario's engine and
// once on a fresh engine with the same salt and introspector, so a hash
// served from the function cache must match a freshly synthesized one.
func (h *Harness) checkStableHash(v *Verdict) error {
	o := h.operand(v.Operands[0])
	first, repeated, err := h.hashPair(o, o)
	if err != nil {
		return err
	}
	fresh := engine.New(
		engine.WithSalt(h.engine.Salt()),
		engine.WithIntrospector(h.engine.Introspector()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	cold, err := fresh.Hash(o)
	if err != nil {
		return err
	}

	v.HashA, v.HashB = first, repeated
	v.Got = first == repeated && first == cold
	v.Pass = v.Got == v.Expected
	if first == repeated && first != cold {
		v.Detail = fmt.Sprintf("fresh engine hashes %d, cached engine %d", cold, first)
	}
	return nil
}

func (h *Harness) hashPair(a, b any) (int32, int32, error) {
	ha, err := h.engine.Hash(a)
	if err != nil {
		return 0, 0, err
	}
	hb, err := h.engine.Hash(b)
	if err != nil {
		return 0, 0, err
	}
	return ha, hb, nil
}
