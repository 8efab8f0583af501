package records

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/roach88/valsem/internal/ir"
)

// BitsPrefix introduces an exact floating-point bit pattern in instance data:
// "bits:0x7ff8000000000001" for float64, "bits:0x7fc00001" for float32.
const BitsPrefix = "bits:"

// RefKey is the mapping key that refers to an existing instance.
const RefKey = "$ref"

// Env holds named instances for {$ref: name}.
type Env map[string]reflect.Value

// InstanceError reports instance data that does not fit its type.
type InstanceError struct {
	Path    string
	Message string
}

func (e *InstanceError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var identities atomic.Uint64

// Instance builds a value of the type named by expr from decoded YAML data.
// Named instances in env can be shared with {$ref: name}; the result shares
// their objects, so pointers, slices and maps inside stay identical.
func (ts *Types) Instance(expr string, data any, env Env) (reflect.Value, error) {
	parsed, err := ir.ParseTypeExpr(expr)
	if err != nil {
		return reflect.Value{}, err
	}
	if parsed.Form == ir.FormNamed && ts.isReference(parsed.Name) {
		return reflect.Value{}, &InstanceError{Message: fmt.Sprintf("reference type %s must be instantiated as *%s", parsed.Name, parsed.Name)}
	}
	b := &builder{types: ts, env: env}
	return b.value(parsed, data, "")
}

func (ts *Types) isReference(name string) bool {
	d, ok := ts.decls[name]
	return ok && d.Kind == ir.KindReference
}

type builder struct {
	types *Types
	env   Env
}

func (b *builder) fail(path, format string, args ...any) error {
	return &InstanceError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// value builds a value of expr. The result is settable-compatible with the
// Go type of expr.
func (b *builder) value(expr *ir.TypeExpr, data any, path string) (reflect.Value, error) {
	typ, err := b.types.goType(expr)
	if err != nil {
		return reflect.Value{}, b.fail(path, "%v", err)
	}

	if name, ok := refName(data); ok {
		shared, ok := b.env[name]
		if !ok {
			return reflect.Value{}, b.fail(path, "unknown instance %q", name)
		}
		if !shared.Type().AssignableTo(typ) {
			return reflect.Value{}, b.fail(path, "instance %q has type %s, want %s", name, shared.Type(), expr)
		}
		out := reflect.New(typ).Elem()
		out.Set(shared)
		return out, nil
	}

	out := reflect.New(typ).Elem()
	switch expr.Form {
	case ir.FormPrimitive:
		err = b.primitive(out, data, path)
	case ir.FormNamed:
		err = b.record(out, expr.Name, data, path)
	case ir.FormPointer:
		if data == nil {
			return out, nil
		}
		target := reflect.New(typ.Elem())
		elem, err := b.value(expr.Elem, data, path)
		if err != nil {
			return reflect.Value{}, err
		}
		target.Elem().Set(elem)
		if expr.Elem.Form == ir.FormNamed && b.types.isReference(expr.Elem.Name) {
			target.Elem().Field(0).SetUint(identities.Add(1))
		}
		out.Set(target)
	case ir.FormSlice:
		if data == nil {
			return out, nil
		}
		err = b.sequence(out, expr.Elem, data, path, -1)
	case ir.FormArray:
		err = b.sequence(out, expr.Elem, data, path, expr.Len)
	case ir.FormAny:
		err = b.dynamic(out, data, path)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func refName(data any) (string, bool) {
	m, ok := data.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	name, ok := m[RefKey].(string)
	return name, ok
}

func (b *builder) record(out reflect.Value, name string, data any, path string) error {
	m, ok := data.(map[string]any)
	if !ok {
		if data == nil {
			return nil
		}
		return b.fail(path, "%s wants a mapping, got %T", name, data)
	}

	known := make(map[string]bool, len(b.types.fields[name]))
	for _, f := range b.types.fields[name] {
		known[f.Name] = true
		raw, present := m[f.Name]
		if !present {
			continue
		}
		v, err := b.value(f.Expr, raw, joinPath(path, f.Name))
		if err != nil {
			return err
		}
		out.Field(f.Index).Set(v)
	}
	for key := range m {
		if !known[key] {
			return b.fail(path, "%s has no field %q", name, key)
		}
	}
	return nil
}

func (b *builder) sequence(out reflect.Value, elem *ir.TypeExpr, data any, path string, fixed int) error {
	list, ok := data.([]any)
	if !ok {
		return b.fail(path, "wants a sequence, got %T", data)
	}
	if fixed >= 0 && len(list) != fixed {
		return b.fail(path, "wants %d elements, got %d", fixed, len(list))
	}
	if fixed < 0 {
		out.Set(reflect.MakeSlice(out.Type(), len(list), len(list)))
	}
	for i, raw := range list {
		v, err := b.value(elem, raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return err
		}
		out.Index(i).Set(v)
	}
	return nil
}

// dynamic fills an any: null, or {type: expr, value: data}.
func (b *builder) dynamic(out reflect.Value, data any, path string) error {
	if data == nil {
		return nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return b.fail(path, "any wants null or {type, value}, got %T", data)
	}
	expr, ok := m["type"].(string)
	if !ok || len(m) > 2 {
		return b.fail(path, "any wants null or {type, value}")
	}
	parsed, err := ir.ParseTypeExpr(expr)
	if err != nil {
		return b.fail(path, "%v", err)
	}
	if parsed.Form == ir.FormNamed && b.types.isReference(parsed.Name) {
		return b.fail(path, "reference type %s must be held as *%s", parsed.Name, parsed.Name)
	}
	v, err := b.value(parsed, m["value"], path)
	if err != nil {
		return err
	}
	out.Set(v)
	return nil
}

func (b *builder) primitive(out reflect.Value, data any, path string) error {
	switch out.Kind() {
	case reflect.Bool:
		v, ok := data.(bool)
		if !ok {
			return b.fail(path, "wants bool, got %T", data)
		}
		out.SetBool(v)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt(data)
		if !ok || out.OverflowInt(n) {
			return b.fail(path, "wants %s, got %v", out.Type(), data)
		}
		out.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := asUint(data)
		if !ok || out.OverflowUint(n) {
			return b.fail(path, "wants %s, got %v", out.Type(), data)
		}
		out.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := b.float(out.Kind(), data, path)
		if err != nil {
			return err
		}
		out.SetFloat(f)

	case reflect.Complex64, reflect.Complex128:
		parts, ok := data.([]any)
		if !ok || len(parts) != 2 {
			return b.fail(path, "wants [re, im], got %v", data)
		}
		fk := reflect.Float64
		if out.Kind() == reflect.Complex64 {
			fk = reflect.Float32
		}
		re, err := b.float(fk, parts[0], path+".re")
		if err != nil {
			return err
		}
		im, err := b.float(fk, parts[1], path+".im")
		if err != nil {
			return err
		}
		out.SetComplex(complex(re, im))

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return b.fail(path, "wants string, got %T", data)
		}
		out.SetString(s)

	default:
		return b.fail(path, "unsupported primitive %s", out.Type())
	}
	return nil
}

// float reads a number, or an exact bit pattern after BitsPrefix. Signaling
// NaN patterns may come back quieted; they are still NaN.
func (b *builder) float(kind reflect.Kind, data any, path string) (float64, error) {
	switch v := data.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		hex, ok := strings.CutPrefix(v, BitsPrefix)
		if !ok {
			return 0, b.fail(path, "wants a number or %s0x..., got %q", BitsPrefix, v)
		}
		size := 64
		if kind == reflect.Float32 {
			size = 32
		}
		bits, err := strconv.ParseUint(hex, 0, size)
		if err != nil {
			return 0, b.fail(path, "invalid bit pattern %q: %v", v, err)
		}
		if size == 32 {
			return float64(math.Float32frombits(uint32(bits))), nil
		}
		return math.Float64frombits(bits), nil
	default:
		return 0, b.fail(path, "wants a number, got %T", data)
	}
}

func asInt(data any) (int64, bool) {
	switch v := data.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func asUint(data any) (uint64, bool) {
	switch v := data.(type) {
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
