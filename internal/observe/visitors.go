package observe

import (
	"reflect"

	"gooze.dev/pkg/oracles/internal/assertion"
	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
)

func (cfg Config) visitPrimitive(_ *m.TestCase, _ *m.Statement, _ *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if !cfg.observable(value) {
		return nil, false
	}

	return &PrimitiveEntry{Var: ref, Value: value, Delta: cfg.Tolerance.Delta(reflect.TypeOf(value))}, true
}

// observable reports whether value is a primitive, an exported enum or an
// acceptable string.
func (cfg Config) observable(value any) bool {
	if value == nil || !inspect.IsObservable(reflect.TypeOf(value)) {
		return false
	}

	if s, ok := value.(string); ok {
		return cfg.acceptableString(s)
	}

	if rv := reflect.ValueOf(value); rv.Kind() == reflect.String {
		return cfg.acceptableString(rv.String())
	}

	return true
}

func (cfg Config) visitNull(_ *m.TestCase, _ *m.Statement, _ *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if !m.IsNillable(ref.Type) {
		return nil, false
	}

	return &NullEntry{Var: ref, IsNil: m.IsNil(value)}, true
}

func (cfg Config) visitArray(_ *m.TestCase, _ *m.Statement, _ *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if m.IsNil(value) {
		return nil, false
	}

	t := reflect.TypeOf(value)
	if !m.IsArray(t) || !inspect.IsObservable(t.Elem()) {
		return nil, false
	}

	elems, _ := inspect.Elements(value)
	if len(elems) > cfg.MaxArrayLength {
		return nil, false
	}

	for _, e := range elems {
		if s, ok := e.(string); ok && !cfg.acceptableString(s) {
			return nil, false
		}
	}

	return &ArrayEntry{Var: ref, Type: t, Values: elems, Delta: cfg.Tolerance.Delta(t.Elem())}, true
}

func (cfg Config) visitArrayLength(_ *m.TestCase, _ *m.Statement, _ *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if m.IsNil(value) {
		return nil, false
	}

	t := reflect.TypeOf(value)
	if !m.IsArray(t) || t.Elem().Kind() == reflect.Interface {
		return nil, false
	}

	n, _ := inspect.Len(value)

	return &ArrayLengthEntry{Var: ref, Length: n}, true
}

// structured reports whether value is an object whose fields and accessors
// are worth observing.
func structured(value any) (reflect.Type, bool) {
	if m.IsNil(value) {
		return nil, false
	}

	t := reflect.TypeOf(value)
	if m.IsValueType(t) || m.IsEnum(t) || m.IsWrapper(t) {
		return nil, false
	}

	return t, true
}

func (cfg Config) visitField(_ *m.TestCase, _ *m.Statement, _ *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	t, ok := structured(value)
	if !ok {
		return nil, false
	}

	values := make(map[string]FieldValue)

	for _, f := range cfg.Catalogue.Fields(t) {
		v, err := inspect.ReadField(value, f.Name)
		if err != nil || !cfg.observable(v) {
			continue
		}

		values[f.Key()] = FieldValue{Field: f, Value: v, Delta: cfg.Tolerance.Delta(f.FieldType)}
	}

	if len(values) == 0 {
		return nil, false
	}

	return &FieldEntry{Var: ref, Values: values}, true
}

func (cfg Config) visitInspector(_ *m.TestCase, _ *m.Statement, _ *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	t, ok := structured(value)
	if !ok {
		return nil, false
	}

	values := make(map[string]InspectorValue)

	for _, a := range cfg.Catalogue.Accessors(t) {
		if cfg.PureInspectors && cfg.Purity != nil && !cfg.Purity.IsPureMethod(t, a.Name) {
			continue
		}

		v, err := inspect.Call(value, a)
		if err != nil || !cfg.observable(v) {
			continue
		}

		values[a.Key()] = InspectorValue{Accessor: a, Value: v, Delta: cfg.Tolerance.Delta(a.Result)}
	}

	if len(values) == 0 {
		return nil, false
	}

	return &InspectorEntry{Var: ref, Values: values}, true
}

// candidates returns the bound variables of scope other than ref, in
// position order.
func candidates(tc *m.TestCase, scope *m.Scope, ref m.VariableRef) []m.VariableRef {
	var refs []m.VariableRef

	for _, pos := range scope.Positions() {
		if pos == ref.Position {
			continue
		}

		if v := tc.Variable(pos); v.Valid() {
			refs = append(refs, v)
		}
	}

	return refs
}

func isConstant(tc *m.TestCase, ref m.VariableRef) bool {
	st := tc.Statement(ref.Position)
	return st != nil && st.Kind() == m.KindConstant
}

func (cfg Config) visitEquals(tc *m.TestCase, _ *m.Statement, scope *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	t := reflect.TypeOf(value)
	if t != nil && cfg.PureEquals && cfg.Purity != nil && inspect.HasEqualMethod(t) && !cfg.Purity.IsPureMethod(t, "Equal") {
		return nil, false
	}

	outcomes := make(map[int]Outcome)

	for _, other := range candidates(tc, scope, ref) {
		if isConstant(tc, ref) && isConstant(tc, other) {
			continue
		}

		otherValue, _ := scope.Lookup(other.Position)
		if m.IsNil(value) && m.IsNil(otherValue) {
			continue
		}

		if !inspect.Compatible(value, otherValue) {
			continue
		}

		equal, err := inspect.Equal(value, otherValue, cfg.Tolerance)
		if err != nil {
			continue
		}

		outcomes[other.Position] = Outcome{Dest: other, Value: equal}
	}

	return pairEntry(assertion.KindEquals, ref, outcomes)
}

func (cfg Config) visitSame(tc *m.TestCase, _ *m.Statement, scope *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if !hasIdentity(value) {
		return nil, false
	}

	outcomes := make(map[int]Outcome)

	for _, other := range candidates(tc, scope, ref) {
		if isConstant(tc, ref) && isConstant(tc, other) {
			continue
		}

		otherValue, _ := scope.Lookup(other.Position)
		if !hasIdentity(otherValue) || !inspect.Compatible(value, otherValue) {
			continue
		}

		outcomes[other.Position] = Outcome{Dest: other, Value: inspect.Same(value, otherValue)}
	}

	return pairEntry(assertion.KindSame, ref, outcomes)
}

func hasIdentity(value any) bool {
	return !m.IsNil(value) && inspect.HasIdentity(reflect.TypeOf(value))
}

func (cfg Config) visitContains(tc *m.TestCase, _ *m.Statement, scope *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if m.IsNil(value) {
		return nil, false
	}

	elemType, ok := inspect.ElementType(reflect.TypeOf(value))
	if !ok {
		return nil, false
	}

	outcomes := make(map[int]Outcome)

	for _, other := range candidates(tc, scope, ref) {
		if other.Position > ref.Position || hashDerived(tc, other) {
			continue
		}

		elem, _ := scope.Lookup(other.Position)
		if elem == nil || !reflect.TypeOf(elem).AssignableTo(elemType) {
			continue
		}

		found, err := inspect.Contains(value, elem, cfg.Tolerance)
		if err != nil {
			continue
		}

		outcomes[other.Position] = Outcome{Dest: other, Value: found}
	}

	return pairEntry(assertion.KindContains, ref, outcomes)
}

// hashDerived reports whether ref was produced by a hash code accessor.
func hashDerived(tc *m.TestCase, ref m.VariableRef) bool {
	st := tc.Statement(ref.Position)
	if st == nil || st.Kind() != m.KindMethod {
		return false
	}

	switch st.Member() {
	case "Hash", "HashCode", "Sum32", "Sum64":
		return true
	default:
		return false
	}
}

func (cfg Config) visitCompare(tc *m.TestCase, _ *m.Statement, scope *m.Scope, ref m.VariableRef, value any) (Entry, bool) {
	if m.IsNil(value) {
		return nil, false
	}

	t := reflect.TypeOf(value)
	if !inspect.HasCompareMethod(t) {
		return nil, false
	}

	if cfg.PureEquals && cfg.Purity != nil && !cfg.Purity.IsPureMethod(t, "Compare") {
		return nil, false
	}

	outcomes := make(map[int]Outcome)

	for _, other := range candidates(tc, scope, ref) {
		otherValue, _ := scope.Lookup(other.Position)
		if m.IsNil(otherValue) || !inspect.Compatible(value, otherValue) {
			continue
		}

		sign, err := inspect.Compare(value, otherValue)
		if err != nil {
			continue
		}

		outcomes[other.Position] = Outcome{Dest: other, Value: sign}
	}

	return pairEntry(assertion.KindCompare, ref, outcomes)
}

func pairEntry(kind assertion.Kind, ref m.VariableRef, outcomes map[int]Outcome) (Entry, bool) {
	if len(outcomes) == 0 {
		return nil, false
	}

	return &PairEntry{Kind: kind, Var: ref, Outcomes: outcomes}, true
}
