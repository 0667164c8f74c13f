package domain

import (
	"log/slog"

	"gooze.dev/pkg/oracles/internal/assertion"
	m "gooze.dev/pkg/oracles/internal/model"
)

// place replaces the assertions of tc with the selected candidates and
// applies the clean-up passes. complete lazily yields every assertion the
// baseline supports; it is only consulted when the last statement would
// otherwise stay unasserted.
func place(tc *m.TestCase, pool []assertion.Assertion, selected []int, complete func() []assertion.Assertion, baselineThrew bool) {
	if len(selected) > 0 {
		tc.RemoveAssertions()

		for _, i := range selected {
			attach(tc, pool[i])
		}
	} else {
		slog.Debug("Not removing assertions because no new assertions were found", "test", tc.Name)
	}

	for _, st := range tc.Statements() {
		dropRedundantNonNull(tc, st)
		dropInspectorDuplicates(st)
	}

	guaranteeLastStatement(tc, pool, complete)

	if baselineThrew {
		dropLastStatementAssertions(tc)
	}
}

func attach(tc *m.TestCase, a assertion.Assertion) bool {
	st := tc.Statement(a.Statement())
	if st == nil {
		return false
	}

	return st.AddAssertion(a)
}

// dropRedundantNonNull removes "not nil" checks on a constructor result
// that another assertion constrains or that is later used as a receiver.
func dropRedundantNonNull(tc *m.TestCase, st *m.Statement) {
	if st.Kind() != m.KindConstructor {
		return
	}

	ret := st.ReturnValue()

	for _, attached := range st.Assertions() {
		null, ok := attached.(*assertion.Null)
		if !ok || null.IsNil || null.Source().Position != ret.Position {
			continue
		}

		if tc.UsedAsCallee(ret.Position) || constrainedElsewhere(tc, null) {
			st.RemoveAssertion(null)
		}
	}
}

func constrainedElsewhere(tc *m.TestCase, null *assertion.Null) bool {
	for _, other := range tc.Assertions() {
		if other.Key() == null.Key() {
			continue
		}

		if references(other, null.Source()) {
			return true
		}
	}

	return false
}

// dropInspectorDuplicates removes an accessor assertion on the receiver of
// a method call when a primitive assertion already checks that call's
// result.
func dropInspectorDuplicates(st *m.Statement) {
	if st.Kind() != m.KindMethod || !hasPrimitiveOn(st, st.ReturnValue()) {
		return
	}

	for _, attached := range st.Assertions() {
		inspector, ok := attached.(*assertion.Inspector)
		if !ok {
			continue
		}

		if inspector.Accessor.Name == st.Member() && inspector.Source().Position == st.Callee().Position {
			st.RemoveAssertion(inspector)
		}
	}
}

func hasPrimitiveOn(st *m.Statement, ref m.VariableRef) bool {
	for _, attached := range st.Assertions() {
		if p, ok := attached.(*assertion.Primitive); ok && p.Source().Position == ref.Position {
			return true
		}
	}

	return false
}

// guaranteeLastStatement makes sure the final statement carries an
// assertion, preferring a primitive value check, then any non-null check
// from the candidates, then one drawn from every assertion the baseline
// supports.
func guaranteeLastStatement(tc *m.TestCase, pool []assertion.Assertion, complete func() []assertion.Assertion) {
	last := tc.Statement(tc.Size() - 1)
	if last == nil {
		return
	}

	ret := last.ReturnValue()

	if ret.Valid() && isPrimitiveType(ret) && !hasPrimitiveOn(last, ret) {
		slog.Debug("Last statement has primitive return value but no assertions", "test", tc.Name)

		if attachFirst(last, pool, func(a assertion.Assertion) bool { return a.Kind() == assertion.KindPrimitive }) {
			dropInspectorDuplicates(last)
		}
	}

	if last.HasAssertions() && !onlyNull(last) {
		return
	}

	slog.Debug("Last statement has no assertions", "test", tc.Name, "candidates", len(pool))

	if attachFirst(last, pool, func(a assertion.Assertion) bool { return a.Kind() == assertion.KindPrimitive }) ||
		attachFirst(last, pool, func(a assertion.Assertion) bool { return a.Kind() != assertion.KindNull }) {
		dropInspectorDuplicates(last)
		return
	}

	var all []assertion.Assertion
	if complete != nil {
		all = complete()
	}

	if ret.IsVoid() {
		uses := last.Uses()
		attachFirst(last, all, func(a assertion.Assertion) bool {
			for _, u := range uses {
				if references(a, u) {
					return true
				}
			}

			return false
		})

		return
	}

	inspected := ""
	if last.Kind() == m.KindMethod && len(last.Args()) == 0 && isPrimitiveType(ret) {
		inspected = last.Member()
	}

	found := attachFirst(last, all, func(a assertion.Assertion) bool {
		if a.Kind() == assertion.KindNull || !references(a, ret) {
			return false
		}

		inspector, ok := a.(*assertion.Inspector)

		return !ok || inspector.Accessor.Name != inspected
	})
	if !found {
		attachFirst(last, all, func(a assertion.Assertion) bool { return references(a, ret) })
	}

	dropInspectorDuplicates(last)
}

func attachFirst(st *m.Statement, candidates []assertion.Assertion, accept func(assertion.Assertion) bool) bool {
	for _, a := range candidates {
		if a.Statement() != st.Position() || !accept(a) {
			continue
		}

		if st.AddAssertion(a) {
			return true
		}
	}

	return false
}

func onlyNull(st *m.Statement) bool {
	for _, a := range st.Assertions() {
		if _, ok := a.(*assertion.Null); !ok {
			return false
		}
	}

	return true
}

func dropLastStatementAssertions(tc *m.TestCase) {
	last := tc.Statement(tc.Size() - 1)
	if last != nil && last.HasAssertions() {
		slog.Debug("Removing assertions after exception", "test", tc.Name)
		last.RemoveAssertions()
	}
}

// references reports whether a reads ref, as its source or as the second
// variable of a pair.
func references(a m.Assertion, ref m.VariableRef) bool {
	if a.Source().Position == ref.Position {
		return true
	}

	if p, ok := a.(interface{ Dest() m.VariableRef }); ok {
		return p.Dest().Position == ref.Position
	}

	return false
}

func isPrimitiveType(ref m.VariableRef) bool {
	return m.IsPrimitive(ref.Type) || m.IsString(ref.Type)
}
