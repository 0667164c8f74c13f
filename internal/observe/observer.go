// Package observe records runtime facts about test variables after every
// statement and diffs the resulting traces into assertions.
package observe

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"gooze.dev/pkg/oracles/internal/inspect"
	m "gooze.dev/pkg/oracles/internal/model"
)

// Category names the kind of fact an observer records.
type Category string

// Observer categories.
const (
	CategoryPrimitive   Category = "primitive"
	CategoryNull        Category = "null"
	CategoryArray       Category = "array"
	CategoryArrayLength Category = "array_length"
	CategoryField       Category = "field"
	CategoryInspector   Category = "inspector"
	CategoryEquals      Category = "equals"
	CategorySame        Category = "same"
	CategoryContains    Category = "contains"
	CategoryCompare     Category = "compare"
)

// Categories returns every category in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryPrimitive,
		CategoryNull,
		CategoryArray,
		CategoryArrayLength,
		CategoryField,
		CategoryInspector,
		CategoryEquals,
		CategorySame,
		CategoryContains,
		CategoryCompare,
	}
}

// maxLiteralLength is the longest string literal generated code may carry.
const maxLiteralLength = 65535

// Strings that look like identity hashes or memory addresses differ between
// runs.
var unstableString = regexp.MustCompile(`\w+@[0-9a-f]+|0x[0-9a-f]{6,}`)

// PurityGate decides whether a method may be called to produce an oracle.
type PurityGate interface {
	IsPureMethod(t reflect.Type, name string) bool
}

// Config holds the settings shared by all observers.
type Config struct {
	MaxStringLength int
	MaxArrayLength  int
	Tolerance       m.Tolerance
	Catalogue       *inspect.Catalogue
	Purity          PurityGate
	PureInspectors  bool
	PureEquals      bool
}

// DefaultConfig returns the default observer settings.
func DefaultConfig() Config {
	return Config{
		MaxStringLength: 1000,
		MaxArrayLength:  10,
		Tolerance:       m.DefaultTolerance,
		PureInspectors:  true,
	}
}

// Observer records one category of facts after each statement.
type Observer interface {
	Category() Category
	// AfterStatement is called once the statement at st executed during run;
	// err is the error or panic it raised. Calls for a run other than the
	// latest one returned by Clear are ignored.
	AfterStatement(run uint64, tc *m.TestCase, st *m.Statement, scope *m.Scope, err error)
	// Trace returns a snapshot of the live trace.
	Trace() *Trace
	// Clear empties the live trace and starts a new run.
	Clear() uint64
}

// visitor produces the entry for one variable, or false to skip it.
type visitor func(tc *m.TestCase, st *m.Statement, scope *m.Scope, ref m.VariableRef, value any) (Entry, bool)

type observer struct {
	category Category
	visit    visitor

	mu    sync.Mutex
	trace *Trace
	run   uint64
}

// New creates the observer for category.
func New(category Category, cfg Config) (Observer, error) {
	v, err := newVisitor(category, cfg)
	if err != nil {
		return nil, err
	}

	return &observer{
		category: category,
		visit:    v,
		trace:    NewTrace(category, cfg.Tolerance),
	}, nil
}

// NewAll creates one observer per category.
func NewAll(cfg Config) []Observer {
	observers := make([]Observer, 0, len(Categories()))

	for _, category := range Categories() {
		o, err := New(category, cfg)
		if err != nil {
			// Every listed category has a visitor.
			panic(err)
		}

		observers = append(observers, o)
	}

	return observers
}

func newVisitor(category Category, cfg Config) (visitor, error) {
	if cfg.Catalogue == nil && (category == CategoryField || category == CategoryInspector) {
		catalogue, err := inspect.NewCatalogue(inspect.DefaultCacheSize)
		if err != nil {
			return nil, err
		}

		cfg.Catalogue = catalogue
	}

	switch category {
	case CategoryPrimitive:
		return cfg.visitPrimitive, nil
	case CategoryNull:
		return cfg.visitNull, nil
	case CategoryArray:
		return cfg.visitArray, nil
	case CategoryArrayLength:
		return cfg.visitArrayLength, nil
	case CategoryField:
		return cfg.visitField, nil
	case CategoryInspector:
		return cfg.visitInspector, nil
	case CategoryEquals:
		return cfg.visitEquals, nil
	case CategorySame:
		return cfg.visitSame, nil
	case CategoryContains:
		return cfg.visitContains, nil
	case CategoryCompare:
		return cfg.visitCompare, nil
	default:
		return nil, fmt.Errorf("unknown observer category %q", category)
	}
}

func (o *observer) Category() Category {
	return o.category
}

func (o *observer) AfterStatement(run uint64, tc *m.TestCase, st *m.Statement, scope *m.Scope, err error) {
	if err != nil {
		return
	}

	switch st.Kind() {
	case m.KindConstant, m.KindArrayAlloc, m.KindAssignment:
		return
	}

	for _, ref := range visited(tc, st) {
		value, ok := scope.Lookup(ref.Position)
		if !ok {
			continue
		}

		entry, ok := o.visit(tc, st, scope, ref, value)
		if !ok {
			continue
		}

		o.mu.Lock()
		if run == o.run {
			o.trace.Add(st.Position(), ref, entry)
		}
		o.mu.Unlock()
	}
}

func (o *observer) Trace() *Trace {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.trace.Clone()
}

func (o *observer) Clear() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.trace.Clear()
	o.run++

	return o.run
}

// visited returns the return value of st followed by every variable it
// transitively depends on. Void variables are left out.
func visited(tc *m.TestCase, st *m.Statement) []m.VariableRef {
	var refs []m.VariableRef
	if ret := st.ReturnValue(); !ret.IsVoid() {
		refs = append(refs, ret)
	}

	return append(refs, tc.Dependencies(st.Position())...)
}

// acceptableString reports whether s can be used as an expected value.
func (cfg Config) acceptableString(s string) bool {
	limit := maxLiteralLength
	if cfg.MaxStringLength > 0 && cfg.MaxStringLength < limit {
		limit = cfg.MaxStringLength
	}

	if len(s) > limit {
		return false
	}

	if unstableString.MatchString(s) {
		return false
	}

	return !strings.Contains(strings.ToLower(s), "hashcode")
}
