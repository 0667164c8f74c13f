// Package purity decides conservatively whether a method is free of side
// effects, from facts collected about method bodies and the type lattice.
package purity

import (
	"reflect"
	"slices"
	"sort"
	"sync"
)

// MethodKey identifies a method by declaring type and name. Package level
// functions use the package path as Type. Go has no overloading, so the
// name is unique within a type.
type MethodKey struct {
	Type string
	Name string
}

func (k MethodKey) String() string {
	return k.Type + "." + k.Name
}

// CallKind classifies a call site.
type CallKind int

const (
	// StaticCall targets a package level function.
	StaticCall CallKind = iota
	// SpecialCall targets a closure or a method value bound at compile time.
	SpecialCall
	// VirtualCall targets a method of a concrete type.
	VirtualCall
	// InterfaceCall is dispatched dynamically through an interface.
	InterfaceCall
)

func (k CallKind) String() string {
	switch k {
	case StaticCall:
		return "static"
	case SpecialCall:
		return "special"
	case VirtualCall:
		return "virtual"
	case InterfaceCall:
		return "interface"
	default:
		return "unknown"
	}
}

// Call is one call made by a method body.
type Call struct {
	Kind   CallKind
	Target MethodKey
}

// Facts describe one declared method.
type Facts struct {
	FieldWrites bool
	Calls       []Call
	HasBody     bool
	Interface   bool
}

// InheritanceIndex exposes the type lattice used by the checker.
type InheritanceIndex interface {
	// SuperTypes returns the types whose methods t inherits, closest first.
	SuperTypes(t string) []string
	// SubTypes returns the types that inherit from or implement t.
	SubTypes(t string) []string
	HasType(t string) bool
	DeclaredMembers(t string) []MethodKey
}

// Source combines the type lattice with per method facts.
type Source interface {
	InheritanceIndex
	Facts(key MethodKey) (Facts, bool)
}

// Index is an in-memory Source.
type Index struct {
	mu      sync.RWMutex
	supers  map[string][]string
	subs    map[string]map[string]struct{}
	members map[string][]MethodKey
	facts   map[MethodKey]Facts
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		supers:  make(map[string][]string),
		subs:    make(map[string]map[string]struct{}),
		members: make(map[string][]MethodKey),
		facts:   make(map[MethodKey]Facts),
	}
}

// AddType registers t with its super types, closest first.
func (ix *Index) AddType(t string, supers ...string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.ensure(t)

	for _, super := range supers {
		if super == t || slices.Contains(ix.supers[t], super) {
			continue
		}

		ix.ensure(super)
		ix.supers[t] = append(ix.supers[t], super)
		ix.subs[super][t] = struct{}{}
	}
}

// AddMethod registers the facts of a declared method.
func (ix *Index) AddMethod(key MethodKey, facts Facts) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.ensure(key.Type)

	if _, ok := ix.facts[key]; !ok {
		ix.members[key.Type] = append(ix.members[key.Type], key)
	}

	ix.facts[key] = facts
}

func (ix *Index) ensure(t string) {
	if _, ok := ix.subs[t]; !ok {
		ix.subs[t] = make(map[string]struct{})
	}
}

// SuperTypes returns the transitive super types of t, closest first.
func (ix *Index) SuperTypes(t string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var ordered []string
	seen := map[string]bool{t: true}
	queue := slices.Clone(ix.supers[t])

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if seen[next] {
			continue
		}

		seen[next] = true
		ordered = append(ordered, next)
		queue = append(queue, ix.supers[next]...)
	}

	return ordered
}

// SubTypes returns the transitive sub types of t in lexical order.
func (ix *Index) SubTypes(t string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := map[string]bool{t: true}
	queue := []string{t}

	var all []string

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		for sub := range ix.subs[next] {
			if seen[sub] {
				continue
			}

			seen[sub] = true
			all = append(all, sub)
			queue = append(queue, sub)
		}
	}

	sort.Strings(all)

	return all
}

// HasType reports whether t is known.
func (ix *Index) HasType(t string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	_, ok := ix.subs[t]

	return ok
}

// DeclaredMembers returns the methods registered for t.
func (ix *Index) DeclaredMembers(t string) []MethodKey {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return slices.Clone(ix.members[t])
}

// Types returns the types that declare at least one method, in lexical order.
func (ix *Index) Types() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	types := make([]string, 0, len(ix.members))
	for t, members := range ix.members {
		if len(members) > 0 {
			types = append(types, t)
		}
	}

	sort.Strings(types)

	return types
}

// Facts returns the facts registered for key.
func (ix *Index) Facts(key MethodKey) (Facts, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	f, ok := ix.facts[key]

	return f, ok
}

// Len returns the number of registered methods.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.facts)
}

// TypeName returns the name under which t is registered: the package path
// and name of the named type, dereferencing one pointer.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}

	if t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}

	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}

	return t.PkgPath() + "." + t.Name()
}
