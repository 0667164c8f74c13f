// Package inspect discovers the accessors and fields of Go types that can be
// used as oracle sources, and provides the reflective helpers observers and
// assertions use to read them.
package inspect

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	m "gooze.dev/pkg/oracles/internal/model"
)

// DefaultCacheSize bounds the number of types whose accessors are cached.
const DefaultCacheSize = 1024

// baseMethods carry no domain information on any type.
var baseMethods = map[string]struct{}{
	"String":   {},
	"GoString": {},
	"Error":    {},
	"Format":   {},
}

// DefaultDenyList names accessors whose results are not reproducible across
// runs. Entries are either a method name or "<type>.<method>".
var DefaultDenyList = []string{
	"Hash",
	"HashCode",
	"Sum32",
	"Sum64",
	"Cap",
	"Unix",
	"UnixNano",
	"UnixMilli",
	"UnixMicro",
	"Now",
	"Pid",
	"Abs",
	"*os.File.Name",
}

var deniedTypes = map[reflect.Type]struct{}{
	reflect.TypeFor[time.Time]():  {},
	reflect.TypeFor[*time.Time](): {},
	reflect.TypeFor[os.File]():    {},
	reflect.TypeFor[*os.File]():   {},
}

// Accessor is an exported method without parameters returning a single
// primitive, string or enum value.
type Accessor struct {
	Type   reflect.Type
	Name   string
	Result reflect.Type
}

// Key identifies the accessor by declaring type and name.
func (a Accessor) Key() string {
	return a.Type.String() + "." + a.Name
}

// Field is an exported struct field of primitive or string kind.
type Field struct {
	Type      reflect.Type
	Name      string
	FieldType reflect.Type
}

// Key identifies the field by declaring type and name.
func (f Field) Key() string {
	return f.Type.String() + "." + f.Name
}

// Catalogue discovers accessors and fields once per type.
type Catalogue struct {
	deny      map[string]struct{}
	accessors *lru.Cache[reflect.Type, []Accessor]
	fields    *lru.Cache[reflect.Type, []Field]
}

// NewCatalogue creates a catalogue caching up to size types. The deny list
// extends DefaultDenyList.
func NewCatalogue(size int, deny ...string) (*Catalogue, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	accessors, err := lru.New[reflect.Type, []Accessor](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create accessor cache: %w", err)
	}

	fields, err := lru.New[reflect.Type, []Field](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create field cache: %w", err)
	}

	c := &Catalogue{
		deny:      make(map[string]struct{}, len(DefaultDenyList)+len(deny)),
		accessors: accessors,
		fields:    fields,
	}

	for _, name := range slices.Concat(DefaultDenyList, deny) {
		c.deny[strings.TrimSpace(name)] = struct{}{}
	}

	return c, nil
}

// Accessors returns the eligible accessors of t.
func (c *Catalogue) Accessors(t reflect.Type) []Accessor {
	if t == nil {
		return nil
	}

	if cached, ok := c.accessors.Get(t); ok {
		return cached
	}

	found := c.discoverAccessors(t)
	c.accessors.Add(t, found)

	return found
}

func (c *Catalogue) discoverAccessors(t reflect.Type) []Accessor {
	if _, denied := deniedTypes[t]; denied {
		return nil
	}

	// Receivers take the first parameter slot on concrete types only.
	params := 1
	if t.Kind() == reflect.Interface {
		params = 0
	}

	var found []Accessor

	for i := range t.NumMethod() {
		method := t.Method(i)
		if !method.IsExported() {
			continue
		}

		if method.Type.NumIn() != params || method.Type.NumOut() != 1 {
			continue
		}

		result := method.Type.Out(0)
		if !IsObservable(result) {
			continue
		}

		if c.Denied(t, method.Name) {
			continue
		}

		found = append(found, Accessor{Type: t, Name: method.Name, Result: result})
	}

	return found
}

// Denied reports whether the accessor name of t must not be used.
func (c *Catalogue) Denied(t reflect.Type, name string) bool {
	if _, ok := baseMethods[name]; ok {
		return true
	}

	if _, ok := c.deny[name]; ok {
		return true
	}

	_, ok := c.deny[t.String()+"."+name]

	return ok
}

// Fields returns the exported primitive and string fields of a struct type
// or pointer to struct type.
func (c *Catalogue) Fields(t reflect.Type) []Field {
	if t == nil {
		return nil
	}

	if cached, ok := c.fields.Get(t); ok {
		return cached
	}

	found := discoverFields(t)
	c.fields.Add(t, found)

	return found
}

func discoverFields(t reflect.Type) []Field {
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}

	if st.Kind() != reflect.Struct {
		return nil
	}

	if _, denied := deniedTypes[st]; denied {
		return nil
	}

	var found []Field

	for _, f := range reflect.VisibleFields(st) {
		if !f.IsExported() || f.Anonymous || len(f.Index) != 1 {
			continue
		}

		if !m.IsValueType(f.Type) {
			continue
		}

		found = append(found, Field{Type: st, Name: f.Name, FieldType: f.Type})
	}

	return found
}

// IsObservable reports whether values of t can be recorded as primitive
// observations: booleans, numbers, strings and exported enums.
func IsObservable(t reflect.Type) bool {
	if m.IsEnum(t) {
		return m.IsReachableEnum(t)
	}

	return m.IsValueType(t)
}
