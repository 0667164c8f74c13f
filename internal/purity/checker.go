package purity

import (
	"reflect"
	"strings"
	"sync"
)

// DefaultAllowList names standard library functions and methods known to be
// free of side effects. An entry ending in ".*" allows a whole package.
var DefaultAllowList = []string{
	"strings.*",
	"strconv.*",
	"unicode.*",
	"unicode/utf8.*",
	"math.*",
	"math/bits.*",
	"bytes.Compare",
	"bytes.Contains",
	"bytes.Equal",
	"bytes.HasPrefix",
	"bytes.HasSuffix",
	"bytes.Index",
	"errors.Is",
	"errors.New",
	"fmt.Sprint",
	"fmt.Sprintf",
	"fmt.Sprintln",
	"fmt.Errorf",
	"slices.Contains",
	"slices.Equal",
	"slices.Index",
	"sort.Search",
	"sort.SearchInts",
	"sort.SearchStrings",
	"time.Duration.Hours",
	"time.Duration.Minutes",
	"time.Duration.Seconds",
	"time.Duration.Milliseconds",
}

// DefaultRandomSources name packages, types and functions whose results
// differ between runs.
var DefaultRandomSources = []string{
	"math/rand",
	"math/rand/v2",
	"crypto/rand",
	"time.Now",
	"time.Since",
	"time.Until",
	"os.Getpid",
}

// Option configures a Checker.
type Option func(*Checker)

// WithAllowList extends the allow list.
func WithAllowList(entries ...string) Option {
	return func(c *Checker) {
		c.allow = append(c.allow, entries...)
	}
}

// WithRandomSources extends the random sources.
func WithRandomSources(entries ...string) Option {
	return func(c *Checker) {
		c.random = append(c.random, entries...)
	}
}

// Checker is a sound under-approximation of method purity: a method is pure
// only if it provably writes no field and calls only pure methods.
type Checker struct {
	source Source
	allow  []string
	random []string

	mu   sync.Mutex
	memo map[MethodKey]bool
}

// NewChecker creates a checker over source.
func NewChecker(source Source, opts ...Option) *Checker {
	c := &Checker{
		source: source,
		allow:  append([]string(nil), DefaultAllowList...),
		random: append([]string(nil), DefaultRandomSources...),
		memo:   make(map[MethodKey]bool),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IsPure reports whether the method is provably free of side effects.
func (c *Checker) IsPure(key MethodKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	pure, _ := c.isPure(key, nil)

	return pure
}

// IsPureMethod reports whether method name of t is pure.
func (c *Checker) IsPureMethod(t reflect.Type, name string) bool {
	if c == nil {
		return false
	}

	return c.IsPure(MethodKey{Type: TypeName(t), Name: name})
}

// PureMethods returns the declared members of t that are pure.
func (c *Checker) PureMethods(t string) []MethodKey {
	var pure []MethodKey

	for _, key := range c.source.DeclaredMembers(t) {
		if c.IsPure(key) {
			pure = append(pure, key)
		}
	}

	return pure
}

// isPure decides key below the methods on stack. The second result reports
// that the answer relied on a method of stack whose own answer is still
// open; such a pure answer is not memoized, since the open method may turn
// out impure. Impure answers are always final.
func (c *Checker) isPure(key MethodKey, stack []MethodKey) (bool, bool) {
	if cached, ok := c.memo[key]; ok {
		return cached, false
	}

	pure, tentative := c.decide(key, stack)
	if !pure || !tentative || len(stack) == 0 {
		c.memo[key] = pure
	}

	return pure, tentative
}

func (c *Checker) decide(key MethodKey, stack []MethodKey) (bool, bool) {
	if c.isRandom(key) {
		return false, false
	}

	if c.isAllowed(key) {
		return true, false
	}

	if !c.source.HasType(key.Type) {
		return false, false
	}

	tentative := false

	facts, declared := c.source.Facts(key)
	if declared {
		if facts.FieldWrites {
			return false, false
		}

		impure, open := c.anyCallImpure(key, facts.Calls, stack)
		tentative = tentative || open

		if impure {
			return false, tentative
		}
	}

	impure, open := c.anyOverrideImpure(key, stack)
	tentative = tentative || open

	if impure {
		return false, tentative
	}

	if declared && (facts.Interface || facts.HasBody) {
		return true, tentative
	}

	pure, open := c.closestSuperPure(key, stack)

	return pure, tentative || open
}

func (c *Checker) anyCallImpure(key MethodKey, calls []Call, stack []MethodKey) (bool, bool) {
	tentative := false

	for _, call := range calls {
		if onStack(stack, call.Target) {
			tentative = true
			continue
		}

		pure, open := c.isPure(call.Target, push(stack, key))
		tentative = tentative || open

		if !pure {
			return true, tentative
		}
	}

	return false, tentative
}

func (c *Checker) anyOverrideImpure(key MethodKey, stack []MethodKey) (bool, bool) {
	tentative := false

	for _, sub := range c.source.SubTypes(key.Type) {
		override := MethodKey{Type: sub, Name: key.Name}
		if onStack(stack, override) {
			tentative = true
			continue
		}

		if _, ok := c.source.Facts(override); !ok {
			continue
		}

		pure, open := c.isPure(override, push(stack, key))
		tentative = tentative || open

		if !pure {
			return true, tentative
		}
	}

	return false, tentative
}

// closestSuperPure decides a method without a body by the closest super
// type declaring one. A super type already on stack is the method being
// decided, so it is assumed pure until that decision completes.
func (c *Checker) closestSuperPure(key MethodKey, stack []MethodKey) (bool, bool) {
	for _, super := range c.source.SuperTypes(key.Type) {
		inherited := MethodKey{Type: super, Name: key.Name}

		facts, ok := c.source.Facts(inherited)
		if !ok || !facts.HasBody {
			continue
		}

		if onStack(stack, inherited) {
			return true, true
		}

		return c.isPure(inherited, push(stack, key))
	}

	return false, false
}

func (c *Checker) isAllowed(key MethodKey) bool {
	name := key.String()

	for _, entry := range c.allow {
		if entry == name {
			return true
		}

		if pkg, ok := strings.CutSuffix(entry, ".*"); ok && pkg == key.Type {
			return true
		}
	}

	return false
}

func (c *Checker) isRandom(key MethodKey) bool {
	name := key.String()

	for _, entry := range c.random {
		if entry == name || entry == key.Type || strings.HasPrefix(key.Type, entry+".") {
			return true
		}
	}

	return false
}

func onStack(stack []MethodKey, key MethodKey) bool {
	for _, k := range stack {
		if k == key {
			return true
		}
	}

	return false
}

func push(stack []MethodKey, key MethodKey) []MethodKey {
	next := make([]MethodKey, len(stack), len(stack)+1)
	copy(next, stack)

	return append(next, key)
}
