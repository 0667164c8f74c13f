package adapter

import (
	"errors"
	"fmt"
	"go/types"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
	"gooze.dev/pkg/oracles/internal/purity"
)

// purityLoadMode is the minimum set of flags needed for SSA-ready analysis.
const purityLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes

// dynamicCall is the target recorded for calls through function values,
// which no index knows and the checker therefore treats as impure.
var dynamicCall = purity.MethodKey{Type: "func", Name: "dynamic"}

// LoadPurityFacts loads the packages matching patterns from dir, builds
// their SSA form and records the facts the purity checker needs: field and
// global writes, call targets and the types each named type implements or
// embeds.
func LoadPurityFacts(dir string, patterns ...string) (*purity.Index, error) {
	cfg := &packages.Config{
		Mode:  purityLoadMode,
		Dir:   dir,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages %v: %w", patterns, err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for patterns %v", patterns)
	}

	var errs []error

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Errorf("%s: %s", pkg.PkgPath, e.Msg))
		}
	})

	if len(errs) > 0 {
		return nil, fmt.Errorf("packages have errors: %w", errors.Join(errs...))
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	index := purity.NewIndex()
	interfaces := collectInterfaces(ssaPkgs)

	for _, pkg := range ssaPkgs {
		if pkg == nil {
			continue
		}

		indexPackage(index, prog, pkg, interfaces)
	}

	slog.Debug("Loaded purity facts", "patterns", patterns, "methods", index.Len())

	return index, nil
}

func collectInterfaces(pkgs []*ssa.Package) map[string]*types.Interface {
	interfaces := make(map[string]*types.Interface)

	for _, pkg := range pkgs {
		if pkg == nil {
			continue
		}

		for _, member := range pkg.Members {
			t, ok := member.(*ssa.Type)
			if !ok {
				continue
			}

			if iface, ok := t.Type().Underlying().(*types.Interface); ok {
				interfaces[namedKey(t.Type())] = iface
			}
		}
	}

	return interfaces
}

func indexPackage(index *purity.Index, prog *ssa.Program, pkg *ssa.Package, interfaces map[string]*types.Interface) {
	path := pkg.Pkg.Path()
	index.AddType(path)

	for _, member := range pkg.Members {
		switch member := member.(type) {
		case *ssa.Function:
			if member.TypeParams().Len() > 0 {
				continue
			}

			index.AddMethod(purity.MethodKey{Type: path, Name: member.Name()}, bodyFacts(member))
		case *ssa.Type:
			indexType(index, prog, member.Type(), interfaces)
		}
	}
}

func indexType(index *purity.Index, prog *ssa.Program, t types.Type, interfaces map[string]*types.Interface) {
	name := namedKey(t)

	if iface, ok := t.Underlying().(*types.Interface); ok {
		index.AddType(name, embeddedInterfaces(iface)...)

		for i := range iface.NumMethods() {
			index.AddMethod(purity.MethodKey{Type: name, Name: iface.Method(i).Name()}, purity.Facts{Interface: true})
		}

		return
	}

	index.AddType(name, superTypes(t, interfaces)...)

	if named, ok := t.(*types.Named); ok && named.TypeParams().Len() > 0 {
		return
	}

	methods := prog.MethodSets.MethodSet(types.NewPointer(t))
	for i := range methods.Len() {
		sel := methods.At(i)

		// Promoted methods belong to the embedded type.
		if len(sel.Index()) > 1 {
			continue
		}

		// FuncValue yields the declared body; the pointer method set
		// only holds a wrapper for value receivers.
		obj, ok := sel.Obj().(*types.Func)
		if !ok {
			continue
		}

		fn := prog.FuncValue(obj)
		if fn == nil || fn.Synthetic != "" {
			continue
		}

		index.AddMethod(purity.MethodKey{Type: name, Name: sel.Obj().Name()}, bodyFacts(fn))
	}
}

// superTypes lists the embedded named types of a struct, closest first,
// followed by the loaded interfaces the type implements.
func superTypes(t types.Type, interfaces map[string]*types.Interface) []string {
	var supers []string

	if st, ok := t.Underlying().(*types.Struct); ok {
		for i := range st.NumFields() {
			field := st.Field(i)
			if !field.Embedded() {
				continue
			}

			if _, ok := types.Unalias(derefType(field.Type())).(*types.Named); ok {
				supers = append(supers, namedKey(field.Type()))
			}
		}
	}

	self := namedKey(t)

	for name, iface := range interfaces {
		if name == self || iface.Empty() {
			continue
		}

		if types.Implements(t, iface) || types.Implements(types.NewPointer(t), iface) {
			supers = append(supers, name)
		}
	}

	return supers
}

func embeddedInterfaces(iface *types.Interface) []string {
	var supers []string

	for i := range iface.NumEmbeddeds() {
		if _, ok := types.Unalias(iface.EmbeddedType(i)).(*types.Named); ok {
			supers = append(supers, namedKey(iface.EmbeddedType(i)))
		}
	}

	return supers
}

// bodyFacts inspects the instructions of fn and of its closures.
func bodyFacts(fn *ssa.Function) purity.Facts {
	facts := purity.Facts{HasBody: fn.Blocks != nil}

	var visit func(f *ssa.Function)

	visit = func(f *ssa.Function) {
		for _, block := range f.Blocks {
			for _, instr := range block.Instrs {
				recordInstruction(&facts, instr)
			}
		}

		for _, anon := range f.AnonFuncs {
			visit(anon)
		}
	}

	visit(fn)

	return facts
}

func recordInstruction(facts *purity.Facts, instr ssa.Instruction) {
	switch instr := instr.(type) {
	case *ssa.Store:
		if escapes(instr.Addr) {
			facts.FieldWrites = true
		}
	case *ssa.MapUpdate:
		if _, local := instr.Map.(*ssa.MakeMap); !local {
			facts.FieldWrites = true
		}
	case *ssa.Send, *ssa.Go:
		facts.FieldWrites = true
	case ssa.CallInstruction:
		if call, ok := callTarget(instr.Common()); ok {
			facts.Calls = append(facts.Calls, call)
		}
	}
}

// escapes reports whether a store through addr is visible outside the
// function: a field or element of a value not allocated here, or a global.
func escapes(addr ssa.Value) bool {
	switch addr := addr.(type) {
	case *ssa.Global:
		return true
	case *ssa.FieldAddr:
		return !isLocal(addr.X)
	case *ssa.IndexAddr:
		return !isLocal(addr.X)
	case *ssa.Alloc:
		return false
	default:
		return true
	}
}

func isLocal(v ssa.Value) bool {
	switch v := v.(type) {
	case *ssa.Alloc:
		return true
	case *ssa.FieldAddr:
		return isLocal(v.X)
	case *ssa.IndexAddr:
		return isLocal(v.X)
	case *ssa.MakeSlice:
		return true
	default:
		return false
	}
}

func callTarget(common *ssa.CallCommon) (purity.Call, bool) {
	if common.IsInvoke() {
		return purity.Call{
			Kind:   purity.InterfaceCall,
			Target: purity.MethodKey{Type: namedKey(common.Value.Type()), Name: common.Method.Name()},
		}, true
	}

	if _, builtin := common.Value.(*ssa.Builtin); builtin {
		return purity.Call{}, false
	}

	callee := common.StaticCallee()
	if callee == nil {
		return purity.Call{Kind: purity.SpecialCall, Target: dynamicCall}, true
	}

	// Closures are inspected with their parent.
	if callee.Parent() != nil {
		return purity.Call{}, false
	}

	if origin := callee.Origin(); origin != nil {
		callee = origin
	}

	if recv := callee.Signature.Recv(); recv != nil {
		return purity.Call{
			Kind:   purity.VirtualCall,
			Target: purity.MethodKey{Type: namedKey(recv.Type()), Name: callee.Name()},
		}, true
	}

	pkg := ""
	if callee.Pkg != nil {
		pkg = callee.Pkg.Pkg.Path()
	} else if obj := callee.Object(); obj != nil && obj.Pkg() != nil {
		pkg = obj.Pkg().Path()
	}

	return purity.Call{
		Kind:   purity.StaticCall,
		Target: purity.MethodKey{Type: pkg, Name: callee.Name()},
	}, true
}

func derefType(t types.Type) types.Type {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		return p.Elem()
	}

	return t
}

// namedKey renders t the way purity.TypeName renders the matching
// reflect.Type.
func namedKey(t types.Type) string {
	t = types.Unalias(derefType(t))

	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return strings.TrimPrefix(t.String(), "*")
	}

	return named.Obj().Pkg().Path() + "." + named.Obj().Name()
}
