package vcalc

import (
	"fmt"

	"github.com/strager/vcalc/ir"
)

// ScopeID is a handle into a SymbolTable. The zero value means no scope.
type ScopeID int

// SymbolID is a handle into a SymbolTable. The zero value means no symbol.
type SymbolID int

// SymbolKind distinguishes type names from variables.
type SymbolKind int

const (
	SymbolBuiltinType SymbolKind = iota
	SymbolVariable
)

// Scope maps names to symbols and links to its enclosing scope.
type Scope struct {
	Parent  ScopeID
	symbols map[string]SymbolID
}

// Symbol is either a built-in type or a variable.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Scope ScopeID
	// SymbolBuiltinType: the type it names.
	// SymbolVariable: its declared type.
	Type Type
	// SymbolVariable: the built-in type symbol it was declared with.
	TypeSymbol SymbolID
	// SymbolVariable: storage assigned by the code generator.
	Storage ir.Local
}

// SymbolTable owns every scope and symbol of one compilation, plus a
// cursor naming the current scope.
type SymbolTable struct {
	scopes  []Scope
	symbols []Symbol
	current ScopeID
}

// NewSymbolTable returns an empty table with no current scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Current returns the current scope, or 0 before the first Enter.
func (st *SymbolTable) Current() ScopeID {
	return st.current
}

// Enter pushes a new scope whose parent is the current one.
func (st *SymbolTable) Enter() ScopeID {
	st.scopes = append(st.scopes, Scope{Parent: st.current, symbols: map[string]SymbolID{}})
	st.current = ScopeID(len(st.scopes))
	return st.current
}

// Reenter makes a previously created scope current again.
func (st *SymbolTable) Reenter(id ScopeID) {
	st.scope(id)
	st.current = id
}

// Exit makes the current scope's parent current.
func (st *SymbolTable) Exit() {
	st.current = st.scope(st.current).Parent
}

// Define adds sym to the current scope and returns its handle. It fails if
// the name is already defined in the current scope.
func (st *SymbolTable) Define(sym Symbol) (SymbolID, error) {
	scope := st.scope(st.current)
	if _, exists := scope.symbols[sym.Name]; exists {
		return 0, fmt.Errorf("error: '%s' already declared in this scope", sym.Name)
	}
	sym.Scope = st.current
	st.symbols = append(st.symbols, sym)
	id := SymbolID(len(st.symbols))
	scope.symbols[sym.Name] = id
	return id, nil
}

// Resolve looks name up in the current scope and then each enclosing scope.
func (st *SymbolTable) Resolve(name string) (SymbolID, bool) {
	for id := st.current; id != 0; id = st.scope(id).Parent {
		if sym, ok := st.scope(id).symbols[name]; ok {
			return sym, true
		}
	}
	return 0, false
}

// ResolveLocal looks name up in the current scope only.
func (st *SymbolTable) ResolveLocal(name string) (SymbolID, bool) {
	if st.current == 0 {
		return 0, false
	}
	sym, ok := st.scope(st.current).symbols[name]
	return sym, ok
}

// Symbol returns the symbol for a handle. The pointer stays valid until
// the next Define.
func (st *SymbolTable) Symbol(id SymbolID) *Symbol {
	if id < 1 || int(id) > len(st.symbols) {
		panic(fmt.Sprintf("vcalc: invalid symbol handle %d", id))
	}
	return &st.symbols[id-1]
}

// Parent returns the enclosing scope of id, or 0 for the global scope.
func (st *SymbolTable) Parent(id ScopeID) ScopeID {
	return st.scope(id).Parent
}

// NumScopes reports how many scopes have been created.
func (st *SymbolTable) NumScopes() int { return len(st.scopes) }

// NumSymbols reports how many symbols have been defined.
func (st *SymbolTable) NumSymbols() int { return len(st.symbols) }

func (st *SymbolTable) scope(id ScopeID) *Scope {
	if id < 1 || int(id) > len(st.scopes) {
		panic(fmt.Sprintf("vcalc: invalid scope handle %d", id))
	}
	return &st.scopes[id-1]
}
