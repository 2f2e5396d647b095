package grammar

import "fmt"

type SymbolID int

func (id SymbolID) Int() int {
	return int(id)
}

const (
	// SymbolIDEOF is the ID of the end-of-input symbol. The EOF symbol is treated as a terminal symbol.
	SymbolIDEOF = SymbolID(0)

	// The symbol name contains `<` and `>` to avoid conflicting with user-defined symbols.
	symbolNameEOF = "<eof>"

	symbolIDMin = SymbolID(1)
)

type Symbol struct {
	ID       SymbolID
	Name     string
	Terminal bool
}

func (s *Symbol) IsEOF() bool {
	return s.ID == SymbolIDEOF
}

func (s *Symbol) String() string {
	if s.Terminal {
		return fmt.Sprintf("t%v(%v)", s.ID, s.Name)
	}
	return fmt.Sprintf("n%v(%v)", s.ID, s.Name)
}

type symbolTable struct {
	syms     []*Symbol
	name2Sym map[string]*Symbol
}

type symbolTableWriter struct {
	*symbolTable
}

type symbolTableReader struct {
	*symbolTable
}

func newSymbolTable() *symbolTable {
	eof := &Symbol{
		ID:       SymbolIDEOF,
		Name:     symbolNameEOF,
		Terminal: true,
	}
	return &symbolTable{
		syms: []*Symbol{
			eof,
		},
		name2Sym: map[string]*Symbol{
			symbolNameEOF: eof,
		},
	}
}

func (t *symbolTable) writer() *symbolTableWriter {
	return &symbolTableWriter{
		symbolTable: t,
	}
}

func (t *symbolTable) reader() *symbolTableReader {
	return &symbolTableReader{
		symbolTable: t,
	}
}

// register returns a symbol having the name. When the name is already known, the existing symbol is
// returned as it is; the kind of a symbol is fixed the first time the table sees its name.
func (w *symbolTableWriter) register(name string, terminal bool) *Symbol {
	if sym, ok := w.name2Sym[name]; ok {
		return sym
	}
	sym := &Symbol{
		ID:       SymbolID(len(w.syms)),
		Name:     name,
		Terminal: terminal,
	}
	w.syms = append(w.syms, sym)
	w.name2Sym[name] = sym
	return sym
}

func (r *symbolTableReader) toSymbol(name string) (*Symbol, bool) {
	sym, ok := r.name2Sym[name]
	return sym, ok
}

func (r *symbolTableReader) byID(id SymbolID) (*Symbol, bool) {
	if id < 0 || id.Int() >= len(r.syms) {
		return nil, false
	}
	return r.syms[id], true
}

func (r *symbolTableReader) terminalSymbols() []*Symbol {
	var syms []*Symbol
	for _, sym := range r.syms {
		if !sym.Terminal {
			continue
		}
		syms = append(syms, sym)
	}
	return syms
}

func (r *symbolTableReader) nonTerminalSymbols() []*Symbol {
	var syms []*Symbol
	for _, sym := range r.syms {
		if sym.Terminal {
			continue
		}
		syms = append(syms, sym)
	}
	return syms
}
