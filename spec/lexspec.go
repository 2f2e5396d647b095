package spec

import (
	"fmt"
	"io"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

// CompileLexSpec compiles lexical entries into a maleeni lexical specification. The grammar reader,
// the token reader, and the test case reader all build their lexers on top of it.
func CompileLexSpec(name string, entries []*mlspec.LexEntry) (*mlspec.CompiledLexSpec, error) {
	lexSpec := &mlspec.LexSpec{
		Name:    name,
		Entries: entries,
	}
	clspec, err, cErrs := mlcompiler.Compile(lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, fmt.Errorf("cannot compile the lexical specification %v:\n%v", name, b.String())
		}
		return nil, err
	}

	return clspec, nil
}

// KindName returns the name of a kind ID the lexer reports.
func KindName(clspec *mlspec.CompiledLexSpec, kindID int) string {
	if kindID < 0 || kindID >= len(clspec.KindNames) {
		return ""
	}
	return clspec.KindNames[kindID].String()
}

// Cursor follows the position just past the tokens a maleeni lexer has returned. maleeni reports its
// EOF token at the origin, so the position of the end of input is read from a Cursor instead.
type Cursor struct {
	row int
	col int
}

// Advance moves the cursor past a token starting at a 0-based row and column.
func (c *Cursor) Advance(row, col int, lexeme []byte) {
	c.row = row
	c.col = col
	for _, r := range string(lexeme) {
		if r == '\n' {
			c.row++
			c.col = 0
			continue
		}
		c.col++
	}
}

// Pos returns the 1-based row and column of the cursor.
func (c *Cursor) Pos() (int, int) {
	return c.row + 1, c.col + 1
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}
