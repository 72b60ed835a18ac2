package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
)

// TreeEncoder writes one tab separated record per line, indented by
// scope depth. Positions are printed one-based as line:column.
type TreeEncoder struct {
	w io.Writer
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) EncodeScopes(tree *scope.Tree, lines *parser.LineIndex) error {
	var sb strings.Builder
	writeScope(&sb, Scopes(tree, lines), 0)
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *TreeEncoder) EncodeTokens(tokens []parser.Token, lines *parser.LineIndex) error {
	var sb strings.Builder
	for _, tok := range Tokens(tokens, lines) {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", tok.Start, tok.Kind, tok.Literal)
	}
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func writeScope(sb *strings.Builder, s *Scope, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%sscope\t%s\t#%d\t%s-%s\n", indent, s.Kind, s.ID, s.Start, s.End)
	for _, sym := range s.Symbols {
		fmt.Fprintf(sb, "%s  %s\t%s\t%s\t%s\t%s\n",
			indent,
			sym.Keyword,
			sym.Name,
			sym.Shape,
			sym.Position,
			declarationsStr(sym.Declarations),
		)
	}
	for _, child := range s.Children {
		writeScope(sb, child, depth+1)
	}
}

func declarationsStr(decls []Position) string {
	if len(decls) == 0 {
		return "-"
	}
	parts := make([]string, len(decls))
	for i, p := range decls {
		parts[i] = p.String()
	}
	return "duplicate:" + strings.Join(parts, ",")
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}
