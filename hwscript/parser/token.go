package parser

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenKeyword
	TokenIdent
	TokenNumber
	TokenString
	TokenOperator
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:      "EOF",
	TokenKeyword:  "Keyword",
	TokenIdent:    "Identifier",
	TokenNumber:   "Number",
	TokenString:   "String",
	TokenOperator: "Operator",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is a lexical token. Start and End are byte offsets into the
// source, End exclusive.
type Token struct {
	Kind    TokenKind
	Literal string
	Start   int
	End     int
}

// Is reports whether the token is an operator or keyword with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == TokenOperator || t.Kind == TokenKeyword) && t.Literal == text
}

func (t Token) IsKeyword(word string) bool {
	return t.Kind == TokenKeyword && t.Literal == word
}

// IsName reports whether the token can name a binding or property.
func (t Token) IsName() bool {
	return t.Kind == TokenIdent
}

var keywords = map[string]bool{
	"function":   true,
	"var":        true,
	"let":        true,
	"const":      true,
	"class":      true,
	"if":         true,
	"else":       true,
	"return":     true,
	"for":        true,
	"while":      true,
	"do":         true,
	"switch":     true,
	"case":       true,
	"default":    true,
	"break":      true,
	"continue":   true,
	"try":        true,
	"catch":      true,
	"finally":    true,
	"throw":      true,
	"new":        true,
	"this":       true,
	"super":      true,
	"extends":    true,
	"import":     true,
	"export":     true,
	"async":      true,
	"await":      true,
	"yield":      true,
	"typeof":     true,
	"instanceof": true,
	"in":         true,
	"of":         true,
	"delete":     true,
	"void":       true,
	"true":       true,
	"false":      true,
	"null":       true,
	"undefined":  true,
}

// LookupKeyword classifies an identifier run.
func LookupKeyword(ident string) TokenKind {
	if keywords[ident] {
		return TokenKeyword
	}
	return TokenIdent
}

// Keywords returns the keyword set in no particular order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// ArrowAt reports whether tokens[i] and tokens[i+1] are the adjacent
// operators "=" ">" that spell an arrow.
func ArrowAt(tokens []Token, i int) bool {
	if i < 0 || i+1 >= len(tokens) {
		return false
	}
	a, b := tokens[i], tokens[i+1]
	return a.Is("=") && b.Is(">") && a.End == b.Start
}
