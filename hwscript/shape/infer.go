package shape

import (
	"strings"

	"github.com/dhamidi/hws/hwscript/parser"
)

// Infer returns the shape of the value expression starting at tokens[i]
// and the index just past it. The end is the first ",", ";", or
// unmatched closer at nesting depth zero, or a statement keyword.
// Unrecognised syntax yields Any; Infer never panics.
func Infer(tokens []parser.Token, i int) (Literal, int) {
	if i < 0 || i >= len(tokens) {
		return Any{}, len(tokens)
	}
	if tokens[i].Is("{") || tokens[i].Is("[") {
		return inferContainer(tokens, i)
	}
	return inferScalar(tokens, i)
}

func inferScalar(tokens []parser.Token, i int) (Literal, int) {
	tok := tokens[i]
	next := SkipValue(tokens, i)

	switch {
	case tok.Kind == parser.TokenString:
		return String{}, next
	case tok.Kind == parser.TokenNumber:
		return Number{}, next
	case (tok.Is("-") || tok.Is("+")) && i+1 < len(tokens) && tokens[i+1].Kind == parser.TokenNumber:
		return Number{}, next
	case tok.IsKeyword("true"), tok.IsKeyword("false"):
		return Boolean{}, next
	case tok.IsKeyword("null"):
		return Null{}, next
	case tok.IsKeyword("undefined"):
		return Undefined{}, next
	case tok.IsKeyword("function"):
		return functionLiteral(tokens, i+1), next
	case tok.IsKeyword("async") && i+1 < len(tokens) && tokens[i+1].IsKeyword("function"):
		return functionLiteral(tokens, i+2), next
	case tok.IsKeyword("new") && i+1 < len(tokens):
		switch tokens[i+1].Literal {
		case "Array":
			return Array{}, next
		case "Object":
			return NewObject(), next
		case "String":
			return String{}, next
		case "Number":
			return Number{}, next
		case "Boolean":
			return Boolean{}, next
		}
	}

	if fn, ok := arrowFunction(tokens, i, next); ok {
		return fn, next
	}
	return Any{}, next
}

// functionLiteral reads "[*] [name] (params)" starting after the function keyword.
func functionLiteral(tokens []parser.Token, i int) Function {
	if i < len(tokens) && tokens[i].Is("*") {
		i++
	}
	if i < len(tokens) && tokens[i].IsName() {
		i++
	}
	if i < len(tokens) && tokens[i].Is("(") {
		params, _ := Params(tokens, i)
		return Function{Params: params}
	}
	return Function{}
}

// arrowFunction looks for an arrow at depth zero between start and end.
func arrowFunction(tokens []parser.Token, start, end int) (Function, bool) {
	i := start
	if i < end && tokens[i].IsKeyword("async") {
		i++
	}
	if i < end && tokens[i].IsName() && parser.ArrowAt(tokens, i+1) {
		return Function{Params: []Param{{Name: tokens[i].Literal, Type: Any{}}}}, true
	}
	if i < end && tokens[i].Is("(") {
		params, close := Params(tokens, i)
		if parser.ArrowAt(tokens, close+1) {
			return Function{Params: params}, true
		}
	}
	depth := 0
	for j := start; j < end; j++ {
		switch {
		case isOpener(tokens[j]):
			depth++
		case isCloser(tokens[j]):
			depth--
		case depth == 0 && parser.ArrowAt(tokens, j):
			return Function{}, true
		}
	}
	return Function{}, false
}

// Params collects the parameter list of the parenthesis group opening at
// tokens[open]. It returns the parameters and the index of the matching
// ")" (len(tokens) when unterminated). Default values contribute their
// inferred shape; destructured parameters are skipped.
func Params(tokens []parser.Token, open int) ([]Param, int) {
	var params []Param
	if open >= len(tokens) || !tokens[open].Is("(") {
		return nil, open
	}
	depth := 0
	expectName := true
	for j := open; j < len(tokens); j++ {
		tok := tokens[j]
		switch {
		case isOpener(tok):
			depth++
			if depth > 1 {
				expectName = false
			}
		case isCloser(tok):
			depth--
			if depth == 0 {
				return params, j
			}
		case depth == 1 && tok.Is(","):
			expectName = true
		case depth == 1 && tok.Is("."):
			// rest parameter "...name"
		case depth == 1 && expectName && tok.IsName():
			p := Param{Name: tok.Literal, Type: Any{}}
			if j+1 < len(tokens) && tokens[j+1].Is("=") && !parser.ArrowAt(tokens, j+1) {
				lit, next := Infer(tokens, j+2)
				p.Type = lit
				j = next - 1
			}
			params = append(params, p)
			expectName = false
		}
	}
	return params, len(tokens)
}

type frame struct {
	obj *Object
	arr *Array
	// key is the pending property name while an object frame reads a value.
	key      string
	hasKey   bool
	setValue func(Literal)
}

// inferContainer parses nested object and array literals with an
// explicit stack of frames. Values found while the stack holds more than
// one frame attach to the innermost frame, never to the root.
func inferContainer(tokens []parser.Token, i int) (Literal, int) {
	var root Literal
	var stack []*frame

	push := func(open parser.Token, attach func(Literal)) {
		f := &frame{}
		var lit Literal
		if open.Is("{") {
			f.obj = NewObject()
			lit = f.obj
		} else {
			f.arr = &Array{}
			lit = f.arr
		}
		attach(lit)
		stack = append(stack, f)
	}

	// Arrays are values; attaching them early and appending later needs a
	// pointer, so array frames publish their final value when popped.
	pop := func() {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.arr != nil && f.setValue != nil {
			f.setValue(*f.arr)
		}
	}

	push(tokens[i], func(l Literal) { root = l })
	if stack[0].arr != nil {
		stack[0].setValue = func(l Literal) { root = l }
	}

	j := i + 1
	for j < len(tokens) && len(stack) > 0 {
		depth := len(stack) - 1
		top := stack[depth]
		tok := tokens[j]

		if top.obj != nil {
			if !top.hasKey {
				switch {
				case tok.Is("}"):
					pop()
					j++
				case tok.Is(","):
					j++
				case isKey(tok):
					key := keyName(tok)
					j++
					switch {
					case j < len(tokens) && tokens[j].Is(":"):
						top.key, top.hasKey = key, true
						j++
					case j < len(tokens) && tokens[j].Is("("):
						params, close := Params(tokens, j)
						top.obj.Set(key, Function{Params: params})
						j = skipBlock(tokens, close+1)
					default:
						top.obj.Set(key, Any{})
					}
				default:
					// spread, computed key, or junk: skip to the next member
					j = SkipValue(tokens, j)
					if j < len(tokens) && !tokens[j].Is(",") && !tokens[j].Is("}") {
						j++
					}
				}
				continue
			}

			obj, key := top.obj, top.key
			top.hasKey = false
			if tok.Is("{") || tok.Is("[") {
				push(tok, func(l Literal) { obj.Set(key, l) })
				if child := stack[len(stack)-1]; child.arr != nil {
					child.setValue = func(l Literal) { obj.Set(key, l) }
				}
				j++
				continue
			}
			lit, next := inferScalar(tokens, j)
			obj.Set(key, lit)
			j = advancePast(tokens, j, next)
			continue
		}

		switch {
		case tok.Is("]"):
			pop()
			j++
		case tok.Is(","):
			j++
		case tok.Is("{") || tok.Is("["):
			arr := top.arr
			idx := len(arr.Elements)
			arr.Elements = append(arr.Elements, Any{})
			push(tok, func(l Literal) { arr.Elements[idx] = l })
			if child := stack[len(stack)-1]; child.arr != nil {
				child.setValue = func(l Literal) { arr.Elements[idx] = l }
			}
			j++
		default:
			lit, next := inferScalar(tokens, j)
			top.arr.Elements = append(top.arr.Elements, lit)
			j = advancePast(tokens, j, next)
		}
	}

	// Unterminated literal: publish whatever arrays are still open.
	for len(stack) > 0 {
		pop()
	}
	return root, SkipValue(tokens, i)
}

// advancePast guarantees progress when a value ends without consuming tokens.
func advancePast(tokens []parser.Token, j, next int) int {
	if next > j {
		return next
	}
	return j + 1
}

func isKey(tok parser.Token) bool {
	switch tok.Kind {
	case parser.TokenIdent, parser.TokenKeyword, parser.TokenString, parser.TokenNumber:
		return true
	}
	return false
}

func keyName(tok parser.Token) string {
	if tok.Kind == parser.TokenString {
		return unquote(tok.Literal)
	}
	return tok.Literal
}

func unquote(s string) string {
	if len(s) == 0 {
		return s
	}
	q := s[0]
	s = s[1:]
	if len(s) > 0 && s[len(s)-1] == q {
		s = s[:len(s)-1]
	}
	return strings.ReplaceAll(s, "\\"+string(q), string(q))
}

// skipBlock skips a balanced "{...}" starting at tokens[i]. Anything
// else is left in place.
func skipBlock(tokens []parser.Token, i int) int {
	if i >= len(tokens) || !tokens[i].Is("{") {
		return i
	}
	depth := 0
	for j := i; j < len(tokens); j++ {
		if isOpener(tokens[j]) {
			depth++
		} else if isCloser(tokens[j]) {
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(tokens)
}

// SkipValue returns the index of the token that terminates the value
// expression starting at tokens[i].
func SkipValue(tokens []parser.Token, i int) int {
	depth := 0
	for j := i; j < len(tokens); j++ {
		tok := tokens[j]
		switch {
		case isOpener(tok):
			depth++
		case isCloser(tok):
			if depth == 0 {
				return j
			}
			depth--
		case depth == 0 && (tok.Is(",") || tok.Is(";")):
			return j
		case depth == 0 && j > i && statementKeyword(tok):
			return j
		}
	}
	return len(tokens)
}

func isOpener(tok parser.Token) bool {
	return tok.Kind == parser.TokenOperator && (tok.Literal == "(" || tok.Literal == "[" || tok.Literal == "{")
}

func isCloser(tok parser.Token) bool {
	return tok.Kind == parser.TokenOperator && (tok.Literal == ")" || tok.Literal == "]" || tok.Literal == "}")
}

// statementKeyword reports keywords that can only begin a new statement,
// which bounds values written without a trailing semicolon.
func statementKeyword(tok parser.Token) bool {
	if tok.Kind != parser.TokenKeyword {
		return false
	}
	switch tok.Literal {
	case "var", "let", "const", "class", "if", "for", "while", "do", "switch",
		"return", "break", "continue", "try", "throw", "import", "export":
		return true
	}
	return false
}
