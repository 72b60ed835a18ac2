package scope

import (
	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/shape"
)

// frame is one open brace. Object literal and destructuring braces get
// a frame without a scope so that their closing brace pops the right
// entry.
type frame struct {
	scope   *Scope
	literal bool
	class   bool
}

type binding struct {
	name  parser.Token
	kind  DeclKind
	kw    string
	shape shape.Literal
}

// pending is a declaration list or function header waiting for the
// brace at token index at.
type pending struct {
	at       int
	function bool
	class    bool
	bindings []binding
}

type builder struct {
	tokens  []parser.Token
	textLen int
	tree    *Tree
	stack   []frame
	pending []pending
	match   []int
}

// Build constructs the scope tree for tokens produced from a text of
// textLen bytes. It never fails: unbalanced braces are tolerated and
// scopes left open at the end of input are closed at textLen.
func Build(tokens []parser.Token, textLen int) *Tree {
	b := &builder{tokens: tokens, textLen: textLen, tree: &Tree{}}
	b.match = matchDelimiters(tokens)
	global := b.newScope(Global, nil, 0)
	b.tree.Global = global
	b.stack = []frame{{scope: global}}

	for i := 0; i < len(tokens); {
		i = b.step(i)
	}

	for _, f := range b.stack {
		if f.scope != nil && f.scope.End == Open {
			f.scope.End = textLen
		}
	}
	global.End = textLen
	b.applyAssignments()
	return b.tree
}

func (b *builder) newScope(kind Kind, parent *Scope, start int) *Scope {
	s := &Scope{
		ID:      len(b.tree.scopes),
		Kind:    kind,
		Parent:  parent,
		Start:   start,
		End:     Open,
		Symbols: make(map[string]*Symbol),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	b.tree.scopes = append(b.tree.scopes, s)
	return s
}

// step processes tokens[i] and returns the index to continue from.
func (b *builder) step(i int) int {
	tok := b.tokens[i]

	switch {
	case tok.Is("{"):
		b.openBrace(i)
		return i + 1
	case tok.Is("}"):
		b.closeBrace(tok)
		return i + 1
	case tok.IsKeyword("var"), tok.IsKeyword("let"), tok.IsKeyword("const"):
		return b.declaration(i)
	case tok.IsKeyword("function"):
		return b.function(i)
	case tok.IsKeyword("class"):
		return b.class(i)
	case tok.IsKeyword("catch"):
		return b.catch(i)
	case tok.Is("("):
		return b.arrowParams(i)
	case tok.IsName():
		if parser.ArrowAt(b.tokens, i+1) {
			b.expect(pending{at: i + 3, function: true, bindings: []binding{{
				name: tok, kind: Parameter, kw: "param", shape: shape.Any{},
			}}})
			return i + 1
		}
		if b.methodHeader(i) {
			return b.method(i)
		}
		if next, ok := b.memberAssignment(i); ok {
			return next
		}
	}
	return i + 1
}

func (b *builder) expect(p pending) {
	b.pending = append(b.pending, p)
}

// takePending removes and returns the pending entry for the brace at i.
func (b *builder) takePending(i int) (pending, bool) {
	for k := len(b.pending) - 1; k >= 0; k-- {
		if b.pending[k].at == i {
			p := b.pending[k]
			b.pending = append(b.pending[:k], b.pending[k+1:]...)
			return p, true
		}
	}
	// entries whose brace never came are stale
	kept := b.pending[:0]
	for _, p := range b.pending {
		if p.at > i {
			kept = append(kept, p)
		}
	}
	b.pending = kept
	return pending{}, false
}

func (b *builder) current() *Scope {
	for k := len(b.stack) - 1; k >= 0; k-- {
		if b.stack[k].scope != nil {
			return b.stack[k].scope
		}
	}
	return b.tree.Global
}

// hoistTarget is the nearest enclosing function scope, or the global scope.
func (b *builder) hoistTarget() *Scope {
	for k := len(b.stack) - 1; k >= 0; k-- {
		if s := b.stack[k].scope; s != nil && (s.Kind == Function || s.Kind == Global) {
			return s
		}
	}
	return b.tree.Global
}

func (b *builder) innermost() frame {
	return b.stack[len(b.stack)-1]
}

func (b *builder) openBrace(i int) {
	tok := b.tokens[i]
	p, ok := b.takePending(i)
	switch {
	case ok && p.function:
		s := b.newScope(Function, b.current(), tok.Start)
		b.stack = append(b.stack, frame{scope: s})
		b.declareAll(s, p.bindings)
	case ok:
		s := b.newScope(Block, b.current(), tok.Start)
		b.stack = append(b.stack, frame{scope: s, class: p.class})
		b.declareAll(s, p.bindings)
	case b.valuePosition(i), b.prevIs(i, "export"), b.prevIs(i, "import"):
		b.stack = append(b.stack, frame{literal: true})
	default:
		s := b.newScope(Block, b.current(), tok.Start)
		b.stack = append(b.stack, frame{scope: s})
	}
}

func (b *builder) closeBrace(tok parser.Token) {
	if len(b.stack) == 1 {
		return
	}
	f := b.innermost()
	b.stack = b.stack[:len(b.stack)-1]
	if f.scope != nil {
		f.scope.End = tok.Start
	}
}

func (b *builder) declareAll(s *Scope, bindings []binding) {
	for _, bd := range bindings {
		b.declare(s, bd)
	}
}

// declare records a binding in its owning scope, folding repeated
// names into one duplicate symbol.
func (b *builder) declare(s *Scope, bd binding) *Symbol {
	name := bd.name.Literal
	if sym, ok := s.Symbols[name]; ok {
		if !sym.Duplicate {
			sym.Duplicate = true
			sym.DuplicateOffsets = []int{sym.Offset}
		}
		sym.DuplicateOffsets = append(sym.DuplicateOffsets, bd.name.Start)
		if shape.IsVague(sym.Shape) && !shape.IsVague(bd.shape) {
			sym.Shape = bd.shape
		}
		return sym
	}
	sym := &Symbol{
		Name:    name,
		Kind:    bd.kind,
		Keyword: bd.kw,
		Scope:   s,
		Offset:  bd.name.Start,
		End:     bd.name.End,
		Shape:   bd.shape,
	}
	s.Symbols[name] = sym
	return sym
}

// declaration handles var/let/const. The declared names are recorded
// up front; scanning resumes right after the keyword so that function
// and object literals in the initializers are still visited.
func (b *builder) declaration(i int) int {
	kw := b.tokens[i].Literal
	kind := BlockScoped
	if kw == "var" {
		kind = FunctionScoped
	}
	bindings := b.declarators(i+1, kind, kw)

	if kind == BlockScoped && b.prevIs(i, "(") && i >= 2 && b.tokens[i-2].IsKeyword("for") {
		close := b.matching(i - 1)
		if close+1 < len(b.tokens) && b.tokens[close+1].Is("{") {
			b.expect(pending{at: close + 1, bindings: bindings})
			return i + 1
		}
	}

	owner := b.current()
	if kind == FunctionScoped {
		owner = b.hoistTarget()
	}
	b.declareAll(owner, bindings)
	return i + 1
}

// declarators reads "a = 1, b, {c, d} = e" starting at tokens[j].
func (b *builder) declarators(j int, kind DeclKind, kw string) []binding {
	var out []binding
	for j < len(b.tokens) {
		tok := b.tokens[j]
		switch {
		case tok.IsName():
			bd := binding{name: tok, kind: kind, kw: kw}
			j++
			if j < len(b.tokens) && b.tokens[j].Is("=") && !parser.ArrowAt(b.tokens, j) {
				lit, next := shape.Infer(b.tokens, j+1)
				bd.shape = lit
				j = next
			}
			out = append(out, bd)
		case tok.Is("{") || tok.Is("["):
			close := b.matching(j)
			for _, name := range b.patternNames(j, close) {
				out = append(out, binding{name: name, kind: kind, kw: kw, shape: shape.Any{}})
			}
			j = close + 1
			if j < len(b.tokens) && b.tokens[j].Is("=") {
				j = shape.SkipValue(b.tokens, j+1)
			}
		default:
			return out
		}
		if j < len(b.tokens) && b.tokens[j].Is(",") {
			j++
			continue
		}
		return out
	}
	return out
}

// patternNames collects the names bound by a destructuring pattern
// spanning tokens[open..close].
func (b *builder) patternNames(open, close int) []parser.Token {
	var out []parser.Token
	skipping := false
	for j := open + 1; j < close && j < len(b.tokens); j++ {
		tok := b.tokens[j]
		switch {
		case tok.Is("="):
			skipping = true
		case tok.Is(","):
			skipping = false
		case skipping || !tok.IsName():
		case j+1 < len(b.tokens) && b.tokens[j+1].Is(":"):
			// property key, the binding follows the colon
		default:
			out = append(out, tok)
		}
	}
	return out
}

func (b *builder) function(i int) int {
	j := i + 1
	if j < len(b.tokens) && b.tokens[j].Is("*") {
		j++
	}
	var self *parser.Token
	if j < len(b.tokens) && b.tokens[j].IsName() {
		self = &b.tokens[j]
		j++
	}
	if j >= len(b.tokens) || !b.tokens[j].Is("(") {
		return i + 1
	}

	params, close := shape.Params(b.tokens, j)
	fn := shape.Function{Params: params}
	bindings := b.paramBindings(j, close, params)

	start := i
	if i > 0 && b.tokens[i-1].IsKeyword("async") {
		start = i - 1
	}
	if self != nil {
		bd := binding{name: *self, kind: FunctionDeclaration, kw: "function", shape: fn}
		if b.valuePosition(start) {
			// a named function expression is only visible inside itself
			bindings = append(bindings, bd)
		} else {
			b.declare(b.current(), bd)
		}
	}
	b.expect(pending{at: close + 1, function: true, bindings: bindings})
	return close + 1
}

func (b *builder) paramBindings(open, close int, params []shape.Param) []binding {
	var out []binding
	for k, name := range b.paramNames(open, close) {
		lit := shape.Literal(shape.Any{})
		if k < len(params) && params[k].Name == name.Literal {
			lit = params[k].Type
		}
		out = append(out, binding{name: name, kind: Parameter, kw: "param", shape: lit})
	}
	return out
}

// paramNames returns the name tokens of a parameter list, including
// names bound by destructured parameters.
func (b *builder) paramNames(open, close int) []parser.Token {
	var out []parser.Token
	expectName := true
	for j := open + 1; j < close && j < len(b.tokens); j++ {
		tok := b.tokens[j]
		switch {
		case tok.Is("{") || tok.Is("["):
			end := b.matching(j)
			out = append(out, b.patternNames(j, end)...)
			j = end
			expectName = false
		case tok.Is("("):
			j = b.matching(j)
		case tok.Is(","):
			expectName = true
		case expectName && tok.IsName():
			out = append(out, tok)
			expectName = false
		}
	}
	return out
}

func (b *builder) arrowParams(i int) int {
	close := b.matching(i)
	if !parser.ArrowAt(b.tokens, close+1) {
		return i + 1
	}
	params, _ := shape.Params(b.tokens, i)
	b.expect(pending{at: close + 3, function: true, bindings: b.paramBindings(i, close, params)})
	return close + 1
}

// methodHeader reports "name(...) {" inside an object literal or class body.
func (b *builder) methodHeader(i int) bool {
	f := b.innermost()
	if !f.literal && !f.class {
		return false
	}
	if i+1 >= len(b.tokens) || !b.tokens[i+1].Is("(") {
		return false
	}
	if i > 0 {
		prev := b.tokens[i-1]
		if !prev.Is("{") && !prev.Is(",") && !prev.Is("}") && !prev.Is(";") && !prev.IsName() && !prev.IsKeyword("async") {
			return false
		}
	}
	close := b.matching(i + 1)
	return close+1 < len(b.tokens) && b.tokens[close+1].Is("{")
}

func (b *builder) method(i int) int {
	params, close := shape.Params(b.tokens, i+1)
	b.expect(pending{at: close + 1, function: true, bindings: b.paramBindings(i+1, close, params)})
	return close + 1
}

func (b *builder) class(i int) int {
	j := i + 1
	if j < len(b.tokens) && b.tokens[j].IsName() && !b.valuePosition(i) {
		b.declare(b.current(), binding{name: b.tokens[j], kind: BlockScoped, kw: "class"})
	}
	for ; j < len(b.tokens); j++ {
		tok := b.tokens[j]
		if tok.Is("{") {
			b.expect(pending{at: j, class: true})
			break
		}
		if tok.Is(";") || tok.Is("}") {
			break
		}
	}
	return i + 1
}

func (b *builder) catch(i int) int {
	j := i + 1
	if j >= len(b.tokens) || !b.tokens[j].Is("(") {
		return i + 1
	}
	close := b.matching(j)
	if close+1 >= len(b.tokens) || !b.tokens[close+1].Is("{") {
		return i + 1
	}
	var bindings []binding
	for _, name := range b.paramNames(j, close) {
		bindings = append(bindings, binding{name: name, kind: Parameter, kw: "catch", shape: shape.Any{}})
	}
	b.expect(pending{at: close + 1, bindings: bindings})
	return close + 1
}

// memberAssignment records "root.a.b = value". It returns false when
// tokens[i] does not start such a statement.
func (b *builder) memberAssignment(i int) (int, bool) {
	if i > 0 && b.tokens[i-1].Is(".") {
		return 0, false
	}
	var path []string
	j := i + 1
	for j+1 < len(b.tokens) && b.tokens[j].Is(".") && isMemberName(b.tokens[j+1]) {
		path = append(path, b.tokens[j+1].Literal)
		j += 2
	}
	if len(path) == 0 || j >= len(b.tokens) || !b.tokens[j].Is("=") {
		return 0, false
	}
	if j+1 < len(b.tokens) && (b.tokens[j+1].Is("=") || b.tokens[j+1].Is(">")) && b.tokens[j+1].Start == b.tokens[j].End {
		return 0, false
	}
	lit, _ := shape.Infer(b.tokens, j+1)
	b.tree.Assignments = append(b.tree.Assignments, Assignment{
		Root:   b.tokens[i].Literal,
		Path:   path,
		Offset: b.tokens[i].Start,
		Shape:  lit,
	})
	return j + 1, true
}

func isMemberName(tok parser.Token) bool {
	return tok.Kind == parser.TokenIdent || tok.Kind == parser.TokenKeyword
}

// applyAssignments adds assigned members to object-shaped symbols.
func (b *builder) applyAssignments() {
	for k := range b.tree.Assignments {
		a := &b.tree.Assignments[k]
		sym := b.tree.Lookup(a.Root, a.Offset)
		if sym == nil {
			continue
		}
		obj, ok := sym.Shape.(*shape.Object)
		if !ok {
			continue
		}
		shape.SetPath(obj, a.Path, a.Shape)
		a.Resolved = true
	}
}

// matching returns the index of the delimiter closing tokens[open], or
// the last token index when it is unterminated.
func (b *builder) matching(open int) int {
	if open < 0 || open >= len(b.match) {
		return len(b.tokens) - 1
	}
	return b.match[open]
}

// matchDelimiters pairs every opener with its closer in one pass. Any
// closer closes the most recent opener; stray closers are ignored.
func matchDelimiters(tokens []parser.Token) []int {
	match := make([]int, len(tokens))
	var open []int
	for j, tok := range tokens {
		match[j] = j
		if tok.Kind != parser.TokenOperator {
			continue
		}
		switch tok.Literal {
		case "(", "[", "{":
			open = append(open, j)
		case ")", "]", "}":
			if len(open) > 0 {
				match[open[len(open)-1]] = j
				open = open[:len(open)-1]
			}
		}
	}
	for _, j := range open {
		match[j] = len(tokens) - 1
	}
	return match
}

func (b *builder) prevIs(i int, text string) bool {
	return i > 0 && b.tokens[i-1].Is(text)
}

var valueKeywords = map[string]bool{
	"return":     true,
	"typeof":     true,
	"new":        true,
	"void":       true,
	"delete":     true,
	"throw":      true,
	"yield":      true,
	"await":      true,
	"in":         true,
	"of":         true,
	"instanceof": true,
	"case":       true,
	"var":        true,
	"let":        true,
	"const":      true,
}

// valuePosition reports whether tokens[i] starts an expression rather
// than a statement, judged by the token before it.
func (b *builder) valuePosition(i int) bool {
	if i <= 0 {
		return false
	}
	prev := b.tokens[i-1]
	switch prev.Kind {
	case parser.TokenKeyword:
		return valueKeywords[prev.Literal]
	case parser.TokenOperator:
		switch prev.Literal {
		case ")", "]", "}", ";":
			return false
		case ":":
			return b.colonIsValue(i - 1)
		case ">":
			return !parser.ArrowAt(b.tokens, i-2)
		}
		return true
	}
	return false
}

// colonIsValue distinguishes "key: {" and "cond ? a : {" from
// "case x: {" and labelled blocks.
func (b *builder) colonIsValue(colon int) bool {
	if b.innermost().literal {
		return true
	}
	depth := 0
	for j := colon - 1; j >= 0; j-- {
		tok := b.tokens[j]
		switch {
		case tok.Is(")") || tok.Is("]") || tok.Is("}"):
			depth++
		case tok.Is("(") || tok.Is("[") || tok.Is("{"):
			if depth == 0 {
				return tok.Is("(") || tok.Is("[")
			}
			depth--
		case depth > 0:
		case tok.Is("?"):
			return true
		case tok.IsKeyword("case") || tok.IsKeyword("default") || tok.Is(";"):
			return false
		}
	}
	return false
}
