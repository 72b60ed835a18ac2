package codebase

import (
	"sort"
	"strings"

	"github.com/dhamidi/hws/hwscript/parser"
)

// cursor is the token context of an editor offset.
type cursor struct {
	// prefix is the part of a name already typed before the offset,
	// starting at start.
	prefix string
	start  int
	// member is set after "expr."; path holds the dotted names of expr,
	// nil when expr is not a plain name chain.
	member bool
	path   []string
	// quiet is set inside strings, numbers and comments.
	quiet bool
}

func cursorAt(text string, tokens []parser.Token, offset int) cursor {
	c := cursor{start: offset}

	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].Start >= offset }) - 1
	gapStart := 0
	if i >= 0 {
		tok := tokens[i]
		switch {
		case offset < tok.End && tok.Kind == parser.TokenString,
			offset == tok.End && tok.Kind == parser.TokenString && !closedString(tok.Literal):
			c.quiet = true
			return c
		case offset <= tok.End && tok.Kind == parser.TokenNumber:
			c.quiet = true
			return c
		case offset <= tok.End && (tok.Kind == parser.TokenIdent || tok.Kind == parser.TokenKeyword):
			c.prefix = tok.Literal[:offset-tok.Start]
			c.start = tok.Start
			i--
		}
		gapStart = tok.End
	}
	if c.prefix == "" && gapStart <= offset && inComment(text[gapStart:offset]) {
		c.quiet = true
		return c
	}

	if i >= 0 && tokens[i].Is(".") {
		c.member = true
		c.path = namePath(tokens, i-1)
	}
	return c
}

// namePath collects the "a.b.c" chain ending at tokens[k]. It returns nil
// when the chain does not start with a plain name, as in "f().a".
func namePath(tokens []parser.Token, k int) []string {
	var path []string
	for {
		if k < 0 || !isNameToken(tokens[k]) {
			return nil
		}
		path = append(path, tokens[k].Literal)
		if k >= 1 && tokens[k-1].Is(".") {
			k -= 2
			continue
		}
		break
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

func isNameToken(tok parser.Token) bool {
	return tok.Kind == parser.TokenIdent || tok.Kind == parser.TokenKeyword
}

func closedString(lit string) bool {
	return len(lit) >= 2 && lit[len(lit)-1] == lit[0] && lit[len(lit)-2] != '\\'
}

// inComment reports whether the end of gap, text between two tokens,
// lies inside a comment.
func inComment(gap string) bool {
	for {
		line := strings.Index(gap, "//")
		block := strings.Index(gap, "/*")
		switch {
		case line < 0 && block < 0:
			return false
		case block < 0 || (line >= 0 && line < block):
			nl := strings.IndexByte(gap[line:], '\n')
			if nl < 0 {
				return true
			}
			gap = gap[line+nl:]
		default:
			end := strings.Index(gap[block+2:], "*/")
			if end < 0 {
				return true
			}
			gap = gap[block+2+end+2:]
		}
	}
}

// nameAt returns the index of the identifier or keyword token under
// offset, preferring a token that starts at offset over one that ends
// there. It returns -1 if there is none.
func nameAt(tokens []parser.Token, offset int) int {
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].End > offset })
	if i < len(tokens) && tokens[i].Start <= offset && isNameToken(tokens[i]) {
		return i
	}
	if i > 0 && tokens[i-1].End == offset && isNameToken(tokens[i-1]) {
		return i - 1
	}
	return -1
}
