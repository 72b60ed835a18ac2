package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) EncodeScopes(tree *scope.Tree, lines *parser.LineIndex) error {
	return e.write(Scopes(tree, lines))
}

func (e *JSONEncoder) EncodeTokens(tokens []parser.Token, lines *parser.LineIndex) error {
	return e.write(Tokens(tokens, lines))
}

func (e *JSONEncoder) write(v any) error {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}
