package format

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/hwscript/scope"
)

// MsgpackEncoder writes the same documents as JSONEncoder, keyed by the
// json field names.
type MsgpackEncoder struct {
	enc *msgpack.Encoder
}

func NewMsgpackEncoder(w io.Writer) *MsgpackEncoder {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return &MsgpackEncoder{enc: enc}
}

func (e *MsgpackEncoder) EncodeScopes(tree *scope.Tree, lines *parser.LineIndex) error {
	return e.enc.Encode(Scopes(tree, lines))
}

func (e *MsgpackEncoder) EncodeTokens(tokens []parser.Token, lines *parser.LineIndex) error {
	return e.enc.Encode(Tokens(tokens, lines))
}
