package format

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackEncoder writes results as one MessagePack array. The output is
// binary despite the TextMarshaler method name.
type MsgpackEncoder struct {
	encoder
}

func NewMsgpackEncoder(w io.Writer) *MsgpackEncoder {
	e := &MsgpackEncoder{encoder{w: w}}
	e.marshal = e.MarshalText
	return e
}

func (e *MsgpackEncoder) MarshalText() ([]byte, error) {
	return msgpack.Marshal(resultDocs(e.results))
}
