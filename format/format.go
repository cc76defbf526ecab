// Package format renders scan results as JSON, YAML, MessagePack, a
// text table or Java source.
package format

import (
	"encoding"
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/annox/java/annotation"
)

var ErrUnknownFormat = errors.New("unknown format")

// Names lists the supported formats, the default first.
var Names = []string{"table", "json", "yaml", "msgpack", "java"}

// Result is one scanned declaration with the annotations applied to it.
type Result struct {
	Declaration annotation.Declaration
	Instances   []*annotation.Instance
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(results []Result) error
}

// New returns the encoder for the format called name writing to w.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "", "table":
		return NewTableEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	case "msgpack":
		return NewMsgpackEncoder(w), nil
	case "java":
		return NewJavaEncoder(w), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

// encoder holds what every encoder shares: where to write and what was
// last handed to Encode.
type encoder struct {
	w       io.Writer
	results []Result
	marshal func() ([]byte, error)
}

func (e *encoder) Encode(results []Result) error {
	e.results = results
	text, err := e.marshal()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}
