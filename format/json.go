package format

import (
	"encoding/json"
	"io"
)

type JSONEncoder struct {
	encoder
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	e := &JSONEncoder{encoder{w: w}}
	e.marshal = e.MarshalText
	return e
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	text, err := json.MarshalIndent(resultDocs(e.results), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}
