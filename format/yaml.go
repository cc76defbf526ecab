package format

import (
	"io"

	"gopkg.in/yaml.v3"
)

type YAMLEncoder struct {
	encoder
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	e := &YAMLEncoder{encoder{w: w}}
	e.marshal = e.MarshalText
	return e
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	return yaml.Marshal(resultDocs(e.results))
}
