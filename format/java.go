package format

import (
	"io"
	"strings"
)

// JavaEncoder writes the annotations of each declaration as Java source,
// preceded by a comment naming the declaration.
type JavaEncoder struct {
	encoder
}

func NewJavaEncoder(w io.Writer) *JavaEncoder {
	e := &JavaEncoder{encoder{w: w}}
	e.marshal = e.MarshalText
	return e
}

func (e *JavaEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, r := range e.results {
		if len(r.Instances) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		d := r.Declaration
		sb.WriteString("// " + string(d.Kind) + " " + d.Key + "\n")
		for _, inst := range r.Instances {
			sb.WriteString(inst.String())
			if inst.Reason != "" {
				sb.WriteString(" // " + inst.Reason)
			}
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String()), nil
}
