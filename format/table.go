package format

import (
	"io"

	"github.com/bndr/gotabulate"

	"github.com/dhamidi/annox/java/annotation"
)

var tableHeaders = []string{"Declaration", "Annotation", "Element", "Value", "Note"}

// TableEncoder writes one row per annotation element. Declarations
// without annotations are left out.
type TableEncoder struct {
	encoder
}

func NewTableEncoder(w io.Writer) *TableEncoder {
	e := &TableEncoder{encoder{w: w}}
	e.marshal = e.MarshalText
	return e
}

func (e *TableEncoder) MarshalText() ([]byte, error) {
	var rows [][]string
	for _, r := range e.results {
		for _, inst := range r.Instances {
			rows = append(rows, instanceRows(r.Declaration.Key, inst)...)
		}
	}
	return renderTable(tableHeaders, rows), nil
}

func instanceRows(key string, inst *annotation.Instance) [][]string {
	name := "@" + inst.Type.Name
	if len(inst.Elements) == 0 {
		return [][]string{{key, name, "", "", inst.Reason}}
	}
	rows := make([][]string, 0, len(inst.Elements))
	for i, e := range inst.Elements {
		note := e.Value.Reason
		if e.Defaulted && note == "" {
			note = "default"
		}
		if i == 0 && inst.Reason != "" {
			note = inst.Reason
		}
		rows = append(rows, []string{key, name, e.Name, e.Value.String(), note})
	}
	return rows
}

func renderTable(headers []string, rows [][]string) []byte {
	if len(rows) == 0 {
		return nil
	}
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	return []byte(t.Render("grid"))
}
