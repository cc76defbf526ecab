package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/annotation"
)

// TypeDescription is the metadata of one type together with the
// instance its defaults produce, as shown by `annox types`.
type TypeDescription struct {
	Info     *java.TypeInfo
	Defaults *annotation.Instance
}

type typeInfoDoc struct {
	Name          string           `json:"name" yaml:"name" msgpack:"name"`
	Kind          string           `json:"kind" yaml:"kind" msgpack:"kind"`
	Retention     string           `json:"retention,omitempty" yaml:"retention,omitempty" msgpack:"retention,omitempty"`
	Targets       []string         `json:"targets,omitempty" yaml:"targets,omitempty" msgpack:"targets,omitempty"`
	Elements      []elementInfoDoc `json:"elements,omitempty" yaml:"elements,omitempty" msgpack:"elements,omitempty"`
	EnumConstants []string         `json:"enumConstants,omitempty" yaml:"enumConstants,omitempty" msgpack:"enumConstants,omitempty"`
	Origin        string           `json:"origin,omitempty" yaml:"origin,omitempty" msgpack:"origin,omitempty"`
}

type elementInfoDoc struct {
	Name    string    `json:"name" yaml:"name" msgpack:"name"`
	Type    string    `json:"type" yaml:"type" msgpack:"type"`
	Default *valueDoc `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default,omitempty"`
}

func typeInfoDocOf(d TypeDescription) typeInfoDoc {
	info := d.Info
	doc := typeInfoDoc{
		Name:          info.Name,
		Kind:          string(info.Kind),
		Retention:     info.Retention,
		Targets:       info.Targets,
		EnumConstants: info.EnumConstants,
		Origin:        info.Origin.String(),
	}
	for _, e := range info.Elements {
		elem := elementInfoDoc{Name: e.Name, Type: e.Type.String()}
		if v, ok := defaultOf(d, e); ok {
			vd := valueDocOf(v)
			elem.Default = &vd
		}
		doc.Elements = append(doc.Elements, elem)
	}
	return doc
}

func defaultOf(d TypeDescription, e java.ElementInfo) (annotation.Value, bool) {
	if e.Default == nil || d.Defaults == nil {
		return annotation.Value{}, false
	}
	return d.Defaults.Get(e.Name)
}

// EncodeTypes writes type descriptions in the format called name.
func EncodeTypes(w io.Writer, name string, types []TypeDescription) error {
	docs := make([]typeInfoDoc, len(types))
	for i, d := range types {
		docs[i] = typeInfoDocOf(d)
	}

	var text []byte
	var err error
	switch name {
	case "", "table":
		text = typesTable(docs)
	case "json":
		text, err = json.MarshalIndent(docs, "", "  ")
		text = append(text, '\n')
	case "yaml":
		text, err = yaml.Marshal(docs)
	case "msgpack":
		text, err = msgpack.Marshal(docs)
	case "java":
		text = typesJava(types)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

func typesTable(docs []typeInfoDoc) []byte {
	var rows [][]string
	for _, d := range docs {
		if len(d.Elements) == 0 {
			rows = append(rows, []string{d.Name, d.Kind, strings.Join(d.EnumConstants, ", "), "", ""})
			continue
		}
		for _, e := range d.Elements {
			def := ""
			if e.Default != nil {
				def = e.Default.Java
			}
			rows = append(rows, []string{d.Name, d.Kind, e.Name, e.Type, def})
		}
	}
	return renderTable([]string{"Type", "Kind", "Member", "Member Type", "Default"}, rows)
}

func typesJava(types []TypeDescription) []byte {
	var sb strings.Builder
	for i, d := range types {
		if i > 0 {
			sb.WriteByte('\n')
		}
		info := d.Info
		if info.Retention != "" {
			sb.WriteString("@java.lang.annotation.Retention(java.lang.annotation.RetentionPolicy." + info.Retention + ")\n")
		}
		if len(info.Targets) > 0 {
			targets := make([]string, len(info.Targets))
			for j, t := range info.Targets {
				targets[j] = "java.lang.annotation.ElementType." + t
			}
			sb.WriteString("@java.lang.annotation.Target({" + strings.Join(targets, ", ") + "})\n")
		}

		switch info.Kind {
		case java.ClassKindAnnotation:
			sb.WriteString("@interface " + info.Name + " {\n")
			for _, e := range info.Elements {
				sb.WriteString("    " + e.Type.String() + " " + e.Name + "()")
				if v, ok := defaultOf(d, e); ok {
					sb.WriteString(" default " + v.String())
				}
				sb.WriteString(";\n")
			}
		case java.ClassKindEnum:
			sb.WriteString("enum " + info.Name + " {\n")
			if len(info.EnumConstants) > 0 {
				sb.WriteString("    " + strings.Join(info.EnumConstants, ", ") + "\n")
			}
		default:
			sb.WriteString(string(info.Kind) + " " + info.Name + " {\n")
		}
		sb.WriteString("}\n")
	}
	return []byte(sb.String())
}
