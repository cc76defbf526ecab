package format

import (
	"math"

	"github.com/dhamidi/annox/java/annotation"
	"github.com/dhamidi/annox/java/parser"
)

// The document types below are the serialized shape of scan results,
// shared by the JSON, YAML and MessagePack encoders.

type resultDoc struct {
	Declaration declarationDoc `json:"declaration" yaml:"declaration" msgpack:"declaration"`
	Annotations []*instanceDoc `json:"annotations" yaml:"annotations" msgpack:"annotations"`
}

type declarationDoc struct {
	Kind      string   `json:"kind" yaml:"kind" msgpack:"kind"`
	Name      string   `json:"name" yaml:"name" msgpack:"name"`
	Key       string   `json:"key" yaml:"key" msgpack:"key"`
	Enclosing string   `json:"enclosing,omitempty" yaml:"enclosing,omitempty" msgpack:"enclosing,omitempty"`
	Type      *typeDoc `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	TypeKind  string   `json:"typeKind,omitempty" yaml:"typeKind,omitempty" msgpack:"typeKind,omitempty"`
	File      string   `json:"file,omitempty" yaml:"file,omitempty" msgpack:"file,omitempty"`
	Span      *spanDoc `json:"span,omitempty" yaml:"span,omitempty" msgpack:"span,omitempty"`
}

type typeDoc struct {
	Name       string `json:"name" yaml:"name" msgpack:"name"`
	ArrayDepth int    `json:"arrayDepth,omitempty" yaml:"arrayDepth,omitempty" msgpack:"arrayDepth,omitempty"`
	Resolved   bool   `json:"resolved" yaml:"resolved" msgpack:"resolved"`
}

type spanDoc struct {
	Start positionDoc `json:"start" yaml:"start" msgpack:"start"`
	End   positionDoc `json:"end" yaml:"end" msgpack:"end"`
}

type positionDoc struct {
	Line   int `json:"line" yaml:"line" msgpack:"line"`
	Column int `json:"column" yaml:"column" msgpack:"column"`
}

type instanceDoc struct {
	Type     typeDoc      `json:"type" yaml:"type" msgpack:"type"`
	Elements []elementDoc `json:"elements" yaml:"elements" msgpack:"elements"`
	Reason   string       `json:"reason,omitempty" yaml:"reason,omitempty" msgpack:"reason,omitempty"`
	Span     *spanDoc     `json:"span,omitempty" yaml:"span,omitempty" msgpack:"span,omitempty"`
}

type elementDoc struct {
	Name      string   `json:"name" yaml:"name" msgpack:"name"`
	Value     valueDoc `json:"value" yaml:"value" msgpack:"value"`
	Defaulted bool     `json:"defaulted,omitempty" yaml:"defaulted,omitempty" msgpack:"defaulted,omitempty"`
}

// valueDoc carries the decoded constant in Value for scalars and the
// Java rendering in Java for every kind, so non-finite floats survive
// encodings that cannot represent them.
type valueDoc struct {
	Kind       string       `json:"kind" yaml:"kind" msgpack:"kind"`
	Value      any          `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Type       *typeDoc     `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Constant   string       `json:"constant,omitempty" yaml:"constant,omitempty" msgpack:"constant,omitempty"`
	Annotation *instanceDoc `json:"annotation,omitempty" yaml:"annotation,omitempty" msgpack:"annotation,omitempty"`
	Elements   []valueDoc   `json:"elements,omitempty" yaml:"elements,omitempty" msgpack:"elements,omitempty"`
	Reason     string       `json:"reason,omitempty" yaml:"reason,omitempty" msgpack:"reason,omitempty"`
	Java       string       `json:"java" yaml:"java" msgpack:"java"`
}

func resultDocs(results []Result) []resultDoc {
	docs := make([]resultDoc, len(results))
	for i, r := range results {
		docs[i] = resultDoc{
			Declaration: declarationDocOf(r.Declaration),
			Annotations: make([]*instanceDoc, len(r.Instances)),
		}
		for j, inst := range r.Instances {
			docs[i].Annotations[j] = instanceDocOf(inst)
		}
	}
	return docs
}

func declarationDocOf(d annotation.Declaration) declarationDoc {
	doc := declarationDoc{
		Kind:      string(d.Kind),
		Name:      d.Name,
		Key:       d.Key,
		Enclosing: d.Enclosing,
		TypeKind:  string(d.TypeKind),
		File:      d.File,
		Span:      spanDocOf(d.Span),
	}
	if !d.Type.IsZero() {
		t := typeDocOf(d.Type)
		doc.Type = &t
	}
	return doc
}

func typeDocOf(t annotation.TypeRef) typeDoc {
	return typeDoc{Name: t.Name, ArrayDepth: t.ArrayDepth, Resolved: t.Resolved}
}

func spanDocOf(s parser.Span) *spanDoc {
	if s.Start.Line == 0 && s.End.Line == 0 {
		return nil
	}
	return &spanDoc{
		Start: positionDoc{Line: s.Start.Line, Column: s.Start.Column},
		End:   positionDoc{Line: s.End.Line, Column: s.End.Column},
	}
}

func instanceDocOf(inst *annotation.Instance) *instanceDoc {
	if inst == nil {
		return nil
	}
	doc := &instanceDoc{
		Type:     typeDocOf(inst.Type),
		Elements: make([]elementDoc, len(inst.Elements)),
		Reason:   inst.Reason,
		Span:     spanDocOf(inst.Span),
	}
	for i, e := range inst.Elements {
		doc.Elements[i] = elementDoc{Name: e.Name, Value: valueDocOf(e.Value), Defaulted: e.Defaulted}
	}
	return doc
}

func valueDocOf(v annotation.Value) valueDoc {
	doc := valueDoc{Kind: v.Kind.String(), Reason: v.Reason, Java: v.String()}
	switch {
	case v.Kind == annotation.KindBoolean:
		doc.Value = v.Bool
	case v.Kind == annotation.KindChar:
		doc.Value = string(rune(v.Int))
	case v.Kind.IsIntegral():
		doc.Value = v.Int
	case v.Kind == annotation.KindFloat, v.Kind == annotation.KindDouble:
		if !math.IsInf(v.Float, 0) && !math.IsNaN(v.Float) {
			doc.Value = v.Float
		}
	case v.Kind == annotation.KindString:
		doc.Value = v.Text
	case v.Kind == annotation.KindClass:
		t := typeDocOf(v.Type)
		doc.Type = &t
	case v.Kind == annotation.KindEnum:
		t := typeDocOf(v.Type)
		doc.Type = &t
		doc.Constant = v.Constant
	case v.Kind == annotation.KindAnnotation:
		doc.Annotation = instanceDocOf(v.Annotation)
	case v.Kind == annotation.KindArray:
		doc.Elements = make([]valueDoc, len(v.Elements))
		for i, elem := range v.Elements {
			doc.Elements[i] = valueDocOf(elem)
		}
	}
	return doc
}
