package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ElementValue is a decoded element_value structure with its constant
// pool references resolved. Tag is one of B C D F I J S Z s e c @ [.
type ElementValue struct {
	Tag byte
	// Int holds B C I J S Z constants.
	Int int64
	// Float holds D F constants.
	Float float64
	// String holds the s constant, the c return descriptor and the e type
	// descriptor.
	String     string
	EnumConst  string
	Annotation *Annotation
	Values     []ElementValue
}

type Annotation struct {
	// Type is a field descriptor such as `Ljava/lang/Deprecated;`.
	Type     string
	Elements []ElementPair
}

type ElementPair struct {
	Name  string
	Value ElementValue
}

type InnerClass struct {
	Inner      string
	Outer      string
	SimpleName string
	Flags      AccessFlags
}

// maxElementDepth bounds nesting of annotation values inside a single
// attribute.
const maxElementDepth = 64

type decoder struct {
	data []byte
	pos  int
	pool ConstantPool
	err  error
}

func (d *decoder) u1() uint8 {
	if d.err != nil {
		return 0
	}
	if d.pos+1 > len(d.data) {
		d.err = io.ErrUnexpectedEOF
		return 0
	}
	v := d.data[d.pos]
	d.pos++
	return v
}

func (d *decoder) u2() uint16 {
	if d.err != nil {
		return 0
	}
	if d.pos+2 > len(d.data) {
		d.err = io.ErrUnexpectedEOF
		return 0
	}
	v := binary.BigEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

// DecodeAnnotations decodes a Runtime(In)VisibleAnnotations attribute.
func DecodeAnnotations(cp ConstantPool, data []byte) ([]Annotation, error) {
	d := &decoder{data: data, pool: cp}
	count := d.u2()
	anns := make([]Annotation, 0, count)
	for i := uint16(0); i < count && d.err == nil; i++ {
		anns = append(anns, d.annotation(0))
	}
	if d.err != nil {
		return nil, fmt.Errorf("annotations: %w", d.err)
	}
	return anns, nil
}

func DecodeInnerClasses(cp ConstantPool, data []byte) ([]InnerClass, error) {
	d := &decoder{data: data, pool: cp}
	count := d.u2()
	classes := make([]InnerClass, 0, count)
	for i := uint16(0); i < count && d.err == nil; i++ {
		classes = append(classes, InnerClass{
			Inner:      cp.ClassName(d.u2()),
			Outer:      cp.ClassName(d.u2()),
			SimpleName: cp.Utf8(d.u2()),
			Flags:      AccessFlags(d.u2()),
		})
	}
	if d.err != nil {
		return nil, fmt.Errorf("inner classes: %w", d.err)
	}
	return classes, nil
}

func (d *decoder) annotation(depth int) Annotation {
	ann := Annotation{Type: d.pool.Utf8(d.u2())}
	count := d.u2()
	for i := uint16(0); i < count && d.err == nil; i++ {
		name := d.pool.Utf8(d.u2())
		ann.Elements = append(ann.Elements, ElementPair{Name: name, Value: d.elementValue(depth + 1)})
	}
	return ann
}

func (d *decoder) elementValue(depth int) ElementValue {
	if depth > maxElementDepth {
		d.fail("element values nested deeper than %d", maxElementDepth)
		return ElementValue{}
	}
	ev := ElementValue{Tag: d.u1()}
	switch ev.Tag {
	case 'B', 'C', 'I', 'S', 'Z':
		index := d.u2()
		v, ok := d.pool.Int(index)
		if !ok {
			d.fail("element value %c: constant %d is not an integer", ev.Tag, index)
		}
		ev.Int = int64(v)
	case 'J':
		index := d.u2()
		v, ok := d.pool.Long(index)
		if !ok {
			d.fail("element value J: constant %d is not a long", index)
		}
		ev.Int = v
	case 'F':
		index := d.u2()
		v, ok := d.pool.Float(index)
		if !ok {
			d.fail("element value F: constant %d is not a float", index)
		}
		ev.Float = float64(v)
	case 'D':
		index := d.u2()
		v, ok := d.pool.Double(index)
		if !ok {
			d.fail("element value D: constant %d is not a double", index)
		}
		ev.Float = v
	case 's', 'c':
		ev.String = d.pool.Utf8(d.u2())
	case 'e':
		ev.String = d.pool.Utf8(d.u2())
		ev.EnumConst = d.pool.Utf8(d.u2())
	case '@':
		ann := d.annotation(depth)
		ev.Annotation = &ann
	case '[':
		count := d.u2()
		ev.Values = make([]ElementValue, 0, count)
		for i := uint16(0); i < count && d.err == nil; i++ {
			ev.Values = append(ev.Values, d.elementValue(depth+1))
		}
	default:
		d.fail("unknown element value tag %q", ev.Tag)
	}
	return ev
}
