// Package classfiletest writes class files and jars in memory so tests
// can exercise class file readers without a JDK.
package classfiletest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/dhamidi/annox/classfile"
)

// Class describes a class file. Names are internal names.
type Class struct {
	Name         string
	Super        string
	Flags        classfile.AccessFlags
	MajorVersion uint16
	Fields       []Member
	Methods      []Member
	Annotations  []classfile.Annotation
	InnerClasses []classfile.InnerClass
	Record       bool
}

type Member struct {
	Flags      classfile.AccessFlags
	Name       string
	Descriptor string
	Default    *classfile.ElementValue
}

// AnnotationType describes an annotation interface with the given
// element methods.
func AnnotationType(name string, elements ...Member) Class {
	return Class{
		Name:    name,
		Super:   "java/lang/Object",
		Flags:   classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract | classfile.AccAnnotation,
		Methods: elements,
	}
}

// Element describes an annotation element method; def may be nil.
func Element(name, returnDescriptor string, def *classfile.ElementValue) Member {
	return Member{
		Flags:      classfile.AccPublic | classfile.AccAbstract,
		Name:       name,
		Descriptor: "()" + returnDescriptor,
		Default:    def,
	}
}

// Enum describes an enum class with the given constants.
func Enum(name string, constants ...string) Class {
	c := Class{
		Name:  name,
		Super: "java/lang/Enum",
		Flags: classfile.AccPublic | classfile.AccFinal | classfile.AccEnum,
	}
	for _, constant := range constants {
		c.Fields = append(c.Fields, Member{
			Flags:      classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum,
			Name:       constant,
			Descriptor: "L" + name + ";",
		})
	}
	c.Fields = append(c.Fields, Member{
		Flags:      classfile.AccPrivate | classfile.AccStatic | classfile.AccFinal | classfile.AccSynthetic,
		Name:       "$VALUES",
		Descriptor: "[L" + name + ";",
	})
	return c
}

// Bytes encodes the class.
func (c Class) Bytes() []byte {
	p := &pool{index: map[string]uint16{}, next: 1}
	var body bytes.Buffer

	u2(&body, uint16(c.Flags))
	u2(&body, p.class(c.Name))
	if c.Super != "" {
		u2(&body, p.class(c.Super))
	} else {
		u2(&body, 0)
	}
	u2(&body, 0)

	for _, members := range [][]Member{c.Fields, c.Methods} {
		u2(&body, uint16(len(members)))
		for _, m := range members {
			u2(&body, uint16(m.Flags))
			u2(&body, p.utf8(m.Name))
			u2(&body, p.utf8(m.Descriptor))
			if m.Default == nil {
				u2(&body, 0)
				continue
			}
			u2(&body, 1)
			var data bytes.Buffer
			p.elementValue(&data, *m.Default)
			p.attribute(&body, classfile.AttrAnnotationDefault, data.Bytes())
		}
	}

	var attrs [][2][]byte
	if len(c.Annotations) > 0 {
		var data bytes.Buffer
		u2(&data, uint16(len(c.Annotations)))
		for _, ann := range c.Annotations {
			p.annotation(&data, ann)
		}
		attrs = append(attrs, [2][]byte{[]byte(classfile.AttrRuntimeVisibleAnnotations), data.Bytes()})
	}
	if len(c.InnerClasses) > 0 {
		var data bytes.Buffer
		u2(&data, uint16(len(c.InnerClasses)))
		for _, ic := range c.InnerClasses {
			u2(&data, p.class(ic.Inner))
			if ic.Outer != "" {
				u2(&data, p.class(ic.Outer))
			} else {
				u2(&data, 0)
			}
			if ic.SimpleName != "" {
				u2(&data, p.utf8(ic.SimpleName))
			} else {
				u2(&data, 0)
			}
			u2(&data, uint16(ic.Flags))
		}
		attrs = append(attrs, [2][]byte{[]byte(classfile.AttrInnerClasses), data.Bytes()})
	}
	if c.Record {
		attrs = append(attrs, [2][]byte{[]byte(classfile.AttrRecord), {0, 0}})
	}
	u2(&body, uint16(len(attrs)))
	for _, attr := range attrs {
		p.attribute(&body, string(attr[0]), attr[1])
	}

	major := c.MajorVersion
	if major == 0 {
		major = 61
	}
	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classfile.Magic))
	u2(&out, 0)
	u2(&out, major)
	u2(&out, p.next)
	out.Write(p.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

// Jar zips files into a jar archive. Entries are written in name order.
func Jar(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(fmt.Sprintf("classfiletest: %v", err))
		}
		w.Write(files[name])
	}
	if err := zw.Close(); err != nil {
		panic(fmt.Sprintf("classfiletest: %v", err))
	}
	return buf.Bytes()
}

type pool struct {
	buf   bytes.Buffer
	next  uint16
	index map[string]uint16
}

func (p *pool) add(key string, wide bool, write func(*bytes.Buffer)) uint16 {
	if i, ok := p.index[key]; ok {
		return i
	}
	i := p.next
	write(&p.buf)
	p.index[key] = i
	p.next++
	if wide {
		p.next++
	}
	return i
}

func (p *pool) utf8(s string) uint16 {
	return p.add("u"+s, false, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantUtf8))
		u2(b, uint16(len(s)))
		b.WriteString(s)
	})
}

func (p *pool) class(name string) uint16 {
	nameIndex := p.utf8(name)
	return p.add("c"+name, false, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantClass))
		u2(b, nameIndex)
	})
}

func (p *pool) integer(v int32) uint16 {
	return p.add(fmt.Sprintf("i%d", v), false, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantInteger))
		binary.Write(b, binary.BigEndian, v)
	})
}

func (p *pool) long(v int64) uint16 {
	return p.add(fmt.Sprintf("j%d", v), true, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantLong))
		binary.Write(b, binary.BigEndian, v)
	})
}

func (p *pool) float(v float32) uint16 {
	bits := math.Float32bits(v)
	return p.add(fmt.Sprintf("f%x", bits), false, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantFloat))
		binary.Write(b, binary.BigEndian, bits)
	})
}

func (p *pool) double(v float64) uint16 {
	bits := math.Float64bits(v)
	return p.add(fmt.Sprintf("d%x", bits), true, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantDouble))
		binary.Write(b, binary.BigEndian, bits)
	})
}

func (p *pool) attribute(b *bytes.Buffer, name string, data []byte) {
	u2(b, p.utf8(name))
	binary.Write(b, binary.BigEndian, uint32(len(data)))
	b.Write(data)
}

func (p *pool) annotation(b *bytes.Buffer, ann classfile.Annotation) {
	u2(b, p.utf8(ann.Type))
	u2(b, uint16(len(ann.Elements)))
	for _, pair := range ann.Elements {
		u2(b, p.utf8(pair.Name))
		p.elementValue(b, pair.Value)
	}
}

func (p *pool) elementValue(b *bytes.Buffer, ev classfile.ElementValue) {
	b.WriteByte(ev.Tag)
	switch ev.Tag {
	case 'B', 'C', 'I', 'S', 'Z':
		u2(b, p.integer(int32(ev.Int)))
	case 'J':
		u2(b, p.long(ev.Int))
	case 'F':
		u2(b, p.float(float32(ev.Float)))
	case 'D':
		u2(b, p.double(ev.Float))
	case 's', 'c':
		u2(b, p.utf8(ev.String))
	case 'e':
		u2(b, p.utf8(ev.String))
		u2(b, p.utf8(ev.EnumConst))
	case '@':
		p.annotation(b, *ev.Annotation)
	case '[':
		u2(b, uint16(len(ev.Values)))
		for _, v := range ev.Values {
			p.elementValue(b, v)
		}
	}
}

func u2(b *bytes.Buffer, v uint16) {
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}
