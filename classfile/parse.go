package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a class file. Code and every attribute other than the ones
// named in this package are kept as raw bytes.
func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic 0x%X", ErrInvalidMagic, magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}

	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}
	cf.Pool = make(ConstantPool, count)
	for i := uint16(1); i < count; i++ {
		c, err := readConstant(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cf.Pool[i] = c
		if c.Tag == ConstantLong || c.Tag == ConstantDouble {
			i++
		}
	}

	cf.Flags = AccessFlags(r.readU2())
	cf.Name = cf.Pool.ClassName(r.readU2())
	cf.SuperName = cf.Pool.ClassName(r.readU2())

	interfaces := r.readU2()
	for i := uint16(0); i < interfaces && r.err == nil; i++ {
		cf.Interfaces = append(cf.Interfaces, cf.Pool.ClassName(r.readU2()))
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}

	var err error
	if cf.Fields, err = readMembers(r, cf.Pool); err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	if cf.Methods, err = readMembers(r, cf.Pool); err != nil {
		return nil, fmt.Errorf("failed to read methods: %w", err)
	}
	if cf.Attributes, err = readAttributes(r, cf.Pool); err != nil {
		return nil, fmt.Errorf("failed to read attributes: %w", err)
	}
	return cf, nil
}

func readConstant(r *reader) (Constant, error) {
	c := Constant{Tag: ConstantTag(r.readU1())}
	switch c.Tag {
	case ConstantUtf8:
		c.Text = decodeModifiedUtf8(r.readBytes(int(r.readU2())))
	case ConstantInteger, ConstantFloat:
		c.Bits = uint64(r.readU4())
	case ConstantLong, ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		c.Bits = uint64(high)<<32 | uint64(low)
	case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		c.Index1 = r.readU2()
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
		ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
		c.Index1 = r.readU2()
		c.Index2 = r.readU2()
	case ConstantMethodHandle:
		c.Index1 = uint16(r.readU1())
		c.Index2 = r.readU2()
	default:
		if r.err == nil {
			return c, fmt.Errorf("unknown constant pool tag: %d", c.Tag)
		}
	}
	return c, r.err
}

func readMembers(r *reader, cp ConstantPool) ([]Member, error) {
	count := r.readU2()
	members := make([]Member, 0, count)
	for i := uint16(0); i < count; i++ {
		m := Member{
			Flags:      AccessFlags(r.readU2()),
			Name:       cp.Utf8(r.readU2()),
			Descriptor: cp.Utf8(r.readU2()),
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		m.Attributes = attrs
		members = append(members, m)
	}
	return members, r.err
}

func readAttributes(r *reader, cp ConstantPool) (Attributes, error) {
	count := r.readU2()
	var attrs Attributes
	for i := uint16(0); i < count && r.err == nil; i++ {
		name := cp.Utf8(r.readU2())
		data := r.readBytes(int(r.readU4()))
		attrs = append(attrs, Attribute{Name: name, Data: data})
	}
	return attrs, r.err
}

func decodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	for i := 0; i < len(bytes); {
		b := bytes[i]
		switch {
		case b&0x80 == 0:
			runes = append(runes, rune(b))
			i++
		case b&0xE0 == 0xC0 && i+1 < len(bytes):
			runes = append(runes, rune(b&0x1F)<<6|rune(bytes[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0 && i+2 < len(bytes):
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			i += 3
			if r >= 0xD800 && r <= 0xDBFF && i+2 < len(bytes) && bytes[i] == 0xED {
				low := rune(bytes[i]&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					r = 0x10000 + (r-0xD800)<<10 + (low - 0xDC00)
					i += 3
				}
			}
			runes = append(runes, r)
		default:
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}
