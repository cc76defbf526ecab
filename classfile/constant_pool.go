package classfile

import "math"

// Constant is one constant pool entry. Numeric entries keep their raw
// bits; reference entries keep up to two pool indexes.
type Constant struct {
	Tag    ConstantTag
	Text   string
	Bits   uint64
	Index1 uint16
	Index2 uint16
}

// ConstantPool is indexed the way the class file indexes it: slot 0 and
// the slot after every long or double are empty.
type ConstantPool []Constant

func (cp ConstantPool) entry(index uint16, tag ConstantTag) (Constant, bool) {
	if index == 0 || int(index) >= len(cp) || cp[index].Tag != tag {
		return Constant{}, false
	}
	return cp[index], true
}

func (cp ConstantPool) Utf8(index uint16) string {
	c, _ := cp.entry(index, ConstantUtf8)
	return c.Text
}

// ClassName returns the internal name (`java/lang/String`) of a Class
// entry.
func (cp ConstantPool) ClassName(index uint16) string {
	c, ok := cp.entry(index, ConstantClass)
	if !ok {
		return ""
	}
	return cp.Utf8(c.Index1)
}

func (cp ConstantPool) Int(index uint16) (int32, bool) {
	c, ok := cp.entry(index, ConstantInteger)
	return int32(uint32(c.Bits)), ok
}

func (cp ConstantPool) Long(index uint16) (int64, bool) {
	c, ok := cp.entry(index, ConstantLong)
	return int64(c.Bits), ok
}

func (cp ConstantPool) Float(index uint16) (float32, bool) {
	c, ok := cp.entry(index, ConstantFloat)
	return math.Float32frombits(uint32(c.Bits)), ok
}

func (cp ConstantPool) Double(index uint16) (float64, bool) {
	c, ok := cp.entry(index, ConstantDouble)
	return math.Float64frombits(c.Bits), ok
}
