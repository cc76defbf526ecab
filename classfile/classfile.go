package classfile

// ClassFile is the subset of a compiled class that annotation metadata
// needs. Names are internal names (`com/example/Outer$Inner`).
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         ConstantPool
	Flags        AccessFlags
	Name         string
	SuperName    string
	Interfaces   []string
	Fields       []Member
	Methods      []Member
	Attributes   Attributes
}

// Member is a field or a method.
type Member struct {
	Flags      AccessFlags
	Name       string
	Descriptor string
	Attributes Attributes
}

// Attribute keeps the raw bytes of an attribute; decoding is done on
// demand by the Decode* functions.
type Attribute struct {
	Name string
	Data []byte
}

type Attributes []Attribute

// Find returns the first attribute called name.
func (as Attributes) Find(name string) *Attribute {
	for i := range as {
		if as[i].Name == name {
			return &as[i]
		}
	}
	return nil
}

func (cf *ClassFile) IsAnnotation() bool { return cf.Flags.IsAnnotation() }
func (cf *ClassFile) IsEnum() bool       { return cf.Flags.IsEnum() }

func (cf *ClassFile) IsInterface() bool {
	return cf.Flags.IsInterface() && !cf.Flags.IsAnnotation()
}

func (cf *ClassFile) IsRecord() bool {
	return cf.Attributes.Find(AttrRecord) != nil
}

// Annotations decodes the visible and invisible annotations declared on
// the class itself.
func (cf *ClassFile) Annotations() ([]Annotation, error) {
	var result []Annotation
	for _, name := range []string{AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations} {
		attr := cf.Attributes.Find(name)
		if attr == nil {
			continue
		}
		anns, err := DecodeAnnotations(cf.Pool, attr.Data)
		if err != nil {
			return nil, err
		}
		result = append(result, anns...)
	}
	return result, nil
}

// AnnotationDefault decodes the default value of an annotation element
// method. It returns nil when the element has no default.
func (m *Member) AnnotationDefault(cp ConstantPool) (*ElementValue, error) {
	attr := m.Attributes.Find(AttrAnnotationDefault)
	if attr == nil {
		return nil, nil
	}
	d := &decoder{data: attr.Data, pool: cp}
	value := d.elementValue(0)
	if d.err != nil {
		return nil, d.err
	}
	return &value, nil
}

// InnerClasses decodes the InnerClasses attribute, if any.
func (cf *ClassFile) InnerClasses() ([]InnerClass, error) {
	attr := cf.Attributes.Find(AttrInnerClasses)
	if attr == nil {
		return nil, nil
	}
	return DecodeInnerClasses(cf.Pool, attr.Data)
}

// SourceName returns the dotted name of the class, using the
// InnerClasses attribute to tell nested classes from names that contain
// a '$'.
func (cf *ClassFile) SourceName() string {
	inner, _ := cf.InnerClasses()
	for _, ic := range inner {
		if ic.Inner == cf.Name && ic.Outer != "" && ic.SimpleName != "" {
			return outerSourceName(ic.Outer, inner, len(inner)) + "." + ic.SimpleName
		}
	}
	return InternalToSourceName(cf.Name)
}

func outerSourceName(name string, inner []InnerClass, budget int) string {
	if budget > 0 {
		for _, ic := range inner {
			if ic.Inner == name && ic.Outer != "" && ic.SimpleName != "" {
				return outerSourceName(ic.Outer, inner, budget-1) + "." + ic.SimpleName
			}
		}
	}
	return InternalToSourceName(name)
}
