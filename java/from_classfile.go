package java

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/annox/classfile"
)

func TypeInfoFromFile(path string) (*TypeInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := TypeInfoFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info.Origin = FileURL(path)
	return info, nil
}

func TypeInfoFromReader(r io.Reader) (*TypeInfo, error) {
	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, err
	}
	return TypeInfoFromClassFile(cf)
}

// TypeInfoFromClassFile builds metadata for a compiled type. Element
// types are taken from the element method descriptors and defaults from
// their AnnotationDefault attributes.
func TypeInfoFromClassFile(cf *classfile.ClassFile) (*TypeInfo, error) {
	name := cf.SourceName()
	pkg := classfile.InternalToSourceName(packageOf(cf.Name))
	simple := name
	if pkg != "" {
		simple = name[len(pkg)+1:]
	}
	if i := lastDot(simple); i >= 0 {
		simple = simple[i+1:]
	}

	info := &TypeInfo{
		Name:       name,
		SimpleName: simple,
		Package:    pkg,
		Kind:       classKindFromClassFile(cf),
	}

	switch info.Kind {
	case ClassKindAnnotation:
		for i := range cf.Methods {
			m := &cf.Methods[i]
			if m.Flags.IsStatic() || m.Flags.IsSynthetic() || m.Name == "<clinit>" {
				continue
			}
			elem, err := elementFromMethodInfo(m, cf.Pool)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, m.Name, err)
			}
			info.Elements = append(info.Elements, elem)
		}
		anns, err := cf.Annotations()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		info.Retention, info.Targets = metaAnnotationsFromClassFile(anns)
	case ClassKindEnum:
		for _, f := range cf.Fields {
			if f.Flags.IsEnum() {
				info.EnumConstants = append(info.EnumConstants, f.Name)
			}
		}
	}
	return info, nil
}

func classKindFromClassFile(cf *classfile.ClassFile) ClassKind {
	switch {
	case cf.IsAnnotation():
		return ClassKindAnnotation
	case cf.IsEnum():
		return ClassKindEnum
	case cf.IsInterface():
		return ClassKindInterface
	case cf.IsRecord():
		return ClassKindRecord
	}
	return ClassKindClass
}

func elementFromMethodInfo(m *classfile.Member, cp classfile.ConstantPool) (ElementInfo, error) {
	ft, err := classfile.ParseFieldDescriptor(classfile.ReturnDescriptor(m.Descriptor))
	if err != nil {
		return ElementInfo{}, err
	}
	elem := ElementInfo{
		Name: m.Name,
		Type: typeFromFieldType(ft),
	}
	def, err := m.AnnotationDefault(cp)
	if err != nil {
		return ElementInfo{}, err
	}
	if def != nil {
		elem.Default = &DefaultValue{Const: def}
	}
	return elem, nil
}

func typeFromFieldType(ft classfile.FieldType) Type {
	return Type{Name: ft.SourceName(), ArrayDepth: ft.ArrayDepth}
}

func metaAnnotationsFromClassFile(anns []classfile.Annotation) (retention string, targets []string) {
	for _, ann := range anns {
		for _, pair := range ann.Elements {
			if pair.Name != "value" {
				continue
			}
			switch ann.Type {
			case "Ljava/lang/annotation/Retention;":
				retention = pair.Value.EnumConst
			case "Ljava/lang/annotation/Target;":
				for _, v := range pair.Value.Values {
					targets = append(targets, v.EnumConst)
				}
			}
		}
	}
	return retention, targets
}

// DescriptorTypeName converts a field descriptor such as
// `Lcom/example/Level;` to a dotted type name.
func DescriptorTypeName(desc string) string {
	ft, err := classfile.ParseFieldDescriptor(desc)
	if err != nil {
		return desc
	}
	return ft.String()
}

func packageOf(internal string) string {
	for i := len(internal) - 1; i >= 0; i-- {
		if internal[i] == '/' {
			return internal[:i]
		}
	}
	return ""
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
