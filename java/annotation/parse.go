package annotation

import (
	"fmt"
	"strings"

	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/parser"
)

// Parse builds an instance from a standalone annotation such as
// `@javax.xml.bind.annotation.XmlElement(name = "x", required = true)`.
// Names are resolved as in a file without package or imports. Only text
// that is not an annotation at all is an error; problems inside the
// annotation are reported as Unresolved values.
func Parse(text string, provider java.Provider, opts ...Option) (*Instance, error) {
	node := parser.ParseAnnotation(strings.NewReader(text)).Finish()
	if node == nil {
		return nil, fmt.Errorf("incomplete annotation %q", text)
	}
	if node.Kind != parser.KindAnnotation {
		msg := "not an annotation"
		if node.Error != nil {
			msg = node.Error.Message
		}
		return nil, fmt.Errorf("invalid annotation %q: %s", text, msg)
	}
	return NewBuilder(provider, opts...).Build(node, nil), nil
}
