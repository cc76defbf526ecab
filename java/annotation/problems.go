package annotation

import (
	"fmt"
	"strconv"

	"github.com/dhamidi/annox/java/parser"
)

// Problem is one value that could not be resolved.
type Problem struct {
	// Declaration is the key of the annotated declaration.
	Declaration string
	// Annotation is the type of the innermost annotation holding the
	// value.
	Annotation string
	// Path locates the value from the outermost annotation, such as
	// `routes[2].method`. It is empty when the annotation itself is
	// incomplete.
	Path   string
	Reason string
	Span   parser.Span
}

func (p Problem) String() string {
	where := p.Annotation
	if p.Path != "" {
		where += " " + p.Path
	}
	return fmt.Sprintf("%s: @%s: %s", p.Declaration, where, p.Reason)
}

// Problems lists the unresolved values of the annotations of decl,
// unresolved class literals included, in element order.
func Problems(decl Declaration, instances []*Instance) []Problem {
	c := &problemCollector{decl: decl}
	for _, inst := range instances {
		c.instance(inst, "")
	}
	return c.problems
}

type problemCollector struct {
	decl     Declaration
	problems []Problem
}

func (c *problemCollector) add(inst *Instance, path, reason string) {
	span := inst.Span
	if span == (parser.Span{}) {
		span = c.decl.Span
	}
	c.problems = append(c.problems, Problem{
		Declaration: c.decl.Key,
		Annotation:  inst.Type.Name,
		Path:        path,
		Reason:      reason,
		Span:        span,
	})
}

func (c *problemCollector) instance(inst *Instance, path string) {
	if inst == nil {
		return
	}
	if inst.Reason != "" {
		c.add(inst, path, inst.Reason)
	}
	for _, e := range inst.Elements {
		p := e.Name
		if path != "" {
			p = path + "." + e.Name
		}
		c.value(inst, e.Value, p)
	}
}

func (c *problemCollector) value(inst *Instance, v Value, path string) {
	switch v.Kind {
	case KindUnresolved:
		c.add(inst, path, v.Reason)
	case KindClass:
		if v.Reason != "" {
			c.add(inst, path, v.Reason)
		}
	case KindAnnotation:
		c.instance(v.Annotation, path)
	case KindArray:
		for i, elem := range v.Elements {
			c.value(inst, elem, path+"["+strconv.Itoa(i)+"]")
		}
	}
}
