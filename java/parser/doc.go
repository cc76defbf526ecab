// Package parser provides an error-tolerant parser for the declaration
// structure of Java source files.
//
// # Overview
//
// The parser reads a compilation unit and produces a syntax tree of
// package, import, module and type declarations down to fields, methods,
// constructors, enum constants, record components and parameters, with
// every annotation attached where it was written. Method bodies, field
// initializers and initializer blocks are skipped by matching braces, so
// the parser is cheap enough to run on every file of a large source tree.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (tree)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//
// Annotation element values and annotation type defaults are parsed with
// the full Java expression grammar. Consumers decide which expressions
// are constant; the parser only records their shape.
//
// # Entry Points
//
//	ParseCompilationUnit(r, opts...)  // a whole .java file
//	ParseAnnotation(r, opts...)       // "@pkg.Type(a = 1)"
//	ParseExpression(r, opts...)       // one element value: "{1, 2}", "Color.RED"
//	ParseType(r, opts...)             // "java.util.Map<String, ? extends Number>[]"
//
// Each returns a *Parser; Finish reads the input and returns the root
// node, or nil if the input is empty or truncated in the middle of a
// construct.
//
// # Tree Shape
//
// Every node carries a Kind, a Span and its Children. Leaf nodes carry
// the Token they were built from. Declarations start with a Modifiers
// node holding annotations and modifier keywords:
//
//	ClassDecl
//	├── Modifiers
//	│   └── Annotation
//	│       ├── QualifiedName
//	│       └── AnnotationElement
//	│           ├── Identifier
//	│           └── Literal
//	├── Identifier
//	└── Block
//	    ├── FieldDecl (Modifiers, Type, VariableDeclarator...)
//	    └── MethodDecl (Modifiers, TypeParameters?, Type, Identifier,
//	                    Parameters, ThrowsList?, DefaultValue?, Body?)
//
// # Error Recovery
//
// The parser never panics on malformed input. An unexpected token
// becomes an Error node in place of the construct that failed, and
// parsing resumes at the next token that can start or end a construct.
// Node.Errors lists every error node of a tree.
//
// # Thread Safety
//
// A Parser is not safe for concurrent use. Trees are never modified after
// Finish returns and may be shared between goroutines.
package parser
