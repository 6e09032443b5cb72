// Package composedql parses composed queries: compact field-selection
// strings such as "name,address.city,~photos(url,caption).filter(recent)"
// that list the fields, nested properties, embedded resources and
// function-style modifiers a client wants from an API response.
package composedql

// Kind identifies the role a node plays in a parsed query.
type Kind string

const (
	KindField    Kind = "field"
	KindProperty Kind = "property"
	KindResource Kind = "resource"
	KindFunction Kind = "function"
	KindArg      Kind = "arg"
)

// Query is the result of parsing a composed query: the top-level nodes in
// source order. A nil Query means the input held no fields.
type Query []Node

// Node is one element of a parsed query tree.
// It is implemented by *Field, *Property, *Resource, *Function and *Arg.
type Node interface {
	Kind() Kind
	// Ident returns the node's identifier (without the resource sigil).
	Ident() string

	node()
}

// Field is a plain named selection, optionally followed by a dotted chain.
type Field struct {
	Name       string
	Source     string
	Properties []Node // *Property or *Function chain links
}

// Property is a link of a dotted accessor chain.
type Property struct {
	Name string
}

// Resource is a sigil-prefixed reference to an embeddable sub-selection.
//
// Scoped distinguishes "~r()" (Scoped, no Fields) from "~r" (not Scoped).
type Resource struct {
	Name       string
	Source     string
	Properties []Node
	Fields     Query
	Scoped     bool
}

// Function is a field, argument or chain link that owns a parenthesized
// argument list. Source is empty when the function is a chain link.
type Function struct {
	Name       string
	Source     string
	Args       Query
	Properties []Node
}

// Arg is one entry of a function's argument list.
type Arg struct {
	Name       string
	Source     string
	Properties []Node
}

func (*Field) Kind() Kind    { return KindField }
func (*Property) Kind() Kind { return KindProperty }
func (*Resource) Kind() Kind { return KindResource }
func (*Function) Kind() Kind { return KindFunction }
func (*Arg) Kind() Kind      { return KindArg }

func (n *Field) Ident() string    { return n.Name }
func (n *Property) Ident() string { return n.Name }
func (n *Resource) Ident() string { return n.Name }
func (n *Function) Ident() string { return n.Name }
func (n *Arg) Ident() string      { return n.Name }

func (*Field) node()    {}
func (*Property) node() {}
func (*Resource) node() {}
func (*Function) node() {}
func (*Arg) node()      {}

// SourceOf returns the verbatim query text a node was parsed from,
// or "" for chain links.
func SourceOf(n Node) string {
	switch v := n.(type) {
	case *Field:
		return v.Source
	case *Resource:
		return v.Source
	case *Function:
		return v.Source
	case *Arg:
		return v.Source
	}
	return ""
}

// PropertiesOf returns the dotted chain attached to a node, if any.
func PropertiesOf(n Node) []Node {
	switch v := n.(type) {
	case *Field:
		return v.Properties
	case *Resource:
		return v.Properties
	case *Function:
		return v.Properties
	case *Arg:
		return v.Properties
	}
	return nil
}
