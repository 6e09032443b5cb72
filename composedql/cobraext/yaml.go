package cobraext

import (
	"bytes"

	"github.com/relux-works/composedql/composedql"
	"gopkg.in/yaml.v3"
)

// encodeYAML renders a query with the same keys, in the same order, as its
// JSON encoding. A nil query renders as null.
func encodeYAML(q composedql.Query) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlList(q)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlList(nodes []composedql.Node) *yaml.Node {
	if nodes == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, n := range nodes {
		seq.Content = append(seq.Content, yamlNode(n))
	}
	return seq
}

func yamlNode(n composedql.Node) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, yamlString(key), value)
	}

	add("name", yamlString(n.Ident()))
	add("type", yamlString(string(n.Kind())))
	if src := composedql.SourceOf(n); src != "" {
		add("source", yamlString(src))
	}
	if props := composedql.PropertiesOf(n); len(props) > 0 {
		add("properties", yamlList(props))
	}
	switch v := n.(type) {
	case *composedql.Resource:
		if v.Scoped {
			add("fields", yamlList(v.Fields))
		}
	case *composedql.Function:
		if len(v.Args) > 0 {
			add("args", yamlList(v.Args))
		}
	}
	return m
}

func yamlString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
