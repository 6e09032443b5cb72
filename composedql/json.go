package composedql

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireNode is the JSON shape shared by all node variants.
type wireNode struct {
	Name       string          `json:"name"`
	Type       Kind            `json:"type"`
	Source     string          `json:"source,omitempty"`
	Properties Query           `json:"properties,omitempty"`
	Fields     json.RawMessage `json:"fields,omitempty"`
	Args       Query           `json:"args,omitempty"`
}

var jsonNull = json.RawMessage("null")

func (n *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Name: n.Name, Type: KindField, Source: n.Source, Properties: n.Properties})
}

func (n *Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Name: n.Name, Type: KindProperty})
}

// MarshalJSON encodes an explicit but empty scope as "fields": null.
func (n *Resource) MarshalJSON() ([]byte, error) {
	w := wireNode{Name: n.Name, Type: KindResource, Source: n.Source, Properties: n.Properties}
	if n.Scoped {
		w.Fields = jsonNull
		if len(n.Fields) > 0 {
			raw, err := json.Marshal(n.Fields)
			if err != nil {
				return nil, err
			}
			w.Fields = raw
		}
	}
	return json.Marshal(w)
}

func (n *Function) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Name: n.Name, Type: KindFunction, Source: n.Source, Properties: n.Properties, Args: n.Args})
}

func (n *Arg) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Name: n.Name, Type: KindArg, Source: n.Source, Properties: n.Properties})
}

// UnmarshalJSON decodes a JSON array of nodes back into their variants.
// A JSON null decodes to a nil Query.
func (q *Query) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*q = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Query, 0, len(raws))
	for _, raw := range raws {
		n, err := decodeNode(raw)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*q = out
	return nil
}

// DecodeQuery decodes the JSON produced by marshaling a Query.
func DecodeQuery(data []byte) (Query, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return q, nil
}

func decodeNode(raw json.RawMessage) (Node, error) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	switch w.Type {
	case KindField:
		return &Field{Name: w.Name, Source: w.Source, Properties: w.Properties}, nil
	case KindProperty:
		return &Property{Name: w.Name}, nil
	case KindResource:
		r := &Resource{Name: w.Name, Source: w.Source, Properties: w.Properties}
		if len(w.Fields) > 0 {
			r.Scoped = true
			if err := json.Unmarshal(w.Fields, &r.Fields); err != nil {
				return nil, err
			}
		}
		return r, nil
	case KindFunction:
		return &Function{Name: w.Name, Source: w.Source, Args: w.Args, Properties: w.Properties}, nil
	case KindArg:
		return &Arg{Name: w.Name, Source: w.Source, Properties: w.Properties}, nil
	}
	return nil, fmt.Errorf("composedql: unknown node type %q", w.Type)
}
