package composedql

import "errors"

// ParseValue parses a query held in a loosely typed value, such as one
// decoded from a JSON request body. Strings and byte slices are parsed;
// anything else fails with INVALID_INPUT. A nil value yields no result
// when config.AllowMissing is set.
func ParseValue(query any, config *ParserConfig) (Query, error) {
	switch v := query.(type) {
	case string:
		return Parse(v, config)
	case []byte:
		return Parse(string(v), config)
	case nil:
		if config != nil && config.AllowMissing {
			return nil, nil
		}
	}
	return nil, invalidInput("invalid query", query)
}

// ParseFieldValue is the loosely typed form of ParseField and
// ParseFieldScope. A nil scope means the field owns no scope.
func ParseFieldValue(field, scope any, config *ParserConfig) (Node, error) {
	var segment string
	switch v := field.(type) {
	case string:
		segment = v
	case []byte:
		segment = string(v)
	case nil:
		if config != nil && config.AllowMissing {
			return nil, nil
		}
		return nil, invalidInput("invalid field", field)
	default:
		return nil, invalidInput("invalid field", field)
	}

	switch v := scope.(type) {
	case nil:
		return ParseField(segment, config)
	case string:
		return ParseFieldScope(segment, v, config)
	case []byte:
		return ParseFieldScope(segment, string(v), config)
	}
	return nil, invalidInput("invalid context", scope)
}

// TryParse is the non-throwing form of ParseValue. It reports false on
// any failure; the failure itself goes to config.OnError and the logger.
// A query without fields returns (nil, true).
func TryParse(query any, config *ParserConfig) (Query, bool) {
	q, err := ParseValue(query, config)
	if err != nil {
		report(err, config)
		return nil, false
	}
	return q, true
}

// TryParseField is the non-throwing form of ParseFieldValue.
func TryParseField(field, scope any, config *ParserConfig) (Node, bool) {
	n, err := ParseFieldValue(field, scope, config)
	if err != nil {
		report(err, config)
		return nil, false
	}
	return n, true
}

func report(err error, config *ParserConfig) {
	var pe *ParseError
	if !errors.As(err, &pe) {
		pe = &ParseError{Code: ErrIncompleteParse, Message: err.Error()}
	}
	config.logger().Warnw("query rejected",
		"code", pe.Code,
		"message", pe.Message,
		"offset", pe.Pos.Offset,
	)
	if config != nil && config.OnError != nil {
		config.OnError(pe)
	}
}
