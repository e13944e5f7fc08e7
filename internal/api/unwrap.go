package api

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Unwrap extracts the payload at path (gjson syntax, e.g. "data",
// "products", "data.items") from a response body. An empty path returns
// the whole body. A JSON null payload is returned as-is so list decoding
// yields an empty slice.
func Unwrap(body []byte, path string) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrUnexpectedShape)
	}
	if path == "" {
		return body, nil
	}

	r := gjson.GetBytes(body, path)
	if !r.Exists() {
		return nil, fmt.Errorf("%w: missing %q", ErrUnexpectedShape, path)
	}
	return []byte(r.Raw), nil
}

// unwrapList is Unwrap for collection endpoints: the payload must be an
// array (or null, meaning empty).
func unwrapList(body []byte, path string) ([]byte, error) {
	payload, err := Unwrap(body, path)
	if err != nil {
		return nil, err
	}
	r := gjson.ParseBytes(payload)
	switch {
	case r.IsArray():
		return payload, nil
	case r.Type == gjson.Null:
		return []byte("[]"), nil
	default:
		where := path
		if where == "" {
			where = "body"
		}
		return nil, fmt.Errorf("%w: %s is not an array", ErrUnexpectedShape, where)
	}
}
