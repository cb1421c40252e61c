// Package json is the JSON codec of tilth. It converts entry data to and
// from a JSON object, and is what the CLI reads --data payloads with and
// prints --json output through.
package json

import (
	"bytes"
	gojson "encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
)

// CacheTag namespaces the keys of decoded JSON documents.
const CacheTag = "json"

var errNotObject = errors.New("document is not an object")

// Codec encodes and decodes JSON objects.
type Codec struct {
	// Indent, when set, pretty-prints encoded output with this indent.
	Indent string
	// Strict keeps every decoded number as json.Number.
	Strict bool
	// Cache memoises decode results. Nil disables caching.
	Cache *cache.Facade
	// OnParse, when set, is called each time a document is actually
	// parsed.
	OnParse func()
}

// New creates a compact codec.
func New(c *cache.Facade) *Codec {
	return &Codec{Cache: c}
}

// Encode emits data as a JSON object with sorted keys and no HTML
// escaping. Empty data encodes to "{}".
func (c *Codec) Encode(data core.Data) (string, error) {
	if data == nil {
		data = core.Data{}
	}

	var buf bytes.Buffer
	encoder := gojson.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}
	if err := encoder.Encode(map[string]any(data)); err != nil {
		return "", &core.FormatError{Format: "json", Op: "encode", Err: err}
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode parses input. Comments and trailing commas are tolerated. When
// useCache is true and the cache is enabled the result is memoised under
// Key("json", input).
func (c *Codec) Decode(input string, useCache bool) (core.Data, error) {
	useCache = useCache && c.Cache.Enabled()

	var key string
	if useCache {
		key = CacheID(input)
		if d, ok := c.Cache.GetData(key); ok {
			return d.DeepClone(), nil
		}
	}

	data, err := c.parse(input)
	if err != nil {
		return nil, err
	}

	if useCache {
		c.Cache.Set(key, data.DeepClone())
	}
	return data, nil
}

// CacheID returns the cache key of a decoded input.
func CacheID(input string) string {
	return cache.Key(CacheTag, input)
}

func (c *Codec) parse(input string) (core.Data, error) {
	if c.OnParse != nil {
		c.OnParse()
	}
	if strings.TrimSpace(input) == "" {
		return core.Data{}, nil
	}

	decoder := gojson.NewDecoder(bytes.NewReader(jsonc.ToJSON([]byte(input))))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, &core.FormatError{Format: "json", Op: "decode", Err: err}
	}
	if decoder.More() {
		return nil, &core.FormatError{Format: "json", Op: "decode", Err: errors.New("trailing data after the object")}
	}

	m, ok := payload.(map[string]any)
	if !ok {
		return nil, &core.FormatError{Format: "json", Op: "decode", Err: fmt.Errorf("%w (got %T)", errNotObject, payload)}
	}
	return core.Data(c.settle(m).(map[string]any)), nil
}

// settle turns json.Number into int or float64 unless Strict is set.
func (c *Codec) settle(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = c.settle(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = c.settle(e)
		}
		return t
	case gojson.Number:
		if c.Strict {
			return t
		}
		if i, err := t.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
