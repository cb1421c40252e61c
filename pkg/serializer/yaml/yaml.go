// Package yaml is the structured-text codec of tilth: it converts entry
// headers between core.Data and YAML text.
package yaml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
)

// CacheTag namespaces the keys of decoded YAML documents.
const CacheTag = "yaml"

var errNotMapping = errors.New("document is not a mapping")

// Codec encodes and decodes YAML documents whose root is a mapping.
type Codec struct {
	// Native tries encoding/json first when the input is a JSON object,
	// which YAML accepts verbatim. Any failure falls back to yaml.v3.
	Native bool
	// Strict converts every decoded number to json.Number to avoid
	// float64 precision loss.
	Strict bool
	// Cache memoises decode results. Nil disables caching.
	Cache *cache.Facade
	// OnParse, when set, is called each time a document is actually
	// parsed (i.e. not served from the cache).
	OnParse func()
}

// New creates a codec with the native fast path enabled.
func New(c *cache.Facade) *Codec {
	return &Codec{Native: true, Cache: c}
}

// Encode emits data as a YAML mapping with two-space indentation and
// sorted keys. An empty mapping encodes to "".
func (c *Codec) Encode(data core.Data) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string]any(data)); err != nil {
		return "", &core.FormatError{Format: "yaml", Op: "encode", Err: err}
	}
	if err := encoder.Close(); err != nil {
		return "", &core.FormatError{Format: "yaml", Op: "encode", Err: err}
	}
	return buf.String(), nil
}

// Decode parses input. When useCache is true and the cache is enabled the
// result is memoised under Key("yaml", input). Empty input decodes to an
// empty Data.
func (c *Codec) Decode(input string, useCache bool) (core.Data, error) {
	useCache = useCache && c.Cache.Enabled()

	var key string
	if useCache {
		key = cache.Key(CacheTag, input)
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

func (c *Codec) parse(input string) (core.Data, error) {
	if c.OnParse != nil {
		c.OnParse()
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return core.Data{}, nil
	}

	if c.Native && strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if data, ok := c.parseJSON(trimmed); ok {
			return data, nil
		}
	}

	var payload any
	if err := yaml.Unmarshal([]byte(input), &payload); err != nil {
		return nil, &core.FormatError{Format: "yaml", Op: "decode", Err: err}
	}
	if payload == nil {
		return core.Data{}, nil
	}

	m, ok := c.normalize(payload).(map[string]any)
	if !ok {
		return nil, &core.FormatError{Format: "yaml", Op: "decode", Err: fmt.Errorf("%w (got %T)", errNotMapping, payload)}
	}
	return core.Data(m), nil
}

func (c *Codec) parseJSON(input string) (core.Data, bool) {
	decoder := json.NewDecoder(strings.NewReader(input))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return nil, false
	}
	if decoder.More() {
		return nil, false
	}
	return core.Data(c.normalize(payload).(map[string]any)), true
}

// normalize converts nested mappings to map[string]any and settles
// numbers: json.Number becomes int or float64 unless Strict is set, in
// which case every number becomes json.Number.
func (c *Codec) normalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = c.normalize(item)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = c.normalize(item)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = c.normalize(item)
		}
		return l
	case json.Number:
		if c.Strict {
			return v
		}
		if i, err := v.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int:
		if c.Strict {
			return json.Number(fmt.Sprintf("%d", v))
		}
		return v
	case uint64:
		if c.Strict {
			return json.Number(fmt.Sprintf("%d", v))
		}
		return v
	case float64:
		if c.Strict {
			return json.Number(fmt.Sprintf("%v", v))
		}
		return v
	default:
		return v
	}
}
