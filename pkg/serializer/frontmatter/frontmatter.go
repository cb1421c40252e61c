// Package frontmatter is the hybrid document codec of tilth. A document is
// a YAML header between two "---" lines followed by an opaque body:
//
//	---
//	title: Foo
//	---
//	Hello
//
// The body is exposed as the "content" field of the decoded data.
package frontmatter

import (
	"fmt"
	"strings"

	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/serializer/yaml"
)

// CacheTag namespaces the keys of decoded documents. It differs from the
// yaml codec's tag so the two caches never share a key.
const CacheTag = "frontmatter"

const (
	delimiter = "---"
	bom       = "\ufeff"
)

// Codec encodes and decodes front-matter documents.
type Codec struct {
	// Header encodes and decodes the YAML header. Header decodes never use
	// the header codec's own cache.
	Header *yaml.Codec
	// Cache memoises whole-document decodes. Nil disables caching.
	Cache *cache.Facade
	// OnParse, when set, is called each time a document is actually
	// parsed (i.e. not served from the cache).
	OnParse func()
}

// New creates a codec. A nil header codec gets a default one.
func New(header *yaml.Codec, c *cache.Facade) *Codec {
	if header == nil {
		header = yaml.New(nil)
	}
	return &Codec{Header: header, Cache: c}
}

// Encode emits "---\n<header>---\n<content>". The content field is taken
// out of data before the header is encoded; data itself is not modified.
func (c *Codec) Encode(data core.Data) (string, error) {
	content := data.Content()

	rest := make(core.Data, len(data))
	for k, v := range data {
		if k != core.ContentKey {
			rest[k] = v
		}
	}

	header, err := c.Header.Encode(rest)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(header) + len(content) + 2*len(delimiter) + 2)
	b.WriteString(delimiter + "\n")
	b.WriteString(header)
	b.WriteString(delimiter + "\n")
	b.WriteString(content)
	return b.String(), nil
}

// Decode parses input. When useCache is true and the cache is enabled the
// result is memoised under Key("frontmatter", input).
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

	input = normalize(input)
	parts := split(strings.TrimLeft(input, " \t\n\v\f"))

	// The header is the first delimited segment; text before the opening
	// delimiter is discarded.
	if len(parts) < 3 {
		return core.Data{core.ContentKey: strings.TrimSpace(input)}, nil
	}

	data, err := c.Header.Decode(strings.TrimSpace(parts[1]), false)
	if err != nil {
		return nil, &core.FormatError{Format: "frontmatter", Op: "decode", Err: fmt.Errorf("header: %w", err)}
	}

	data[core.ContentKey] = strings.TrimSpace(strings.Join(parts[2:], "\n"+delimiter+"\n"))
	return data, nil
}

// normalize strips a leading byte order mark and converts CRLF and CR line
// endings to LF.
func normalize(s string) string {
	s = strings.TrimPrefix(s, bom)
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// split cuts s on delimiter lines. The first part holds whatever precedes
// the first delimiter.
func split(s string) []string {
	lines := strings.Split(s, "\n")

	var (
		parts   []string
		current []string
	)
	for _, line := range lines {
		if isDelimiter(line) {
			parts = append(parts, strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	return append(parts, strings.Join(current, "\n"))
}

// isDelimiter reports whether line is "---", allowing one whitespace
// character on either side.
func isDelimiter(line string) bool {
	if len(line) > 0 && isSpace(line[0]) {
		line = line[1:]
	}
	if n := len(line); n > 0 && isSpace(line[n-1]) {
		line = line[:n-1]
	}
	return line == delimiter
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}
