package frontmatter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
)

func TestEncode(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		name string
		data core.Data
		want string
	}{
		{"Title And Content", core.Data{"title": "Foo", "content": "Hello"}, "---\ntitle: Foo\n---\nHello"},
		{"Missing Content", core.Data{"title": "Foo"}, "---\ntitle: Foo\n---\n"},
		{"Only Content", core.Data{"content": "Body"}, "---\n---\nBody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Encode(tt.data)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("Input Untouched", func(t *testing.T) {
		in := core.Data{"title": "Foo", "content": "Hello"}
		if _, err := c.Encode(in); err != nil {
			t.Fatal(err)
		}
		if in["content"] != "Hello" {
			t.Errorf("Encode removed content from its input: %v", in)
		}
	})
}

func TestDecode(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		name  string
		input string
		want  core.Data
	}{
		{
			name:  "Title And Content",
			input: "---\ntitle: Foo\n---\nHello",
			want:  core.Data{"title": "Foo", "content": "Hello"},
		},
		{
			name:  "No Header",
			input: "  just some text\n\n",
			want:  core.Data{"content": "just some text"},
		},
		{
			name:  "Single Delimiter",
			input: "---\ntitle: Foo\n",
			want:  core.Data{"content": "---\ntitle: Foo"},
		},
		{
			name:  "Byte Order Mark",
			input: "\ufeff---\ntitle: Foo\n---\nHello",
			want:  core.Data{"title": "Foo", "content": "Hello"},
		},
		{
			name:  "CRLF",
			input: "---\r\ntitle: Foo\r\n---\r\nLine 1\r\nLine 2\r\n",
			want:  core.Data{"title": "Foo", "content": "Line 1\nLine 2"},
		},
		{
			name:  "Bare CR",
			input: "---\rtitle: Foo\r---\rHello",
			want:  core.Data{"title": "Foo", "content": "Hello"},
		},
		{
			name:  "Leading Blank Lines",
			input: "\n\n---\ntitle: Foo\n---\nHello",
			want:  core.Data{"title": "Foo", "content": "Hello"},
		},
		{
			name:  "Delimiters In Body",
			input: "---\ntitle: Foo\n---\nintro\n---\nmore\n---\nend\n",
			want:  core.Data{"title": "Foo", "content": "intro\n---\nmore\n---\nend"},
		},
		{
			name:  "Empty Header",
			input: "---\n---\nBody",
			want:  core.Data{"content": "Body"},
		},
		{
			name:  "Body Overrides Header Content",
			input: "---\ncontent: from header\n---\nfrom body",
			want:  core.Data{"content": "from body"},
		},
		{
			name:  "Text Before Header Is Dropped",
			input: "Intro\n---\ntitle: Foo\n---\nbody",
			want:  core.Data{"title": "Foo", "content": "body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Decode(tt.input, false)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}

	t.Run("Malformed Header", func(t *testing.T) {
		_, err := c.Decode("---\ntitle: [oops\n---\nbody", false)
		if !errors.Is(err, core.ErrFormat) {
			t.Fatalf("error = %v, want a format error", err)
		}
		var fe *core.FormatError
		if !errors.As(err, &fe) || fe.Format != "frontmatter" {
			t.Errorf("error = %#v, want a frontmatter FormatError", err)
		}
	})

	t.Run("Header Not A Mapping", func(t *testing.T) {
		if _, err := c.Decode("Intro\n---\njust words\n---\nbody", false); !errors.Is(err, core.ErrFormat) {
			t.Errorf("error = %v, want a format error", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	c := New(nil, nil)

	cases := []core.Data{
		{"title": "Foo", "content": "Hello"},
		{"title": "Nested", "meta": map[string]any{"draft": true, "weight": 3}, "content": "# Heading\n\nBody"},
		{"tags": []any{"a", "b"}, "content": ""},
		{"content": "only a body"},
	}

	for _, in := range cases {
		text, err := c.Encode(in)
		if err != nil {
			t.Fatalf("Encode(%v): %v", in, err)
		}
		out, err := c.Decode(text, false)
		if err != nil {
			t.Fatalf("Decode(%q): %v", text, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("round trip of %q = %#v, want %#v", text, out, in)
		}
	}
}

func TestDecode_Cache(t *testing.T) {
	backend := cache.NewMemory()
	c := New(nil, cache.New(backend, nil, nil))

	parses := 0
	c.OnParse = func() { parses++ }

	in := "---\ntitle: Foo\nmeta:\n  draft: true\n---\nHello"
	first, err := c.Decode(in, true)
	if err != nil {
		t.Fatal(err)
	}
	first["meta"].(map[string]any)["draft"] = false

	second, err := c.Decode(in, true)
	if err != nil {
		t.Fatal(err)
	}
	if parses != 1 {
		t.Errorf("parses = %d, want 1", parses)
	}
	if second["meta"].(map[string]any)["draft"] != true {
		t.Error("a caller edit leaked into the cached document")
	}

	if !backend.Has(cache.Key(CacheTag, in)) {
		t.Error("document was not cached under its frontmatter key")
	}
	if backend.Has(cache.Key("yaml", in)) {
		t.Error("document keys must not collide with header keys")
	}
	if backend.Has(cache.Key("yaml", "title: Foo\nmeta:\n  draft: true")) {
		t.Error("header decode should bypass the cache")
	}

	t.Run("Disabled Globally", func(t *testing.T) {
		disabled := New(nil, cache.New(cache.NewMemory(), staticSettings{cache.EnabledSetting: false}, nil))
		n := 0
		disabled.OnParse = func() { n++ }
		_, _ = disabled.Decode(in, true)
		_, _ = disabled.Decode(in, true)
		if n != 2 {
			t.Errorf("parses = %d, want 2 with caching off", n)
		}
	})
}

type staticSettings map[string]any

func (s staticSettings) Get(key string) any { return s[key] }
