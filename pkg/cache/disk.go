package cache

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/aretw0/tilth/pkg/adapters/fs"
	"github.com/aretw0/tilth/pkg/core"
)

// headerSize is 1 byte of Compression followed by the uncompressed
// payload length as a big-endian uint32.
const headerSize = 5

// numberTag marks a json.Number on the wire. CBOR has no decimal string
// type, and an untagged text string would come back as a plain string.
const numberTag = 1 << 20

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core deterministic encoding: same value, same bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// Entry data only ever has string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cache: CBOR decoder initialization failed: " + err.Error())
	}
}

// Disk is a CacheBackend storing one CBOR-encoded, optionally compressed
// file per key. It survives process restarts. Unreadable files are
// reported as misses.
type Disk struct {
	Dir         string
	Compression Compression
	logger      *slog.Logger
}

// NewDisk creates a disk backend rooted at dir, creating it if needed.
func NewDisk(dir string, compression Compression, logger *slog.Logger) (*Disk, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Disk{Dir: dir, Compression: compression, logger: logger}, nil
}

func (d *Disk) path(key string) string {
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			sum := blake3.Sum256([]byte(key))
			key = hex.EncodeToString(sum[:])
			break
		}
	}
	return filepath.Join(d.Dir, key+".cbor")
}

func (d *Disk) Has(key string) bool {
	_, err := os.Stat(d.path(key))
	return err == nil
}

func (d *Disk) Contains(key string) bool { return d.Has(key) }

func (d *Disk) Get(key string) (any, bool) {
	raw, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, false
	}
	v, err := decodeValue(raw)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("discarding unreadable cache file", "key", key, "error", err)
		}
		return nil, false
	}
	return v, true
}

func (d *Disk) Fetch(key string) (any, bool) { return d.Get(key) }

func (d *Disk) Set(key string, value any) error {
	raw, err := encodeValue(value, d.Compression)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(d.path(key), raw, 0644)
}

func (d *Disk) Save(key string, value any) error { return d.Set(key, value) }

func encodeValue(value any, c Compression) ([]byte, error) {
	payload, err := encMode.Marshal(toWire(value))
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	body, applied, err := compress(payload, c)
	if err != nil {
		return nil, err
	}
	out := make([]byte, headerSize, headerSize+len(body))
	out[0] = byte(applied)
	binary.BigEndian.PutUint32(out[1:headerSize], uint32(len(payload)))
	return append(out, body...), nil
}

func decodeValue(raw []byte) (any, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("cache file truncated (%d bytes)", len(raw))
	}
	size := int(binary.BigEndian.Uint32(raw[1:headerSize]))
	payload, err := decompress(raw[headerSize:], Compression(raw[0]), size)
	if err != nil {
		return nil, err
	}
	var v any
	if err := decMode.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("cbor decode: %w", err)
	}
	return fromWire(v), nil
}

// toWire tags json.Number values so fromWire can restore them.
func toWire(v any) any {
	switch t := v.(type) {
	case core.Data:
		return toWire(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toWire(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toWire(e)
		}
		return out
	case json.Number:
		return cbor.Tag{Number: numberTag, Content: string(t)}
	default:
		return v
	}
}

// fromWire brings decoded CBOR back to the types the YAML codec
// produces: integers that fit become int and tagged numbers become
// json.Number.
func fromWire(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = fromWire(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fromWire(e)
		}
		return t
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return t
	case int64:
		if t >= math.MinInt && t <= math.MaxInt {
			return int(t)
		}
		return t
	case cbor.Tag:
		if s, ok := t.Content.(string); ok && t.Number == numberTag {
			return json.Number(s)
		}
		return t
	default:
		return v
	}
}
