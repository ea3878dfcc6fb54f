// Package wire serializes constant pools of luna values to CBOR.
//
// A pool is the list of constants a compiled chunk refers to. Scalars map to
// native CBOR items, strings to byte strings (so non-UTF-8 content survives)
// and tables to a private tag wrapping [array, [[key, value]...]]. Integers
// and floats stay distinct on the wire, so 1 and 1.0 round-trip unchanged.
//
// Table identity is not preserved: a table reachable twice is written twice
// and decodes as two tables. Tables that contain themselves are rejected, as
// are native functions.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"

	"github.com/chazu/luna/vm"
)

func log() commonlog.Logger { return commonlog.GetLogger("luna.wire") }

// TagTable is the CBOR tag number wrapping an encoded table.
const TagTable = 40400

// PoolVersion is written into every pool and checked on decode.
const PoolVersion = 1

// Defaults for Options.
const (
	DefaultMaxDepth = 64
	DefaultMaxItems = 1 << 20
)

var (
	ErrUnencodable = errors.New("wire: value cannot be encoded")
	ErrCycle       = errors.New("wire: table contains itself")
	ErrTooDeep     = errors.New("wire: nesting too deep")
	ErrTooLarge    = errors.New("wire: too many values")
	ErrMalformed   = errors.New("wire: malformed pool")
)

// Options bounds what a Codec accepts. Zero fields take the defaults.
type Options struct {
	MaxDepth int // table nesting limit
	MaxItems int // total values per pool, nested ones included
}

type pool struct {
	Version uint64 `cbor:"1,keyasint"`
	Values  []any  `cbor:"2,keyasint"`
}

// cborEncMode uses canonical mode for deterministic output. Table pairs
// are an array, so encodeTable sorts them itself.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Codec encodes and decodes pools under a set of Options.
type Codec struct {
	opts Options
	dec  cbor.DecMode
}

// New creates a Codec.
func New(opts Options) (*Codec, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	// Each table level costs four CBOR levels: tag, [array, pairs], pairs
	// array, pair.
	levels := opts.MaxDepth*4 + 4
	if levels > 65535 {
		levels = 65535
	}
	items := opts.MaxItems
	if items < 16 {
		items = 16
	}
	dm, err := cbor.DecOptions{
		MaxNestedLevels:  levels,
		MaxArrayElements: items,
		MaxMapPairs:      16,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("wire: decoder options: %w", err)
	}
	return &Codec{opts: opts, dec: dm}, nil
}

var defaultCodec = func() *Codec {
	c, err := New(Options{})
	if err != nil {
		panic(err)
	}
	return c
}()

// Marshal encodes values with the default Codec.
func Marshal(values []vm.Value) ([]byte, error) {
	return defaultCodec.Marshal(values)
}

// Unmarshal decodes a pool with the default Codec.
func Unmarshal(data []byte) ([]vm.Value, error) {
	return defaultCodec.Unmarshal(data)
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// keyedPair is a hash part entry with the canonical encoding of its key.
type keyedPair struct {
	key, val any
	raw      []byte
}

type encoder struct {
	opts   Options
	active map[*vm.Table]bool
	items  int
}

// Marshal encodes values as a CBOR pool.
func (c *Codec) Marshal(values []vm.Value) ([]byte, error) {
	e := &encoder{opts: c.opts, active: make(map[*vm.Table]bool)}
	p := pool{Version: PoolVersion, Values: make([]any, len(values))}
	for i, v := range values {
		item, err := e.encode(v, 0)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		p.Values[i] = item
	}
	data, err := cborEncMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal pool: %w", err)
	}
	log().Debugf("encoded %d constants (%d values, %d bytes)", len(values), e.items, len(data))
	return data, nil
}

func (e *encoder) encode(v vm.Value, depth int) (any, error) {
	e.items++
	if e.items > e.opts.MaxItems {
		return nil, ErrTooLarge
	}
	switch v.Kind() {
	case vm.KindNil:
		return nil, nil
	case vm.KindBoolean:
		return v.Bool(), nil
	case vm.KindInteger:
		return v.Int(), nil
	case vm.KindFloat:
		return v.Float64(), nil
	case vm.KindShortString, vm.KindMidString, vm.KindLongString:
		return v.Bytes(), nil
	case vm.KindTable:
		return e.encodeTable(v.Table(), depth+1)
	}
	return nil, fmt.Errorf("%s: %w", v.Kind(), ErrUnencodable)
}

func (e *encoder) encodeTable(t *vm.Table, depth int) (any, error) {
	if depth > e.opts.MaxDepth {
		return nil, ErrTooDeep
	}
	if e.active[t] {
		return nil, ErrCycle
	}
	e.active[t] = true
	defer delete(e.active, t)

	arr := t.Array()
	encArr := make([]any, len(arr))
	for i, item := range arr {
		enc, err := e.encode(item, depth)
		if err != nil {
			return nil, err
		}
		encArr[i] = enc
	}

	var (
		pairs []keyedPair
		err   error
	)
	t.Range(func(k, v vm.Value) bool {
		if n, ok := k.AsInt(); ok && n >= 1 && n <= int64(len(arr)) {
			return true
		}
		var p keyedPair
		if p.key, err = e.encode(k, depth); err != nil {
			return false
		}
		if p.val, err = e.encode(v, depth); err != nil {
			return false
		}
		if p.raw, err = cborEncMode.Marshal(p.key); err != nil {
			err = fmt.Errorf("wire: marshal key: %w", err)
			return false
		}
		pairs = append(pairs, p)
		return true
	})
	if err != nil {
		return nil, err
	}

	// Hash part order is random; sort by encoded key so output is stable.
	slices.SortFunc(pairs, func(a, b keyedPair) int {
		return bytes.Compare(a.raw, b.raw)
	})
	encPairs := make([]any, len(pairs))
	for i, p := range pairs {
		encPairs[i] = []any{p.key, p.val}
	}
	return cbor.Tag{Number: TagTable, Content: []any{encArr, encPairs}}, nil
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

type decoder struct {
	opts  Options
	items int
}

// Unmarshal decodes a CBOR pool. Strings are rebuilt through the size-class
// codec, so every decoded string has the class its length calls for.
func (c *Codec) Unmarshal(data []byte) ([]vm.Value, error) {
	var p pool
	if err := c.dec.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("wire: unmarshal pool: %w", err)
	}
	if p.Version != PoolVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrMalformed, p.Version, PoolVersion)
	}
	d := &decoder{opts: c.opts}
	out := make([]vm.Value, len(p.Values))
	for i, item := range p.Values {
		v, err := d.decode(item, 0)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		out[i] = v
	}
	log().Debugf("decoded %d constants (%d values)", len(out), d.items)
	return out, nil
}

func (d *decoder) decode(item any, depth int) (vm.Value, error) {
	d.items++
	if d.items > d.opts.MaxItems {
		return vm.Nil, ErrTooLarge
	}
	switch x := item.(type) {
	case nil:
		return vm.Nil, nil
	case bool:
		return vm.FromBool(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return vm.Nil, fmt.Errorf("%w: integer %d out of range", ErrMalformed, x)
		}
		return vm.FromInt(int64(x)), nil
	case int64:
		return vm.FromInt(x), nil
	case float64:
		return vm.FromFloat(x), nil
	case []byte:
		return vm.FromBytes(x), nil
	case string:
		return vm.FromString(x), nil
	case cbor.Tag:
		if x.Number != TagTable {
			return vm.Nil, fmt.Errorf("%w: unexpected tag %d", ErrMalformed, x.Number)
		}
		return d.decodeTable(x.Content, depth+1)
	}
	return vm.Nil, fmt.Errorf("%w: unexpected item %T", ErrMalformed, item)
}

func (d *decoder) decodeTable(content any, depth int) (vm.Value, error) {
	if depth > d.opts.MaxDepth {
		return vm.Nil, ErrTooDeep
	}
	parts, ok := content.([]any)
	if !ok || len(parts) != 2 {
		return vm.Nil, fmt.Errorf("%w: table body", ErrMalformed)
	}
	arr, ok1 := parts[0].([]any)
	pairs, ok2 := parts[1].([]any)
	if !ok1 || !ok2 {
		return vm.Nil, fmt.Errorf("%w: table parts", ErrMalformed)
	}

	t := vm.NewTable(len(arr), len(pairs))
	for i, item := range arr {
		v, err := d.decode(item, depth)
		if err != nil {
			return vm.Nil, err
		}
		t.SetInt(int64(i+1), v)
	}
	for _, p := range pairs {
		kv, ok := p.([]any)
		if !ok || len(kv) != 2 {
			return vm.Nil, fmt.Errorf("%w: table pair", ErrMalformed)
		}
		k, err := d.decode(kv[0], depth)
		if err != nil {
			return vm.Nil, err
		}
		v, err := d.decode(kv[1], depth)
		if err != nil {
			return vm.Nil, err
		}
		if err := t.Set(k, v); err != nil {
			return vm.Nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	return vm.FromTable(t), nil
}
