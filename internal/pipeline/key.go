package pipeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrKey is returned when a cache key cannot be derived from an argument.
var ErrKey = errors.New("pipeline: cannot derive cache key")

// maxKeyDepth bounds recursion so cyclic values fail instead of overflowing.
const maxKeyDepth = 64

// KeyFunc derives a cache key from a call argument.
type KeyFunc[A any] func(arg A) (string, error)

// JoinKey stringifies each positional argument and joins them with commas.
//
// Distinct arguments with the same string form share a key: the string "x" and
// a fmt.Stringer printing "x" collide. Use it only for primitive arguments.
func JoinKey(args []any) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, ","), nil
}

// HashKey derives a structural key: an xxhash over a canonical encoding of the
// argument's dynamic types and contents, unexported struct fields included.
// Values that only print alike get different keys. Maps are encoded in sorted
// key order; pointers are followed, so two pointers to equal values share a key.
// Functions, channels and unsafe pointers have no key.
func HashKey[A any](arg A) (string, error) {
	var e keyEncoder
	if err := e.encode(reflect.ValueOf(&arg).Elem(), 0); err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(e.buf.Bytes()), 16), nil
}

type keyEncoder struct {
	buf bytes.Buffer
}

func (e *keyEncoder) putUint(n uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	e.buf.Write(b[:])
}

// str writes s length-prefixed so adjacent strings cannot run together.
func (e *keyEncoder) str(s string) {
	e.putUint(uint64(len(s)))
	e.buf.WriteString(s)
}

func (e *keyEncoder) encode(v reflect.Value, depth int) error {
	if depth > maxKeyDepth {
		return fmt.Errorf("%w: value nested deeper than %d", ErrKey, maxKeyDepth)
	}
	if !v.IsValid() {
		e.str("nil")
		return nil
	}
	e.str(v.Type().String())

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			e.putUint(1)
		} else {
			e.putUint(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.putUint(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.putUint(v.Uint())
	case reflect.Float32, reflect.Float64:
		e.putUint(math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		e.putUint(math.Float64bits(real(c)))
		e.putUint(math.Float64bits(imag(c)))
	case reflect.String:
		e.str(v.String())
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			e.str("nil")
			return nil
		}
		return e.encode(v.Elem(), depth+1)
	case reflect.Slice:
		if v.IsNil() {
			e.str("nil")
			return nil
		}
		fallthrough
	case reflect.Array:
		e.putUint(uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			if err := e.encode(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Struct:
		e.putUint(uint64(v.NumField()))
		for i := 0; i < v.NumField(); i++ {
			e.str(v.Type().Field(i).Name)
			if err := e.encode(v.Field(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		return e.encodeMap(v, depth)
	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrKey, v.Kind())
	}
	return nil
}

func (e *keyEncoder) encodeMap(v reflect.Value, depth int) error {
	if v.IsNil() {
		e.str("nil")
		return nil
	}
	type entry struct{ key, val []byte }
	entries := make([]entry, 0, v.Len())
	it := v.MapRange()
	for it.Next() {
		var k, val keyEncoder
		if err := k.encode(it.Key(), depth+1); err != nil {
			return err
		}
		if err := val.encode(it.Value(), depth+1); err != nil {
			return err
		}
		entries = append(entries, entry{k.buf.Bytes(), val.buf.Bytes()})
	}
	sort.Slice(entries, func(a, b int) bool { return bytes.Compare(entries[a].key, entries[b].key) < 0 })

	e.putUint(uint64(len(entries)))
	for _, en := range entries {
		e.buf.Write(en.key)
		e.buf.Write(en.val)
	}
	return nil
}
