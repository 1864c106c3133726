// Package mpack implements the MessagePack binary interchange format: a
// schema-less, self-describing, compact encoding that maps between typed
// in-memory values and a byte stream.
//
// # API Layers
//
// The library is organised in three tightly coupled layers plus a bridge:
//
//   - Primitive codec functions: the pack and unpack packages encode and
//     decode single typed elements over io.Writer / io.Reader.
//   - Stream handles: pack.Packer and unpack.Unpacker wrap a writer or
//     reader and expose the full suite as methods; the feed-mode Unpacker
//     additionally accepts encoded fragments via Write and replays complete
//     values through a restartable iterator.
//   - Value trees: the value package models any MessagePack document as a
//     tagged sum; unpack builds owned or borrowed trees and pack emits them
//     bit-identically, including string payloads with invalid UTF-8.
//   - Data-model bridge: the codec package maps native Go values onto the
//     format with reflection.
//
// # Basic Usage
//
// Encoding and decoding Go values:
//
//	import "github.com/arloliu/mpack"
//
//	type Point struct {
//	    X int `msgpack:"x"`
//	    Y int `msgpack:"y"`
//	}
//
//	data, _ := mpack.Marshal(Point{X: 1, Y: 2})
//
//	var p Point
//	_ = mpack.Unmarshal(data, &p)
//
// Working with dynamic value trees:
//
//	val, _ := mpack.Unpack(data)          // owned tree
//	ref, _ := mpack.UnpackRef(data)       // borrowed tree, zero-copy payloads
//	data2, _ := mpack.Pack(val)           // back to bytes
//
// Streaming arbitrary fragments:
//
//	u := unpack.NewFeedUnpacker()
//	u.Write(firstHalf)
//	u.Write(secondHalf)
//	for v := range u.Values() {
//	    ...
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the pack,
// unpack and codec packages, simplifying the most common use cases. For
// fine-grained control, use those packages directly.
package mpack

import (
	"bytes"

	"github.com/arloliu/mpack/codec"
	"github.com/arloliu/mpack/internal/hash"
	"github.com/arloliu/mpack/pack"
	"github.com/arloliu/mpack/unpack"
	"github.com/arloliu/mpack/value"
)

// Pack encodes a value tree into a fresh byte slice.
func Pack(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := pack.PackValue(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unpack decodes one complete value into an owned tree.
func Unpack(data []byte) (value.Value, error) {
	return unpack.UnpackValue(unpack.NewSliceReader(data))
}

// UnpackRef decodes one complete value into a borrowed tree whose byte
// payloads alias data. The tree is valid only while data is.
func UnpackRef(data []byte) (value.RefValue, error) {
	return unpack.UnpackValueRef(unpack.NewSliceReader(data))
}

// Marshal encodes a Go value through the data-model bridge.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal decodes data into a Go value through the data-model bridge.
// v must be a non-nil pointer.
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// Fingerprint returns the xxHash64 digest of an encoded message. Because
// the value encoders always choose a canonical narrowest form, equal trees
// produce equal fingerprints, which makes the digest a cheap content key
// for caching or deduplicating encoded payloads.
func Fingerprint(encoded []byte) uint64 {
	return hash.Digest(encoded)
}
