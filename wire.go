/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/golang/snappy"
)

// Wire codec names as registered with the registry
const (
	CodecNone   = `none`
	CodecGzip   = `gzip`
	CodecSnappy = `snappy`
)

// WireCodec is the wire level transform (eg compression) applied to format
// encoded payload bytes, distinct from the per-format codec. The name is what
// gets registered with the group and resolved back from an encoding id.
type WireCodec interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

type noneCodec struct{}

func (noneCodec) Name() string                       { return CodecNone }
func (noneCodec) Encode(data []byte) ([]byte, error) { return data, nil }
func (noneCodec) Decode(data []byte) ([]byte, error) { return data, nil }

type gzipCodec struct{}

func (gzipCodec) Name() string { return CodecGzip }

func (gzipCodec) Encode(data []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := gzip.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, &WireCodecError{Codec: CodecGzip, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &WireCodecError{Codec: CodecGzip, Err: err}
	}

	return buf.Bytes(), nil
}

func (gzipCodec) Decode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &WireCodecError{Codec: CodecGzip, Err: err}
	}
	defer r.Close()

	byt, err := io.ReadAll(r)
	if err != nil {
		return nil, &WireCodecError{Codec: CodecGzip, Err: err}
	}

	return byt, nil
}

type snappyCodec struct{}

func (snappyCodec) Name() string { return CodecSnappy }

func (snappyCodec) Encode(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Decode(data []byte) ([]byte, error) {
	byt, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, &WireCodecError{Codec: CodecSnappy, Err: err}
	}

	return byt, nil
}

// WireCodecByName returns the built-in wire codec registered under name
func WireCodecByName(name string) (WireCodec, bool) {
	switch name {
	case CodecNone:
		return noneCodec{}, true
	case CodecGzip:
		return gzipCodec{}, true
	case CodecSnappy:
		return snappyCodec{}, true
	}

	return nil, false
}

// builtinDecoders is the decoder set a deserializer starts from; caller
// supplied decoders are layered on top by the constructor.
func builtinDecoders() map[string]WireCodec {
	return map[string]WireCodec{
		CodecNone:   noneCodec{},
		CodecGzip:   gzipCodec{},
		CodecSnappy: snappyCodec{},
	}
}
