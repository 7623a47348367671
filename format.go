/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

// SerializationFormat identifies the per-format encoding of an event payload
type SerializationFormat int

const (
	// FormatAvro payloads are avro binary encoded
	FormatAvro SerializationFormat = iota
	// FormatProtobuf payloads are protobuf wire encoded
	FormatProtobuf
	// FormatJson payloads are json encoded
	FormatJson
	// FormatCustom payloads use a caller supplied codec
	FormatCustom
)

// String returns the registry name of the format
func (f SerializationFormat) String() string {
	switch f {
	case FormatAvro:
		return `Avro`
	case FormatProtobuf:
		return `Protobuf`
	case FormatJson:
		return `Json`
	case FormatCustom:
		return `Custom`
	}

	return `Unknown`
}

// FormatCodec is the per-format encode/decode capability. Built-in codecs
// exist for avro, protobuf and json; a Custom format requires the caller to
// supply one via WithFormatCodec.
//
// Decode receives the schema the payload was written with and, when the
// deserializer was configured with a reader schema, the schema to read into.
type FormatCodec interface {
	Encode(v interface{}, schema SchemaInfo) ([]byte, error)
	Decode(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error)
}

// FormatCodecFunc adapts a pair of functions into a FormatCodec. Useful when
// only one direction is needed, eg a decode override on the deserializer.
type FormatCodecFunc struct {
	EncodeFunc func(v interface{}, schema SchemaInfo) ([]byte, error)
	DecodeFunc func(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error)
}

func (f FormatCodecFunc) Encode(v interface{}, schema SchemaInfo) ([]byte, error) {
	if f.EncodeFunc == nil {
		return nil, &UnsupportedFormatError{Format: FormatCustom, Op: `encode`}
	}
	return f.EncodeFunc(v, schema)
}

func (f FormatCodecFunc) Decode(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error) {
	if f.DecodeFunc == nil {
		return nil, &UnsupportedFormatError{Format: FormatCustom, Op: `decode`}
	}
	return f.DecodeFunc(data, writer, reader)
}

// builtinCodecs returns the codec map every dispatcher starts from. Overrides
// and custom formats are layered on top by the constructors.
func builtinCodecs() map[SerializationFormat]FormatCodec {
	return map[SerializationFormat]FormatCodec{
		FormatAvro:     &avroCodec{},
		FormatProtobuf: &protobufCodec{},
		FormatJson:     &jsonCodec{},
	}
}
