package multiserde

import (
	"errors"
	"reflect"
	"testing"

	"google.golang.org/protobuf/types/dynamicpb"
)

func TestNewDeserializer_FailsFastOnCodecMismatch(t *testing.T) {
	client := NewMockRegistryClient()
	if err := client.RegisterCodec(`orders`, `zstd`); err != nil {
		t.Fatal(err)
	}

	_, err := NewDeserializer(`orders`, FromClient(client))
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf(`need a ConfigurationError, have %v`, err)
	}
}

func TestNewDeserializer_CustomDecoderSatisfiesMismatchCheck(t *testing.T) {
	client := NewMockRegistryClient()
	if err := client.RegisterCodec(`orders`, `xor`); err != nil {
		t.Fatal(err)
	}

	_, err := NewDeserializer(`orders`, FromClient(client), WithWireDecoder(xorCodec{}))
	if err != nil {
		t.Fatal(err)
	}
}

func TestDeserializer_UnknownFormatRejected(t *testing.T) {
	codec := FormatCodecFunc{
		EncodeFunc: func(v interface{}, schema SchemaInfo) ([]byte, error) {
			return []byte(v.(string)), nil
		},
	}

	client := NewMockRegistryClient()
	ser, err := NewSerializer(`orders`, FromClient(client),
		WithAutoCreateGroup(), WithAutoRegisterSchemas(), WithFormatCodec(FormatCustom, codec))
	if err != nil {
		t.Fatal(err)
	}

	// this deserializer has no codec for the Custom format
	des, err := NewDeserializer(`orders`, FromClient(client))
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(WithSchema{
		Schema: SchemaInfo{Name: `com.example.Blob`, Format: FormatCustom},
		Value:  `payload`,
	})
	if err != nil {
		t.Fatal(err)
	}

	var formatErr *UnsupportedFormatError
	if _, err := des.Deserialize(byt); !errors.As(err, &formatErr) {
		t.Fatalf(`need an UnsupportedFormatError, have %v`, err)
	}

	// the failure must not poison the cache entry
	if _, err := des.Deserialize(byt); !errors.As(err, &formatErr) {
		t.Fatalf(`need an UnsupportedFormatError, have %v`, err)
	}
	if calls := client.Calls(`GetEncodingInfo`); calls != 1 {
		t.Errorf(`need 1 registry call, have %d`, calls)
	}
}

func TestDeserializer_ProtobufRoundTrip(t *testing.T) {
	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client)

	msg := protoOrder(t, 42, `a`)
	ws, err := ProtobufOf(msg)
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	v, err := des.Deserialize(byt)
	if err != nil {
		t.Fatal(err)
	}

	out, ok := v.(*dynamicpb.Message)
	if !ok {
		t.Fatalf(`need a *dynamicpb.Message, have %T`, v)
	}

	fields := out.Descriptor().Fields()
	if id := out.Get(fields.ByName(`id`)).Int(); id != 42 {
		t.Errorf(`need id 42, have %d`, id)
	}
	if name := out.Get(fields.ByName(`name`)).String(); name != `a` {
		t.Errorf(`need name [a], have [%s]`, name)
	}
}

func TestDeserializer_JSONRoundTrip(t *testing.T) {
	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client)

	ws := JSONOf(`com.example.Order`, ``, map[string]interface{}{`id`: float64(1), `name`: `a`})

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	v, err := des.Deserialize(byt)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{`id`: float64(1), `name`: `a`}
	if !reflect.DeepEqual(want, v) {
		t.Errorf(`need %v, have %v`, want, v)
	}
}

func TestDeserializer_MixedFormatsOnOneStream(t *testing.T) {
	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client)

	avroWS, err := AvroOf(avroSchemaV1, sampleOrder{Id: 1, Name: `a`})
	if err != nil {
		t.Fatal(err)
	}
	protoWS, err := ProtobufOf(protoOrder(t, 2, `b`))
	if err != nil {
		t.Fatal(err)
	}
	jsonWS := JSONOf(`com.example.Order`, ``, map[string]interface{}{`id`: float64(3)})

	var stream [][]byte
	for _, ws := range []WithSchema{avroWS, protoWS, jsonWS} {
		byt, err := ser.Serialize(ws)
		if err != nil {
			t.Fatal(err)
		}
		stream = append(stream, byt)
	}

	formats := make([]SerializationFormat, 0, len(stream))
	for _, byt := range stream {
		out, err := des.DeserializeWithSchema(byt)
		if err != nil {
			t.Fatal(err)
		}
		formats = append(formats, out.Schema.Format)
	}

	want := []SerializationFormat{FormatAvro, FormatProtobuf, FormatJson}
	if !reflect.DeepEqual(want, formats) {
		t.Errorf(`need %v, have %v`, want, formats)
	}
}

func TestDeserializer_Transform(t *testing.T) {
	transform := func(format SerializationFormat, v interface{}) (interface{}, error) {
		m := v.(map[string]interface{})
		return sampleOrder{Id: m[`id`].(int64), Name: m[`name`].(string)}, nil
	}

	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client, WithTransform(transform))

	ws, err := AvroOf(avroSchemaV1, sampleOrder{Id: 1, Name: `a`})
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	v, err := des.Deserialize(byt)
	if err != nil {
		t.Fatal(err)
	}

	want := sampleOrder{Id: 1, Name: `a`}
	if !reflect.DeepEqual(want, v) {
		t.Errorf(`need %v, have %v`, want, v)
	}
}

func TestDeserializer_WithSchemaCarriesWriterSchema(t *testing.T) {
	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client)

	ws, err := AvroOf(avroSchemaV1, sampleOrder{Id: 1, Name: `a`})
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	out, err := des.DeserializeWithSchema(byt)
	if err != nil {
		t.Fatal(err)
	}

	if out.Schema.Name != `com.example.Order` || out.Schema.Format != FormatAvro {
		t.Errorf(`need writer schema [com.example.Order/Avro], have [%s/%s]`,
			out.Schema.Name, out.Schema.Format)
	}
}

func TestDeserializer_ReaderSchema(t *testing.T) {
	client := NewMockRegistryClient()
	ser, _ := setupSerde(t, client)

	reader := SchemaInfo{Name: `com.example.Order`, Format: FormatAvro, SchemaData: []byte(avroSchemaV2)}
	des, err := NewDeserializer(`orders`, FromClient(client), WithReaderSchema(reader))
	if err != nil {
		t.Fatal(err)
	}

	ws, err := AvroOf(avroSchemaV1, sampleOrder{Id: 1, Name: `a`})
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	v, err := des.Deserialize(byt)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{`id`: int64(1), `name`: `a`, `note`: ``}
	if !reflect.DeepEqual(want, v) {
		t.Errorf(`need %v, have %v`, want, v)
	}
}

func TestDeserializer_BuiltinDecodeOverride(t *testing.T) {
	override := FormatCodecFunc{
		DecodeFunc: func(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error) {
			return `overridden`, nil
		},
	}

	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client, WithFormatCodec(FormatAvro, override))

	ws, err := AvroOf(avroSchemaV1, sampleOrder{Id: 1, Name: `a`})
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	v, err := des.Deserialize(byt)
	if err != nil {
		t.Fatal(err)
	}

	if v != `overridden` {
		t.Errorf(`need [overridden], have [%v]`, v)
	}
}

func TestDeserializer_RegistryFailureIsPerEvent(t *testing.T) {
	client := NewMockRegistryClient()
	ser, des := setupSerde(t, client)

	ws, err := AvroOf(avroSchemaV1, sampleOrder{Id: 1, Name: `a`})
	if err != nil {
		t.Fatal(err)
	}

	byt, err := ser.Serialize(ws)
	if err != nil {
		t.Fatal(err)
	}

	client.Fail(&RegistryError{Op: `GetEncodingInfo`, Err: errors.New(`registry down`)})
	if _, err := des.Deserialize(byt); err == nil {
		t.Fatal(`need a deserialization failure while the registry is down`)
	}

	// the dispatcher itself survives; the same event decodes once the
	// registry recovers
	client.Fail(nil)
	if _, err := des.Deserialize(byt); err != nil {
		t.Fatal(err)
	}
}
