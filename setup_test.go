package multiserde

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const avroSchemaV1 = `{
	"type": "record",
	"name": "Order",
	"namespace": "com.example",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"}
	]
}`

const avroSchemaV2 = `{
	"type": "record",
	"name": "Order",
	"namespace": "com.example",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "note", "type": "string", "default": ""}
	]
}`

type sampleOrder struct {
	Id   int64  `avro:"id"`
	Name string `avro:"name"`
}

func setupSerde(t *testing.T, client *MockRegistryClient, opts ...Option) (*Serializer, *Deserializer) {
	t.Helper()

	serOpts := append([]Option{WithAutoCreateGroup(), WithAutoRegisterSchemas()}, opts...)
	ser, err := NewSerializer(`orders`, FromClient(client), serOpts...)
	if err != nil {
		t.Fatal(err)
	}

	des, err := NewDeserializer(`orders`, FromClient(client), opts...)
	if err != nil {
		t.Fatal(err)
	}

	return ser, des
}

// protoOrder builds a dynamic Order message without generated code so the
// tests need no protoc step.
func protoOrder(t *testing.T, id int64, name string) *dynamicpb.Message {
	t.Helper()

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(`order.proto`),
		Package: proto.String(`com.example`),
		Syntax:  proto.String(`proto3`),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String(`Order`),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:     proto.String(`id`),
					Number:   proto.Int32(1),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum(),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					JsonName: proto.String(`id`),
				},
				{
					Name:     proto.String(`name`),
					Number:   proto.Int32(2),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					JsonName: proto.String(`name`),
				},
			},
		}},
	}

	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		t.Fatal(err)
	}

	md := fd.Messages().Get(0)
	msg := dynamicpb.NewMessage(md)
	msg.Set(md.Fields().ByName(`id`), protoreflect.ValueOfInt64(id))
	msg.Set(md.Fields().ByName(`name`), protoreflect.ValueOfString(name))

	return msg
}
