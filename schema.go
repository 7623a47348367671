/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"crypto/sha256"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/tryfix/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// SchemaInfo identifies a schema within a group. Immutable once obtained;
// together with a wire codec name it is what an encoding id binds to.
type SchemaInfo struct {
	Name       string              `json:"name"`
	Format     SerializationFormat `json:"format"`
	SchemaData []byte              `json:"schemaData"`
	Properties map[string]string   `json:"properties"`
}

// key derives the identity the per-schema serializer cache is keyed by.
// Two SchemaInfo values with the same format, name and schema bytes share a
// bound serializer.
func (s SchemaInfo) key() string {
	return fmt.Sprintf(`%d:%s:%x`, s.Format, s.Name, sha256.Sum256(s.SchemaData))
}

// VersionInfo is the registry's receipt for a registered schema version
type VersionInfo struct {
	SchemaName string `json:"schemaName"`
	Version    int    `json:"version"`
	Id         int    `json:"id"`
}

// WithSchema pairs a value with the schema describing it. The serializer
// consumes these, and the deserializer returns them when the caller needs the
// writer schema alongside the decoded value.
type WithSchema struct {
	Schema SchemaInfo
	Value  interface{}
}

// AvroOf pairs v with an avro schema. The schema json is parsed eagerly so a
// malformed schema fails here rather than inside a serialize call.
func AvroOf(schemaJSON string, v interface{}) (WithSchema, error) {
	schema, err := avro.Parse(schemaJSON)
	if err != nil {
		return WithSchema{}, errors.WithPrevious(err, `avro schema parse failed`)
	}

	var name string
	if named, ok := schema.(avro.NamedSchema); ok {
		name = named.FullName()
	}

	return WithSchema{
		Schema: SchemaInfo{
			Name:       name,
			Format:     FormatAvro,
			SchemaData: []byte(schemaJSON),
		},
		Value: v,
	}, nil
}

// ProtobufOf pairs m with a schema carrying the serialized FileDescriptorSet
// of the message's file and its imports, which is what the generic decode
// path rebuilds the message descriptor from.
func ProtobufOf(m proto.Message) (WithSchema, error) {
	md := m.ProtoReflect().Descriptor()

	fds := &descriptorpb.FileDescriptorSet{}
	collectFileDescriptors(md.ParentFile(), map[string]bool{}, fds)

	byt, err := proto.Marshal(fds)
	if err != nil {
		return WithSchema{}, errors.WithPrevious(err, `descriptor set marshal failed`)
	}

	return WithSchema{
		Schema: SchemaInfo{
			Name:       string(md.FullName()),
			Format:     FormatProtobuf,
			SchemaData: byt,
		},
		Value: m,
	}, nil
}

// JSONOf pairs v with a json schema. Schema bytes are optional for json; the
// name alone identifies the binding within the group.
func JSONOf(name string, schemaJSON string, v interface{}) WithSchema {
	return WithSchema{
		Schema: SchemaInfo{
			Name:       name,
			Format:     FormatJson,
			SchemaData: []byte(schemaJSON),
		},
		Value: v,
	}
}

func collectFileDescriptors(fd protoreflect.FileDescriptor, seen map[string]bool, out *descriptorpb.FileDescriptorSet) {
	if seen[fd.Path()] {
		return
	}
	seen[fd.Path()] = true

	imports := fd.Imports()
	for i := 0; i < imports.Len(); i++ {
		collectFileDescriptors(imports.Get(i).FileDescriptor, seen, out)
	}

	out.File = append(out.File, protodesc.ToFileDescriptorProto(fd))
}
