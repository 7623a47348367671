/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"fmt"

	"github.com/tryfix/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// protobufCodec is the built-in protobuf FormatCodec. Encoding expects a
// proto.Message; decoding rebuilds the message descriptor from the writer
// schema's FileDescriptorSet bytes and yields a *dynamicpb.Message.
type protobufCodec struct{}

func (c *protobufCodec) Encode(v interface{}, schema SchemaInfo) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, errors.New(fmt.Sprintf(`protobuf encode expects a proto.Message, got %T`, v))
	}

	byt, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`protobuf marshal failed for [%s]`, schema.Name))
	}

	return byt, nil
}

func (c *protobufCodec) Decode(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error) {
	schema := writer
	if reader != nil {
		schema = *reader
	}

	md, err := messageDescriptor(schema)
	if err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`protobuf unmarshal failed for [%s]`, schema.Name))
	}

	return msg, nil
}

func messageDescriptor(schema SchemaInfo) (protoreflect.MessageDescriptor, error) {
	fds := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(schema.SchemaData, fds); err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`descriptor set unmarshal failed for [%s]`, schema.Name))
	}

	files, err := protodesc.NewFiles(fds)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`descriptor registry build failed for [%s]`, schema.Name))
	}

	desc, err := files.FindDescriptorByName(protoreflect.FullName(schema.Name))
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`message [%s] not found in descriptor set`, schema.Name))
	}

	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, errors.New(fmt.Sprintf(`descriptor [%s] is not a message`, schema.Name))
	}

	return md, nil
}
