/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"fmt"
	"sync"

	"github.com/tryfix/log"
)

// Serializer encodes values whose format is not fixed in advance: each call
// dispatches on the schema paired with the value. Safe for concurrent use.
type Serializer struct {
	groupID string
	client  RegistryClient
	conf    *config
	logger  log.Logger

	bound sync.Map // schema identity -> *boundSerializer
}

// NewSerializer builds a serializer for the group, running the startup
// preconditions (ensure group, register wire codec) before returning. A
// broken registry source or a failed precondition fails construction.
func NewSerializer(groupID string, source RegistrySource, opts ...Option) (*Serializer, error) {
	if source == nil {
		return nil, &ConfigurationError{Reason: `a registry source is required`}
	}

	client, err := source.registryClient()
	if err != nil {
		return nil, err
	}

	conf := newConfig(opts...)
	if err := autoCreateGroup(client, groupID, conf); err != nil {
		return nil, err
	}
	if err := registerCodec(client, groupID, conf.wireCodec, conf.logger); err != nil {
		return nil, err
	}

	return &Serializer{
		groupID: groupID,
		client:  client,
		conf:    conf,
		logger:  conf.logger,
	}, nil
}

// Serialize encodes the value under its paired schema and returns the
// envelope bytes: encoding id header followed by the wire-codec'd payload.
func (s *Serializer) Serialize(ws WithSchema) ([]byte, error) {
	b, err := s.boundFor(ws.Schema)
	if err != nil {
		return nil, err
	}

	return b.serialize(ws.Value)
}

// boundFor returns the serializer bound to the schema, constructing it on
// first sight. Racing constructions for the same schema may each talk to the
// registry (idempotent), but only one instance is ever published; losers are
// discarded. A failed construction is not cached, so the next call retries.
func (s *Serializer) boundFor(schema SchemaInfo) (*boundSerializer, error) {
	key := schema.key()
	if v, ok := s.bound.Load(key); ok {
		return v.(*boundSerializer), nil
	}

	codec, err := s.codecFor(schema.Format)
	if err != nil {
		return nil, err
	}

	if s.conf.autoRegister {
		version, err := s.client.RegisterSchemaIfAbsent(s.groupID, schema)
		if err != nil {
			return nil, err
		}
		s.logger.Debug(fmt.Sprintf(`schema [%s] registered as version [%d] in group [%s]`,
			schema.Name, version.Version, s.groupID))
	}

	id, err := s.client.ResolveEncodingId(s.groupID, schema, s.conf.wireCodec.Name())
	if err != nil {
		return nil, err
	}

	b := &boundSerializer{
		schema: schema,
		codec:  codec,
		wire:   s.conf.wireCodec,
		id:     id,
	}

	actual, loaded := s.bound.LoadOrStore(key, b)
	if !loaded {
		s.logger.Info(fmt.Sprintf(`serializer bound for schema [%s] format [%s] encoding [%d]`,
			schema.Name, schema.Format, id))
	}

	return actual.(*boundSerializer), nil
}

// codecFor selects the per-format codec for the serialize path. Built-ins
// cover avro, protobuf and json; a Custom format must come with a caller
// supplied codec or selection fails before any registry call is made.
func (s *Serializer) codecFor(format SerializationFormat) (FormatCodec, error) {
	if format == FormatCustom {
		codec, ok := s.conf.formatCodecs[FormatCustom]
		if !ok {
			return nil, &ConfigurationError{Reason: `format [Custom] declared but no codec supplied`}
		}
		return codec, nil
	}

	codec, ok := builtinCodecs()[format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format, Op: `serialize`}
	}

	return codec, nil
}

// boundSerializer is a serializer fixed to one (schema, wire codec, encoding
// id) binding. Immutable after construction.
type boundSerializer struct {
	schema SchemaInfo
	codec  FormatCodec
	wire   WireCodec
	id     EncodingId
}

func (b *boundSerializer) serialize(v interface{}) ([]byte, error) {
	byt, err := b.codec.Encode(v, b.schema)
	if err != nil {
		return nil, err
	}

	payload, err := b.wire.Encode(byt)
	if err != nil {
		return nil, err
	}

	return encodeHeader(b.id, payload), nil
}
