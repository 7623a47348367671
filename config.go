/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"github.com/tryfix/log"
)

// RegistrySource is where a dispatcher gets its registry client from: either
// an already built client or a connection config the default HTTP client is
// built from. Exactly one variant exists per config, enforced by construction.
type RegistrySource interface {
	registryClient() (RegistryClient, error)
}

type clientSource struct {
	client RegistryClient
}

func (s clientSource) registryClient() (RegistryClient, error) {
	if s.client == nil {
		return nil, &ConfigurationError{Reason: `registry source built from a nil client`}
	}
	return s.client, nil
}

// FromClient sources the dispatcher's registry access from an injected client
func FromClient(client RegistryClient) RegistrySource {
	return clientSource{client: client}
}

type connectionSource struct {
	conn Connection
}

func (s connectionSource) registryClient() (RegistryClient, error) {
	if s.conn.BaseURL == `` {
		return nil, &ConfigurationError{Reason: `registry connection requires a base url`}
	}
	return NewHTTPRegistryClient(s.conn), nil
}

// FromConnection sources the dispatcher's registry access from endpoint
// config, building the default HTTP client.
func FromConnection(conn Connection) RegistrySource {
	return connectionSource{conn: conn}
}

// TransformFunc converts a format-native decoded object into the caller's
// target type. Applied by the deserializer when configured.
type TransformFunc func(format SerializationFormat, v interface{}) (interface{}, error)

type config struct {
	wireCodec    WireCodec
	autoCreate   bool
	autoRegister bool
	decoders     map[string]WireCodec
	formatCodecs map[SerializationFormat]FormatCodec
	transform    TransformFunc
	readerSchema *SchemaInfo
	logger       log.Logger
}

// Option is a type to host serializer/deserializer configurations
type Option func(*config)

// WithLogger returns a configuration to construct a dispatcher with the given
// logger. Defaults to a noop logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithWireCodec sets the wire level codec applied to outgoing payloads after
// format encoding. Defaults to `none`.
func WithWireCodec(codec WireCodec) Option {
	return func(c *config) {
		c.wireCodec = codec
	}
}

// WithAutoCreateGroup makes construction ensure the group exists in the
// registry before any event is processed.
func WithAutoCreateGroup() Option {
	return func(c *config) {
		c.autoCreate = true
	}
}

// WithAutoRegisterSchemas makes the serializer register previously unseen
// schemas with the group on first use.
func WithAutoRegisterSchemas() Option {
	return func(c *config) {
		c.autoRegister = true
	}
}

// WithWireDecoder adds a wire codec to the deserializer's decoder set, either
// a custom codec or a replacement for a built-in.
func WithWireDecoder(codec WireCodec) Option {
	return func(c *config) {
		if c.decoders == nil {
			c.decoders = map[string]WireCodec{}
		}
		c.decoders[codec.Name()] = codec
	}
}

// WithFormatCodec supplies a per-format codec: required for FormatCustom, and
// on the deserializer it may also override a built-in format's decoding.
func WithFormatCodec(format SerializationFormat, codec FormatCodec) Option {
	return func(c *config) {
		if c.formatCodecs == nil {
			c.formatCodecs = map[SerializationFormat]FormatCodec{}
		}
		c.formatCodecs[format] = codec
	}
}

// WithTransform sets the function applied to every decoded object before it
// is returned to the caller.
func WithTransform(fn TransformFunc) Option {
	return func(c *config) {
		c.transform = fn
	}
}

// WithReaderSchema makes the deserializer decode into the given schema
// instead of the writer schema recorded in the registry.
func WithReaderSchema(schema SchemaInfo) Option {
	return func(c *config) {
		c.readerSchema = &schema
	}
}

func newConfig(opts ...Option) *config {
	c := &config{
		wireCodec: noneCodec{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = log.NewNoopLogger()
	}

	return c
}
