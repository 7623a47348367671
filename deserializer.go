/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
)

// Deserializer decodes events written with any of the formats known to it,
// dispatching on the encoding id embedded in each payload. Safe for
// concurrent use.
type Deserializer struct {
	groupID  string
	client   RegistryClient
	cache    *EncodingCache
	codecs   map[SerializationFormat]FormatCodec
	decoders map[string]WireCodec
	conf     *config
	logger   log.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewDeserializer builds a deserializer for the group. Construction runs the
// startup preconditions: the group is ensured (when configured) and the
// group's declared codecs are checked against the local decoder set, failing
// fast on mismatch before any event is accepted.
func NewDeserializer(groupID string, source RegistrySource, opts ...Option) (*Deserializer, error) {
	if source == nil {
		return nil, &ConfigurationError{Reason: `a registry source is required`}
	}

	client, err := source.registryClient()
	if err != nil {
		return nil, err
	}

	conf := newConfig(opts...)

	decoders := builtinDecoders()
	for name, codec := range conf.decoders {
		decoders[name] = codec
	}

	if err := autoCreateGroup(client, groupID, conf); err != nil {
		return nil, err
	}
	if err := failOnCodecMismatch(client, groupID, decoders); err != nil {
		return nil, err
	}

	// built-ins first, then caller supplied codecs: custom formats and
	// overrides of the built-in decode behaviour share one map
	codecs := builtinCodecs()
	for format, codec := range conf.formatCodecs {
		codecs[format] = codec
	}

	return &Deserializer{
		groupID:  groupID,
		client:   client,
		cache:    NewEncodingCache(groupID, client),
		codecs:   codecs,
		decoders: decoders,
		conf:     conf,
		logger:   conf.logger,
		done:     make(chan struct{}),
	}, nil
}

// Deserialize decodes one envelope into its format-native representation: a
// generic map for avro and json, a *dynamicpb.Message for protobuf, whatever
// the supplied codec yields for custom formats. When a transform was
// configured it is applied before returning.
func (d *Deserializer) Deserialize(data []byte) (interface{}, error) {
	format, v, _, err := d.decode(data)
	if err != nil {
		return nil, err
	}

	if d.conf.transform != nil {
		return d.conf.transform(format, v)
	}

	return v, nil
}

// DeserializeWithSchema decodes one envelope and returns the value paired
// with the schema it was written with.
func (d *Deserializer) DeserializeWithSchema(data []byte) (WithSchema, error) {
	format, v, schema, err := d.decode(data)
	if err != nil {
		return WithSchema{}, err
	}

	if d.conf.transform != nil {
		v, err = d.conf.transform(format, v)
		if err != nil {
			return WithSchema{}, err
		}
	}

	return WithSchema{Schema: schema, Value: v}, nil
}

func (d *Deserializer) decode(data []byte) (SerializationFormat, interface{}, SchemaInfo, error) {
	id, payload, err := decodeHeader(data)
	if err != nil {
		return 0, nil, SchemaInfo{}, err
	}

	info, err := d.cache.GetEncodingInfo(id)
	if err != nil {
		return 0, nil, SchemaInfo{}, err
	}

	decoder, ok := d.decoders[info.CodecName]
	if !ok {
		// the startup check covers codecs declared at construction; one
		// registered afterwards still fails cleanly per event
		return 0, nil, SchemaInfo{}, &WireCodecError{
			Codec: info.CodecName,
			Err:   errors.New(`no local decoder for codec`),
		}
	}

	byt, err := decoder.Decode(payload)
	if err != nil {
		return 0, nil, SchemaInfo{}, err
	}

	codec, ok := d.codecs[info.Schema.Format]
	if !ok {
		return 0, nil, SchemaInfo{}, &UnsupportedFormatError{Format: info.Schema.Format, Op: `deserialize`}
	}

	v, err := codec.Decode(byt, info.Schema, d.conf.readerSchema)
	if err != nil {
		return 0, nil, SchemaInfo{}, err
	}

	return info.Schema.Format, v, info.Schema, nil
}

// Close stops the background codec watch if one was started
func (d *Deserializer) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
}

// Print logs the encodings resolved so far
func (d *Deserializer) Print() {
	b := new(bytes.Buffer)
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{`Encoding Id`, `Schema`, `Format`, `Codec`})

	for id, info := range d.cache.snapshot() {
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})
		table.SetAutoFormatHeaders(true)
		table.Append([]string{
			fmt.Sprint(id),
			info.Schema.Name,
			info.Schema.Format.String(),
			info.CodecName,
		})
	}
	table.Render()
	d.logger.Info(fmt.Sprintf("resolved encodings for group [%s]\n%s", d.groupID, b.String()))
}
