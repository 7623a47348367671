/*
Package multiserde implements multi format serializers and deserializers for
schema registry backed event streams.

A single stream may carry a mix of avro, protobuf and json encoded events,
plus caller supplied custom formats. The serializer picks the codec from the
schema attached to each outgoing value; the deserializer picks it from the
encoding id embedded in each incoming payload, resolved once against the
registry and cached for the lifetime of the instance.

# Features
  - Per event format dispatch without declaring the format up front
  - Self populating encoding cache, one registry round trip per encoding id
  - Lazy per schema serializer construction, safe under concurrent callers
  - Wire level codecs (none, gzip, snappy) applied after format encoding
  - Custom formats and decoder overrides via caller supplied codecs

See the specific specifications for an understanding how encoding works.

Avro: http://avro.apache.org/docs/current/

Protobuf: https://protobuf.dev/programming-guides/encoding/
*/

package multiserde
