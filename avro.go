/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/tryfix/errors"
)

// avroCodec is the built-in avro FormatCodec. Decoding without a reader
// schema yields the generic representation (map[string]interface{} for
// records); with one, the writer schema is resolved against it first.
type avroCodec struct{}

func (c *avroCodec) Encode(v interface{}, schema SchemaInfo) ([]byte, error) {
	sch, err := avro.Parse(string(schema.SchemaData))
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`avro schema parse failed for [%s]`, schema.Name))
	}

	byt, err := avro.Marshal(sch, v)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`avro marshal failed for [%s]`, schema.Name))
	}

	return byt, nil
}

func (c *avroCodec) Decode(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error) {
	writerSch, err := avro.Parse(string(writer.SchemaData))
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`avro writer schema parse failed for [%s]`, writer.Name))
	}

	sch := writerSch
	if reader != nil {
		readerSch, err := avro.Parse(string(reader.SchemaData))
		if err != nil {
			return nil, errors.WithPrevious(err, fmt.Sprintf(`avro reader schema parse failed for [%s]`, reader.Name))
		}

		sch, err = avro.NewSchemaCompatibility().Resolve(readerSch, writerSch)
		if err != nil {
			return nil, errors.WithPrevious(err, fmt.Sprintf(`avro schema resolution failed for [%s]`, writer.Name))
		}
	}

	var v interface{}
	if err := avro.Unmarshal(sch, data, &v); err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`avro unmarshal failed for [%s]`, writer.Name))
	}

	return v, nil
}
