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
)

// jsonCodec is the built-in json FormatCodec. Decoding yields a generic
// map[string]interface{}; callers wanting a concrete type use the transform
// hook or a decode override.
type jsonCodec struct{}

func (c *jsonCodec) Encode(v interface{}, schema SchemaInfo) ([]byte, error) {
	byt, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`json marshal failed for [%s]`, schema.Name))
	}

	return byt, nil
}

func (c *jsonCodec) Decode(data []byte, writer SchemaInfo, reader *SchemaInfo) (interface{}, error) {
	var v map[string]interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`json unmarshal failed for [%s]`, writer.Name))
	}

	return v, nil
}
