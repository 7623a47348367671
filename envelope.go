/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"encoding/binary"

	"github.com/tryfix/errors"
)

// EncodingId is the registry assigned identifier binding a (schema, wire
// codec) pair within a group. Stable for the lifetime of the group.
type EncodingId uint32

// EncodingInfo is the resolved pair an EncodingId denotes
type EncodingInfo struct {
	Schema    SchemaInfo `json:"schemaInfo"`
	CodecName string     `json:"codecType"`
}

const headerLen = 5

// encodeHeader prepends the envelope header to the payload.
//
//	╔════════════════════╤═══════════════════════╤═══════════════════╗
//	║ magic byte(1 byte) │ encoding id (4 bytes) │ codec'd payload   ║
//	╚════════════════════╧═══════════════════════╧═══════════════════╝
func encodeHeader(id EncodingId, payload []byte) []byte {
	byt := make([]byte, headerLen, headerLen+len(payload))
	binary.BigEndian.PutUint32(byt[1:], uint32(id))
	return append(byt, payload...)
}

func decodeHeader(data []byte) (EncodingId, []byte, error) {
	if len(data) < headerLen {
		return 0, nil, errors.New(`message shorter than envelope header`)
	}

	return EncodingId(binary.BigEndian.Uint32(data[1:headerLen])), data[headerLen:], nil
}
