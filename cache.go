/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// EncodingCache resolves encoding ids to their (writer schema, wire codec)
// binding, asking the registry once per distinct id and keeping the answer
// for its whole lifetime. Registry bindings are immutable once created, so
// entries are never invalidated or evicted; the cache is bounded by the
// number of distinct bindings the group accumulates.
type EncodingCache struct {
	groupID string
	client  RegistryClient

	mu      sync.RWMutex
	entries map[EncodingId]EncodingInfo
	flight  singleflight.Group
}

// NewEncodingCache returns an empty cache resolving against the given group
func NewEncodingCache(groupID string, client RegistryClient) *EncodingCache {
	return &EncodingCache{
		groupID: groupID,
		client:  client,
		entries: make(map[EncodingId]EncodingInfo),
	}
}

// GetEncodingInfo returns the binding for id, contacting the registry only on
// the first request. Concurrent first requests for the same unseen id share a
// single registry round trip; a failed round trip is not cached, so the next
// request retries. Once an entry is stored it is never overwritten.
func (c *EncodingCache) GetEncodingInfo(id EncodingId) (EncodingInfo, error) {
	c.mu.RLock()
	info, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return info, nil
	}

	v, err, _ := c.flight.Do(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		c.mu.RLock()
		info, ok := c.entries[id]
		c.mu.RUnlock()
		if ok {
			return info, nil
		}

		info, err := c.client.GetEncodingInfo(c.groupID, id)
		if err != nil {
			return EncodingInfo{}, err
		}

		c.mu.Lock()
		if existing, ok := c.entries[id]; ok {
			info = existing
		} else {
			c.entries[id] = info
		}
		c.mu.Unlock()

		return info, nil
	})
	if err != nil {
		return EncodingInfo{}, err
	}

	return v.(EncodingInfo), nil
}

// snapshot returns the resolved entries for diagnostics
func (c *EncodingCache) snapshot() map[EncodingId]EncodingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[EncodingId]EncodingInfo, len(c.entries))
	for id, info := range c.entries {
		out[id] = info
	}

	return out
}
