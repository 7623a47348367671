/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import "fmt"

// ConfigurationError reports a misconfiguration caught before any event is
// processed: a broken registry source, a Custom format with no codec supplied
// or a codec mismatch detected at startup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(`multiserde: configuration error: %s`, e.Reason)
}

// UnsupportedFormatError reports an encoding whose format has no matching
// codec on this dispatcher. The event fails; caches are left intact.
type UnsupportedFormatError struct {
	Format SerializationFormat
	Op     string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf(`multiserde: no codec for format [%s] on %s`, e.Format, e.Op)
}

// RegistryError wraps a failed registry collaborator call. Retrying is the
// registry client's concern, never this layer's.
type RegistryError struct {
	Op  string
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf(`multiserde: registry %s failed: %v`, e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// WireCodecError reports a wire level codec failing to apply or reverse its
// transform on payload bytes.
type WireCodecError struct {
	Codec string
	Err   error
}

func (e *WireCodecError) Error() string {
	return fmt.Sprintf(`multiserde: wire codec [%s] failed: %v`, e.Codec, e.Err)
}

func (e *WireCodecError) Unwrap() error { return e.Err }
