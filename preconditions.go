/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"fmt"

	"github.com/tryfix/log"
)

// Startup preconditions, run once per dispatcher construction. All of them
// are idempotent against the registry, so rebuilding a dispatcher for a group
// that is already set up is a cheap no-op on the registry side.

func autoCreateGroup(client RegistryClient, groupID string, c *config) error {
	if !c.autoCreate {
		return nil
	}

	err := client.CreateGroupIfAbsent(groupID, GroupProperties{Format: FormatAny})
	if err != nil {
		return err
	}

	c.logger.Debug(fmt.Sprintf(`group [%s] ensured`, groupID))
	return nil
}

func registerCodec(client RegistryClient, groupID string, codec WireCodec, logger log.Logger) error {
	if err := client.RegisterCodec(groupID, codec.Name()); err != nil {
		return err
	}

	logger.Debug(fmt.Sprintf(`codec [%s] registered for group [%s]`, codec.Name(), groupID))
	return nil
}

// failOnCodecMismatch fails construction when the group declares a codec the
// local decoder set cannot reverse. Misconfiguration surfaces here, at
// startup, never mid-stream on some unlucky event.
func failOnCodecMismatch(client RegistryClient, groupID string, decoders map[string]WireCodec) error {
	names, err := client.GetCodecs(groupID)
	if err != nil {
		return err
	}

	if missing := missingDecoders(names, decoders); len(missing) > 0 {
		return &ConfigurationError{
			Reason: fmt.Sprintf(`group [%s] declares codecs %v with no local decoder`, groupID, missing),
		}
	}

	return nil
}

func missingDecoders(declared []string, decoders map[string]WireCodec) []string {
	var missing []string
	for _, name := range declared {
		if _, ok := decoders[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}
