package multiserde

import (
	"fmt"
	"time"

	"github.com/tryfix/log"
)

type codecWatch struct {
	interval     time.Duration
	deserializer *Deserializer
	logger       log.Logger
}

// Watch starts a background routine that periodically re-fetches the group's
// registered codecs and logs when the group has picked up a codec this
// deserializer cannot reverse. The startup check catches misconfiguration at
// construction; the watch catches drift afterwards, before the first affected
// event makes it fail per-call. Stopped by Close.
func (d *Deserializer) Watch(interval time.Duration) {
	w := &codecWatch{
		interval:     interval,
		deserializer: d,
		logger:       d.logger.NewLog(log.Prefixed(`CodecWatch`)),
	}

	ticker := time.NewTicker(w.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.checkCodecs()
			case <-d.done:
				return
			}
		}
	}()

	w.logger.Debug(`codec watch background routine started`)
}

func (w *codecWatch) checkCodecs() {
	w.logger.Debug(`Looking for newly registered codecs...`)

	names, err := w.deserializer.client.GetCodecs(w.deserializer.groupID)
	if err != nil {
		w.logger.Error(fmt.Sprintf(`Error getting group codecs due to %s`, err.Error()))
		return
	}

	if missing := missingDecoders(names, w.deserializer.decoders); len(missing) > 0 {
		w.logger.Warn(fmt.Sprintf(`group [%s] declares codecs %v with no local decoder, events using them will fail`,
			w.deserializer.groupID, missing))
		return
	}

	w.logger.Debug(`Looking for newly registered codecs completed`)
}
