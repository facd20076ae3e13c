package broadcast

import (
	"context"
	"strings"

	"notesync-core/internal/cache"
	"notesync-core/internal/pkg/logger"
)

// Invalidator binds one window's query cache to the broadcast bus: it
// publishes a notice whenever the local cache observes an update or
// removal, and evicts local entries when other windows announce theirs.
type Invalidator struct {
	window string
	cache  *cache.QueryCache
	bus    Bus
	log    logger.ILogger
}

func NewInvalidator(window string, qc *cache.QueryCache, bus Bus, log logger.ILogger) *Invalidator {
	return &Invalidator{
		window: window,
		cache:  qc,
		bus:    bus,
		log:    log,
	}
}

// Attach wires both directions and returns a detach func.
func (i *Invalidator) Attach() (func(), error) {
	i.cache.OnChange(func(path []string) {
		if err := i.bus.Publish(context.Background(), Event{Key: path, Window: i.window}); err != nil {
			i.log.Warn("Broadcast", "Publish failed", map[string]interface{}{
				"key":   strings.Join(path, "/"),
				"error": err.Error(),
			})
		}
	})

	unsubscribe, err := i.bus.Subscribe(i.handle)
	if err != nil {
		return nil, err
	}

	return func() {
		i.cache.OnChange(nil)
		unsubscribe()
	}, nil
}

// handle applies the fixed invalidation topics to one incoming event.
// An event is self-suppressed only when its window identity is present
// and equal to ours; absent or mismatched identity counts as foreign.
func (i *Invalidator) handle(event Event) {
	if event.Window != "" && event.Window == i.window {
		return
	}

	keys := event.Key

	if anyContains(keys, "extension") {
		i.cache.EvictMatching(func(path []string) bool {
			return anyContains(path, "extension")
		})
	}

	if anyContains(keys, "flags") {
		i.cache.EvictMatching(func(path []string) bool {
			return anyContains(path, "flags")
		})
	}

	if anyContains(keys, "profile") {
		i.cache.EvictMatching(func(path []string) bool {
			return anyContains(path, "participant") || anyContains(path, "human") || anyContains(path, "org")
		})
	}

	if len(keys) >= 2 && keys[0] == "human" {
		i.cache.Evict([]string{"human", keys[1]})
		i.cache.EvictMatching(func(path []string) bool {
			return anyContains(path, "participant")
		})
	}

	if len(keys) >= 2 && keys[0] == "org" {
		i.cache.Evict([]string{"org", keys[1]})
	}
}

func anyContains(keys []string, substr string) bool {
	for _, k := range keys {
		if strings.Contains(k, substr) {
			return true
		}
	}
	return false
}
