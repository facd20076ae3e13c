package window

import (
	"context"

	"notesync-core/internal/analytics"
	"notesync-core/internal/broadcast"
	"notesync-core/internal/cache"
	"notesync-core/internal/config"
	"notesync-core/internal/enhance"
	"notesync-core/internal/notify"
	"notesync-core/internal/ongoing"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/search"
	"notesync-core/internal/session"
	"notesync-core/internal/store"
	"notesync-core/pkg/llm"
)

// Window wires the synchronization core for one OS window: its session
// registry, query cache with broadcast invalidation, ongoing-session
// state, enhancement pipeline and search store. Windows share only the
// persistent store and the broadcast bus.
type Window struct {
	Label     string
	Registry  *session.Registry
	Cache     *cache.QueryCache
	Ongoing   *ongoing.State
	Pipeline  *enhance.Pipeline
	Search    *search.Store
	Analytics *analytics.Publisher

	bus     broadcast.Bus
	detach  func()
	stopper func()
}

type Options struct {
	Label    string
	UserId   string
	Navigate func(path string)
	Notifier notify.Notifier
}

func New(
	cfg *config.Config,
	db store.Database,
	provider llm.StreamingProvider,
	bus broadcast.Bus,
	log logger.ILogger,
	opts Options,
) (*Window, error) {
	if opts.Notifier == nil {
		opts.Notifier = &notify.LogNotifier{Log: log}
	}

	registry := session.NewRegistry(db, log, cfg.Sync.PersistDebounce)
	queryCache := cache.NewQueryCache()
	ongoingState := ongoing.NewState()
	analyticsPub := analytics.NewPublisher(analytics.NewBus())

	pipeline := enhance.NewPipeline(db, provider, registry, ongoingState, opts.Notifier, analyticsPub, log, enhance.Options{
		Timeout:             cfg.Sync.EnhanceTimeout,
		DefaultModel:        cfg.Ai.LLMModel,
		OnboardingModel:     cfg.Ai.OnboardingModel,
		OnboardingSessionId: cfg.Ai.OnboardingSessionId,
		ConnectionType:      cfg.Ai.LLMProvider,
		UserId:              opts.UserId,
	})

	invalidator := broadcast.NewInvalidator(opts.Label, queryCache, bus, log)
	detach, err := invalidator.Attach()
	if err != nil {
		return nil, err
	}

	auto := enhance.NewAutoEnhancer(pipeline, ongoingState, opts.UserId)
	stopAuto := auto.Start(context.Background())

	return &Window{
		Label:     opts.Label,
		Registry:  registry,
		Cache:     queryCache,
		Ongoing:   ongoingState,
		Pipeline:  pipeline,
		Search:    search.NewStore(db, log, opts.UserId, cfg.Sync.SearchDebounce, opts.Navigate),
		Analytics: analyticsPub,
		bus:       bus,
		detach:    detach,
		stopper:   stopAuto,
	}, nil
}

// Broadcast publishes a named signal (e.g. login/logout) to the other
// windows.
func (w *Window) Broadcast(ctx context.Context, key []string) error {
	return w.bus.Publish(ctx, broadcast.Event{Key: key, Window: w.Label})
}

func (w *Window) Close() error {
	w.stopper()
	w.detach()
	return w.bus.Close()
}
