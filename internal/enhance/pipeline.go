package enhance

import (
	"context"
	"errors"
	"sync"
	"time"

	"notesync-core/internal/analytics"
	"notesync-core/internal/notify"
	"notesync-core/internal/ongoing"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/session"
	"notesync-core/internal/store"
	"notesync-core/pkg/events"
	"notesync-core/pkg/llm"
	"notesync-core/pkg/markdown"
)

// Status of the enhancement job for one session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Options configure one window's pipeline.
type Options struct {
	Timeout             time.Duration
	DefaultModel        string
	OnboardingModel     string
	OnboardingSessionId string
	ConnectionType      string
	UserId              string
}

type job struct {
	status Status
	cancel context.CancelFunc
}

// Pipeline runs at most one streaming enhancement job per session.
// Stream chunks are consumed sequentially by a single reader, so the
// session store sees increments in generation order.
type Pipeline struct {
	db        store.Database
	provider  llm.StreamingProvider
	registry  *session.Registry
	ongoing   *ongoing.State
	notifier  notify.Notifier
	analytics *analytics.Publisher
	log       logger.ILogger
	opts      Options

	mu   sync.Mutex
	jobs map[string]*job
}

func NewPipeline(
	db store.Database,
	provider llm.StreamingProvider,
	registry *session.Registry,
	ongoingState *ongoing.State,
	notifier notify.Notifier,
	analyticsPub *analytics.Publisher,
	log logger.ILogger,
	opts Options,
) *Pipeline {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Pipeline{
		db:        db,
		provider:  provider,
		registry:  registry,
		ongoing:   ongoingState,
		notifier:  notifier,
		analytics: analyticsPub,
		log:       log,
		opts:      opts,
		jobs:      make(map[string]*job),
	}
}

// Status reports the job state for a session; idle when none ran yet.
func (p *Pipeline) Status(sessionId string) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if j, ok := p.jobs[sessionId]; ok {
		return j.status
	}
	return StatusIdle
}

// Cancel aborts the live job for a session. Idempotent; no-op when
// nothing is pending.
func (p *Pipeline) Cancel(sessionId string) {
	p.mu.Lock()
	j, ok := p.jobs[sessionId]
	var cancel context.CancelFunc
	if ok && j.status == StatusPending {
		cancel = j.cancel
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Enhance runs one enhancement job to completion. Precondition
// failures (empty transcript) raise a notice and leave the job idle;
// cancellation resolves without user-visible error feedback.
func (p *Pipeline) Enhance(ctx context.Context, sessionId string) error {
	// 1. Preconditions: nothing to enhance without transcript words.
	words, err := p.db.GetWords(ctx, sessionId)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		p.notifier.Notify(notify.TooShortNotice())
		return nil
	}

	sessionStore, err := p.openStore(ctx, sessionId)
	if err != nil {
		return err
	}
	rawContent := sessionStore.Snapshot().Session.RawContent

	// 2. Prompt pair from connection type, config, participants, raw
	// content and the serialized transcript.
	config, err := p.db.GetConfig(ctx)
	if err != nil {
		return err
	}
	participants, err := p.db.SessionListParticipants(ctx, sessionId)
	if err != nil {
		return err
	}

	builder := &promptBuilder{
		connectionType: p.opts.ConnectionType,
		config:         config,
		participants:   participants,
		rawContent:     rawContent,
		words:          words,
	}
	systemMessage := builder.BuildSystem()
	userMessage, err := builder.BuildUser()
	if err != nil {
		return err
	}

	// 3. One token for manual cancel and the fixed deadline. The handle
	// goes into the window's ongoing state so a UI cancel can reach it.
	jobCtx, timeoutCancel := context.WithTimeout(ctx, p.opts.Timeout)
	jobCtx, cancel := context.WithCancel(jobCtx)
	defer timeoutCancel()
	defer cancel()

	j := p.start(sessionId, cancel)
	clearCancel := p.ongoing.SetEnhanceCancel(cancel)
	defer clearCancel()

	onboarding := sessionId == p.opts.OnboardingSessionId && p.opts.OnboardingSessionId != ""

	// 4. Model variant by context: lower-stakes model for the
	// first-run session, default otherwise.
	model := p.opts.DefaultModel
	if onboarding {
		model = p.opts.OnboardingModel
	}

	if !onboarding {
		p.emit(events.NewEnhanceStarted(p.opts.UserId, sessionId, false))
	}

	stream, err := p.provider.ChatStream(jobCtx, []llm.Message{
		{Role: "system", Content: systemMessage},
		{Role: "user", Content: userMessage},
	}, llm.WithModel(model))
	if err != nil {
		return p.fail(j, sessionId, classify(jobCtx, err))
	}

	// 5. Sequential consumption: accumulate, convert, push. This is
	// what makes the enhanced note grow word by word in the UI.
	var acc string
	for chunk := range stream.Chunks() {
		acc += chunk
		html, convErr := markdown.ToHTML(acc)
		if convErr != nil {
			p.log.Warn("Enhance", "Partial conversion failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      convErr.Error(),
			})
			continue
		}
		sessionStore.UpdateEnhancedNote(html)
	}

	text, err := stream.Text()
	if err != nil {
		return p.fail(j, sessionId, classify(jobCtx, err))
	}

	// 6. Completion: final conversion is authoritative, persisted with
	// an immediate, non-debounced flush.
	html, err := markdown.ToHTML(text)
	if err != nil {
		return p.fail(j, sessionId, &ProviderError{Err: err})
	}
	sessionStore.UpdateEnhancedNote(html)

	if err := sessionStore.PersistSession(context.WithoutCancel(ctx), nil, true); err != nil {
		return p.fail(j, sessionId, err)
	}

	p.emit(events.NewEnhanceDone(p.opts.UserId, sessionId, onboarding))
	p.finish(j, sessionId, StatusCompleted)
	return nil
}

// openStore returns the window's live store for the session, inserting
// one from the persisted row when the session is not open yet.
func (p *Pipeline) openStore(ctx context.Context, sessionId string) (*session.Store, error) {
	if s := p.registry.Get(sessionId); s != nil {
		return s, nil
	}
	row, err := p.db.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.New("session not found")
	}
	return p.registry.Insert(*row), nil
}

// start registers the job, cancelling a previous live one first so two
// jobs never write to the same store. The returned job identifies this
// run: a superseded job resolving late must not stamp its successor.
func (p *Pipeline) start(sessionId string, cancel context.CancelFunc) *job {
	p.mu.Lock()
	prev := p.jobs[sessionId]
	j := &job{status: StatusPending, cancel: cancel}
	p.jobs[sessionId] = j
	p.mu.Unlock()

	if prev != nil && prev.status == StatusPending {
		prev.cancel()
	}
	return j
}

// finish stamps the terminal status, but only while j is still the
// registered job for the session.
func (p *Pipeline) finish(j *job, sessionId string, status Status) {
	p.mu.Lock()
	if p.jobs[sessionId] == j {
		j.status = status
	}
	p.mu.Unlock()
}

// fail resolves a job from its classified error. Cancellation is
// absorbed: the last pushed partial content stays in the store and no
// failure notice is raised.
func (p *Pipeline) fail(j *job, sessionId string, err error) error {
	if errors.Is(err, ErrCancelled) {
		p.finish(j, sessionId, StatusCancelled)
		p.log.Info("Enhance", "Job cancelled", map[string]interface{}{"session_id": sessionId})
		return nil
	}

	p.finish(j, sessionId, StatusFailed)
	p.log.Error("Enhance", "Job failed", map[string]interface{}{
		"session_id": sessionId,
		"error":      err.Error(),
	})
	p.notifier.Notify(notify.EnhanceFailedNotice())
	return err
}

func (p *Pipeline) emit(event events.Event) {
	if p.analytics == nil {
		return
	}
	if err := p.analytics.Emit(event); err != nil {
		p.log.Warn("Enhance", "Analytics emit failed", map[string]interface{}{"error": err.Error()})
	}
}
