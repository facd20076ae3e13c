// Simulates two windows sharing one store and broadcast bus: edits in
// one window, a streamed enhancement, and cross-window cache
// invalidation, printed step by step.
package main

import (
	"context"
	"fmt"
	"time"

	"notesync-core/internal/broadcast"
	"notesync-core/internal/config"
	"notesync-core/internal/entity"
	"notesync-core/internal/pkg/logger"
	"notesync-core/internal/session"
	"notesync-core/internal/store/memory"
	"notesync-core/internal/window"
	"notesync-core/pkg/llm"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// scriptedProvider streams a canned summary, one line at a time.
type scriptedProvider struct {
	chunks []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	var full string
	for _, c := range p.chunks {
		full += c
	}
	return full, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *scriptedProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Stream, error) {
	stream := llm.NewStream()
	go func() {
		var full string
		for _, c := range p.chunks {
			select {
			case <-ctx.Done():
				stream.Finish(full, ctx.Err())
				return
			case <-time.After(120 * time.Millisecond):
			}
			full += c
			stream.Push(c)
		}
		stream.Finish(full, nil)
	}()
	return stream, nil
}

func main() {
	cfg := config.Load()
	log := logger.NewZapLogger(cfg.App.LogFilePath, false)
	defer log.Sync()

	db := memory.NewDatabase()
	transport := broadcast.NewGoChannelTransport()

	provider := &scriptedProvider{chunks: []string{
		"# Summary",
		"\n\nDiscussed the Q3 roadmap",
		" and owners for each track.",
		"\n\n## Action items\n",
		"- Ship the sync core\n",
	}}

	main1 := color.New(color.FgCyan).PrintfFunc()
	main2 := color.New(color.FgYellow).PrintfFunc()
	note := color.New(color.FgGreen).PrintfFunc()

	left, err := window.New(cfg, db, provider, broadcast.NewGoChannelBus(transport), log, window.Options{Label: "main", UserId: "user-1"})
	if err != nil {
		panic(err)
	}
	right, err := window.New(cfg, db, provider, broadcast.NewGoChannelBus(transport), log, window.Options{Label: "note-detail", UserId: "user-1"})
	if err != nil {
		panic(err)
	}
	defer left.Close()
	defer right.Close()

	sessionId := uuid.NewString()
	row := entity.Session{
		Id:         sessionId,
		Title:      "Q3 planning",
		RawContent: "<p>Meeting about Q3 roadmap</p>",
		UserId:     "user-1",
	}
	db.UpsertSession(context.Background(), row)
	db.SetWords(sessionId, []entity.Word{
		{Text: "let's", StartMs: 0, EndMs: 200},
		{Text: "plan", StartMs: 200, EndMs: 450},
		{Text: "the", StartMs: 450, EndMs: 520},
		{Text: "quarter", StartMs: 520, EndMs: 900},
	})

	// Both windows open the same session; each gets its own store.
	leftStore := left.Registry.Insert(row)
	rightStore := right.Registry.Insert(row)

	leftStore.Subscribe(func(s session.Snapshot) {
		main1("[main]        enhanced=%d bytes showRaw=%v\n", len(s.Session.EnhancedContent), s.ShowRaw)
	})

	// The right window caches the participant list; the left window's
	// profile edit will evict it over the bus.
	right.Cache.Set([]string{"participants", sessionId}, []string{"Alice", "Bob"})
	fmt.Println()
	note("cached entries in note-detail window: %d\n", right.Cache.Len())

	main1("[main]        editing raw note...\n")
	leftStore.UpdateRawNote("<p>Meeting about Q3 roadmap. Follow up on hiring.</p>")

	main1("[main]        enhancing...\n")
	if err := left.Pipeline.Enhance(context.Background(), sessionId); err != nil {
		note("enhance failed: %v\n", err)
	}
	main1("[main]        job status: %s\n", left.Pipeline.Status(sessionId))

	// Other windows learn of changes only by refetching.
	if err := rightStore.Refresh(context.Background()); err == nil {
		snap := rightStore.Snapshot()
		main2("[note-detail] refreshed, enhanced=%d bytes\n", len(snap.Session.EnhancedContent))
	}

	// A profile edit in the left window invalidates the right window's
	// participant cache, but not its own.
	left.Cache.Set([]string{"human", "42", "profile"}, "updated profile")
	time.Sleep(200 * time.Millisecond)
	note("cached entries in note-detail window after broadcast: %d\n", right.Cache.Len())
}
