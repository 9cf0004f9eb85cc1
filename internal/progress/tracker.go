package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sermonbench/internal/logging"
)

// BatchFile names one file entering a tracked batch.
type BatchFile struct {
	Name string
	Size int64
}

// Info carries optional per-file detail attached to a stage update.
type Info struct {
	Duration time.Duration
	Error    string
}

// Tracker owns the live progress message for each running batch. All state
// mutations happen under one lock; message edits happen outside it and are
// best effort.
type Tracker struct {
	messenger Messenger
	logger    *slog.Logger
	retention time.Duration

	mu      sync.Mutex
	batches map[string]*batch
}

type batch struct {
	messageID string
	title     string
	createdAt time.Time
	order     []string
	files     map[string]*fileState
	finalized bool
}

// NewTracker builds a tracker over the given messenger. Retention bounds how
// long finished batches stay tracked locally; the remote message is never
// deleted.
func NewTracker(messenger Messenger, retention time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNop()
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Tracker{
		messenger: messenger,
		logger:    logger.With(slog.String(logging.FieldComponent, "progress")),
		retention: retention,
		batches:   make(map[string]*batch),
	}
}

// StartBatch creates the progress message with every file at the detected
// stage and returns the batch ID. A failed create degrades to local-only
// tracking; updates still work, they just have nowhere to go.
func (t *Tracker) StartBatch(ctx context.Context, files []BatchFile) string {
	title := fmt.Sprintf("📤 Uploading %d Sermon%s", len(files), plural(len(files)))

	b := &batch{
		title:     title,
		createdAt: time.Now(),
		files:     make(map[string]*fileState, len(files)),
	}
	for _, f := range files {
		b.order = append(b.order, f.Name)
		b.files[f.Name] = &fileState{Stage: StageDetected, Size: f.Size}
	}

	messageID, err := t.messenger.Create(ctx, renderEmbed(title, b.order, b.files))
	if err != nil {
		t.logger.Warn("create progress message failed", slog.String("error", err.Error()))
	}
	b.messageID = messageID

	batchID := messageID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	t.mu.Lock()
	t.batches[batchID] = b
	t.mu.Unlock()
	return batchID
}

// Update moves one file to a new stage and re-renders the message. Illegal
// transitions (regressions, updates after a terminal stage) are dropped.
func (t *Tracker) Update(ctx context.Context, batchID, file string, stage Stage, info Info) {
	t.mu.Lock()
	b, ok := t.batches[batchID]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("update for unknown batch", slog.String("batch", batchID))
		return
	}
	state, ok := b.files[file]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("update for unknown file",
			slog.String("batch", batchID),
			slog.String("file", file),
		)
		return
	}
	if !canTransition(state.Stage, stage) {
		t.mu.Unlock()
		return
	}

	state.Stage = stage
	if info.Duration > 0 {
		state.Duration = info.Duration
	}
	if info.Error != "" {
		state.Error = info.Error
	}
	embed := renderEmbed(b.title, b.order, b.files)
	messageID := b.messageID
	t.mu.Unlock()

	t.edit(ctx, messageID, embed)
}

// Finalize retitles the message by outcome and sends the last edit. The
// batch stays tracked until cleanup so late lookups do not log warnings.
func (t *Tracker) Finalize(ctx context.Context, batchID string) {
	t.mu.Lock()
	b, ok := t.batches[batchID]
	if !ok || b.finalized {
		t.mu.Unlock()
		return
	}
	b.finalized = true

	var completed, errored int
	for _, state := range b.files {
		switch state.Stage {
		case StageCompleted:
			completed++
		case StageError:
			errored++
		}
	}
	if errored > 0 {
		b.title = fmt.Sprintf("⚠️ Batch Complete with %d Error%s", errored, plural(errored))
	} else {
		b.title = fmt.Sprintf("✅ Successfully Processed %d Sermon%s", completed, plural(completed))
	}

	embed := renderEmbed(b.title, b.order, b.files)
	messageID := b.messageID
	t.mu.Unlock()

	t.edit(ctx, messageID, embed)
}

// CleanupOlderThan drops local state for batches older than the given age and
// returns how many were removed.
func (t *Tracker) CleanupOlderThan(age time.Duration) int {
	cutoff := time.Now().Add(-age)

	t.mu.Lock()
	defer t.mu.Unlock()

	var removed int
	for id, b := range t.batches {
		if b.createdAt.Before(cutoff) {
			delete(t.batches, id)
			removed++
		}
	}
	return removed
}

// Cleanup applies the configured retention window.
func (t *Tracker) Cleanup() int {
	return t.CleanupOlderThan(t.retention)
}

func (t *Tracker) edit(ctx context.Context, messageID string, embed Embed) {
	if messageID == "" {
		return
	}
	if err := t.messenger.Edit(ctx, messageID, embed); err != nil {
		t.logger.Warn("progress edit failed",
			slog.String("message", messageID),
			slog.String("error", err.Error()),
		)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
