package scenario

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"sermonbench/internal/catalog"
	"sermonbench/internal/logging"
	"sermonbench/internal/progress"
	"sermonbench/internal/uploadapi"
)

// Uploader is the slice of the API client the orchestrator needs.
type Uploader interface {
	UploadDirect(ctx context.Context, data []byte, filename string) uploadapi.Outcome
	PresignURL(ctx context.Context, filename string) uploadapi.Outcome
	PresignBatch(ctx context.Context, filenames []string) uploadapi.Outcome
	PutPresigned(ctx context.Context, url string, data []byte) uploadapi.Outcome
	CheckDuplicate(ctx context.Context, hash string) uploadapi.Outcome
}

// ProgressSink receives per-file lifecycle events.
type ProgressSink interface {
	StartBatch(ctx context.Context, files []progress.BatchFile) string
	Update(ctx context.Context, batchID, file string, stage progress.Stage, info progress.Info)
	Finalize(ctx context.Context, batchID string)
}

// Orchestrator drives scenario runs through a bounded worker pool.
type Orchestrator struct {
	uploader Uploader
	source   catalog.FileSource
	tracker  ProgressSink
	logger   *slog.Logger
	rng      *lockedRand
}

// New builds an orchestrator. A nil rng gets a time-seeded source; tests pass
// a fixed seed for deterministic scheduling.
func New(uploader Uploader, source catalog.FileSource, tracker ProgressSink, rng *rand.Rand, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		uploader: uploader,
		source:   source,
		tracker:  tracker,
		logger:   logger.With(slog.String(logging.FieldComponent, "scenario")),
		rng:      &lockedRand{rng: rng},
	}
}

// envelope is one worker's report back to the collector. Skipped submissions
// carry no result and leave no trace in the batch.
type envelope struct {
	index   int
	skipped bool
	result  UploadResult
}

// presignedBatch holds the URLs issued by one batch presign call, shared by
// every worker in a batch_presigned run.
type presignedBatch struct {
	urls    map[string]string
	elapsed time.Duration
}

// Run executes one scenario over the given files and returns the closed
// batch. The scenario's duration is a hard wall-clock deadline: tasks still
// unfinished when it expires are recorded as timeouts and their eventual
// results discarded. In-flight HTTP calls are not cancelled; the deadline
// stops the waiting, not the call.
func (o *Orchestrator) Run(ctx context.Context, s Scenario, files []catalog.TestFile) BatchRun {
	run := BatchRun{
		ID:        uuid.NewString(),
		Scenario:  s,
		StartedAt: time.Now(),
	}
	if len(files) == 0 {
		run.EndedAt = run.StartedAt
		return run
	}

	o.logger.Info("starting scenario",
		slog.String("run", run.ID),
		slog.String("scenario", s.Name),
		slog.String("pattern", s.Pattern),
		slog.Int("files", len(files)),
		slog.Int("concurrency", s.MaxConcurrency),
	)

	batchFiles := make([]progress.BatchFile, len(files))
	for i, f := range files {
		batchFiles[i] = progress.BatchFile{Name: f.Name, Size: f.Size}
	}
	batchID := o.tracker.StartBatch(ctx, batchFiles)
	defer o.tracker.Finalize(ctx, batchID)

	var batch *presignedBatch
	if s.method() == MethodBatch {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name
		}
		outcome := o.uploader.PresignBatch(ctx, names)
		if !outcome.Success {
			for i, f := range files {
				run.Results = append(run.Results, UploadResult{
					ID:       fmt.Sprintf("%s_%d", s.Pattern, i),
					FileName: f.Name,
					FileSize: f.Size,
					Method:   MethodBatch,
					Error:    outcome.Err,
				})
				o.tracker.Update(ctx, batchID, f.Name, progress.StageError, progress.Info{Error: outcome.Err})
			}
			run.EndedAt = time.Now()
			return run
		}
		batch = &presignedBatch{urls: outcome.BatchURLs(), elapsed: outcome.Elapsed}
	}

	concurrency := s.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	offsets := startOffsets(s, len(files), o.rng.raw())

	// A closed channel reaches every waiter at once, unlike a timer tick.
	// A non-positive budget means no deadline at all.
	var expired chan struct{}
	if s.Duration > 0 {
		expired = make(chan struct{})
		timer := time.AfterFunc(s.Duration, func() { close(expired) })
		defer timer.Stop()
	}

	// Buffered to len(files) so a worker finishing after the deadline never
	// blocks; its envelope just goes unread.
	reports := make(chan envelope, len(files))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(index int, file catalog.TestFile, offset time.Duration) {
			defer wg.Done()
			reports <- o.runOne(ctx, s, batchID, index, file, offset, sem, expired, batch)
		}(i, f, offsets[i])
	}

	reported := make(map[int]bool, len(files))
	received, skipped := 0, 0
	var grace <-chan time.Time

collect:
	for received < len(files) {
		select {
		case env := <-reports:
			received++
			reported[env.index] = true
			if env.skipped {
				skipped++
				continue
			}
			run.Results = append(run.Results, env.result)
		case <-expired:
			// Workers parked on the same closed channel report their own
			// skip or timeout within moments; only tasks mid-upload stay
			// silent. Give the parked ones a beat, then abandon the rest.
			expired = nil
			graceTimer := time.NewTimer(100 * time.Millisecond)
			defer graceTimer.Stop()
			grace = graceTimer.C
		case <-grace:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	// Whatever never reported gets a timeout record; the work is abandoned,
	// not interrupted.
	for i, f := range files {
		if reported[i] {
			continue
		}
		run.Results = append(run.Results, o.timeoutResult(s, i, f))
		o.tracker.Update(ctx, batchID, f.Name, progress.StageError, progress.Info{Error: ErrKindTimeout})
	}

	go func() {
		wg.Wait()
		close(reports)
	}()

	run.EndedAt = time.Now()
	o.logger.Info("scenario finished",
		slog.String("run", run.ID),
		slog.Int("results", len(run.Results)),
		slog.Int("skipped", skipped),
		slog.Duration("elapsed", run.EndedAt.Sub(run.StartedAt)),
	)
	return run
}

// runOne waits for its scheduled start and a pool slot, then executes the
// upload. Waiting honors the deadline; execution does not.
func (o *Orchestrator) runOne(ctx context.Context, s Scenario, batchID string, index int, file catalog.TestFile, offset time.Duration, sem chan struct{}, expired <-chan struct{}, batch *presignedBatch) envelope {
	start := time.NewTimer(offset)
	defer start.Stop()
	select {
	case <-start.C:
	case <-expired:
		// Random-pattern files whose window closed before they started are
		// dropped without a result; other patterns record the timeout.
		if s.Pattern == PatternRandom {
			return envelope{index: index, skipped: true}
		}
		return envelope{index: index, result: o.timeoutResult(s, index, file)}
	case <-ctx.Done():
		return envelope{index: index, result: o.timeoutResult(s, index, file)}
	}

	select {
	case sem <- struct{}{}:
		defer func() { <-sem }()
	case <-expired:
		if s.Pattern == PatternRandom {
			return envelope{index: index, skipped: true}
		}
		return envelope{index: index, result: o.timeoutResult(s, index, file)}
	case <-ctx.Done():
		return envelope{index: index, result: o.timeoutResult(s, index, file)}
	}

	return envelope{index: index, result: o.upload(ctx, s, batchID, index, file, batch)}
}

func (o *Orchestrator) timeoutResult(s Scenario, index int, file catalog.TestFile) UploadResult {
	return UploadResult{
		ID:       fmt.Sprintf("%s_%d", s.Pattern, index),
		FileName: file.Name,
		FileSize: file.Size,
		Method:   s.method(),
		Success:  false,
		Error:    ErrKindTimeout,
	}
}

// upload runs the full flow for one file: read, optional duplicate check,
// then the transfer for the scenario's upload method. Every failure path
// produces a result; nothing escapes as an error.
func (o *Orchestrator) upload(ctx context.Context, s Scenario, batchID string, index int, file catalog.TestFile, batch *presignedBatch) UploadResult {
	result := UploadResult{
		ID:       fmt.Sprintf("%s_%d", s.Pattern, index),
		FileName: file.Name,
		FileSize: file.Size,
		Method:   s.method(),
	}
	fail := func(msg string) UploadResult {
		result.Error = msg
		o.tracker.Update(ctx, batchID, file.Name, progress.StageError, progress.Info{Error: msg})
		return result
	}

	o.tracker.Update(ctx, batchID, file.Name, progress.StageUploading, progress.Info{})

	if s.NetworkDelay > 0 {
		time.Sleep(s.NetworkDelay)
	}

	data, err := o.source.ReadFile(ctx, file.RemotePath)
	if err != nil {
		return fail(fmt.Sprintf("read source file: %v", err))
	}

	if s.SimulateInterruptions && o.rng.chance(0.1) {
		pause := 2*time.Second + o.rng.duration(8*time.Second)
		o.logger.Info("simulating network interruption",
			slog.String("file", file.Name),
			slog.Duration("pause", pause),
		)
		time.Sleep(pause)
	}

	if s.CheckDuplicates {
		sum := sha256.Sum256(data)
		check := o.uploader.CheckDuplicate(ctx, hex.EncodeToString(sum[:]))
		result.APIResponseTime += check.Elapsed
		if check.Success && check.IsDuplicate() {
			// The server already holds identical audio; nothing to transfer.
			o.logger.Info("skipping duplicate upload", slog.String("file", file.Name))
			result.Success = true
			result.Duration = result.APIResponseTime
			o.tracker.Update(ctx, batchID, file.Name, progress.StageUploaded, progress.Info{})
			o.tracker.Update(ctx, batchID, file.Name, progress.StageProcessing, progress.Info{})
			o.tracker.Update(ctx, batchID, file.Name, progress.StageCompleted, progress.Info{Duration: result.Duration})
			return result
		}
	}

	var put uploadapi.Outcome
	switch result.Method {
	case MethodDirect:
		put = o.uploader.UploadDirect(ctx, data, file.Name)
	case MethodBatch:
		url := ""
		if batch != nil {
			url = batch.urls[file.Name]
		}
		if url == "" {
			return fail("batch presign missing upload url")
		}
		result.APIResponseTime += batch.elapsed
		put = o.uploader.PutPresigned(ctx, url, data)
	default:
		presign := o.uploader.PresignURL(ctx, file.Name)
		result.APIResponseTime += presign.Elapsed
		if !presign.Success {
			result.Duration = result.APIResponseTime
			return fail(presign.Err)
		}
		url, ok := presign.UploadURL()
		if !ok {
			result.Duration = result.APIResponseTime
			return fail("presign response missing upload_url")
		}
		put = o.uploader.PutPresigned(ctx, url, data)
	}

	result.UploadTime = put.Elapsed
	result.Duration = result.APIResponseTime + put.Elapsed
	if !put.Success {
		return fail(put.Err)
	}

	result.Success = true
	if put.Elapsed > 0 {
		result.ThroughputMBps = (float64(file.Size) / (1 << 20)) / put.Elapsed.Seconds()
	}

	o.tracker.Update(ctx, batchID, file.Name, progress.StageUploaded, progress.Info{})
	o.tracker.Update(ctx, batchID, file.Name, progress.StageProcessing, progress.Info{})
	o.tracker.Update(ctx, batchID, file.Name, progress.StageCompleted, progress.Info{Duration: result.Duration})
	return result
}

// lockedRand makes one rand.Rand usable from many workers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// raw hands the underlying source to single-goroutine scheduling code.
func (l *lockedRand) raw() *rand.Rand {
	return l.rng
}

func (l *lockedRand) chance(p float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64() < p
}

func (l *lockedRand) duration(max time.Duration) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Duration(l.rng.Int63n(int64(max)))
}
