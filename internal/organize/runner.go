package organize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikbrunner/bmtag/internal/locator"
	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/storage"
)

// StoreResult is the outcome of organizing one bookmark store.
type StoreResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Report maps source keys (see locator.Source.Key) to their results.
type Report map[string]StoreResult

// Succeeded counts the stores that were rewritten.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r {
		if res.Success {
			n++
		}
	}
	return n
}

// RunnerParams holds parameters for creating a Runner.
type RunnerParams struct {
	Sources    func() []locator.Source
	FolderName string
	Now        func() time.Time
	Logger     *slog.Logger
}

// Runner applies reconciliation to every writable bookmark store on disk.
type Runner struct {
	sources    func() []locator.Source
	folderName string
	now        func() time.Time
	logger     *slog.Logger
}

// NewRunner creates a Runner. FolderName defaults to DefaultFolderName.
func NewRunner(params RunnerParams) *Runner {
	r := &Runner{
		sources:    params.Sources,
		folderName: params.FolderName,
		now:        params.Now,
		logger:     params.Logger,
	}
	if r.folderName == "" {
		r.folderName = DefaultFolderName
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Organize groups records by tag and rewrites each writable store. A failing
// store is reported and does not stop the others. Stores not yet started
// when ctx is done are reported as failed.
func (r *Runner) Organize(ctx context.Context, records []model.BookmarkRecord) Report {
	groups, urls := Group(records)
	report := make(Report)

	for _, src := range r.sources() {
		if !src.Browser.Writable() || src.Format != locator.FormatChromium {
			continue
		}

		key := src.Key()
		if err := ctx.Err(); err != nil {
			report[key] = StoreResult{Success: false, Message: err.Error()}
			continue
		}
		if err := r.organizeStore(src, groups, urls); err != nil {
			r.logger.Error("organize bookmarks failed", "store", key, "path", src.Path, "error", err)
			report[key] = StoreResult{Success: false, Message: err.Error()}
			continue
		}

		r.logger.Info("organized bookmarks", "store", key, "path", src.Path, "tags", len(groups), "urls", len(urls))
		report[key] = StoreResult{
			Success: true,
			Message: fmt.Sprintf("Bookmarks organized. Restart %s to see the changes.", src.Browser),
		}
	}

	return report
}

// organizeStore backs up, reconciles and rewrites one Chromium store.
func (r *Runner) organizeStore(src locator.Source, groups []TagGroup, urls URLSet) error {
	store := storage.NewChromiumStore(src.Path)

	if err := store.Backup(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	file, err := store.Load()
	if err != nil {
		return err
	}

	now := r.now()
	if _, err := Reconcile(file.Roots.BookmarkBar, groups, urls, r.folderName, now); err != nil {
		return err
	}

	file.Roots.SyncTransactionVersion = model.ChromeTimeFromTime(now).String()
	// The stored checksum no longer matches; Chromium recomputes a missing one.
	file.Checksum = ""

	if err := store.Save(file); err != nil {
		return fmt.Errorf("write %s: %w", src.Path, err)
	}
	return nil
}
