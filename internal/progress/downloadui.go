package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// FileBarHandle is a handle to a single file's progress bar.
type FileBarHandle interface {
	// UpdateProgress updates the bar based on a fraction (0.0 to 1.0)
	UpdateProgress(fraction float64)

	// SetRetry updates the retry counter and visually marks the bar
	SetRetry(count int)

	// Complete marks the download as finished and prints a summary
	Complete(err error)
}

// DownloadUI manages multiple concurrent download progress bars using mpb
type DownloadUI struct {
	progress   *mpb.Progress
	bars       sync.Map // fileID -> *DownloadFileBar
	isTerminal bool
	totalFiles int
	completed  int32
}

// DownloadFileBar represents a single file download progress bar
type DownloadFileBar struct {
	bar        *mpb.Bar
	ui         *DownloadUI
	index      int
	fileID     string
	localPath  string
	size       int64
	retries    int32
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
}

// NewDownloadUI creates a new download UI for the given number of files
func NewDownloadUI(totalFiles int) *DownloadUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	} else {
		// Non-TTY: disable progress bars, just use text output
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &DownloadUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// AddFileBar creates a new progress bar for a file download
func (u *DownloadUI) AddFileBar(index int, fileID, localPath string, size int64) *DownloadFileBar {
	// Truncate local path to last 2 components for readability
	destPath := truncatePath(localPath, 2)

	fb := &DownloadFileBar{
		ui:         u,
		index:      index,
		fileID:     fileID,
		localPath:  localPath,
		size:       size,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
	}

	if u.isTerminal {
		fb.bar = u.progress.New(size,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				// Dynamic label with retry count
				decor.Any(func(s decor.Statistics) string {
					retries := atomic.LoadInt32(&fb.retries)
					base := fmt.Sprintf("[%d/%d] %s (%.1f MiB) ← %s",
						fb.index, u.totalFiles,
						destPath,
						float64(size)/(1024*1024),
						fileID)
					if retries > 0 {
						return fmt.Sprintf("%s (retry %d)", base, retries)
					}
					return base
				}, decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Any(func(s decor.Statistics) string {
					pct := float64(s.Current) / float64(s.Total) * 100
					if s.Total == 0 {
						pct = 0
					}
					return fmt.Sprintf("%6.2f%%", pct)
				}, decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 60, decor.WCSyncSpace),
				decor.Name("  "),
				decor.Name("ETA ", decor.WCSyncWidth),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Printf("Downloading [%d/%d]: %s (%.1f MiB) ← %s\n",
			index, u.totalFiles,
			destPath,
			float64(size)/(1024*1024),
			fileID)
	}

	u.bars.Store(fileID, fb)
	return fb
}

// UpdateProgress updates the progress bar based on a fraction (0.0 to 1.0).
// Updates are throttled; elapsed time is always fed to mpb so EWMA speed
// and ETA stay accurate even when no bytes moved.
func (f *DownloadFileBar) UpdateProgress(fraction float64) {
	if f.bar == nil {
		return
	}

	now := time.Now()
	elapsed := now.Sub(f.lastUpdate)

	currentBytes := int64(fraction * float64(f.size))
	bytesDelta := currentBytes - f.lastBytes

	const updateInterval = 300 * time.Millisecond

	if elapsed >= updateInterval {
		f.bar.EwmaIncrBy(int(bytesDelta), elapsed)
		f.lastBytes = currentBytes
		f.lastUpdate = now
	}
}

// SetRetry updates the retry counter and visually marks the bar
func (f *DownloadFileBar) SetRetry(count int) {
	atomic.StoreInt32(&f.retries, int32(count))
	if f.bar != nil && count > 0 {
		f.bar.SetRefill(f.lastBytes)
	}
}

// Complete marks the download as finished and prints a summary
func (f *DownloadFileBar) Complete(err error) {
	elapsed := time.Since(f.startTime)
	speed := float64(f.size) / elapsed.Seconds() / (1024 * 1024)

	if err == nil {
		if f.bar != nil {
			// Ensure exact 100% completion
			f.bar.SetCurrent(f.size)
			f.bar.SetTotal(f.size, true)
		}

		msg := fmt.Sprintf("✓ %s ← %s (%.1f MiB, %s, %.1f MiB/s)\n",
			truncatePath(f.localPath, 2),
			f.fileID,
			float64(f.size)/(1024*1024),
			elapsed.Round(time.Second),
			speed)

		// Write through mpb's writer to avoid corrupting active bars
		if f.ui.isTerminal && f.ui.progress != nil {
			f.ui.progress.Write([]byte(msg))
		} else {
			fmt.Print(msg)
		}
	} else {
		if f.bar != nil {
			// Keep the bar visible to show the failure
			f.bar.Abort(false)
		}

		retries := atomic.LoadInt32(&f.retries)
		msg := fmt.Sprintf("✗ %s ← %s: %v (after %d retries)\n",
			truncatePath(f.localPath, 2),
			f.fileID,
			err,
			retries)

		if f.ui.isTerminal && f.ui.progress != nil {
			f.ui.progress.Write([]byte(msg))
		} else {
			fmt.Print(msg)
		}
	}

	atomic.AddInt32(&f.ui.completed, 1)
}

// Wait blocks until all progress bars complete
func (u *DownloadUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// LogWriter returns an io.Writer that safely prints above the progress bars
func (u *DownloadUI) LogWriter() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// GetCompleted returns the number of completed downloads
func (u *DownloadUI) GetCompleted() int {
	return int(atomic.LoadInt32(&u.completed))
}

// IsTerminal returns whether output is to a terminal
func (u *DownloadUI) IsTerminal() bool {
	return u.isTerminal
}

// truncatePath truncates a file path to show only the last N components
// Example: truncatePath("/a/b/c/d/file.txt", 3) → "…/c/d/file.txt"
func truncatePath(path string, maxComponents int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= maxComponents {
		return filepath.Base(path)
	}
	relevant := parts[len(parts)-maxComponents:]
	return "…/" + strings.Join(relevant, "/")
}
