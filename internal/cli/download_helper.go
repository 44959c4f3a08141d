package cli

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chunkstore-io/chunkstore/internal/bucket"
	"github.com/chunkstore-io/chunkstore/internal/logging"
	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/progress"
	"github.com/chunkstore-io/chunkstore/internal/store"
	"github.com/chunkstore-io/chunkstore/internal/stream"
)

// downloadOptions holds the settings for a multi-file download.
type downloadOptions struct {
	FileIDs       []string
	OutputDir     string
	MaxConcurrent int
	Overwrite     bool
	SkipExisting  bool
	SkipChecksum  bool
}

// executeFileDownload downloads the given files concurrently.
func executeFileDownload(
	ctx context.Context,
	bkt *bucket.Bucket,
	opts downloadOptions,
	logger *logging.Logger,
) error {
	if len(opts.FileIDs) == 0 {
		return fmt.Errorf("at least one file ID is required")
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	logger.Info().
		Int("count", len(opts.FileIDs)).
		Str("outdir", outputDir).
		Msg("Starting file download")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Resolve metadata up front so filename collisions can be
	// disambiguated before any file is written
	streams := make([]*stream.ForwardStream, len(opts.FileIDs))
	infos := make([]*models.FileInfo, len(opts.FileIDs))
	for i, fid := range opts.FileIDs {
		s, err := bkt.OpenDownloadStream(ctx, fid)
		if err != nil {
			closeStreams(streams)
			return fmt.Errorf("failed to open file %s: %w", fid, err)
		}
		streams[i] = s
		infos[i] = s.FileInfo()
	}
	defer closeStreams(streams)

	paths, hadDupes := buildOutputPaths(infos, outputDir)
	if hadDupes {
		logger.Warn().Msg("Duplicate filenames detected, appending file IDs to disambiguate")
	}

	// A single file gets the simple one-line bar; multiple files get the
	// multi-bar UI
	if len(opts.FileIDs) == 1 {
		return downloadSingleFile(ctx, streams[0], paths[infos[0].ID], opts, logger)
	}

	fmt.Printf("Downloading %d file(s) to: %s\n\n", len(opts.FileIDs), outputDir)

	downloadUI := progress.NewDownloadUI(len(opts.FileIDs))

	// NOTE: Do NOT redirect zerolog through downloadUI's writer.
	// Console log lines mixed with ANSI redraws from mpb corrupt the bars.

	defer downloadUI.Wait()

	semaphore := make(chan struct{}, opts.MaxConcurrent)
	var wg sync.WaitGroup
	errChan := make(chan error, len(opts.FileIDs))
	skipped := make(chan string, len(opts.FileIDs))

	for i := range opts.FileIDs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			info := infos[idx]
			outputPath := paths[info.ID]

			// Conflict handling
			if _, err := os.Stat(outputPath); err == nil {
				if opts.SkipExisting {
					skipped <- outputPath
					return
				}
				if !opts.Overwrite {
					errChan <- fmt.Errorf("file exists: %s (use --overwrite or --skip)", outputPath)
					return
				}
			}

			bar := downloadUI.AddFileBar(idx+1, info.ID, outputPath, info.Length)

			total := info.Length
			err := downloadStreamToFile(ctx, streams[idx], outputPath, func(written int64) {
				if total > 0 {
					bar.UpdateProgress(float64(written) / float64(total))
				}
			})
			if err == nil && !opts.SkipChecksum && info.Checksum != "" {
				err = verifyChecksum(outputPath, info.Checksum)
			}

			bar.Complete(err)
			if err != nil {
				errChan <- fmt.Errorf("download %s: %w", info.ID, err)
			}
		}(i)
	}

	wg.Wait()
	close(errChan)
	close(skipped)

	for path := range skipped {
		logger.Info().Str("path", path).Msg("Skipped existing file")
	}

	var failed int
	for err := range errChan {
		failed++
		logger.Error().Err(err).Msg("Download failed")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(opts.FileIDs))
	}
	return nil
}

// closeStreams closes every non-nil stream, ignoring close errors.
func closeStreams(streams []*stream.ForwardStream) {
	for _, s := range streams {
		if s != nil {
			s.Close()
		}
	}
}

// buildOutputPaths maps each file ID to its local output path, appending
// the file ID to the name when multiple files share a filename.
// Returns true when any collision was detected.
func buildOutputPaths(infos []*models.FileInfo, outputDir string) (map[string]string, bool) {
	nameCount := make(map[string]int)
	for _, info := range infos {
		nameCount[outputName(info)]++
	}

	paths := make(map[string]string, len(infos))
	hadDupes := false
	for _, info := range infos {
		name := outputName(info)
		if nameCount[name] > 1 {
			hadDupes = true
			ext := filepath.Ext(name)
			base := strings.TrimSuffix(name, ext)
			name = base + "_" + info.ID + ext
		}
		paths[info.ID] = filepath.Join(outputDir, name)
	}
	return paths, hadDupes
}

// outputName picks the local filename for a file, falling back to the
// file ID when no name was recorded. Any path components in the stored
// name are stripped to prevent writes outside the output directory.
func outputName(info *models.FileInfo) string {
	if info.Name == "" {
		return info.ID
	}
	name := filepath.Base(filepath.Clean(info.Name))
	if name == "." || name == string(filepath.Separator) {
		return info.ID
	}
	return name
}

// downloadSingleFile downloads one file with the single-line progress bar.
func downloadSingleFile(
	ctx context.Context,
	s *stream.ForwardStream,
	outputPath string,
	opts downloadOptions,
	logger *logging.Logger,
) error {
	info := s.FileInfo()

	if _, err := os.Stat(outputPath); err == nil {
		if opts.SkipExisting {
			logger.Info().Str("path", outputPath).Msg("Skipped existing file")
			return nil
		}
		if !opts.Overwrite {
			return fmt.Errorf("file exists: %s (use --overwrite or --skip)", outputPath)
		}
	}

	reporter := progress.NewCLIReporter()
	reporter.Start(info.Length, "Downloading "+outputName(info))

	err := downloadStreamToFile(ctx, s, outputPath, reporter.Update)
	if err == nil && !opts.SkipChecksum && info.Checksum != "" {
		reporter.SetDescription("Verifying " + outputName(info))
		err = verifyChecksum(outputPath, info.Checksum)
	}

	if err != nil {
		reporter.Error(err)
		return fmt.Errorf("download %s: %w", info.ID, err)
	}
	reporter.Finish()

	logger.Info().
		Str("file_id", info.ID).
		Str("path", outputPath).
		Int64("bytes", info.Length).
		Msg("Download complete")
	return nil
}

// progressWriter forwards writes and reports the running byte count.
type progressWriter struct {
	w          io.Writer
	written    int64
	onProgress func(written int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.onProgress(p.written)
	return n, err
}

// downloadStreamToFile copies a stream to a local file with progress updates.
func downloadStreamToFile(ctx context.Context, s *stream.ForwardStream, path string, onProgress func(written int64)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	pw := &progressWriter{w: f, onProgress: onProgress}
	_, copyErr := s.CopyToContext(ctx, pw, 0)

	if err := f.Close(); err != nil && copyErr == nil {
		copyErr = fmt.Errorf("failed to close %s: %w", path, err)
	}
	if copyErr != nil {
		// Remove the partial file so a failed download is not mistaken
		// for a complete one
		os.Remove(path)
		return copyErr
	}
	return nil
}

// verifyChecksum recomputes the SHA-512 of the downloaded file and compares
// it to the recorded value. A mismatch means the stored chunk records do
// not reassemble into the original content.
func verifyChecksum(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for verification: %w", path, err)
	}
	defer f.Close()

	h := sha512.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("checksum mismatch for %s (got %s, want %s): %w",
			path, got, want, store.ErrFileCorrupt)
	}
	return nil
}

// executeRangeRead seeks to offset and copies length bytes to w.
// A negative length reads to the end of the file.
func executeRangeRead(ctx context.Context, s *stream.SeekableStream, w io.Writer, offset, length int64) error {
	if offset > 0 {
		if _, err := s.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to offset %d: %w", offset, err)
		}
	}

	remaining := length
	if remaining < 0 {
		remaining = s.Length() - offset
	}
	if remaining <= 0 {
		return nil
	}

	buf := make([]byte, 64*1024)
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}

		read, err := s.ReadContext(ctx, buf[:n])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return fmt.Errorf("write failed: %w", werr)
			}
			remaining -= int64(read)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
	}
	return nil
}
