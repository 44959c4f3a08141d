// Package cli provides file read commands.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chunkstore-io/chunkstore/internal/bucket"
	"github.com/chunkstore-io/chunkstore/internal/constants"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (download, cat, read, info)",
		Long:  `Commands for reading files from the chunk store.`,
	}

	filesCmd.AddCommand(newFilesDownloadCmd())
	filesCmd.AddCommand(newFilesCatCmd())
	filesCmd.AddCommand(newFilesReadCmd())
	filesCmd.AddCommand(newFilesInfoCmd())

	return filesCmd
}

// openBucket loads config and opens the configured store.
// The caller must Close the returned store when done.
func openBucket() (*bucket.Bucket, store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := newStore(GetContext(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	return bucket.New(st, GetLogger().Zerolog()), st, nil
}

// newFilesDownloadCmd creates the 'files download' command.
func newFilesDownloadCmd() *cobra.Command {
	var outputDir string
	var maxConcurrent int
	var overwrite bool
	var skipExisting bool
	var skipChecksum bool

	cmd := &cobra.Command{
		Use:   "download <file-id> [file-id...]",
		Short: "Download files to local disk",
		Long: `Download one or more files from the chunk store.

Each file is reconstructed from its chunk records and verified against
its recorded checksum after download.

Examples:
  # Download single file
  chunkstore files download 65a1f0c2 --outdir ./downloads

  # Download multiple files concurrently
  chunkstore files download 65a1f0c2 65a1f0c3 --outdir ./results

  # Overwrite existing local files
  chunkstore files download 65a1f0c2 --overwrite`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxConcurrent < constants.MinMaxConcurrent || maxConcurrent > constants.MaxMaxConcurrent {
				return fmt.Errorf("--max-concurrent must be between %d and %d, got %d",
					constants.MinMaxConcurrent, constants.MaxMaxConcurrent, maxConcurrent)
			}
			if overwrite && skipExisting {
				return fmt.Errorf("only one of --overwrite or --skip can be specified")
			}

			bkt, st, err := openBucket()
			if err != nil {
				return err
			}
			defer st.Close()

			return executeFileDownload(GetContext(), bkt, downloadOptions{
				FileIDs:       args,
				OutputDir:     outputDir,
				MaxConcurrent: maxConcurrent,
				Overwrite:     overwrite,
				SkipExisting:  skipExisting,
				SkipChecksum:  skipChecksum,
			}, GetLogger())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", ".", "Output directory for downloaded files")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", constants.DefaultMaxConcurrent,
		fmt.Sprintf("Maximum concurrent downloads (%d-%d)", constants.MinMaxConcurrent, constants.MaxMaxConcurrent))
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&skipExisting, "skip", false, "Skip files that already exist locally")
	cmd.Flags().BoolVar(&skipChecksum, "skip-checksum", false, "Skip checksum verification (not recommended, allows corrupted downloads)")

	return cmd
}

// newFilesCatCmd creates the 'files cat' command.
func newFilesCatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <file-id>",
		Short: "Stream a file to stdout",
		Long: `Stream the full content of a file to stdout.

Uses a forward-only stream, so memory stays bounded at one chunk
regardless of file size.

Example:
  chunkstore files cat 65a1f0c2 > output.dat`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bkt, st, err := openBucket()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := GetContext()
			s, err := bkt.OpenDownloadStream(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", args[0], err)
			}
			defer s.Close()

			if _, err := s.CopyToContext(ctx, os.Stdout, 0); err != nil {
				return fmt.Errorf("failed to stream file %s: %w", args[0], err)
			}
			return nil
		},
	}
	return cmd
}

// newFilesReadCmd creates the 'files read' command.
func newFilesReadCmd() *cobra.Command {
	var offset int64
	var length int64

	cmd := &cobra.Command{
		Use:   "read <file-id>",
		Short: "Read a byte range of a file to stdout",
		Long: `Read a byte range of a file to stdout without downloading the rest.

Uses a seekable stream, so only the chunks covering the requested
range are fetched.

Examples:
  # First 4 KB
  chunkstore files read 65a1f0c2 --length 4096

  # 1 MB starting at offset 10 MB
  chunkstore files read 65a1f0c2 --offset 10485760 --length 1048576

  # Everything from an offset to the end
  chunkstore files read 65a1f0c2 --offset 10485760`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must be non-negative, got %d", offset)
			}

			bkt, st, err := openBucket()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := GetContext()
			s, err := bkt.OpenSeekableStream(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", args[0], err)
			}
			defer s.Close()

			return executeRangeRead(ctx, s, os.Stdout, offset, length)
		},
	}

	cmd.Flags().Int64Var(&offset, "offset", 0, "Byte offset to start reading from")
	cmd.Flags().Int64Var(&length, "length", -1, "Number of bytes to read (-1 = to end of file)")

	return cmd
}

// newFilesInfoCmd creates the 'files info' command.
func newFilesInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file-id>",
		Short: "Show file metadata",
		Long: `Show the stored metadata of a file: name, length, chunk layout
and checksum.

Example:
  chunkstore files info 65a1f0c2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bkt, st, err := openBucket()
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := bkt.OpenDownloadStream(GetContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", args[0], err)
			}
			defer s.Close()

			info := s.FileInfo()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", info.ID)
			if info.Name != "" {
				fmt.Fprintf(w, "Name:\t%s\n", info.Name)
			}
			fmt.Fprintf(w, "Length:\t%d bytes\n", info.Length)
			fmt.Fprintf(w, "Chunk size:\t%d bytes\n", info.ChunkSize)
			fmt.Fprintf(w, "Chunks:\t%d\n", info.ChunkCount())
			if !info.UploadDate.IsZero() {
				fmt.Fprintf(w, "Uploaded:\t%s\n", info.UploadDate.Format("2006-01-02 15:04:05 MST"))
			}
			if info.Checksum != "" {
				fmt.Fprintf(w, "Checksum:\tsha512:%s\n", info.Checksum)
			}
			for k, v := range info.Metadata {
				fmt.Fprintf(w, "Meta %s:\t%s\n", k, v)
			}
			return w.Flush()
		},
	}
	return cmd
}
