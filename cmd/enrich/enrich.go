package enrich

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lepinkainen/maldb/cmd/importer"
	"github.com/lepinkainen/maldb/internal/csvutil"
)

// flushEvery is how many rows go between progress flushes of the
// temporary output file
const flushEvery = 50

// Options bundles the parameters for a single enrich run.
type Options struct {
	// CSVFile is the input CSV path
	CSVFile string
	// Output is the enriched CSV path written on success
	Output string
	// ScrapeFallback enables scraping the MyAnimeList page when the API
	// lookup yields no image
	ScrapeFallback bool
	// DownloadCovers enables saving each cover image under CoversDir
	DownloadCovers bool
	// CoversDir is where downloaded covers are stored
	CoversDir string
	// MaxWidth caps the stored width of downloaded covers in pixels
	MaxWidth int
}

// EnrichAnime streams the input CSV and writes a copy with an image
// column filled from the Jikan API. Rows already answered by a previous
// run's output are reused without a lookup. The output is written to a
// temporary file that replaces Output only after the full pass
// succeeds, so an interrupted run never leaves a truncated file behind.
func EnrichAnime(opts Options) error {
	ctx := context.Background()

	reader, err := csvutil.Open(opts.CSVFile)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	idCol := importer.ResolveColumns(header).MALID
	if idCol < 0 {
		slog.Warn("No external id column in header, rows get an empty image", "columns", importer.NormalizedHeader(header))
	}

	outHeader, imageCol := insertImageColumn(header, idCol)

	existing := LoadExistingImages(opts.Output)
	if len(existing) > 0 {
		slog.Info("Resuming from existing output", "output", opts.Output, "known", len(existing))
	}

	tempPath := fmt.Sprintf("%s.tmp.%d", opts.Output, os.Getpid())
	outFile, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = outFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	writer := csv.NewWriter(outFile)
	if err := writer.Write(outHeader); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	slog.Info("Starting image enrichment", "csv", opts.CSVFile, "output", opts.Output)

	processed := 0
	fetched := 0
	reused := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Row skipped", "row", row.Number, "error", err)
			continue
		}

		processed++

		malID := strings.TrimSpace(row.Get(idCol))
		imageURL := ""
		if malID != "" {
			if cached, ok := existing[malID]; ok {
				imageURL = cached
				reused++
			} else {
				imageURL = lookupRowImage(ctx, malID, opts)
				fetched++
			}
		}

		if opts.DownloadCovers && imageURL != "" {
			if err := DownloadCover(ctx, imageURL, malID, opts.CoversDir, opts.MaxWidth); err != nil {
				slog.Warn("Cover download failed", "mal_id", malID, "error", err)
			}
		}

		if err := writer.Write(outputRow(row, len(header), imageCol, imageURL)); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}

		if processed%flushEvery == 0 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return fmt.Errorf("failed to flush output: %w", err)
			}
			slog.Info("Progress saved", "rows", processed)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	if err := os.Rename(tempPath, opts.Output); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	committed = true

	slog.Info("Enrichment complete", "output", opts.Output, "rows", processed, "fetched", fetched, "reused", reused)
	return nil
}

// lookupRowImage resolves one id through the API, then optionally the
// page scrape. Failures count as misses for the row, never as run
// errors.
func lookupRowImage(ctx context.Context, malID string, opts Options) string {
	imageURL, err := LookupImageURLWithRetry(ctx, malID)
	if err != nil {
		slog.Warn("Image lookup failed", "mal_id", malID, "error", err)
	}
	if imageURL == "" && opts.ScrapeFallback {
		imageURL, err = ScrapeImageURL(ctx, malID)
		if err != nil {
			slog.Warn("Page scrape failed", "mal_id", malID, "error", err)
		}
	}
	return imageURL
}

// insertImageColumn returns the output header with "image" inserted
// right after the id column, or prepended when the header has no id
// column, plus the index the image value occupies in output rows.
func insertImageColumn(header []string, idCol int) ([]string, int) {
	out := make([]string, 0, len(header)+1)
	if idCol < 0 {
		out = append(out, "image")
		out = append(out, header...)
		return out, 0
	}
	out = append(out, header[:idCol+1]...)
	out = append(out, "image")
	out = append(out, header[idCol+1:]...)
	return out, idCol + 1
}

// outputRow pads or trims a data row to the input header's width and
// splices the image value into place.
func outputRow(row csvutil.Row, headerWidth, imageCol int, imageURL string) []string {
	out := make([]string, 0, headerWidth+1)
	for i := 0; i < headerWidth+1; i++ {
		switch {
		case i == imageCol:
			out = append(out, imageURL)
		case i < imageCol:
			out = append(out, row.Get(i))
		default:
			out = append(out, row.Get(i-1))
		}
	}
	return out
}
