package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lepinkainen/maldb/internal/config"
	"github.com/lepinkainen/maldb/internal/fileutil"
)

const defaultMaxWidth = 500

// CoverPath returns where a cover for the given id is stored on disk
func CoverPath(coversDir, malID string) string {
	return filepath.Join(coversDir, fileutil.SanitizeFilename(malID)+".jpg")
}

// DownloadCover downloads the cover image for an id into coversDir,
// resizing anything wider than maxWidth. An existing file is kept unless
// config.UpdateCovers is set.
func DownloadCover(ctx context.Context, imageURL, malID, coversDir string, maxWidth int) error {
	if imageURL == "" || malID == "" {
		return nil
	}
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}

	savePath := CoverPath(coversDir, malID)
	if fileutil.FileExists(savePath) && !config.UpdateCovers {
		slog.Debug("Cover already downloaded", "path", savePath)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Referer", config.Referer)

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d downloading cover", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}

	width := img.Bounds().Dx()
	if width > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return err
	}

	return imaging.Save(img, savePath, imaging.JPEGQuality(85))
}
