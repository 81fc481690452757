package covers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"navidrome-wrapped/internal/config"
	"navidrome-wrapped/internal/core/stats"
	"navidrome-wrapped/internal/shared"
)

// CoverAPI is the slice of the Navidrome client the downloader needs
type CoverAPI interface {
	GetCoverArt(ctx context.Context, coverArtID string) ([]byte, error)
}

// Downloader saves cover art for the top albums of a scan. Downloads run with
// bounded parallelism; this is safe because each request carries its own
// single-use salt.
type Downloader struct {
	api         CoverAPI
	parallelism int
	warnings    *shared.WarningCollector
}

// NewDownloader creates a cover art downloader
func NewDownloader(api CoverAPI, parallelism int, warnings *shared.WarningCollector) *Downloader {
	if parallelism <= 0 {
		parallelism = 1
	}
	if warnings == nil {
		warnings = shared.NewWarningCollector(false)
	}
	return &Downloader{api: api, parallelism: parallelism, warnings: warnings}
}

// DownloadTopAlbums writes one image file per ranked album into dir and
// returns the number of covers saved. Individual failures become warnings,
// not errors.
func (d *Downloader) DownloadTopAlbums(ctx context.Context, summary *stats.Summary, dir string) (int, error) {
	if err := config.CreateDirIfNotExists(dir); err != nil {
		return 0, fmt.Errorf("failed to create covers directory: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	saved := 0
	sem := semaphore.NewWeighted(int64(d.parallelism))

	for rank, album := range summary.TopAlbums {
		if album.CoverArtID == "" {
			continue
		}
		wg.Add(1)
		go func(rank int, album stats.AlbumRank) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			data, err := d.api.GetCoverArt(ctx, album.CoverArtID)
			if err != nil {
				d.warnings.AddCoverArtDownloadWarning(album.Name, err.Error())
				return
			}
			if len(data) == 0 {
				d.warnings.AddCoverArtDownloadWarning(album.Name, "empty response")
				return
			}

			name := fmt.Sprintf("%02d - %s%s", rank+1, shared.SanitizeFileName(album.Name), imageExtension(data))
			if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
				d.warnings.AddCoverArtDownloadWarning(album.Name, err.Error())
				return
			}

			mu.Lock()
			saved++
			mu.Unlock()
		}(rank, album)
	}

	wg.Wait()
	return saved, nil
}

// imageExtension picks a file extension by sniffing the blob
func imageExtension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
