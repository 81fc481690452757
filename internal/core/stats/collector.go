package stats

import (
	"context"
	"fmt"
	"time"

	"navidrome-wrapped/internal/api/navidrome"
	"navidrome-wrapped/internal/config"
	"navidrome-wrapped/internal/shared"
)

// Detail progress is reported every progressEvery albums and on the last one
const progressEvery = 50

// LibraryAPI is the slice of the Navidrome client the collector needs.
// GetAlbumDetail returning (nil, nil) signals a skippable album.
type LibraryAPI interface {
	GetAlbumPage(ctx context.Context, offset, size int) ([]navidrome.Album, error)
	GetAlbumDetail(ctx context.Context, albumID string) (*navidrome.AlbumDetail, error)
}

// SleepFunc pauses between requests; injected so tests run without real timers
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures one scan
type Options struct {
	Username    string
	PageSize    int
	MaxAlbums   int
	AlbumDelay  time.Duration
	DetailDelay time.Duration
	Window      *TimeWindow
	Sleep       SleepFunc
	Warnings    *shared.WarningCollector
}

// Collector runs the full library scan: paginated album listing, sequential
// per-album detail fetches, metric accumulation, summary building
type Collector struct {
	api  LibraryAPI
	opts Options
}

// NewCollector creates a collector, filling zero-valued options with defaults
func NewCollector(api LibraryAPI, opts Options) *Collector {
	if opts.PageSize <= 0 {
		opts.PageSize = config.DefaultAlbumPageSize
	}
	if opts.MaxAlbums <= 0 {
		opts.MaxAlbums = config.DefaultMaxAlbums
	}
	if opts.AlbumDelay == 0 {
		opts.AlbumDelay = config.DefaultAlbumDelay
	}
	if opts.DetailDelay == 0 {
		opts.DetailDelay = config.DefaultDetailDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Warnings == nil {
		opts.Warnings = shared.NewWarningCollector(false)
	}
	return &Collector{api: api, opts: opts}
}

// Collect runs one scan to completion. A fresh accumulator is created per
// call; concurrent Collect calls share nothing. Any album-page failure is
// fatal for the whole scan, while an individual album detail returning no
// payload is skipped.
func (c *Collector) Collect(ctx context.Context, progress ProgressFunc) (*Summary, error) {
	if progress == nil {
		progress = nopProgress
	}

	progress(0, "Starting album scan", PhaseAlbums)
	albums, truncated, err := c.fetchAlbumPages(ctx, progress)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator(c.opts.Window, c.opts.Warnings)
	acc.setAlbums(albums)

	progress(30, fmt.Sprintf("Processing %d albums", len(albums)), PhaseAlbums)
	if err := c.enrichAlbums(ctx, albums, acc, progress); err != nil {
		return nil, err
	}

	if truncated {
		progress(85, fmt.Sprintf("Sampled %d albums for performance", len(albums)), PhaseWrap)
	}
	progress(90, "Building final summary", PhaseWrap)

	summary := acc.buildSummary(c.opts.Username, truncated)

	progress(100, "Done", PhaseComplete)
	return summary, nil
}

// fetchAlbumPages pulls fixed-size pages until a short page (natural end) or
// the scan cap. The returned flag reports whether the cap cut the scan short.
func (c *Collector) fetchAlbumPages(ctx context.Context, progress ProgressFunc) ([]navidrome.Album, bool, error) {
	var albums []navidrome.Album
	offset := 0

	for len(albums) < c.opts.MaxAlbums {
		batch, err := c.api.GetAlbumPage(ctx, offset, c.opts.PageSize)
		if err != nil {
			return nil, false, fmt.Errorf("album scan failed: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		albums = append(albums, batch...)
		offset += len(batch)

		ratio := float64(len(albums)) / float64(c.opts.MaxAlbums)
		if ratio > 1 {
			ratio = 1
		}
		fetched := len(albums)
		if fetched > c.opts.MaxAlbums {
			fetched = c.opts.MaxAlbums
		}
		progress(10+ratio*20, fmt.Sprintf("Fetched %d albums", fetched), PhaseAlbums)

		if len(batch) < c.opts.PageSize {
			break
		}
		if len(albums) >= c.opts.MaxAlbums {
			return albums[:c.opts.MaxAlbums], true, nil
		}
		if err := c.opts.Sleep(ctx, c.opts.AlbumDelay); err != nil {
			return nil, false, err
		}
	}

	// A short final page can still push the total past the cap; clamp so no
	// detail fetches are spent beyond it, and disclose the sampling
	if len(albums) > c.opts.MaxAlbums {
		return albums[:c.opts.MaxAlbums], true, nil
	}
	return albums, false, nil
}

// enrichAlbums fetches album details strictly sequentially and feeds every
// song into the accumulator. Sequential fetching bounds memory and keeps
// progress reporting monotonic.
func (c *Collector) enrichAlbums(ctx context.Context, albums []navidrome.Album, acc *accumulator, progress ProgressFunc) error {
	total := len(albums)
	for i, album := range albums {
		detail, err := c.api.GetAlbumDetail(ctx, album.ID)
		if err != nil {
			return fmt.Errorf("album scan failed: %w", err)
		}
		if detail == nil {
			c.opts.Warnings.AddAlbumDetailWarning(album.Name, album.ID)
		} else {
			for _, song := range detail.Song {
				acc.addSong(song, detail)
			}
		}

		if i%progressEvery == 0 || i == total-1 {
			ratio := float64(i+1) / float64(total)
			progress(30+ratio*55, fmt.Sprintf("Album %d/%d", i+1, total), PhaseAlbums)
		}

		if i < total-1 {
			if err := c.opts.Sleep(ctx, c.opts.DetailDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// sleepContext is the default SleepFunc; it honours context cancellation
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
