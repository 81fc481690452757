package covers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"navidrome-wrapped/internal/core/stats"
	"navidrome-wrapped/internal/shared"
)

// pngHeader is enough for content sniffing
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type fakeCoverAPI struct {
	mu     sync.Mutex
	images map[string][]byte
	errOn  string
	calls  int
}

func (f *fakeCoverAPI) GetCoverArt(ctx context.Context, coverArtID string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if coverArtID == f.errOn {
		return nil, errors.New("connection reset")
	}
	return f.images[coverArtID], nil
}

func rankedAlbums() *stats.Summary {
	return &stats.Summary{TopAlbums: []stats.AlbumRank{
		{Name: "First Album", ID: "al-1", CoverArtID: "cv-1", Plays: 10},
		{Name: "Second/Album", ID: "al-2", CoverArtID: "cv-2", Plays: 8},
		{Name: "No Cover", ID: "al-3", Plays: 5},
		{Name: "Broken", ID: "al-4", CoverArtID: "cv-4", Plays: 3},
	}}
}

func TestDownloadTopAlbums(t *testing.T) {
	api := &fakeCoverAPI{
		images: map[string][]byte{"cv-1": pngHeader, "cv-2": pngHeader},
		errOn:  "cv-4",
	}
	warnings := shared.NewWarningCollector(true)
	dir := t.TempDir()

	saved, err := NewDownloader(api, 2, warnings).DownloadTopAlbums(context.Background(), rankedAlbums(), dir)
	if err != nil {
		t.Fatalf("DownloadTopAlbums failed: %v", err)
	}
	if saved != 2 {
		t.Errorf("Expected 2 covers saved, got %d", saved)
	}
	// The album without a cover ID is skipped without a request
	if api.calls != 3 {
		t.Errorf("Expected 3 cover requests, got %d", api.calls)
	}
	// A failed download is a warning, not an error
	if warnings.GetWarningCount() != 1 {
		t.Errorf("Expected 1 warning, got %d", warnings.GetWarningCount())
	}

	// Rank prefix preserved, path separators sanitised, extension sniffed
	if _, err := os.Stat(filepath.Join(dir, "01 - First Album.png")); err != nil {
		t.Errorf("First cover missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "02 - Second_Album.png")); err != nil {
		t.Errorf("Sanitised cover missing: %v", err)
	}
}

func TestDownloadEmptyResponseIsWarning(t *testing.T) {
	api := &fakeCoverAPI{images: map[string][]byte{"cv-1": {}}}
	warnings := shared.NewWarningCollector(true)

	summary := &stats.Summary{TopAlbums: []stats.AlbumRank{
		{Name: "Empty", ID: "al-1", CoverArtID: "cv-1", Plays: 1},
	}}
	saved, err := NewDownloader(api, 1, warnings).DownloadTopAlbums(context.Background(), summary, t.TempDir())
	if err != nil {
		t.Fatalf("DownloadTopAlbums failed: %v", err)
	}
	if saved != 0 || warnings.GetWarningCount() != 1 {
		t.Errorf("Empty blob should warn and save nothing, got saved=%d warnings=%d", saved, warnings.GetWarningCount())
	}
}

func TestImageExtension(t *testing.T) {
	if got := imageExtension(pngHeader); got != ".png" {
		t.Errorf("PNG header should sniff to .png, got %s", got)
	}
	if got := imageExtension([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0}); got != ".jpg" {
		t.Errorf("JPEG header should sniff to .jpg, got %s", got)
	}
	if got := imageExtension([]byte("not an image")); got != ".jpg" {
		t.Errorf("Unknown data defaults to .jpg, got %s", got)
	}
}
