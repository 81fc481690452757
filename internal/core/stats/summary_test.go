package stats

import (
	"fmt"
	"testing"

	"navidrome-wrapped/internal/api/navidrome"
)

func TestTopArtistsExcludeVariousArtists(t *testing.T) {
	acc := newAccumulator(nil, nil)
	compilation := testAlbum("al-va", "Hits", "Various Artists")

	// The compilation sentinel outplays everyone
	acc.addSong(navidrome.Song{Title: "Hit", PlayCount: 99}, compilation)
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("Artist %02d", i)
		acc.addSong(navidrome.Song{
			Title: "T", ArtistID: fmt.Sprintf("ar-%d", i), Artist: name, PlayCount: int64(20 - i),
		}, testAlbum("al-1", "Album", name))
	}

	summary := acc.buildSummary("alice", false)
	if len(summary.TopArtists) != topArtistCount {
		t.Fatalf("Expected a full top-%d list, got %d", topArtistCount, len(summary.TopArtists))
	}
	for _, artist := range summary.TopArtists {
		if artist.Name == "Various Artists" {
			t.Fatal("The compilation sentinel must never rank")
		}
	}
	// Exclusion happens before truncation, so real artists fill every slot
	if summary.TopArtists[0].Name != "Artist 00" || summary.TopArtists[0].Plays != 20 {
		t.Errorf("Unexpected leader: %+v", summary.TopArtists[0])
	}
	for _, dive := range summary.ArtistDeepDives {
		if dive.Name == "Various Artists" {
			t.Fatal("The compilation sentinel must not get a deep dive")
		}
	}
}

func TestVariousArtistsExclusionIsCaseInsensitive(t *testing.T) {
	acc := newAccumulator(nil, nil)
	acc.addSong(navidrome.Song{Title: "Hit", PlayCount: 99}, testAlbum("al-va", "Hits", "various ARTISTS"))
	acc.addSong(navidrome.Song{Title: "T", ArtistID: "ar-1", Artist: "Real", PlayCount: 1}, testAlbum("al-1", "Album", "Real"))

	summary := acc.buildSummary("alice", false)
	if len(summary.TopArtists) != 1 || summary.TopArtists[0].Name != "Real" {
		t.Errorf("Expected only the real artist, got %+v", summary.TopArtists)
	}
}

func TestConcentration(t *testing.T) {
	// No plays anywhere: concentration must be exactly zero, never NaN
	acc := newAccumulator(nil, nil)
	album := testAlbum("al-1", "Album", "Artist")
	acc.addSong(navidrome.Song{Title: "T", ArtistID: "A1", Artist: "A", PlayCount: 0}, album)
	acc.addSong(navidrome.Song{Title: "U", ArtistID: "A2", Artist: "B", PlayCount: 0}, album)

	if got := acc.diversityStats().ConcentrationPct; got != 0 {
		t.Errorf("Zero plays must yield concentration 0, got %v", got)
	}

	// Two artists at 50/50: 1 - (0.25 + 0.25) = 50%
	acc = newAccumulator(nil, nil)
	acc.addSong(navidrome.Song{Title: "T", ArtistID: "A1", Artist: "A", PlayCount: 10}, album)
	acc.addSong(navidrome.Song{Title: "U", ArtistID: "A2", Artist: "B", PlayCount: 10}, album)
	if got := acc.diversityStats().ConcentrationPct; got != 50.0 {
		t.Errorf("Even split should concentrate at 50%%, got %v", got)
	}

	// All plays on one artist: no spread at all
	acc = newAccumulator(nil, nil)
	acc.addSong(navidrome.Song{Title: "T", ArtistID: "A1", Artist: "A", PlayCount: 10}, album)
	acc.addSong(navidrome.Song{Title: "U", ArtistID: "A2", Artist: "B", PlayCount: 0}, album)
	if got := acc.diversityStats().ConcentrationPct; got != 0.0 {
		t.Errorf("A single played artist spreads nothing, got %v", got)
	}
}

func TestTopTracksStableTieOrder(t *testing.T) {
	acc := newAccumulator(nil, nil)
	album := testAlbum("al-1", "Album", "Artist")

	acc.addSong(navidrome.Song{Title: "First", ArtistID: "A1", Artist: "A", PlayCount: 5}, album)
	acc.addSong(navidrome.Song{Title: "Second", ArtistID: "A1", Artist: "A", PlayCount: 5}, album)
	acc.addSong(navidrome.Song{Title: "Third", ArtistID: "A1", Artist: "A", PlayCount: 9}, album)
	acc.addSong(navidrome.Song{Title: "Unplayed", ArtistID: "A1", Artist: "A", PlayCount: 0}, album)

	summary := acc.buildSummary("alice", false)
	if len(summary.TopTracks) != 3 {
		t.Fatalf("Unplayed tracks must not rank, got %d entries", len(summary.TopTracks))
	}
	want := []string{"Third", "First", "Second"}
	for i, title := range want {
		if summary.TopTracks[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, summary.TopTracks[i].Title)
		}
	}
}

func TestTopAlbumsFromCollectionItems(t *testing.T) {
	acc := newAccumulator(nil, nil)
	acc.setAlbums([]navidrome.Album{
		{ID: "al-1", Name: "Quiet", Artist: "A", PlayCount: 0},
		{ID: "al-2", Name: "Loud", Artist: "B", PlayCount: 8, CoverArt: "cv-2"},
		{ID: "al-3", Name: "Mid", Artist: "C", PlayCount: 3},
	})

	summary := acc.buildSummary("alice", false)
	if len(summary.TopAlbums) != 2 {
		t.Fatalf("Zero-play albums must not rank, got %d entries", len(summary.TopAlbums))
	}
	if summary.TopAlbums[0].Name != "Loud" || summary.TopAlbums[0].CoverArtID != "cv-2" {
		t.Errorf("Unexpected leading album: %+v", summary.TopAlbums[0])
	}
	if summary.TopAlbums[1].Name != "Mid" {
		t.Errorf("Unexpected second album: %+v", summary.TopAlbums[1])
	}
}

func TestTopBucketsLimit(t *testing.T) {
	acc := newAccumulator(nil, nil)
	album := testAlbum("al-1", "Album", "Artist")

	for i := 0; i < 8; i++ {
		acc.addSong(navidrome.Song{
			Title: "T", ArtistID: "A1", Artist: "A",
			Genre: fmt.Sprintf("Genre %d", i), PlayCount: int64(i + 1),
		}, album)
	}

	summary := acc.buildSummary("alice", false)
	if len(summary.TopGenres) != topBucketCount {
		t.Fatalf("Expected %d genre buckets, got %d", topBucketCount, len(summary.TopGenres))
	}
	if summary.TopGenres[0].Label != "Genre 7" || summary.TopGenres[0].Plays != 8 {
		t.Errorf("Unexpected leading genre: %+v", summary.TopGenres[0])
	}
}

func TestDeepDive(t *testing.T) {
	acc := newAccumulator(nil, nil)
	first := testAlbum("al-1", "First Album", "Artist")
	second := testAlbum("al-2", "Second Album", "Artist")

	acc.addSong(navidrome.Song{
		Title: "Big", ArtistID: "A1", Artist: "Artist", AlbumID: "al-1",
		PlayCount: 10, Duration: 100, UserRating: 5,
	}, first)
	acc.addSong(navidrome.Song{
		Title: "Small", ArtistID: "A1", Artist: "Artist", AlbumID: "al-1",
		PlayCount: 2, Duration: 200, UserRating: 4,
	}, first)
	acc.addSong(navidrome.Song{
		Title: "Other", ArtistID: "A1", Artist: "Artist", AlbumID: "al-2",
		PlayCount: 5, Duration: 300,
	}, second)
	acc.addSong(navidrome.Song{
		Title: "Dusty", ArtistID: "A1", Artist: "Artist", AlbumID: "al-2",
		PlayCount: 0, Duration: 50,
	}, second)

	summary := acc.buildSummary("alice", false)
	if len(summary.ArtistDeepDives) != 1 {
		t.Fatalf("Expected 1 deep dive, got %d", len(summary.ArtistDeepDives))
	}

	dive := summary.ArtistDeepDives[0]
	if dive.Name != "Artist" || dive.Plays != 17 {
		t.Errorf("Unexpected dive header: %+v", dive)
	}
	if dive.SongCount != 4 || dive.AlbumCount != 2 {
		t.Errorf("Expected 4 songs over 2 albums, got %d/%d", dive.SongCount, dive.AlbumCount)
	}
	if dive.DurationSeconds != 650 {
		t.Errorf("Expected 650s of catalogue, got %d", dive.DurationSeconds)
	}
	// 10*100 + 2*200 + 5*300 = 2900
	if dive.ListeningSeconds != 2900 {
		t.Errorf("Expected 2900s of listening, got %d", dive.ListeningSeconds)
	}
	// (5 + 4) / 2 rated tracks
	if dive.AverageRating != 4.5 {
		t.Errorf("Expected average rating 4.5, got %v", dive.AverageRating)
	}
	if len(dive.TopSongs) != 3 {
		t.Fatalf("Expected 3 top songs, got %d", len(dive.TopSongs))
	}
	if dive.TopSongs[0].Title != "Big" || dive.TopSongs[1].Title != "Other" || dive.TopSongs[2].Title != "Small" {
		t.Errorf("Top songs out of order: %+v", dive.TopSongs)
	}
}

func TestEmptySummary(t *testing.T) {
	acc := newAccumulator(nil, nil)
	summary := acc.buildSummary("alice", false)

	if summary.Username != "alice" {
		t.Errorf("Username not carried, got %q", summary.Username)
	}
	if summary.TracksSeen != 0 || summary.TotalPlays != 0 {
		t.Error("Empty scan should have zero counts")
	}
	if summary.TopArtists == nil || summary.TopTracks == nil || summary.TopAlbums == nil ||
		summary.TopGenres == nil || summary.TopDecades == nil || summary.ArtistDeepDives == nil {
		t.Error("Ranked lists must be empty slices, not nil, for stable JSON output")
	}
	if summary.ForgottenTrack != nil {
		t.Error("No timestamps means no forgotten track")
	}
	if summary.Quality.AverageScore != 0 || summary.Diversity.ConcentrationPct != 0 {
		t.Error("Empty scan must not divide by zero")
	}
}

func TestSampledFlag(t *testing.T) {
	acc := newAccumulator(nil, nil)
	if !acc.buildSummary("alice", true).Sampled {
		t.Error("Sampled flag not carried through")
	}
	if acc.buildSummary("alice", false).Sampled {
		t.Error("Sampled flag set without truncation")
	}
}

func TestForgottenTrackFormatting(t *testing.T) {
	acc := newAccumulator(nil, nil)
	album := testAlbum("al-1", "Album", "Artist")

	acc.addSong(navidrome.Song{
		Title: "Dusty", ArtistID: "A1", Artist: "A", PlayCount: 2, Played: "2019-03-04T05:06:07Z",
	}, album)

	summary := acc.buildSummary("alice", false)
	if summary.ForgottenTrack == nil {
		t.Fatal("Expected a forgotten track")
	}
	if summary.ForgottenTrack.LastPlayed != "2019-03-04T05:06:07Z" {
		t.Errorf("Timestamp should serialise as RFC3339 UTC, got %q", summary.ForgottenTrack.LastPlayed)
	}
	if summary.ForgottenTrack.Plays != 2 {
		t.Errorf("Expected 2 plays, got %d", summary.ForgottenTrack.Plays)
	}
}
