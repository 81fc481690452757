package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"navidrome-wrapped/internal/api/navidrome"
	"navidrome-wrapped/internal/shared"
)

const unknownDecade = "Unknown"

// TimeWindow restricts a scan to tracks last played within [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// CalendarYearWindow returns the window for one calendar year, UTC boundaries
func CalendarYearWindow(year int) TimeWindow {
	return TimeWindow{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// songEntry is the per-track record retained for top-track ranking and
// per-artist deep dives
type songEntry struct {
	Title      string
	Artist     string
	AlbumID    string
	AlbumName  string
	CoverArtID string
	Plays      int64
	Duration   int
	Rating     float64
	LastPlayed time.Time // zero when the track has no valid timestamp
}

// artistAggregate accumulates everything known about one artist key.
// The display name is last-seen-wins.
type artistAggregate struct {
	Key   string
	Name  string
	Plays int64
	Songs []*songEntry
}

// bucketAggregate backs both the genre and the decade breakdowns
type bucketAggregate struct {
	Label  string
	Tracks int
	Plays  int64
}

type qualityTally struct {
	Scored      int
	ScoreSum    int64
	WeightedSum int64
	WeightTotal int64
	Lossless    int
	HiRes       int
}

type ratingTally struct {
	Five, Four, Three, Two, One, Unrated int
}

// accumulator folds normalized track facts into running aggregates. One
// accumulator is created per scan; it is never shared.
type accumulator struct {
	window   *TimeWindow
	warnings *shared.WarningCollector

	albums []navidrome.Album
	songs  []*songEntry

	artistOrder []string
	artists     map[string]*artistAggregate

	genreOrder []string
	genres     map[string]*bucketAggregate

	decadeOrder []string
	decades     map[string]*bucketAggregate

	totalPlays   int64
	listeningSec int64
	durationSec  int64

	quality qualityTally
	ratings ratingTally

	oldest *songEntry
}

func newAccumulator(window *TimeWindow, warnings *shared.WarningCollector) *accumulator {
	if warnings == nil {
		warnings = shared.NewWarningCollector(false)
	}
	return &accumulator{
		window:   window,
		warnings: warnings,
		artists:  make(map[string]*artistAggregate),
		genres:   make(map[string]*bucketAggregate),
		decades:  make(map[string]*bucketAggregate),
	}
}

// setAlbums records the scanned collection items for album ranking
func (acc *accumulator) setAlbums(albums []navidrome.Album) {
	acc.albums = albums
}

// addSong folds one song of one album detail response into the aggregates.
// Malformed or missing fields become zero values, never errors.
func (acc *accumulator) addSong(song navidrome.Song, album *navidrome.AlbumDetail) {
	lastPlayed, hasLastPlayed := parseLastPlayed(song.Played)
	if !hasLastPlayed && hasTimestampValue(song.Played) {
		acc.warnings.AddTimestampParseWarning(song.Title, fmt.Sprintf("%v", song.Played))
	}
	if acc.window != nil {
		// A windowed scan only counts tracks known to be played inside the
		// window. Tracks with no parseable timestamp are excluded.
		if !hasLastPlayed || !acc.window.Contains(lastPlayed) {
			return
		}
	}

	plays := song.PlayCount
	if plays < 0 {
		plays = 0
	}
	duration := song.Duration
	if duration < 0 {
		duration = 0
	}

	entry := &songEntry{
		Title:      song.Title,
		Artist:     displayArtist(song, album),
		AlbumID:    firstNonEmpty(song.AlbumID, album.ID),
		AlbumName:  album.Name,
		CoverArtID: firstNonEmpty(song.CoverArt, album.CoverArt),
		Plays:      plays,
		Duration:   duration,
		Rating:     song.UserRating,
	}
	if hasLastPlayed {
		entry.LastPlayed = lastPlayed
	}
	acc.songs = append(acc.songs, entry)

	for _, ref := range resolveArtists(song, album) {
		key := ref.ID
		if key == "" {
			key = ref.Name
		}
		if key == "" {
			continue
		}
		agg, exists := acc.artists[key]
		if !exists {
			agg = &artistAggregate{Key: key}
			acc.artists[key] = agg
			acc.artistOrder = append(acc.artistOrder, key)
		}
		if ref.Name != "" {
			agg.Name = ref.Name
		}
		agg.Songs = append(agg.Songs, entry)
		if plays > 0 {
			agg.Plays += plays
		}
	}

	genre := strings.TrimSpace(firstNonEmpty(song.Genre, album.Genre))
	if genre != "" {
		acc.bump(&acc.genreOrder, acc.genres, genre, plays)
	}

	year := song.Year
	if year == 0 {
		year = album.Year
	}
	acc.bump(&acc.decadeOrder, acc.decades, decadeLabel(year), plays)

	acc.durationSec += int64(duration)
	if plays > 0 {
		acc.totalPlays += plays
		acc.listeningSec += int64(duration) * plays
	}

	score, class, hiRes := qualityScore(song.Suffix, song.ContentType, song.BitRate, song.SamplingRate, song.BitDepth)
	weight := plays
	if weight < 1 {
		weight = 1
	}
	acc.quality.Scored++
	acc.quality.ScoreSum += int64(score)
	acc.quality.WeightedSum += int64(score) * weight
	acc.quality.WeightTotal += weight
	if class == codecLossless {
		acc.quality.Lossless++
	}
	if hiRes {
		acc.quality.HiRes++
	}

	acc.addRating(song.UserRating)

	// Strictly-earlier comparison keeps the first-seen track on ties
	if hasLastPlayed {
		if acc.oldest == nil || lastPlayed.Before(acc.oldest.LastPlayed) {
			acc.oldest = entry
		}
	}
}

func (acc *accumulator) bump(order *[]string, buckets map[string]*bucketAggregate, label string, plays int64) {
	bucket, exists := buckets[label]
	if !exists {
		bucket = &bucketAggregate{Label: label}
		buckets[label] = bucket
		*order = append(*order, label)
	}
	bucket.Tracks++
	if plays > 0 {
		bucket.Plays += plays
	}
}

func (acc *accumulator) addRating(rating float64) {
	switch {
	case rating >= 4.5:
		acc.ratings.Five++
	case rating >= 3.5:
		acc.ratings.Four++
	case rating >= 2.5:
		acc.ratings.Three++
	case rating >= 1.5:
		acc.ratings.Two++
	case rating > 0:
		acc.ratings.One++
	default:
		acc.ratings.Unrated++
	}
}

// resolveArtists returns the contributing artists of a song, synthesizing a
// single entry from the song/album artist fields when the explicit list is
// absent. The album artist is the final fallback.
func resolveArtists(song navidrome.Song, album *navidrome.AlbumDetail) []navidrome.ArtistRef {
	if len(song.Artists) > 0 {
		return song.Artists
	}
	ref := navidrome.ArtistRef{
		ID:   firstNonEmpty(song.ArtistID, album.ArtistID),
		Name: displayArtist(song, album),
	}
	if ref.ID == "" && ref.Name == "" {
		return nil
	}
	return []navidrome.ArtistRef{ref}
}

func displayArtist(song navidrome.Song, album *navidrome.AlbumDetail) string {
	return firstNonEmpty(song.DisplayArtist, song.Artist, album.Artist)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// decadeLabel buckets a release year into "1990s"-style labels. Year zero
// (absent) lands in the Unknown bucket.
func decadeLabel(year int) string {
	if year <= 0 {
		return unknownDecade
	}
	return fmt.Sprintf("%ds", year/10*10)
}

// hasTimestampValue reports whether the raw played field carries anything to
// parse at all. Absent or empty values are normal, not warnings.
func hasTimestampValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case time.Time:
		return !v.IsZero()
	default:
		return true
	}
}

// parseLastPlayed accepts the timestamp shapes seen in the wild: RFC3339-ish
// strings, numeric epochs (seconds, or milliseconds above 1e12) and time.Time
// values. The ok result is false for anything unparseable.
func parseLastPlayed(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case string:
		return parseTimestampString(v)
	case float64:
		return epochToTime(int64(v)), true
	case int64:
		return epochToTime(v), true
	case int:
		return epochToTime(int64(v)), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return epochToTime(n), true
		}
		if f, err := v.Float64(); err == nil {
			return epochToTime(int64(f)), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestampString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return epochToTime(n), true
	}
	return time.Time{}, false
}

// Values above 1e12 can only be millisecond epochs
func epochToTime(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
