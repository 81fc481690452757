package stats

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	topArtistCount = 10
	topTrackCount  = 10
	topAlbumCount  = 10
	topBucketCount = 5
	deepDiveCount  = 3
	deepDiveSongs  = 3
	variousArtists = "various artists"
)

// Summary is the fully-resolved scan result. It is a plain serializable value
// with no live references to the client; safe to store or transmit.
type Summary struct {
	Username             string           `json:"username"`
	AlbumsScanned        int              `json:"albumsScanned"`
	Sampled              bool             `json:"sampled"`
	TracksSeen           int              `json:"tracksSeen"`
	TotalPlays           int64            `json:"totalPlays"`
	ListeningTimeSeconds int64            `json:"listeningTimeSeconds"`
	TotalDurationSeconds int64            `json:"totalDurationSeconds"`
	TopArtists           []ArtistRank     `json:"topArtists"`
	TopTracks            []TrackRank      `json:"topTracks"`
	TopAlbums            []AlbumRank      `json:"topAlbums"`
	TopGenres            []BucketRank     `json:"topGenres"`
	TopDecades           []BucketRank     `json:"topDecades"`
	Diversity            DiversityStats   `json:"diversity"`
	Quality              QualityStats     `json:"quality"`
	RatingHistogram      RatingHistogram  `json:"ratingHistogram"`
	ForgottenTrack       *ForgottenTrack  `json:"forgottenTrack,omitempty"`
	ArtistDeepDives      []ArtistDeepDive `json:"artistDeepDives"`
}

// ArtistRank is one entry of the top-artist list
type ArtistRank struct {
	Name  string `json:"name"`
	Plays int64  `json:"plays"`
}

// TrackRank is one entry of the top-track list
type TrackRank struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Plays      int64  `json:"plays"`
	AlbumID    string `json:"albumId,omitempty"`
	CoverArtID string `json:"coverArtId,omitempty"`
}

// AlbumRank is one entry of the top-album list
type AlbumRank struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ID         string `json:"id"`
	CoverArtID string `json:"coverArtId,omitempty"`
	Plays      int64  `json:"plays"`
}

// BucketRank is one entry of the genre or decade breakdown
type BucketRank struct {
	Label  string `json:"label"`
	Plays  int64  `json:"plays"`
	Tracks int    `json:"tracks"`
}

// DiversityStats describes how listening spreads across known artists
type DiversityStats struct {
	ArtistsKnown     int     `json:"artistsKnown"`
	ArtistsPlayed    int     `json:"artistsPlayed"`
	DiversityPct     float64 `json:"diversityPct"`
	ConcentrationPct float64 `json:"concentrationPct"`
}

// QualityStats summarises the audio fidelity heuristics
type QualityStats struct {
	TracksScored      int     `json:"tracksScored"`
	AverageScore      float64 `json:"averageScore"`
	PlayWeightedScore float64 `json:"playWeightedScore"`
	LosslessCount     int     `json:"losslessCount"`
	HiResCount        int     `json:"hiResCount"`
	LosslessPct       float64 `json:"losslessPct"`
	HiResPct          float64 `json:"hiResPct"`
}

// RatingHistogram buckets user ratings at half-point boundaries
type RatingHistogram struct {
	FiveStar  int `json:"fiveStar"`
	FourStar  int `json:"fourStar"`
	ThreeStar int `json:"threeStar"`
	TwoStar   int `json:"twoStar"`
	OneStar   int `json:"oneStar"`
	Unrated   int `json:"unrated"`
}

// ForgottenTrack is the track with the earliest known last-played timestamp
type ForgottenTrack struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	LastPlayed string `json:"lastPlayed"`
	Plays      int64  `json:"plays"`
}

// ArtistDeepDive is the detailed view of one top artist
type ArtistDeepDive struct {
	Name             string      `json:"name"`
	Plays            int64       `json:"plays"`
	SongCount        int         `json:"songCount"`
	AlbumCount       int         `json:"albumCount"`
	DurationSeconds  int64       `json:"durationSeconds"`
	ListeningSeconds int64       `json:"listeningSeconds"`
	AverageRating    float64     `json:"averageRating"`
	TopSongs         []TrackRank `json:"topSongs"`
}

// buildSummary derives the ranked, bounded views from the final accumulator
// state. All orderings are deterministic: stable sorts over insertion-ordered
// slices, no map iteration.
func (acc *accumulator) buildSummary(username string, sampled bool) *Summary {
	summary := &Summary{
		Username:             username,
		AlbumsScanned:        len(acc.albums),
		Sampled:              sampled,
		TracksSeen:           len(acc.songs),
		TotalPlays:           acc.totalPlays,
		ListeningTimeSeconds: acc.listeningSec,
		TotalDurationSeconds: acc.durationSec,
		TopArtists:           []ArtistRank{},
		TopTracks:            []TrackRank{},
		TopAlbums:            []AlbumRank{},
		TopGenres:            []BucketRank{},
		TopDecades:           []BucketRank{},
		ArtistDeepDives:      []ArtistDeepDive{},
	}

	ranked := acc.rankedArtists()
	for _, agg := range ranked {
		if len(summary.TopArtists) >= topArtistCount {
			break
		}
		summary.TopArtists = append(summary.TopArtists, ArtistRank{Name: agg.displayName(), Plays: agg.Plays})
	}

	played := make([]*songEntry, 0, len(acc.songs))
	for _, song := range acc.songs {
		if song.Plays > 0 {
			played = append(played, song)
		}
	}
	sort.SliceStable(played, func(i, j int) bool { return played[i].Plays > played[j].Plays })
	for i := 0; i < len(played) && i < topTrackCount; i++ {
		song := played[i]
		summary.TopTracks = append(summary.TopTracks, TrackRank{
			Title:      song.Title,
			Artist:     song.Artist,
			Plays:      song.Plays,
			AlbumID:    song.AlbumID,
			CoverArtID: song.CoverArtID,
		})
	}

	albums := make([]int, 0, len(acc.albums))
	for i, album := range acc.albums {
		if album.PlayCount > 0 {
			albums = append(albums, i)
		}
	}
	sort.SliceStable(albums, func(i, j int) bool {
		return acc.albums[albums[i]].PlayCount > acc.albums[albums[j]].PlayCount
	})
	for i := 0; i < len(albums) && i < topAlbumCount; i++ {
		album := acc.albums[albums[i]]
		summary.TopAlbums = append(summary.TopAlbums, AlbumRank{
			Name:       album.Name,
			Artist:     album.Artist,
			ID:         album.ID,
			CoverArtID: album.CoverArt,
			Plays:      album.PlayCount,
		})
	}

	summary.TopGenres = topBuckets(acc.genreOrder, acc.genres)
	summary.TopDecades = topBuckets(acc.decadeOrder, acc.decades)
	summary.Diversity = acc.diversityStats()
	summary.Quality = acc.qualityStats()
	summary.RatingHistogram = RatingHistogram{
		FiveStar:  acc.ratings.Five,
		FourStar:  acc.ratings.Four,
		ThreeStar: acc.ratings.Three,
		TwoStar:   acc.ratings.Two,
		OneStar:   acc.ratings.One,
		Unrated:   acc.ratings.Unrated,
	}

	if acc.oldest != nil {
		summary.ForgottenTrack = &ForgottenTrack{
			Title:      acc.oldest.Title,
			Artist:     acc.oldest.Artist,
			LastPlayed: acc.oldest.LastPlayed.UTC().Format(time.RFC3339),
			Plays:      acc.oldest.Plays,
		}
	}

	for i := 0; i < len(ranked) && i < deepDiveCount; i++ {
		summary.ArtistDeepDives = append(summary.ArtistDeepDives, deepDive(ranked[i]))
	}

	return summary
}

// rankedArtists sorts artist aggregates by plays descending (stable over
// first-seen order) and drops the compilation sentinel. The exclusion happens
// after sorting, before any truncation.
func (acc *accumulator) rankedArtists() []*artistAggregate {
	ordered := make([]*artistAggregate, 0, len(acc.artistOrder))
	for _, key := range acc.artistOrder {
		ordered = append(ordered, acc.artists[key])
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Plays > ordered[j].Plays })

	ranked := ordered[:0]
	for _, agg := range ordered {
		if strings.EqualFold(agg.displayName(), variousArtists) {
			continue
		}
		ranked = append(ranked, agg)
	}
	return ranked
}

func (agg *artistAggregate) displayName() string {
	if agg.Name != "" {
		return agg.Name
	}
	return agg.Key
}

func topBuckets(order []string, buckets map[string]*bucketAggregate) []BucketRank {
	ordered := make([]*bucketAggregate, 0, len(order))
	for _, label := range order {
		ordered = append(ordered, buckets[label])
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Plays > ordered[j].Plays })

	ranks := []BucketRank{}
	for i := 0; i < len(ordered) && i < topBucketCount; i++ {
		ranks = append(ranks, BucketRank{
			Label:  ordered[i].Label,
			Plays:  ordered[i].Plays,
			Tracks: ordered[i].Tracks,
		})
	}
	return ranks
}

func (acc *accumulator) diversityStats() DiversityStats {
	stats := DiversityStats{ArtistsKnown: len(acc.artistOrder)}

	var totalArtistPlays int64
	for _, key := range acc.artistOrder {
		agg := acc.artists[key]
		if agg.Plays > 0 {
			stats.ArtistsPlayed++
			totalArtistPlays += agg.Plays
		}
	}

	if stats.ArtistsKnown > 0 {
		stats.DiversityPct = roundPct(float64(stats.ArtistsPlayed) / float64(stats.ArtistsKnown) * 100)
	}

	// Herfindahl concentration. Zero total plays must yield exactly 0, not NaN.
	if totalArtistPlays > 0 {
		var sumSquares float64
		for _, key := range acc.artistOrder {
			share := float64(acc.artists[key].Plays) / float64(totalArtistPlays)
			sumSquares += share * share
		}
		stats.ConcentrationPct = roundPct((1 - sumSquares) * 100)
	}
	return stats
}

func (acc *accumulator) qualityStats() QualityStats {
	stats := QualityStats{
		TracksScored:  acc.quality.Scored,
		LosslessCount: acc.quality.Lossless,
		HiResCount:    acc.quality.HiRes,
	}
	if acc.quality.Scored > 0 {
		stats.AverageScore = roundPct(float64(acc.quality.ScoreSum) / float64(acc.quality.Scored))
		stats.LosslessPct = roundPct(float64(acc.quality.Lossless) / float64(acc.quality.Scored) * 100)
		stats.HiResPct = roundPct(float64(acc.quality.HiRes) / float64(acc.quality.Scored) * 100)
	}
	if acc.quality.WeightTotal > 0 {
		stats.PlayWeightedScore = roundPct(float64(acc.quality.WeightedSum) / float64(acc.quality.WeightTotal))
	}
	return stats
}

func deepDive(agg *artistAggregate) ArtistDeepDive {
	dive := ArtistDeepDive{
		Name:     agg.displayName(),
		Plays:    agg.Plays,
		TopSongs: []TrackRank{},
	}

	albumSeen := make(map[string]bool)
	var ratingSum float64
	var ratedCount int
	for _, song := range agg.Songs {
		dive.SongCount++
		dive.DurationSeconds += int64(song.Duration)
		if song.Plays > 0 {
			dive.ListeningSeconds += int64(song.Duration) * song.Plays
		}
		if song.AlbumID != "" && !albumSeen[song.AlbumID] {
			albumSeen[song.AlbumID] = true
			dive.AlbumCount++
		}
		if song.Rating > 0 {
			ratingSum += song.Rating
			ratedCount++
		}
	}
	if ratedCount > 0 {
		dive.AverageRating = math.Round(ratingSum/float64(ratedCount)*100) / 100
	}

	songs := make([]*songEntry, len(agg.Songs))
	copy(songs, agg.Songs)
	sort.SliceStable(songs, func(i, j int) bool { return songs[i].Plays > songs[j].Plays })
	for i := 0; i < len(songs) && i < deepDiveSongs; i++ {
		dive.TopSongs = append(dive.TopSongs, TrackRank{
			Title:      songs[i].Title,
			Artist:     songs[i].Artist,
			Plays:      songs[i].Plays,
			AlbumID:    songs[i].AlbumID,
			CoverArtID: songs[i].CoverArtID,
		})
	}
	return dive
}

// roundPct rounds to one decimal place
func roundPct(v float64) float64 {
	return math.Round(v*10) / 10
}
