package navidrome

import "fmt"

// envelope is the outer wrapper every Subsonic JSON response arrives in
type envelope struct {
	Response apiResponse `json:"subsonic-response"`
}

type apiResponse struct {
	Status     string       `json:"status"`
	Version    string       `json:"version"`
	Error      *APIError    `json:"error,omitempty"`
	AlbumList2 *AlbumList   `json:"albumList2,omitempty"`
	Album      *AlbumDetail `json:"album,omitempty"`
}

// APIError is a Subsonic-level failure (status "failed")
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Subsonic error code for "requested data not found"
const errCodeNotFound = 70

// AlbumList is the payload of getAlbumList2
type AlbumList struct {
	Album []Album `json:"album"`
}

// Album is one entry of the paginated album listing
type Album struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	ArtistID  string `json:"artistId"`
	CoverArt  string `json:"coverArt"`
	SongCount int    `json:"songCount"`
	Duration  int    `json:"duration"`
	PlayCount int64  `json:"playCount"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
}

// AlbumDetail is the full album payload of getAlbum, songs included
type AlbumDetail struct {
	Album
	Song []Song `json:"song"`
}

// ArtistRef is one contributing artist of a song (OpenSubsonic "artists" list)
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Song is a single track within an album detail response
type Song struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Artist        string      `json:"artist"`
	ArtistID      string      `json:"artistId"`
	DisplayArtist string      `json:"displayArtist,omitempty"`
	Artists       []ArtistRef `json:"artists,omitempty"`
	AlbumID       string      `json:"albumId"`
	Genre         string      `json:"genre,omitempty"`
	Year          int         `json:"year,omitempty"`
	Duration      int         `json:"duration"`
	PlayCount     int64       `json:"playCount"`
	Played        interface{} `json:"played,omitempty"` // ISO string on Navidrome, epoch on some servers
	UserRating    float64     `json:"userRating,omitempty"`
	CoverArt      string      `json:"coverArt,omitempty"`
	ContentType   string      `json:"contentType,omitempty"`
	Suffix        string      `json:"suffix,omitempty"`
	BitRate       int         `json:"bitRate,omitempty"`
	SamplingRate  int         `json:"samplingRate,omitempty"`
	BitDepth      int         `json:"bitDepth,omitempty"`
}
