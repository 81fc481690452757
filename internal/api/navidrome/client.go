package navidrome

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	mrand "math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	subsonic "github.com/delucks/go-subsonic"
	"golang.org/x/time/rate"

	"navidrome-wrapped/internal/shared"
)

const (
	apiVersion = "1.16.1"
	clientName = "navidrome-wrapped"
	saltLength = 16 // hex characters

	// Courtesy ceiling on request rate, on top of the scanner's own pacing.
	// Self-hosted servers are often running on very small hardware.
	requestInterval = 100 * time.Millisecond
	requestBurst    = 4

	retryInitialDelay = 500 * time.Millisecond
	retryMaxDelay     = 10 * time.Second
)

// Client talks to a Navidrome/Subsonic-compatible server. Every request is
// individually authenticated with a fresh salt and token.
type Client struct {
	URL      string
	Username string
	password string

	client      *http.Client
	rateLimiter *rate.Limiter
	sub         subsonic.Client
	debug       bool
}

// NewClient creates a new Navidrome client
func NewClient(serverURL, username, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		URL:         shared.NormalizeServerURL(serverURL),
		Username:    username,
		password:    password,
		client:      httpClient,
		rateLimiter: rate.NewLimiter(rate.Every(requestInterval), requestBurst),
	}
}

// SetDebug enables or disables debug logging for the client
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// GenerateSalt returns a fresh random salt of at least 16 hex characters.
// crypto/rand is used when available, with a best-effort pseudo-random fallback.
func GenerateSalt() string {
	buf := make([]byte, saltLength/2)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = byte(mrand.Intn(256))
		}
	}
	return hex.EncodeToString(buf)
}

// Sign computes the Subsonic authentication token: md5(secret + salt), hex-encoded
func Sign(secret, salt string) string {
	hasher := md5.New()
	hasher.Write([]byte(secret + salt))
	return hex.EncodeToString(hasher.Sum(nil))
}

// authParams builds the authentication query parameters with a newly generated
// salt. Salts are never reused across requests.
func (c *Client) authParams(jsonFormat bool) url.Values {
	salt := GenerateSalt()
	params := url.Values{}
	params.Set("u", c.Username)
	params.Set("t", Sign(c.password, salt))
	params.Set("s", salt)
	params.Set("v", apiVersion)
	params.Set("c", clientName)
	if jsonFormat {
		params.Set("f", "json")
	}
	return params
}

// request performs an authenticated GET against a /rest endpoint. The auth
// parameters are rebuilt inside the retry loop so every attempt carries a
// fresh salt.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values, jsonFormat bool) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	err := shared.RetryWithBackoffForHTTPWithDebug(shared.DefaultMaxRetries, retryInitialDelay, retryMaxDelay, func() error {
		query := c.authParams(jsonFormat)
		for name, values := range params {
			for _, value := range values {
				query.Add(name, value)
			}
		}
		fullURL := fmt.Sprintf("%s/rest/%s?%s", c.URL, endpoint, query.Encode())
		// The query string carries the token and salt, so only the endpoint is logged
		shared.DebugPrint(c.debug, "GET /rest/%s", endpoint)

		req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("User-Agent", shared.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err = c.client.Do(req)
		if err != nil {
			return fmt.Errorf("error executing request: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return &shared.HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Message:    fmt.Sprintf("%s request failed", endpoint),
			}
		}
		return nil
	}, c.debug)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// requestJSON performs an authenticated request and unwraps the subsonic-response envelope
func (c *Client) requestJSON(ctx context.Context, endpoint string, params url.Values) (*apiResponse, error) {
	resp, err := c.request(ctx, endpoint, params, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	payload := env.Response
	if payload.Status != "ok" {
		if payload.Error != nil {
			return nil, payload.Error
		}
		return nil, fmt.Errorf("%s request rejected with status %q", endpoint, payload.Status)
	}
	return &payload, nil
}

// Authenticate verifies the credentials against the server through go-subsonic,
// which performs the same salted token handshake
func (c *Client) Authenticate() error {
	c.sub = subsonic.Client{
		Client:     c.client,
		BaseUrl:    c.URL,
		User:       c.Username,
		ClientName: clientName,
	}
	if err := c.sub.Authenticate(c.password); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable and the credentials are accepted
func (c *Client) Ping() error {
	if c.sub.User == "" {
		if err := c.Authenticate(); err != nil {
			return err
		}
	}
	if !c.sub.Ping() {
		return fmt.Errorf("server at %s did not answer ping", c.URL)
	}
	return nil
}

// GetAlbumPage fetches one page of the alphabetical album listing
func (c *Client) GetAlbumPage(ctx context.Context, offset, size int) ([]Album, error) {
	params := url.Values{}
	params.Set("type", "alphabeticalByName")
	params.Set("size", strconv.Itoa(size))
	params.Set("offset", strconv.Itoa(offset))

	payload, err := c.requestJSON(ctx, "getAlbumList2", params)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums at offset %d: %w", offset, err)
	}
	if payload.AlbumList2 == nil {
		return nil, nil
	}
	return payload.AlbumList2.Album, nil
}

// GetAlbumDetail fetches the full album payload including its songs. A missing
// album is reported as (nil, nil) so the caller can skip it without aborting.
func (c *Client) GetAlbumDetail(ctx context.Context, albumID string) (*AlbumDetail, error) {
	params := url.Values{}
	params.Set("id", albumID)

	payload, err := c.requestJSON(ctx, "getAlbum", params)
	if err != nil {
		var apiErr *APIError
		if ok := asAPIError(err, &apiErr); ok && apiErr.Code == errCodeNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get album %s: %w", albumID, err)
	}
	return payload.Album, nil
}

// GetCoverArt downloads the cover art blob for the given ID
func (c *Client) GetCoverArt(ctx context.Context, coverArtID string) ([]byte, error) {
	if coverArtID == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("id", coverArtID)

	resp, err := c.request(ctx, "getCoverArt", params, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get cover art %s: %w", coverArtID, err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// asAPIError unwraps err looking for an *APIError
func asAPIError(err error, target **APIError) bool {
	for err != nil {
		if apiErr, ok := err.(*APIError); ok {
			*target = apiErr
			return true
		}
		if unwrapped, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapped.Unwrap()
		} else {
			return false
		}
	}
	return false
}
