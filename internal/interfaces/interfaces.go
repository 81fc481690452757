package interfaces

import (
	"context"

	"navidrome-wrapped/internal/api/navidrome"
	"navidrome-wrapped/internal/config"
	"navidrome-wrapped/internal/core/stats"
	"navidrome-wrapped/internal/shared"
)

// NavidromeService defines the interface for server interactions
type NavidromeService interface {
	// Authenticate verifies the credentials against the server
	Authenticate() error

	// Ping checks that the server is reachable
	Ping() error

	// GetAlbumPage fetches one page of the album listing
	GetAlbumPage(ctx context.Context, offset, size int) ([]navidrome.Album, error)

	// GetAlbumDetail fetches one album with its songs; (nil, nil) means skippable
	GetAlbumDetail(ctx context.Context, albumID string) (*navidrome.AlbumDetail, error)

	// GetCoverArt downloads a cover art blob
	GetCoverArt(ctx context.Context, coverArtID string) ([]byte, error)

	// SetDebug enables or disables request-level debug logging
	SetDebug(debug bool)
}

// StatsService defines the interface for running a library scan
type StatsService interface {
	// CollectStats runs one full scan and returns the summary
	CollectStats(ctx context.Context, progress stats.ProgressFunc) (*stats.Summary, error)
}

// CoverService defines the interface for saving cover art
type CoverService interface {
	// DownloadTopAlbums saves covers for the summary's top albums into dir
	DownloadTopAlbums(ctx context.Context, summary *stats.Summary, dir string) (int, error)
}

// ConfigService defines the interface for configuration management
type ConfigService interface {
	// LoadConfig loads configuration from file
	LoadConfig(configFile string) (*config.Config, error)

	// SaveConfig saves configuration to file
	SaveConfig(configFile string, config *config.Config) error

	// ValidateConfig validates configuration settings
	ValidateConfig(config *config.Config) error

	// GetDefaultConfig returns a default configuration
	GetDefaultConfig() *config.Config
}

// LoggerService defines the interface for logging operations
type LoggerService interface {
	// Info logs an informational message
	Info(message string, args ...interface{})

	// Warning logs a warning message
	Warning(message string, args ...interface{})

	// Error logs an error message
	Error(message string, args ...interface{})

	// Debug logs a debug message
	Debug(message string, args ...interface{})

	// Success logs a success message
	Success(message string, args ...interface{})

	// SetDebugMode enables or disables debug logging
	SetDebugMode(enabled bool)
}

// WarningCollectorService defines the interface for warning collection
type WarningCollectorService interface {
	// AddWarning adds a warning to the collection
	AddWarning(warningType shared.WarningType, context, message, details string)

	// HasWarnings returns true if there are any warnings
	HasWarnings() bool

	// GetWarningCount returns the total number of warnings
	GetWarningCount() int

	// PrintSummary prints a formatted summary of all warnings
	PrintSummary()
}
