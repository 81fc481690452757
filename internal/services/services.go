package services

import (
	"context"
	"fmt"
	"net/http"

	"navidrome-wrapped/internal/api/navidrome"
	"navidrome-wrapped/internal/config"
	"navidrome-wrapped/internal/core/covers"
	"navidrome-wrapped/internal/core/stats"
	"navidrome-wrapped/internal/interfaces"
	"navidrome-wrapped/internal/shared"
)

// ServiceContainer holds all application services
type ServiceContainer struct {
	Config           interfaces.ConfigService
	Navidrome        interfaces.NavidromeService
	Stats            interfaces.StatsService
	Covers           interfaces.CoverService
	Logger           interfaces.LoggerService
	WarningCollector interfaces.WarningCollectorService
}

// NewServiceContainer creates a new service container with all services initialized
func NewServiceContainer(cfg *config.Config, httpClient *http.Client) *ServiceContainer {
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	logger := NewConsoleLogger()
	warningCollector := shared.NewWarningCollector(true)

	client := navidrome.NewClient(cfg.ServerURL, cfg.Username, cfg.Password, httpClient)

	statsService := NewStatsService(client, cfg, warningCollector)
	coverService := covers.NewDownloader(client, cfg.Parallelism, warningCollector)

	return &ServiceContainer{
		Config:           NewConfigService(),
		Navidrome:        client,
		Stats:            statsService,
		Covers:           coverService,
		Logger:           logger,
		WarningCollector: warningCollector,
	}
}

// newHTTPClient builds the client used when the caller does not supply one
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: config.RequestTimeout}
}

// ConfigService implementation
type ConfigService struct{}

func NewConfigService() *ConfigService {
	return &ConfigService{}
}

func (cs *ConfigService) LoadConfig(configFile string) (*config.Config, error) {
	cfg := &config.Config{}
	if err := config.LoadConfig(configFile, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cs *ConfigService) SaveConfig(configFile string, cfg *config.Config) error {
	return config.SaveConfig(configFile, cfg)
}

func (cs *ConfigService) ValidateConfig(cfg *config.Config) error {
	return cfg.Validate()
}

func (cs *ConfigService) GetDefaultConfig() *config.Config {
	return config.GetDefaultConfig()
}

// StatsService implementation

type StatsService struct {
	client   *navidrome.Client
	cfg      *config.Config
	warnings *shared.WarningCollector
}

func NewStatsService(client *navidrome.Client, cfg *config.Config, warnings *shared.WarningCollector) *StatsService {
	return &StatsService{client: client, cfg: cfg, warnings: warnings}
}

// CollectStats runs one full scan. A fresh collector and accumulator are
// built per call, so concurrent calls share no state.
func (ss *StatsService) CollectStats(ctx context.Context, progress stats.ProgressFunc) (*stats.Summary, error) {
	// Default policy is the full-library scan up to the cap; a configured
	// year opts into a calendar-year window with UTC boundaries.
	var window *stats.TimeWindow
	if ss.cfg.Year > 0 {
		w := stats.CalendarYearWindow(ss.cfg.Year)
		window = &w
	}

	collector := stats.NewCollector(ss.client, stats.Options{
		Username:  ss.cfg.Username,
		PageSize:  ss.cfg.AlbumPageSize,
		MaxAlbums: ss.cfg.MaxAlbums,
		Window:    window,
		Warnings:  ss.warnings,
	})
	summary, err := collector.Collect(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("stats collection failed: %w", err)
	}
	return summary, nil
}

// ConsoleLogger implementation

type ConsoleLogger struct {
	debugMode bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (cl *ConsoleLogger) Info(message string, args ...interface{}) {
	shared.ColorInfo.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Warning(message string, args ...interface{}) {
	shared.ColorWarning.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Error(message string, args ...interface{}) {
	shared.ColorError.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Debug(message string, args ...interface{}) {
	if cl.debugMode {
		fmt.Printf("DEBUG: "+message+"\n", args...)
	}
}

func (cl *ConsoleLogger) Success(message string, args ...interface{}) {
	shared.ColorSuccess.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugMode = enabled
}
