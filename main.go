package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"navidrome-wrapped/internal/config"
	"navidrome-wrapped/internal/core/stats"
	"navidrome-wrapped/internal/services"
	"navidrome-wrapped/internal/shared"
)

const toolVersion = "1.0.0"

var (
	configFile string
	serverURL  string
	username   string
	password   string
	debug      bool
	yearFilter int
	jsonOut    string
	coversDir  string
)

var rootCmd = &cobra.Command{
	Use:     "navidrome-wrapped",
	Version: toolVersion,
	Short:   "A year-in-music statistics generator for Navidrome servers.",
	Long: fmt.Sprintf(`Navidrome Wrapped (v%s)

Scans your self-hosted Navidrome (or any Subsonic-compatible) server and
computes your listening statistics entirely on this machine:
- Top artists, tracks, albums, genres and decades by play count.
- Listening time, diversity and concentration scores.
- Audio quality breakdown (lossless / hi-res share, fidelity score).
- Per-artist deep dives and a rating histogram.

Your credentials never leave this machine; every request is signed with a
fresh single-use salt.`, toolVersion),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Scan the library and print listening statistics.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, container := initConfigAndServices()

		colorInfo.Printf("🎧 Scanning %s as %s...\n", cfg.ServerURL, cfg.Username)
		summary, err := runScan(container)
		if err != nil {
			colorError.Printf("❌ Stats collection failed: %v\n", err)
			os.Exit(1)
		}

		printSummary(summary)
		container.WarningCollector.PrintSummary()

		if jsonOut != "" {
			if err := writeSummaryJSON(summary, jsonOut); err != nil {
				colorError.Printf("❌ Failed to write summary: %v\n", err)
				os.Exit(1)
			}
			colorSuccess.Println("✅ Summary written to", jsonOut)
		}
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the server is reachable and the credentials work.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, container := initConfigAndServices()
		if err := container.Navidrome.Ping(); err != nil {
			colorError.Printf("❌ Ping failed: %v\n", err)
			os.Exit(1)
		}
		colorSuccess.Println("✅ Server is reachable:", cfg.ServerURL)
	},
}

var coversCmd = &cobra.Command{
	Use:   "covers",
	Short: "Scan the library and save cover art for the top albums.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, container := initConfigAndServices()
		if coversDir == "" {
			coversDir = cfg.CoversDir
		}

		colorInfo.Printf("🎧 Scanning %s as %s...\n", cfg.ServerURL, cfg.Username)
		summary, err := runScan(container)
		if err != nil {
			colorError.Printf("❌ Stats collection failed: %v\n", err)
			os.Exit(1)
		}

		saved, err := container.Covers.DownloadTopAlbums(context.Background(), summary, coversDir)
		if err != nil {
			colorError.Printf("❌ Failed to download covers: %v\n", err)
			os.Exit(1)
		}
		container.WarningCollector.PrintSummary()
		colorSuccess.Printf("✅ Saved %d covers to %s\n", saved, coversDir)
	},
}

// runScan executes one stats collection with a progress display attached
func runScan(container *services.ServiceContainer) (*stats.Summary, error) {
	progress, finish := newProgressSink()
	defer finish()
	return container.Stats.CollectStats(context.Background(), progress)
}

// newProgressSink returns a progress callback: a pb bar on a TTY, plain
// percentage lines otherwise
func newProgressSink() (stats.ProgressFunc, func()) {
	if isatty.IsTerminal(os.Stdout.Fd()) && !debug {
		bar := pb.New(100)
		bar.Start()
		return func(percent float64, message string, phase stats.Phase) {
			bar.SetCurrent(int64(percent))
		}, func() { bar.Finish() }
	}
	return func(percent float64, message string, phase stats.Phase) {
		colorInfo.Printf("[%3.0f%%] %s\n", percent, message)
	}, func() {}
}

func printSummary(summary *stats.Summary) {
	colorHeader.Printf("\n🎁 Wrapped for %s\n", summary.Username)
	if summary.Sampled {
		colorWarning.Printf("(sampled: first %d albums)\n", summary.AlbumsScanned)
	}

	colorInfo.Printf("\nAlbums scanned: %d   Tracks seen: %d   Total plays: %d\n",
		summary.AlbumsScanned, summary.TracksSeen, summary.TotalPlays)
	colorInfo.Println("Listening time:", shared.FormatListeningTime(summary.ListeningTimeSeconds))

	colorHeader.Println("\n🏆 Top artists")
	for i, artist := range summary.TopArtists {
		fmt.Printf("  %2d. %s (%d plays)\n", i+1, artist.Name, artist.Plays)
	}

	colorHeader.Println("\n🎵 Top tracks")
	for i, track := range summary.TopTracks {
		fmt.Printf("  %2d. %s — %s (%d plays)\n", i+1, shared.TruncateString(track.Title, 50), track.Artist, track.Plays)
	}

	colorHeader.Println("\n💿 Top albums")
	for i, album := range summary.TopAlbums {
		fmt.Printf("  %2d. %s — %s (%d plays)\n", i+1, shared.TruncateString(album.Name, 50), album.Artist, album.Plays)
	}

	colorHeader.Println("\n🏷️  Top genres")
	for _, genre := range summary.TopGenres {
		fmt.Printf("  %s: %d plays across %d tracks\n", genre.Label, genre.Plays, genre.Tracks)
	}

	colorHeader.Println("\n📅 Top decades")
	for _, decade := range summary.TopDecades {
		fmt.Printf("  %s: %d plays across %d tracks\n", decade.Label, decade.Plays, decade.Tracks)
	}

	colorHeader.Println("\n🌈 Diversity")
	fmt.Printf("  %d of %d known artists played (%.1f%%), concentration %.1f%%\n",
		summary.Diversity.ArtistsPlayed, summary.Diversity.ArtistsKnown,
		summary.Diversity.DiversityPct, summary.Diversity.ConcentrationPct)

	colorHeader.Println("\n🔊 Audio quality")
	fmt.Printf("  Fidelity score %.1f (play-weighted %.1f), %.1f%% lossless, %.1f%% hi-res\n",
		summary.Quality.AverageScore, summary.Quality.PlayWeightedScore,
		summary.Quality.LosslessPct, summary.Quality.HiResPct)

	if summary.ForgottenTrack != nil {
		colorHeader.Println("\n🕰️  Most neglected track")
		fmt.Printf("  %s — %s (last played %s)\n",
			summary.ForgottenTrack.Title, summary.ForgottenTrack.Artist, summary.ForgottenTrack.LastPlayed)
	}

	for _, dive := range summary.ArtistDeepDives {
		colorHeader.Printf("\n🔍 %s\n", dive.Name)
		fmt.Printf("  %d plays over %d songs on %d albums, %s of listening\n",
			dive.Plays, dive.SongCount, dive.AlbumCount, shared.FormatListeningTime(dive.ListeningSeconds))
		for i, song := range dive.TopSongs {
			fmt.Printf("    %d. %s (%d plays)\n", i+1, song.Title, song.Plays)
		}
	}
	fmt.Println()
}

func writeSummaryJSON(summary *stats.Summary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func initConfigAndServices() (*config.Config, *services.ServiceContainer) {
	cfg := config.GetDefaultConfig()

	if !shared.FileExists(configFile) {
		colorInfo.Println("✨ Welcome to Navidrome Wrapped! Let's set up your configuration.")

		cfg.ServerURL = shared.GetUserInput("Enter your Navidrome server URL (e.g., https://music.example.com)", "")
		cfg.Username = shared.GetUserInput("Enter your username", "")
		cfg.Password = shared.GetUserInput("Enter your password", "")

		maxAlbumsStr := shared.GetUserInput("Max albums to scan", strconv.Itoa(cfg.MaxAlbums))
		if n, err := strconv.Atoi(maxAlbumsStr); err == nil && n > 0 {
			cfg.MaxAlbums = n
		} else {
			colorWarning.Printf("⚠️ Invalid value '%s', using default %d.\n", maxAlbumsStr, cfg.MaxAlbums)
		}

		if err := config.SaveConfig(configFile, cfg); err != nil {
			colorError.Printf("❌ Failed to save initial config: %v\n", err)
		} else {
			colorSuccess.Println("✅ Configuration saved to", configFile)
		}
	} else {
		if err := config.LoadConfig(configFile, cfg); err != nil {
			colorError.Printf("❌ Failed to load config from %s: %v\n", configFile, err)
		}
	}

	// Command-line flags override the config file
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if username != "" {
		cfg.Username = username
	}
	if password != "" {
		cfg.Password = password
	}
	if yearFilter != 0 {
		cfg.Year = yearFilter
	}

	if err := cfg.Validate(); err != nil {
		colorError.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	container := services.NewServiceContainer(cfg, nil)
	container.Logger.SetDebugMode(debug)
	container.Navidrome.SetDebug(debug)
	return cfg, container
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.json", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Navidrome server URL")
	rootCmd.PersistentFlags().StringVar(&username, "user", "", "Navidrome username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Navidrome password")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", shared.IsDebugMode(), "Enable debug logging")

	statsCmd.Flags().IntVar(&yearFilter, "year", 0, "Only count tracks last played in this calendar year")
	statsCmd.Flags().StringVar(&jsonOut, "json", "", "Write the summary as JSON to this path ('-' for stdout)")

	coversCmd.Flags().IntVar(&yearFilter, "year", 0, "Only count tracks last played in this calendar year")
	coversCmd.Flags().StringVar(&coversDir, "dir", "", "Directory to save covers into")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(coversCmd)
}

func main() {
	shared.InitializeColors()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
