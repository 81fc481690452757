package shared

import (
	"fmt"
	"sort"
	"strings"
)

// WarningType represents different types of warnings
type WarningType int

const (
	AlbumDetailWarning WarningType = iota
	CoverArtDownloadWarning
	TimestampParseWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // Album/track context
	Details string // Additional details like error message
}

// WarningCollector collects non-fatal anomalies during a library scan
type WarningCollector struct {
	warnings []Warning
	enabled  bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if !wc.enabled {
		return
	}

	wc.warnings = append(wc.warnings, Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	})
}

// AddAlbumDetailWarning records an album whose detail fetch returned no payload
func (wc *WarningCollector) AddAlbumDetailWarning(albumName, albumID string) {
	context := fmt.Sprintf("%s (ID: %s)", albumName, albumID)
	wc.AddWarning(AlbumDetailWarning, context, "Album detail unavailable, skipped", "")
}

// AddCoverArtDownloadWarning adds a cover art download warning
func (wc *WarningCollector) AddCoverArtDownloadWarning(album, details string) {
	wc.AddWarning(CoverArtDownloadWarning, album, "Could not download cover art", details)
}

// AddTimestampParseWarning records a last-played value that could not be parsed
func (wc *WarningCollector) AddTimestampParseWarning(trackTitle, raw string) {
	wc.AddWarning(TimestampParseWarning, trackTitle, "Unparseable last-played timestamp", raw)
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	return len(wc.warnings) > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", len(wc.warnings))
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	// Sort warning types for consistent output
	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		wc.printWarningTypeSection(warningType, grouped[warningType])
	}
}

// printWarningTypeSection prints warnings for a specific type
func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	sectionTitle := wc.getWarningTypeTitle(warningType)
	ColorWarning.Printf("\n%s (%d):\n", sectionTitle, len(warnings))

	// Group similar warnings to avoid repetition
	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	// Sort contexts for consistent output
	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	// Print warnings, showing count if multiple
	for _, context := range contexts {
		count := contextCounts[context]
		if count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

// getWarningTypeTitle returns a human-readable title for a warning type
func (wc *WarningCollector) getWarningTypeTitle(warningType WarningType) string {
	switch warningType {
	case AlbumDetailWarning:
		return "Albums Skipped (Detail Unavailable)"
	case CoverArtDownloadWarning:
		return "Cover Art Download Failures"
	case TimestampParseWarning:
		return "Unparseable Timestamps"
	default:
		return "Other Warnings"
	}
}
