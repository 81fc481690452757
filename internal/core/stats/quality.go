package stats

import "strings"

// codecClass groups containers into lossless, lossy and unknown families
type codecClass int

const (
	codecUnknown codecClass = iota
	codecLossless
	codecLossy
)

var losslessSuffixes = map[string]bool{
	"flac": true, "alac": true, "wav": true, "wave": true,
	"aiff": true, "aif": true, "ape": true,
}

var lossySuffixes = map[string]bool{
	"mp3": true, "aac": true, "m4a": true, "ogg": true,
	"oga": true, "opus": true,
}

// classifyCodec decides the codec family from the file suffix, falling back to
// the MIME content type when the suffix is missing or unrecognised
func classifyCodec(suffix, contentType string) codecClass {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
	if losslessSuffixes[s] {
		return codecLossless
	}
	if lossySuffixes[s] {
		return codecLossy
	}

	ct := strings.ToLower(contentType)
	for name := range losslessSuffixes {
		if strings.Contains(ct, name) {
			return codecLossless
		}
	}
	for name := range lossySuffixes {
		if strings.Contains(ct, name) {
			return codecLossy
		}
	}
	return codecUnknown
}

// qualityScore computes the 0-100 fidelity heuristic for one track.
// hiRes reports whether the track counts toward the hi-res tally.
func qualityScore(suffix, contentType string, bitRate, sampleRate, bitDepth int) (score int, class codecClass, hiRes bool) {
	class = classifyCodec(suffix, contentType)

	switch class {
	case codecLossless:
		switch {
		case bitDepth >= 24 && sampleRate >= 96000:
			return 100, class, true
		case bitDepth >= 24 && sampleRate >= 48000:
			return 95, class, false
		case bitDepth >= 16 && sampleRate >= 44100:
			return 85, class, false
		default:
			return 75, class, false
		}

	case codecLossy:
		switch {
		case bitRate >= 320:
			return 75, class, false
		case bitRate >= 256:
			return 60, class, false
		case bitRate >= 192:
			return 45, class, false
		case bitRate >= 128:
			return 30, class, false
		default:
			return 15, class, false
		}

	default:
		// No recognisable container. High-res PCM attributes still earn a near-top
		// score; otherwise fall back to the bit rate, or a neutral default when the
		// track carries no quality signal at all.
		switch {
		case bitDepth >= 24 && sampleRate >= 96000:
			return 98, class, true
		case bitRate >= 320:
			return 70, class, false
		case bitRate > 0:
			score = bitRate * 70 / 320
			if score > 70 {
				score = 70
			}
			return score, class, false
		default:
			return 50, class, false
		}
	}
}
