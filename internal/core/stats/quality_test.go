package stats

import "testing"

func TestQualityScoreLossless(t *testing.T) {
	cases := []struct {
		name       string
		suffix     string
		bitDepth   int
		sampleRate int
		want       int
		wantHiRes  bool
	}{
		{"hi-res flac", "flac", 24, 96000, 100, true},
		{"studio flac", "flac", 24, 48000, 95, false},
		{"cd flac", "flac", 16, 44100, 85, false},
		{"odd lossless", "ape", 0, 0, 75, false},
		{"alac", "alac", 16, 44100, 85, false},
		{"wav hi-res", "wav", 24, 192000, 100, true},
	}

	for _, tc := range cases {
		score, class, hiRes := qualityScore(tc.suffix, "", 0, tc.sampleRate, tc.bitDepth)
		if class != codecLossless {
			t.Errorf("%s: expected lossless classification", tc.name)
		}
		if score != tc.want {
			t.Errorf("%s: expected score %d, got %d", tc.name, tc.want, score)
		}
		if hiRes != tc.wantHiRes {
			t.Errorf("%s: expected hiRes=%v", tc.name, tc.wantHiRes)
		}
	}
}

func TestQualityScoreLossy(t *testing.T) {
	cases := []struct {
		suffix  string
		bitRate int
		want    int
	}{
		{"mp3", 320, 75},
		{"mp3", 256, 60},
		{"aac", 192, 45},
		{"ogg", 128, 30},
		{"opus", 96, 15},
		{"m4a", 0, 15},
	}

	for _, tc := range cases {
		score, class, hiRes := qualityScore(tc.suffix, "", tc.bitRate, 0, 0)
		if class != codecLossy {
			t.Errorf("%s@%d: expected lossy classification", tc.suffix, tc.bitRate)
		}
		if score != tc.want {
			t.Errorf("%s@%d: expected score %d, got %d", tc.suffix, tc.bitRate, tc.want, score)
		}
		if hiRes {
			t.Errorf("%s@%d: lossy tracks are never hi-res", tc.suffix, tc.bitRate)
		}
	}
}

func TestQualityScoreUnknown(t *testing.T) {
	// High-res PCM attributes without a recognised container
	score, class, hiRes := qualityScore("", "", 0, 96000, 24)
	if class != codecUnknown || score != 98 || !hiRes {
		t.Errorf("Expected (98, unknown, hi-res), got (%d, %v, %v)", score, class, hiRes)
	}

	// High bit rate caps at 70
	score, _, _ = qualityScore("xyz", "", 320, 0, 0)
	if score != 70 {
		t.Errorf("Expected 70 for unknown at 320kbps, got %d", score)
	}

	// Proportional below 320
	score, _, _ = qualityScore("xyz", "", 160, 0, 0)
	if score != 35 {
		t.Errorf("Expected 35 for unknown at 160kbps, got %d", score)
	}

	// No quality signal at all: neutral default
	score, _, hiRes = qualityScore("", "", 0, 0, 0)
	if score != 50 || hiRes {
		t.Errorf("Expected neutral 50, got %d (hiRes=%v)", score, hiRes)
	}
}

func TestQualityScoreContentTypeFallback(t *testing.T) {
	// Suffix missing, MIME type decides
	_, class, _ := qualityScore("", "audio/x-flac", 0, 44100, 16)
	if class != codecLossless {
		t.Error("audio/x-flac should classify as lossless")
	}

	_, class, _ = qualityScore("", "audio/mpeg; codecs=mp3", 320, 0, 0)
	if class != codecLossy {
		t.Error("mp3 MIME type should classify as lossy")
	}
}

func TestQualityScoreBounds(t *testing.T) {
	suffixes := []string{"flac", "alac", "wav", "aiff", "ape", "mp3", "aac", "m4a", "ogg", "opus", "", "zzz"}
	rates := []int{0, 64, 128, 192, 256, 320, 1411}
	depths := []int{0, 16, 24, 32}
	samples := []int{0, 22050, 44100, 48000, 96000, 192000}

	for _, suffix := range suffixes {
		for _, rate := range rates {
			for _, depth := range depths {
				for _, sample := range samples {
					score, class, _ := qualityScore(suffix, "", rate, sample, depth)
					if score < 0 || score > 100 {
						t.Fatalf("Score %d out of range for %s/%d/%d/%d", score, suffix, rate, depth, sample)
					}
					// Lossless and lossy are mutually exclusive per item
					if losslessSuffixes[suffix] && class != codecLossless {
						t.Fatalf("%s must classify lossless", suffix)
					}
					if lossySuffixes[suffix] && class != codecLossy {
						t.Fatalf("%s must classify lossy", suffix)
					}
				}
			}
		}
	}
}
