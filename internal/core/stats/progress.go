package stats

// Phase identifies which part of the scan a progress report belongs to
type Phase string

const (
	PhaseAlbums   Phase = "albums"
	PhaseWrap     Phase = "wrap"
	PhaseComplete Phase = "complete"
)

// ProgressFunc receives progress checkpoints during a scan. It is invoked
// synchronously; implementations that buffer or throttle must preserve the
// relative ordering of calls.
type ProgressFunc func(percent float64, message string, phase Phase)

func nopProgress(float64, string, Phase) {}
