package skyline

import "strconv"

// State of a SkyLine
type State int

const (
	// Error means the pipeline could not be opened. Frames are discarded
	// until the streaming is restarted.
	Error State = -1
	// Stopped discards frames silently.
	Stopped State = 0
	// StartWarmup arms the frame rate meter on the next frame.
	StartWarmup State = 1
	// Warmup measures frame rate and frame size.
	Warmup State = 2
	// Streaming forwards frames to the pipeline.
	Streaming State = 3
)

func (s State) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Stopped:
		return "STOPPED"
	case StartWarmup:
		return "START_WARMUP"
	case Warmup:
		return "WARMUP"
	case Streaming:
		return "STREAMING"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}
