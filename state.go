package framevk

import "fmt"

// State is the phase the frame pipeline is currently executing.
type State int32

const (
	Idle State = iota
	Ingesting
	Drawing
	ReadingBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ingesting:
		return "ingesting"
	case Drawing:
		return "drawing"
	case ReadingBack:
		return "reading back"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}
