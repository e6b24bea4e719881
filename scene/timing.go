package scene

// Timing carries the host's per tick parameters into the draw phase.
type Timing struct {
	//Project position in seconds
	ProjectTime float64
	FrameRate   float64
	//Free parameter forwarded to the shaders through push constants
	ExternalParam float64
}

//Frame index implied by the project position, fractional between frames
func (t Timing) FrameNumber() float64 {
	return t.ProjectTime * t.FrameRate
}
