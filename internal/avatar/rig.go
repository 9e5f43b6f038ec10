package avatar

// Drag and sway are animated by the page; these values parameterise it.
const (
	dragRadiansPerPixel = 0.01
	maxPitch            = 1.0
)

// Rotation is in radians: X pitch, Y yaw, Z roll.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Motion describes the idle sway as amplitude*sin(speed*t) per axis.
type Motion struct {
	YawSpeed   float64 `json:"yaw_speed"`
	YawAmp     float64 `json:"yaw_amp"`
	PitchSpeed float64 `json:"pitch_speed"`
	PitchAmp   float64 `json:"pitch_amp"`
	BobSpeed   float64 `json:"bob_speed"`
	BobAmp     float64 `json:"bob_amp"`
	RollSpeed  float64 `json:"roll_speed"`
	RollAmp    float64 `json:"roll_amp"`
}

var IdleMotion = Motion{
	YawSpeed: 0.5, YawAmp: 0.08,
	PitchSpeed: 0.7, PitchAmp: 0.05,
	BobSpeed: 0.6, BobAmp: 0.02,
	RollSpeed: 0.3, RollAmp: 0.03,
}

// restRotation is the model's orientation before the user drags it.
func restRotation(p Profile) Rotation {
	return Rotation{X: p.InitialPitch}
}
