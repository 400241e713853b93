package common

// Key codes carried by input events. They follow the GLFW numbering, where printable
// keys use their ASCII value.
const (
	KeySpace = 32
	KeyA     = 65
	KeyD     = 68
	KeyE     = 69
	KeyQ     = 81
	KeyS     = 83
	KeyW     = 87

	KeyEscape    = 256
	KeyEnter     = 257
	KeyBackspace = 259
	KeyLeftShift = 340
)
