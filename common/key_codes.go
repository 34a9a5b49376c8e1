package common

// Virtual key codes for the runtime toggles.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyB   = 66  // B key (ASCII): cycle culling backend
	KeyC   = 67  // C key (ASCII): toggle culling
	KeyI   = 73  // I key (ASCII): toggle indirect draw
	KeyR   = 82  // R key (ASCII): toggle static command replay
	KeyP   = 80  // P key (ASCII): toggle profiler
	KeyEsc = 256 // Escape key (GLFW)
)

// Camera movement keys.
const (
	KeyA     = 65  // A key (ASCII): strafe left
	KeyD     = 68  // D key (ASCII): strafe right
	KeyS     = 83  // S key (ASCII): move backward
	KeyW     = 87  // W key (ASCII): move forward
	KeyRight = 262 // Right arrow (GLFW): turn right
	KeyLeft  = 263 // Left arrow (GLFW): turn left
	KeyDown  = 264 // Down arrow (GLFW): look down
	KeyUp    = 265 // Up arrow (GLFW): look up
)
