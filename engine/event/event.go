package event

import "fmt"

// Kind identifies the type of an Event.
type Kind int

const (
	// KindCustom is an application defined event carrying Payload.
	KindCustom Kind = iota
	// KindKeyDown is a key press or repeat; Key holds the key code.
	KindKeyDown
	// KindKeyUp is a key release; Key holds the key code.
	KindKeyUp
	// KindMouseMove carries the cursor position in X and Y.
	KindMouseMove
	// KindScroll carries the wheel delta in Delta.
	KindScroll
	// KindResize carries the new framebuffer size in Width and Height.
	KindResize
	// KindClose is raised when the platform window requests shutdown.
	KindClose
	// KindAssetLoaded is raised by background loaders; Name, Payload and Err describe the result.
	KindAssetLoaded
)

var kindNames = [...]string{
	KindCustom:      "custom",
	KindKeyDown:     "key_down",
	KindKeyUp:       "key_up",
	KindMouseMove:   "mouse_move",
	KindScroll:      "scroll",
	KindResize:      "resize",
	KindClose:       "close",
	KindAssetLoaded: "asset_loaded",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a cross-thread notification delivered into the frame loop.
type Event struct {
	Kind Kind

	Key   uint32
	X, Y  int32
	Delta float32

	Width, Height int

	Name    string
	Payload any
	Err     error
}
