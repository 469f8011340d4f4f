// ABOUTME: User and engine intents consumed by the player dispatcher
// ABOUTME: One Intent value per discrete trigger: key press, device pick, end of media

package player

import (
	"fmt"
	"time"

	"cover-player/engine"
)

// IntentKind selects the operation an Intent requests
type IntentKind int

const (
	Open          IntentKind = iota // Path: file, directory or M3U8 playlist
	Select                          // Path: entry of the current playlist
	Next                            // Advance with wraparound
	Previous                        // Go back with wraparound
	DeviceChanged                   // Device: description of the new output
	TrackEnded                      // Event: the status event that ended the track
	Refresh                         // Rescan the current directory
	TogglePause                     // Play or pause
	Stop                            // Stop, keeping the current track
	Seek                            // Offset: relative jump
	Volume                          // Volume: linear level 0.0 - 1.0
	Export                          // Path: M3U8 file to write the playlist to
	Shutdown                        // Geometry: opaque window state to persist
)

var intentNames = map[IntentKind]string{
	Open:          "open",
	Select:        "select",
	Next:          "next",
	Previous:      "previous",
	DeviceChanged: "device-changed",
	TrackEnded:    "track-ended",
	Refresh:       "refresh",
	TogglePause:   "toggle-pause",
	Stop:          "stop",
	Seek:          "seek",
	Volume:        "volume",
	Export:        "export",
	Shutdown:      "shutdown",
}

// String returns the intent name used in logs
func (k IntentKind) String() string {
	if name, ok := intentNames[k]; ok {
		return name
	}

	return fmt.Sprintf("IntentKind(%d)", int(k))
}

// Intent is a request to the dispatcher. Only the fields named by Kind are read.
type Intent struct {
	Kind     IntentKind
	Path     string
	Device   string
	Offset   time.Duration
	Volume   float64
	Geometry []byte
	Event    engine.Event
}
