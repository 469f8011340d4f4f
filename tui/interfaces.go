// ABOUTME: Interfaces the terminal UI depends on
// ABOUTME: Satisfied by *player.Player; tests substitute a recording fake

package tui

import (
	"cover-player/engine"
	"cover-player/player"
)

// Player is the dispatcher the UI drives. All calls happen on the Bubble Tea
// update goroutine.
type Player interface {
	Dispatch(in player.Intent) error
	HandleEvent(ev engine.Event) (bool, error)
	Snapshot() player.Snapshot
	Devices() ([]engine.Device, error)
}

var _ Player = (*player.Player)(nil)
