package main

import (
	"fmt"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// obstacleSetter is implemented by devices with a simulated crossing path.
type obstacleSetter interface {
	SetBlocked(blocked bool) error
}

// handleRequest presses the crossing button remotely.
func handleRequest(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}

	if err := state.device.Request(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to request crossing: %w", err), state.window)
	}
}

// handleObstacleToggle places or removes an obstacle in the simulated path.
func handleObstacleToggle(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	dev, ok := state.device.(obstacleSetter)
	if !ok {
		return
	}

	state.blocked = !state.blocked
	if err := dev.SetBlocked(state.blocked); err != nil {
		// Revert state on error
		state.blocked = !state.blocked
		dialog.ShowError(fmt.Errorf("failed to place obstacle: %w", err), state.window)
		return
	}

	updateToggleButton(state.obstacleBtn, state.blocked)
}

// updateToggleButton updates the visual state of a toggle button.
func updateToggleButton(btn *widget.Button, isOn bool) {
	if isOn {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
