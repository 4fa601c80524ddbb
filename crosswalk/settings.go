package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/device"
	"github.com/itohio/gocrossing/pkg/panel"
	"github.com/itohio/gocrossing/pkg/scope"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCrossingTab(state),
		createMonitorTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig writes the configuration back to the file it was loaded from.
func saveConfig(state *appState) bool {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// rebuildAnalysis recreates the widgets and monitor that depend on crossing
// or monitor settings. While connected the rebuild is postponed until the
// record chain is closed.
func rebuildAnalysis(state *appState) {
	if state.chain != nil {
		state.stale = true
		dialog.ShowInformation("Settings", "Changes take effect after reconnecting.", state.window)
		return
	}
	state.stale = false
	state.monitor = newMonitor(state)
	state.scopeWidget = scope.New(state.cfg)
	state.panelWidget = panel.New(state.cfg.Crossing.Controller())
	state.window.SetContent(mainContent(state))
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected // Fallback to selected text
			}

			portChanged := state.cfg.Serial.Port != selectedPort
			wasConnected := state.device != nil && state.device.IsConnected()

			state.cfg.Serial.Port = selectedPort
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			if !saveConfig(state) {
				return
			}

			// If port changed and device was connected, restart the record chain
			if portChanged && wasConnected && !state.useMock {
				handleConnect(state) // disconnect
				handleConnect(state) // reconnect with new port
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createCrossingTab creates the Crossing configuration tab.
// These values must match the constants compiled into the firmware.
func createCrossingTab(state *appState) *container.TabItem {
	c := &state.cfg.Crossing

	profileSelect := widget.NewRadioGroup([]string{config.ProfileElaborated, config.ProfileSimple}, nil)
	profileSelect.SetSelected(c.Profile)

	minDistanceEntry := widget.NewEntry()
	minDistanceEntry.SetText(strconv.FormatFloat(float64(c.MinDistance), 'f', 1, 32))

	crossTimeEntry := widget.NewEntry()
	crossTimeEntry.SetText(c.CrossTime.String())

	historySizeEntry := widget.NewEntry()
	historySizeEntry.SetText(strconv.Itoa(c.HistorySize))

	noEchoEntry := widget.NewEntry()
	noEchoEntry.SetText(strconv.Itoa(c.NoEchoDistance))

	gateUpEntry := widget.NewEntry()
	gateUpEntry.SetText(strconv.Itoa(c.GateUp))

	gateDownEntry := widget.NewEntry()
	gateDownEntry.SetText(strconv.Itoa(c.GateDown))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Profile", Widget: profileSelect},
			{Text: "Min Distance (cm)", Widget: minDistanceEntry},
			{Text: "Crossing Time", Widget: crossTimeEntry},
			{Text: "Filter Length (samples)", Widget: historySizeEntry},
			{Text: "No Echo Distance (cm)", Widget: noEchoEntry},
			{Text: "Gate Up (deg)", Widget: gateUpEntry},
			{Text: "Gate Down (deg)", Widget: gateDownEntry},
		},
		OnSubmit: func() {
			updated := *c
			if profileSelect.Selected != "" {
				updated.Profile = profileSelect.Selected
			}
			if md, err := strconv.ParseFloat(minDistanceEntry.Text, 32); err == nil {
				updated.MinDistance = float32(md)
			}
			if ct, err := time.ParseDuration(crossTimeEntry.Text); err == nil {
				updated.CrossTime = ct
			}
			if hs, err := strconv.Atoi(historySizeEntry.Text); err == nil {
				updated.HistorySize = hs
			}
			if ne, err := strconv.Atoi(noEchoEntry.Text); err == nil {
				updated.NoEchoDistance = ne
			}
			if up, err := strconv.Atoi(gateUpEntry.Text); err == nil {
				updated.GateUp = up
			}
			if down, err := strconv.Atoi(gateDownEntry.Text); err == nil {
				updated.GateDown = down
			}

			if err := updated.Controller().Validate(); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			*c = updated
			if saveConfig(state) {
				rebuildAnalysis(state)
			}
		},
	}

	return container.NewTabItem("Crossing", form)
}

// createMonitorTab creates the Monitor configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(strconv.FormatFloat(state.cfg.Monitor.WindowSeconds, 'f', 1, 64))

	minWindowEntry := widget.NewEntry()
	minWindowEntry.SetText(state.cfg.Monitor.MinWindowDuration.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Min Crossing Duration", Widget: minWindowEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Monitor.WindowSeconds = ws
			}
			if mw, err := time.ParseDuration(minWindowEntry.Text); err == nil {
				state.cfg.Monitor.MinWindowDuration = mw
			}
			if saveConfig(state) {
				rebuildAnalysis(state)
			}
		},
	}

	return container.NewTabItem("Monitor", form)
}

// createMockTab creates the simulated crossing configuration tab.
func createMockTab(state *appState) *container.TabItem {
	m := &state.cfg.Mock

	tickEntry := widget.NewEntry()
	tickEntry.SetText(m.TickInterval.String())

	clearEntry := widget.NewEntry()
	clearEntry.SetText(strconv.FormatFloat(m.ClearDistance, 'f', 0, 64))

	obstacleEntry := widget.NewEntry()
	obstacleEntry.SetText(strconv.FormatFloat(m.ObstacleDistance, 'f', 0, 64))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(strconv.FormatFloat(m.NoiseLevel, 'f', 1, 64))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(m.ObstaclePeriod.String())

	durationEntry := widget.NewEntry()
	durationEntry.SetText(m.ObstacleDuration.String())

	dropoutEntry := widget.NewEntry()
	dropoutEntry.SetText(strconv.FormatFloat(m.DropoutRate, 'f', 3, 64))

	requestEntry := widget.NewEntry()
	requestEntry.SetText(m.RequestPeriod.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Tick Interval", Widget: tickEntry},
			{Text: "Clear Distance (cm)", Widget: clearEntry},
			{Text: "Obstacle Distance (cm)", Widget: obstacleEntry},
			{Text: "Noise Level (cm)", Widget: noiseEntry},
			{Text: "Obstacle Period (0 = never)", Widget: periodEntry},
			{Text: "Obstacle Duration", Widget: durationEntry},
			{Text: "Echo Dropout Rate", Widget: dropoutEntry},
			{Text: "Auto Request Period (0 = manual)", Widget: requestEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(tickEntry.Text); err == nil && d > 0 {
				m.TickInterval = d
			}
			if v, err := strconv.ParseFloat(clearEntry.Text, 64); err == nil {
				m.ClearDistance = v
			}
			if v, err := strconv.ParseFloat(obstacleEntry.Text, 64); err == nil {
				m.ObstacleDistance = v
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				m.NoiseLevel = v
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil {
				m.ObstaclePeriod = d
			}
			if d, err := time.ParseDuration(durationEntry.Text); err == nil {
				m.ObstacleDuration = d
			}
			if v, err := strconv.ParseFloat(dropoutEntry.Text, 64); err == nil {
				m.DropoutRate = v
			}
			if d, err := time.ParseDuration(requestEntry.Text); err == nil {
				m.RequestPeriod = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
