package main

import (
	"flag"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/device"
	"github.com/itohio/gocrossing/pkg/monitor"
	"github.com/itohio/gocrossing/pkg/panel"
	"github.com/itohio/gocrossing/pkg/scope"
	"github.com/itohio/gocrossing/pkg/telemetry"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use simulated crossing instead of serial port")
		headlessFlag = flag.Bool("headless", false, "Print diagnostic lines to stdout without opening a window")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	if *headlessFlag {
		if err := runHeadless(cfg, *mockFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.gocrossing")

	// Create main window
	window := application.NewWindow("Pedestrian Crossing")
	window.Resize(fyne.NewSize(1000, 700))
	window.CenterOnScreen()

	appState := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
	}

	appState.toolbar = createToolbar(appState)
	appState.scopeWidget = scope.New(cfg)
	appState.panelWidget = panel.New(cfg.Crossing.Controller())
	appState.status = widget.NewLabel("Disconnected")
	appState.monitor = newMonitor(appState)

	window.SetContent(mainContent(appState))
	window.ShowAndRun()

	closeRecordChain(appState.chain)
}

// recordChain tracks the components of the record chain for graceful shutdown.
type recordChain struct {
	device      device.Device
	records     <-chan telemetry.Record
	monitorDone chan struct{} // Closed when monitor goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      device.Device
	monitor     *monitor.Monitor
	scopeWidget *scope.ScopeWidget
	panelWidget *panel.PanelWidget
	status      *widget.Label
	toolbar     fyne.CanvasObject
	window      fyne.Window
	connectBtn  *widget.Button
	requestBtn  *widget.Button
	obstacleBtn *widget.Button
	useMock     bool
	blocked     bool         // Manual obstacle placed in the simulated path
	stale       bool         // Settings changed while connected
	chain       *recordChain // Current record chain (nil if not connected)

	throttle throttle
}

// createToolbar creates the application toolbar with Connect, Settings, Request and Obstacle buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	requestBtn := widget.NewButtonWithIcon("Request", theme.MediaPlayIcon(), func() {
		handleRequest(state)
	})
	requestBtn.Disable()
	state.requestBtn = requestBtn

	right := container.NewHBox(requestBtn)
	if state.useMock {
		obstacleBtn := widget.NewButtonWithIcon("Obstacle", theme.WarningIcon(), func() {
			handleObstacleToggle(state)
		})
		obstacleBtn.Disable()
		state.obstacleBtn = obstacleBtn
		right.Add(obstacleBtn)
	}

	// Buttons on the left, crossing controls aligned to the right
	return container.NewBorder(nil, nil, container.NewHBox(connectBtn, settingsBtn), right, nil)
}

// mainContent lays out the toolbar at the top, the status line at the bottom
// and the crossing panel above the scope.
func mainContent(state *appState) fyne.CanvasObject {
	return container.NewBorder(
		state.toolbar,
		state.status,
		nil,
		nil,
		container.NewVSplit(state.panelWidget, state.scopeWidget),
	)
}

// openDevice creates the device selected by the command line.
func openDevice(cfg *config.Config, useMock bool) device.Device {
	if useMock {
		return device.NewMock(cfg)
	}
	return device.New(cfg.Serial.Port, cfg.Serial.BaudRate, device.DefaultBufferSize)
}

// closeRecordChain gracefully closes the record chain.
// Waits for the monitor goroutine to drain the records channel.
func closeRecordChain(chain *recordChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the records channel
	if chain.device != nil {
		chain.device.Close()
	}

	if chain.monitorDone != nil {
		<-chain.monitorDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeRecordChain(state.chain)
		state.throttle.Flush()
		state.chain = nil
		state.device = nil
		state.blocked = false
		state.requestBtn.Disable()
		if state.obstacleBtn != nil {
			state.obstacleBtn.Disable()
			updateToggleButton(state.obstacleBtn, false)
		}
		state.panelWidget.Disconnect()
		state.status.SetText("Disconnected")
		if state.stale {
			rebuildAnalysis(state)
		}
		if state.useMock {
			fmt.Println("Disconnected from simulated crossing")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	dev := openDevice(state.cfg, state.useMock)
	if state.useMock {
		fmt.Println("Using simulated crossing")
	}

	if err := dev.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated crossing: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev
	if state.useMock {
		fmt.Printf("Connected to simulated crossing\n")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	state.requestBtn.Enable()
	if state.obstacleBtn != nil {
		state.obstacleBtn.Enable()
	}

	// Reset monitor shutdown flag for new chain
	state.monitor.ResetShutdown()

	records := dev.Records()
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		state.monitor.Process(records)
	}()

	state.chain = &recordChain{
		device:      dev,
		records:     records,
		monitorDone: monitorDone,
	}
}
