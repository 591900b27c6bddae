package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cjeanneret/EqGo/internal/config"
	"github.com/cjeanneret/EqGo/internal/debug"
	"github.com/cjeanneret/EqGo/internal/hw/display"
	"github.com/cjeanneret/EqGo/internal/hw/encoder"
	"github.com/cjeanneret/EqGo/internal/hw/gpio"
	"github.com/cjeanneret/EqGo/internal/hw/limit"
	"github.com/cjeanneret/EqGo/internal/hw/stepper"
	"github.com/cjeanneret/EqGo/internal/logic/control"
	"github.com/cjeanneret/EqGo/internal/logic/menu"
	"github.com/cjeanneret/EqGo/internal/logic/motor"
	"github.com/cjeanneret/EqGo/internal/logic/settings"
	"github.com/cjeanneret/EqGo/internal/store"
	"github.com/cjeanneret/EqGo/internal/ui"
)

func main() {
	// CLI flags
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	trackingSpeed := flag.Int("tracking_speed", 0, "override persisted tracking speed (1-1000; 0 = keep persisted)")
	homeSpeed := flag.Int("home_speed", 0, "override persisted home speed (1-1000; 0 = keep persisted)")
	mock := flag.Bool("mock", false, "force mock GPIO and a console display (bench runs without hardware)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "keep persisted value")
	if err := validateSpeedOverrides(*trackingSpeed, *homeSpeed); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	useMock := cfg.Defaults.MockGPIO || *mock

	// Initialize GPIO driver
	debug.Value("Mock GPIO", useMock)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(useMock)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize the stepper (motion primitive)
	debug.Step(2, "Initializing stepper motor")
	motorDrv := stepper.NewStepper(gpioDriver, stepper.Config{
		StepPin:   cfg.Stepper.StepPin,
		DirPin:    cfg.Stepper.DirPin,
		EnablePin: cfg.Stepper.EnablePin,
		MaxSpeed:  cfg.Stepper.MaxSpeed,
	})
	debug.PrintStruct("Stepper config", cfg.Stepper)

	// Inputs: encoder with push button, two limit switches
	debug.Step(3, "Initializing inputs")
	enc, err := encoder.NewEncoder(gpioDriver, encoder.Config{
		ClkPin:      cfg.Encoder.ClkPin,
		DtPin:       cfg.Encoder.DtPin,
		SwPin:       cfg.Encoder.SwPin,
		Debounce:    cfg.Debounce(),
		RotateGuard: cfg.RotateGuard(),
	})
	if err != nil {
		log.Fatalf("init encoder failed: %v", err)
	}
	homeSwitch, err := limit.NewSwitch(gpioDriver, cfg.Limits.HomePin, "home")
	if err != nil {
		log.Fatalf("init home limit switch failed: %v", err)
	}
	endSwitch, err := limit.NewSwitch(gpioDriver, cfg.Limits.EndPin, "end")
	if err != nil {
		log.Fatalf("init end limit switch failed: %v", err)
	}

	// Persistent speed store
	debug.Step(4, "Opening speed store")
	words, err := store.NewFileStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("open speed store failed: %v", err)
	}
	defer words.Close()

	speeds, err := settings.Load(words)
	if err != nil {
		log.Fatalf("load speeds failed: %v", err)
	}
	if *trackingSpeed > 0 {
		speeds.Set(settings.FieldTracking, *trackingSpeed)
	}
	if *homeSpeed > 0 {
		speeds.Set(settings.FieldHome, *homeSpeed)
	}

	// Display sink. A failure here is fatal: the display is the only user
	// feedback channel, so there is no degraded mode.
	debug.Step(5, "Initializing display")
	sink, cleanup, err := newDisplaySink(cfg, useMock)
	if err != nil {
		log.Fatalf("init display failed: %v", err)
	}
	defer cleanup()

	// Core state machine wiring
	debug.Step(6, "Wiring control loop")
	pages := menu.NewModel(speeds, cfg.BlinkInterval())
	machine := motor.NewMachine(motorDrv, homeSwitch, endSwitch, cfg.Stepper.Acceleration)
	renderer := ui.NewRenderer(sink, cfg.Display.Width)
	loop := control.New(speeds, pages, machine, enc, renderer, cfg.LoopInterval())

	debug.Section("Running")
	if err := loop.Run(ctx); err != nil {
		log.Fatalf("control loop: %v", err)
	}
}

// validateSpeedOverrides checks that non-zero CLI overrides are within the
// valid speed range. Zero values are ignored (they mean "keep persisted").
func validateSpeedOverrides(tracking, home int) error {
	if tracking != 0 && (tracking < settings.MinSpeed || tracking > settings.MaxSpeed) {
		return fmt.Errorf("tracking_speed must be between %d and %d, got %d",
			settings.MinSpeed, settings.MaxSpeed, tracking)
	}
	if home != 0 && (home < settings.MinSpeed || home > settings.MaxSpeed) {
		return fmt.Errorf("home_speed must be between %d and %d, got %d",
			settings.MinSpeed, settings.MaxSpeed, home)
	}
	return nil
}

// newDisplaySink selects the display implementation: the SSD1306 panel on
// hardware, a console recorder for bench runs.
func newDisplaySink(cfg *config.Config, mock bool) (display.Sink, func(), error) {
	if mock {
		return &display.Recorder{Out: os.Stdout}, func() {}, nil
	}
	d, err := display.NewSSD1306(cfg.Display.I2CBus, cfg.Display.I2CAddr, cfg.Display.Width, cfg.Display.Height)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := d.Close(); err != nil {
			log.Printf("closing display failed: %v", err)
		}
	}
	return d, cleanup, nil
}
