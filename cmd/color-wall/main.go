package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/lixenwraith/color-wall/config"
	"github.com/lixenwraith/color-wall/core"
	"github.com/lixenwraith/color-wall/device"
	"github.com/lixenwraith/color-wall/engine"
	"github.com/lixenwraith/color-wall/input"
	"github.com/lixenwraith/color-wall/terminal"
	"github.com/lixenwraith/color-wall/wall"
)

// Exit statuses
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	// Errors before the terminal is taken over go to stderr
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("color-wall failed")
		if errors.Is(err, config.ErrInvalid) {
			return exitUsage
		}
		return exitFailed
	}
	return exitOK
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "color-wall",
		Short: "Dynamic color wall in the terminal",
		Long: `Fills the terminal with blocks of random color and repaints them on every
key press. With --global, presses anywhere on the seat's keyboards repaint
the wall, which needs read access to /dev/input.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd, settings)
		},
	}

	config.BindFlags(root.PersistentFlags())
	root.SetGlobalNormalizationFunc(config.NormalizeFlagName)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	})

	root.AddCommand(newConfigCmd())
	return root
}

func run(cmd *cobra.Command, settings config.Settings) error {
	logger, logFile := setupLogging(settings.Debug, settings.LogFile, settings.LogLevel)
	if logFile != nil {
		defer logFile.Close()
	}
	ctx := pslog.ContextWithLogger(cmd.Context(), logger)

	if settings.OnlyWhenFocused && !settings.Global {
		logger.Warn("only_when_focused has no effect without global capture")
	}

	term, err := newTerminal(settings)
	if err != nil {
		return err
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	core.RegisterCrashTerminal(term)
	defer func() {
		term.Fini()
		core.RegisterCrashTerminal(nil)
	}()

	// Panics on this goroutine restore the terminal like the producers' do
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	w := wall.New(settings.Columns, settings.Rows, settings.WallColors, settings.Seed)

	app := engine.NewApp(term, w, engine.Options{
		GlobalCapture:   settings.Global,
		OnlyWhenFocused: settings.OnlyWhenFocused,
		QuitKeys:        settings.QuitKeySet,
		OpenDevices:     openDevices(settings.Seat, logger),
	}, logger)

	logger.Info("starting",
		"backend", settings.Backend,
		"color", term.ColorMode(),
		"palette", settings.WallColors,
		"grid", fmt.Sprintf("%dx%d", settings.Columns, settings.Rows),
	)
	app.Run(ctx)

	// Warnings are only readable once the alternate screen is gone
	term.Fini()
	for _, warning := range app.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "color-wall: global key capture disabled: %v\n", warning)
	}
	return nil
}

func newTerminal(settings config.Settings) (terminal.Terminal, error) {
	if settings.Backend == config.BackendTcell {
		term, err := terminal.NewTcell(settings.ColorMode)
		if err != nil {
			return nil, fmt.Errorf("create tcell screen: %w", err)
		}
		return term, nil
	}
	return terminal.New(terminal.Options{
		ColorMode:     settings.ColorMode,
		KittyKeyboard: settings.KittyKeyboard,
	}), nil
}

func openDevices(seat string, logger pslog.Logger) func() (input.DeviceSource, error) {
	return func() (input.DeviceSource, error) {
		s, err := device.Open(device.Options{Seat: seat})
		if err != nil {
			return nil, err
		}
		logger.Info("keyboards opened", "seat", seat, "devices", s.Devices())
		return s, nil
	}
}
