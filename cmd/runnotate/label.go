package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"runnotate/pkg/config"
	"runnotate/pkg/keys"
	"runnotate/pkg/logger"
	"runnotate/pkg/session"
	"runnotate/pkg/ui"
	"runnotate/pkg/ui/tui"
)

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, config.Overrides{
		Data:     dataDir,
		Out:      outPath,
		LogLevel: logLevel,
	})
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	held, err := setupLogging(cfg.Logging, interactive, logLevel != "")
	if err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return err
	}
	if held != nil {
		defer held.Release(os.Stderr)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("runnotate starting")

	reportBindings(cfg, log)

	sess, err := session.Open(cfg, session.Options{
		Lock:         lockOutput,
		Restart:      restart,
		PollInterval: pollInterval,
		Logger:       log,
	})
	if err != nil {
		log.WithError(err).Error("Failed to open session")
		ui.PrintError("Failed to open session", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var display session.Display
	if interactive {
		terminal := tui.NewTUI(cfg.Bindings())
		terminal.Start()
		defer terminal.Stop()
		display = terminal
	} else {
		ui.PrintLogo()
		ui.PrintInfo("Input", "not a terminal, reading one key per byte from stdin")
		lines := ui.NewLineDisplay(os.Stdin, ui.Out)
		defer lines.Close()
		display = lines
	}

	runErr := sess.Run(ctx, display)

	if t, ok := display.(*tui.TUI); ok {
		if err := t.Stop(); err != nil {
			log.WithError(err).Warn("Terminal UI exited with an error")
		}
	}
	if held != nil {
		_ = held.Release(os.Stderr)
	}

	summary, closeErr := sess.Close()
	printSummary(summary)

	if notify {
		notifier := ui.NewNotifier()
		if runErr != nil || closeErr != nil {
			notifier.SendError("runnotate", "session ended with an error")
		} else {
			notifier.SendSuccess("runnotate", fmt.Sprintf("%d of %d images labeled", summary.Labeled, summary.Total))
		}
	}

	if runErr != nil {
		ui.PrintError("Session failed", runErr.Error())
		return runErr
	}
	return closeErr
}

// setupLogging installs the global logger. When the TUI will own the terminal
// and no log file is set, console events are held back until it exits; the
// level then defaults to error unless one was asked for explicitly.
func setupLogging(cfg config.LoggingConfig, interactive, explicitLevel bool) (*logger.Held, error) {
	if !interactive || cfg.File != "" {
		return nil, logger.Initialize(&cfg)
	}

	if !explicitLevel {
		cfg.Level = "error"
	}
	held := &logger.Held{}
	l, err := logger.NewWithWriter(held, cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLogger(l)
	return held, nil
}

// reportBindings surfaces key names that resolved to nothing and keys bound
// to more than one action before the terminal is taken over
func reportBindings(cfg *config.Config, log logger.Logger) {
	unresolved := cfg.Unresolved()
	for _, name := range unresolved {
		log.WithField("key", name).Warn("Unknown key name, binding disabled")
		ui.PrintWarning("Unknown key name, binding disabled", name)
	}
	if len(unresolved) > 0 {
		ui.PrintInfo("Known keys", keyHint())
	}
	for _, overlap := range cfg.Bindings().Overlaps() {
		log.WithField("overlap", overlap).Warn("Key bound more than once")
		ui.PrintWarning("Key bound more than once", overlap)
	}
}

// keyHint lists the names a binding file may use, folding single letters and digits
func keyHint() string {
	named := []string{"A-Z", "0-9"}
	for _, name := range keys.Names() {
		if len(name) > 1 {
			named = append(named, name)
		}
	}
	return strings.Join(named, ", ")
}

func printSummary(s session.Summary) {
	ui.PrintHighlight("\n[SESSION SAVED]")
	ui.PrintInfo("Session", s.SessionID)
	ui.PrintInfo("Position", fmt.Sprintf("%d / %d", s.Position+1, s.Total))
	ui.PrintInfo("Labeled", fmt.Sprintf("%d", s.Labeled))

	names := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ui.PrintInfo("  "+name, fmt.Sprintf("%d", s.Counts[name]))
	}

	if s.Written {
		ui.PrintSuccess("Labels written to " + s.RecordPath)
	} else {
		ui.PrintWarning("Nothing to save, " + s.RecordPath + " left untouched")
	}
}
