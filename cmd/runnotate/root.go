package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"runnotate/pkg/config"
	"runnotate/pkg/session"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	configFile   string
	dataDir      string
	outPath      string
	logLevel     string
	lockOutput   bool
	restart      bool
	notify       bool
	pollInterval time.Duration
)

// rootCmd is the only command; it runs one labeling session
var rootCmd = &cobra.Command{
	Use:   "runnotate",
	Short: "Label a directory of images with single key presses",
	Long: `runnotate walks through a directory of numerically named images and records
one label per image in a CSV file. Keys are bound to labels and to navigation
in a JSON or YAML binding file.

Labeling a picture moves on to the next one. Navigation wraps around at both
ends. On exit the labels are written to the output file and the current
position is saved next to it, so the next run resumes where this one stopped.`,
	Example: `  # Use ./config.json
  runnotate

  # Override the image directory and output file
  runnotate --data ./shots --out ./labels/shots.csv

  # Guard the output against a second concurrent session
  runnotate -c bindings.yaml --lock

  # Review from the first image again, keeping existing labels
  runnotate --restart`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLabel,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", config.DefaultPath, "binding file (JSON or YAML)")
	flags.StringVar(&dataDir, "data", "", "image directory (overrides the binding file)")
	flags.StringVar(&outPath, "out", "", "CSV record file (overrides the binding file)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&lockOutput, "lock", false, "refuse to start while another session writes the same output")
	flags.BoolVar(&restart, "restart", false, "ignore the saved position and start on the first image")
	flags.BoolVar(&notify, "notify", false, "send a desktop notification when the session is saved")
	flags.DurationVar(&pollInterval, "poll", session.DefaultPollInterval, "how long to wait for a key before re-checking the display")

	rootCmd.SetVersionTemplate(`runnotate {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
