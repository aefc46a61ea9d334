// Valplayer is a button-driven music player for a Raspberry Pi with a
// Pirate Audio board: a 240x240 SPI display and four buttons.
//
// Usage:
//
//	valplayer [--config valplayer.yaml] [--sim] [--verbose|--quiet]
//	valplayer tracks
//	valplayer version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags.
var (
	configPath string
	verbose    bool
	quiet      bool
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "valplayer",
	Short: "Music player for the Pirate Audio board",
	Long: `Plays the music files found in the configured directory, shows the
current track with a fire visualizer on the SPI display, and is driven by the
four front-panel buttons:

  A  previous track        Y+A  volume down
  B  play/pause, wake      Y+X  volume up
  X  next track            Y+B  sleep

With --sim the display and buttons are simulated in the terminal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlayer,
}

var simulate bool

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "valplayer.yaml", "path to the YAML config file (missing file = defaults)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "disable all logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "file to write logs to (default: timestamped file in the log dir, \"stderr\" for console)")

	rootCmd.Flags().BoolVar(&simulate, "sim", false, "simulate the display and buttons in the terminal")

	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("valplayer %s\n", version)
	},
}

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List the tracks the player would load",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, closeLog, err := setup("stderr")
		if err != nil {
			return err
		}
		defer closeLog()

		tracks, err := loadTracks(cfg, log)
		if err != nil {
			return err
		}
		if len(tracks) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no music files in %s or %s\n", cfg.MusicDir, cfg.FallbackMusicDir)
			return nil
		}
		for i, t := range tracks {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n      %s\n", i+1, t.DisplayName, t.Path)
		}
		return nil
	},
}
