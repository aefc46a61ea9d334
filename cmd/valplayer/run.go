package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/valplayer/internal/activity"
	"github.com/hammamikhairi/valplayer/internal/audio"
	"github.com/hammamikhairi/valplayer/internal/config"
	"github.com/hammamikhairi/valplayer/internal/display"
	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/engine"
	"github.com/hammamikhairi/valplayer/internal/hardware"
	"github.com/hammamikhairi/valplayer/internal/library"
	"github.com/hammamikhairi/valplayer/internal/logger"
	"github.com/hammamikhairi/valplayer/internal/player"
	"github.com/hammamikhairi/valplayer/internal/render"
	"github.com/hammamikhairi/valplayer/internal/timer"
	"github.com/hammamikhairi/valplayer/internal/visualizer"
)

// setup loads the config and opens the logger. defaultOut is used when
// --log-file is not given: "" means a timestamped file in the log dir.
func setup(defaultOut string) (config.Config, *logger.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config: %w", err)
	}
	if verbose {
		level = logger.LevelVerbose
	}
	if quiet {
		level = logger.LevelOff
	}

	target := logFile
	if target == "" {
		target = defaultOut
	}
	if target == "" {
		name := "valplayer_" + time.Now().Format("20060102_150405") + ".log"
		target = filepath.Join(cfg.Log.Dir, name)
	}

	var out io.Writer = os.Stderr
	closeLog := func() {}
	if target != "stderr" {
		if dir := filepath.Dir(target); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", target, err)
		} else {
			out = f
			closeLog = func() { f.Close() }
		}
	}

	log := logger.New(level, out)
	return cfg, log, func() {
		log.Sync()
		closeLog()
	}, nil
}

func loadTracks(cfg config.Config, log *logger.Logger) ([]domain.Track, error) {
	scanner := library.NewScanner(log, library.WithTags(cfg.Audio.ReadTags))
	return scanner.List(cfg.MusicDir, cfg.FallbackMusicDir)
}

// board is the display and buttons the engine talks to, plus a channel
// closed when the user leaves the simulator.
type board struct {
	sink    domain.DisplaySink
	buttons domain.ButtonReader
	quit    <-chan struct{}
	release func() error
	wait    func()
}

func openBoard(cfg config.Config, log *logger.Logger) (*board, error) {
	if simulate {
		if !display.IsTerminal() {
			return nil, errors.New("--sim needs an interactive terminal")
		}
		ui := display.NewUI()
		go func() {
			if err := ui.Run(); err != nil {
				log.Error("simulator: %v", err)
			}
		}()
		ui.WaitReady()
		return &board{
			sink:    ui,
			buttons: ui,
			quit:    ui.QuitChan(),
			release: func() error { return nil },
			wait:    func() { <-ui.QuitChan() },
		}, nil
	}

	panel, err := hardware.OpenPanel(cfg.Display, log)
	if err != nil {
		return nil, err
	}
	buttons, err := hardware.OpenButtons(cfg.Buttons, log)
	if err != nil {
		panel.Close()
		return nil, err
	}
	return &board{sink: panel, buttons: buttons, release: buttons.Close, wait: func() {}}, nil
}

func runPlayer(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup("")
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("valplayer %s starting", version)

	tracks, err := loadTracks(cfg, log)
	if err != nil {
		log.Warn("library: %v", err)
	}

	backend, err := audio.NewBackend(log, audio.WithSampleRate(cfg.Audio.SampleRate))
	if err != nil {
		return err
	}

	b, err := openBoard(cfg, log)
	if err != nil {
		backend.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if b.quit != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-b.quit:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	seed := cfg.Visualizer.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	w, h := cfg.Display.Width, cfg.Display.Height
	assets := render.LoadAssets(cfg.Assets, w, h, log)
	clock := timer.Real{}
	composer := render.NewComposer(assets, rng, log,
		render.WithSize(w, h),
		render.WithSleepTitle(cfg.Assets.SleepTitle...),
		render.WithMusicDir(cfg.MusicDir),
	)

	eng := engine.New(engine.Deps{
		Player:     player.New(backend, tracks, log, player.WithVolume(cfg.Audio.Volume)),
		Backend:    backend,
		Monitor:    activity.New(clock, log, activity.WithTimeout(cfg.Timing.SleepTimeout)),
		Visualizer: visualizer.New(cfg.Visualizer.Bars, rng),
		Composer:   composer,
		Buttons:    b.buttons,
		Sink:       b.sink,
		Clock:      clock,
		Sleeper:    clock,
	}, log,
		engine.WithPacing(cfg.Timing.FastTick, cfg.Timing.IdleTick),
		engine.WithDebounce(cfg.Timing.Debounce),
		engine.WithFinishCheck(cfg.Timing.FinishCheck),
		engine.WithVolumeStep(cfg.Audio.VolumeStep),
	)

	var runErr error
	if err := eng.Start(); errors.Is(err, domain.ErrHardwareFault) {
		runErr = err
	} else {
		if err != nil {
			log.Warn("first frame: %v", err)
		}
		runErr = eng.Run(ctx)
	}
	if err := eng.Shutdown(); err != nil {
		log.Warn("shutdown: %v", err)
	}
	if err := b.release(); err != nil {
		log.Warn("buttons: %v", err)
	}
	b.wait()
	log.Info("stopped")
	return runErr
}
