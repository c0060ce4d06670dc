package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"robotsline.dev/internal/director"
	"robotsline.dev/internal/journal"
	"robotsline.dev/internal/persistence/runindex"
	"robotsline.dev/internal/sim/factory"
	"robotsline.dev/internal/sim/tuning"
	"robotsline.dev/internal/transport/observer"
)

func main() {
	var (
		settingsPath = flag.String("settings", "configs/settings.yaml", "settings file")
		seed         = flag.Int64("seed", 0, "override the settings seed (0 keeps it)")
		mode         = flag.String("director", "auto", "auto or interactive")
		observerAddr = flag.String("observer", "", "observer listen addr, e.g. 127.0.0.1:8090 (empty disables)")
		runsDir      = flag.String("runs", "./runs", "directory for per-run journals")
		indexPath    = flag.String("index", "", "run index db path (defaults to <runs>/index.db, 'off' disables)")
		pace         = flag.Duration("pace", 100*time.Millisecond, "delay between auto director batches")
		quiet        = flag.Bool("quiet", false, "skip screen rendering")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[factory] ", log.LstdFlags)
	if err := run(*settingsPath, *seed, *mode, *observerAddr, *runsDir, *indexPath, *pace, *quiet, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(settingsPath string, seed int64, mode, observerAddr, runsDir, indexPath string, pace time.Duration, quiet bool, logger *log.Logger) error {
	settings, err := loadSettings(settingsPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		settings.Seed = seed
	}
	if settings.Seed == 0 {
		settings.Seed = time.Now().UnixNano()
	}

	runID := uuid.NewString()
	runDir := filepath.Join(runsDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	if err := settings.Save(filepath.Join(runDir, "settings.yaml")); err != nil {
		return err
	}

	f, err := factory.New(settings)
	if err != nil {
		return err
	}

	ring := newLogRing(6)
	f.SetLogger(log.New(ring, "", log.Ltime))

	jw, err := journal.NewWriter(filepath.Join(runDir, "rounds.jsonl.zst"))
	if err != nil {
		return err
	}
	defer jw.Close()
	f.SetRoundLogger(jw)

	var obs *observer.Server
	if observerAddr != "" {
		obs = observer.NewServer(runID, settings, logger)
		f.SetRoundObserver(obs)

		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observer/bootstrap", obs.BootstrapHandler())
		mux.HandleFunc("/v1/observer/ws", obs.WSHandler())
		go func() {
			if err := http.ListenAndServe(observerAddr, mux); err != nil {
				logger.Printf("observer listen: %v", err)
			}
		}()
		logger.Printf("observer on %s run=%s", observerAddr, runID)
	}

	var dir director.Director
	switch mode {
	case "auto":
		dir = director.NewAuto(f)
	case "interactive":
		dir = director.NewInteractive(os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unknown director %q", mode)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	scr := newScreen(os.Stdout)
	started := time.Now()
	gameOver := playLoop(f, dir, scr, ring, stop, mode == "auto", pace, quiet, logger)

	if gameOver && obs != nil {
		obs.OnGameOver(f.CurrentTick(), f.Stock().RobotCount())
	}
	if gameOver {
		fmt.Println("End of game!")
	}

	return recordRun(indexPath, runsDir, runindex.Run{
		ID:             runID,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		Seed:           settings.Seed,
		SettingsDigest: settings.Digest(),
		Ticks:          f.CurrentTick(),
		Foos:           f.Stock().FooCount(),
		Bars:           f.Stock().BarCount(),
		Foobars:        f.Stock().FoobarCount(),
		Money:          f.Stock().Money().StringFixed(2),
		Robots:         f.Stock().RobotCount(),
		GameOver:       gameOver,
		JournalPath:    filepath.Join(runsDir, runID, "rounds.jsonl.zst"),
	}, logger)
}

// playLoop drives director batches into the factory until game over, a
// quit, or an interrupt. It reports whether the game ended on its own.
func playLoop(f *factory.RoboticFactory, dir director.Director, scr *screen, ring *logRing, stop <-chan os.Signal, paced bool, pace time.Duration, quiet bool, logger *log.Logger) bool {
	for {
		select {
		case <-stop:
			logger.Printf("interrupted at tick %d", f.CurrentTick())
			return false
		default:
		}

		batch, err := dir.Plan()
		if err != nil {
			if errors.Is(err, director.ErrQuit) {
				return false
			}
			logger.Printf("director: %v", err)
			return false
		}

		for _, cmd := range batch {
			if err := f.Execute(cmd); err != nil {
				if errors.Is(err, factory.ErrGameOver) {
					if !quiet {
						scr.Render(f.Snapshot(), ring.Last(), "")
					}
					return true
				}
				logger.Printf("execute: %v", err)
				return false
			}
		}

		if !quiet {
			scr.Render(f.Snapshot(), ring.Last(), "")
		}
		if paced {
			time.Sleep(pace)
		}
	}
}

func loadSettings(path string) (tuning.Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return tuning.Default(), nil
	}
	return tuning.Load(path)
}

func recordRun(indexPath, runsDir string, run runindex.Run, logger *log.Logger) error {
	if indexPath == "off" {
		return nil
	}
	if indexPath == "" {
		indexPath = filepath.Join(runsDir, "index.db")
	}
	idx, err := runindex.OpenSQLite(indexPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.RecordRun(ctx, run); err != nil {
		return err
	}
	logger.Printf("run %s recorded: ticks=%d robots=%d money=$%s", run.ID, run.Ticks, run.Robots, run.Money)
	return nil
}
