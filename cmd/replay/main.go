package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"robotsline.dev/internal/journal"
	"robotsline.dev/internal/sim/factory"
	"robotsline.dev/internal/sim/tuning"
)

func main() {
	var (
		runDir   = flag.String("run", "", "run directory containing settings.yaml and rounds.jsonl.zst")
		fromTick = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	settings, err := tuning.Load(filepath.Join(*runDir, "settings.yaml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load settings:", err)
		os.Exit(1)
	}
	entries, err := journal.ReadRounds(filepath.Join(*runDir, "rounds.jsonl.zst"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read journal:", err)
		os.Exit(1)
	}
	fmt.Printf("run seed=%d settings=%s rounds=%d\n", settings.Seed, settings.Digest(), len(entries))

	checked, err := replay(settings, entries, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d rounds\n", checked)
}

// replay re-executes the journal against a fresh factory and compares
// state digests round by round.
func replay(settings tuning.Settings, entries []factory.RoundLogEntry, fromTick, toTick uint64) (uint64, error) {
	f, err := factory.New(settings)
	if err != nil {
		return 0, err
	}

	var checked uint64
	for _, entry := range entries {
		if toTick != 0 && entry.Tick > toTick {
			break
		}
		if want := f.CurrentTick() + 1; entry.Tick != want {
			return checked, fmt.Errorf("tick mismatch: want=%d got=%d", want, entry.Tick)
		}

		for _, rec := range entry.Commands {
			cmd, err := rec.Command()
			if err != nil {
				return checked, fmt.Errorf("tick %d: %w", entry.Tick, err)
			}
			if err := f.Execute(cmd); err != nil {
				return checked, fmt.Errorf("tick %d: execute %v: %w", entry.Tick, cmd, err)
			}
		}

		err := f.StepRound()
		if err != nil && !errors.Is(err, factory.ErrGameOver) {
			return checked, err
		}
		if entry.Tick >= fromTick {
			checked++
			if got := f.StateDigest(); got != entry.Digest {
				return checked, fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", entry.Tick, got, entry.Digest)
			}
		}
		if err != nil {
			break
		}
	}
	return checked, nil
}
