package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"robotsline.dev/internal/sim/factory"
	"robotsline.dev/internal/sim/materials"
)

// logRing keeps the last few log lines for the on-screen log panel.
type logRing struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newLogRing(max int) *logRing {
	return &logRing{max: max}
}

func (r *logRing) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		r.lines = append(r.lines, line)
	}
	if n := len(r.lines) - r.max; n > 0 {
		r.lines = r.lines[n:]
	}
	return len(p), nil
}

func (r *logRing) Last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// screen renders the factory floor. On a terminal it redraws in place;
// otherwise it prints one summary line per round so logs stay readable.
type screen struct {
	out io.Writer
	tty bool
}

func newScreen(out *os.File) *screen {
	return &screen{
		out: out,
		tty: isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
	}
}

func (s *screen) Render(snap factory.Snapshot, logs []string, status string) {
	if !s.tty {
		fmt.Fprintf(s.out, "t=%s foos=%d bars=%d foobars=%d money=$%s robots=%d %s\n",
			clock(snap.Tick), snap.Foos, snap.Bars, snap.Foobars, snap.Money, len(snap.Robots), status)
		return
	}

	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	fmt.Fprintf(&b, "FOOS: %-4d BARS: %-4d FOOBARS: %-4d $%s  ROBOTS: %-3d  %s\n\n",
		snap.Foos, snap.Bars, snap.Foobars, snap.Money, len(snap.Robots), clock(snap.Tick))

	for _, loc := range materials.All() {
		fmt.Fprintf(&b, "%-16s", strings.ToUpper(string(loc)))
		here := false
		for _, r := range snap.Robots {
			if r.Location != string(loc) {
				continue
			}
			fmt.Fprintf(&b, " [%d %s]", r.ID, r.Status)
			here = true
		}
		if !here {
			b.WriteString(" -")
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nLOGS\n")
	for _, line := range logs {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if status != "" {
		b.WriteByte('\n')
		b.WriteString(status)
		b.WriteByte('\n')
	}
	fmt.Fprint(s.out, b.String())
}

func clock(tick uint64) string {
	return fmt.Sprintf("%02d:%02d:%02d", tick/3600, tick/60%60, tick%60)
}
