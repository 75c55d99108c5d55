package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps that writes to w
// and filters messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start of a pipeline step and logs its duration when done.
// It is meant for sequential use by a single command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing a step from the current time.
// Call done on the returned progress when the step completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond.
// Example output: "Loaded 120000 particles (84ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type of context keys owned by this package.
// A distinct type keeps them from colliding with keys of other packages.
type ctxKey int

// loggerKey is the context key under which the command logger is stored.
const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
// Subcommands retrieve it with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx.
// Without one it falls back to log.Default() so commands always have a logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
