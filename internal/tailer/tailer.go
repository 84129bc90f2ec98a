package tailer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nxadm/tail"

	"github.com/farmsentry/farmsentry/internal/config"
)

// Tailer follows one log file and delivers batches of raw log text.
type Tailer struct {
	path          string
	fromBeginning bool
	flushEvery    time.Duration
}

// New creates a Tailer from the monitor configuration.
func New(cfg config.MonitorConfig) *Tailer {
	return &Tailer{
		path:          cfg.LogPath,
		fromBeginning: cfg.FromBeginning,
		flushEvery:    cfg.BatchInterval,
	}
}

// Run follows the file until ctx is cancelled, calling deliver with each
// non-empty batch of accumulated lines. Batches flush on a fixed interval so
// time-gap rules in the handlers see fresh timestamps promptly. deliver runs
// on the tail loop — batches are therefore processed strictly one at a time,
// which is what the handlers' single-in-flight contract requires.
func (t *Tailer) Run(ctx context.Context, deliver func(batch string)) error {
	loc := &tail.SeekInfo{Whence: io.SeekEnd}
	if t.fromBeginning {
		loc = &tail.SeekInfo{Whence: io.SeekStart}
	}

	ft, err := tail.TailFile(t.path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  loc,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}

	slog.Info("tailer: following log file",
		"path", t.path, "from_beginning", t.fromBeginning)

	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		deliver(buf.String())
		buf.Reset()
	}

	ticker := time.NewTicker(t.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flush()
			_ = ft.Stop()
			return nil

		case <-ticker.C:
			flush()

		case line, ok := <-ft.Lines:
			if !ok {
				flush()
				return ft.Err()
			}
			if line.Err != nil {
				slog.Warn("tailer: error reading line", "err", line.Err)
				continue
			}
			buf.WriteString(line.Text)
			buf.WriteByte('\n')
		}
	}
}
