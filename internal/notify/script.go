package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// scriptSink runs a user-provided executable once per delivered event.
// Event fields are passed in the environment rather than as arguments so a
// crafted log message cannot be interpreted as shell options.
type scriptSink struct {
	path string
}

func (s *scriptSink) Name() string {
	return "script"
}

func (s *scriptSink) Send(e Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path)
	cmd.Env = append(os.Environ(),
		"FARMSENTRY_EVENT_ID="+e.ID,
		"FARMSENTRY_EVENT_KIND="+string(e.Kind),
		"FARMSENTRY_EVENT_PRIORITY="+e.Priority.String(),
		"FARMSENTRY_EVENT_SERVICE="+string(e.Service),
		"FARMSENTRY_EVENT_MESSAGE="+e.Message,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run %q: %w (output: %s)", s.path, err, out)
	}
	return nil
}
