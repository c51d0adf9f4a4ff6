package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs an external classifier once per text. The process reads
// {"text": "..."} on stdin and writes {"label": "...", "score": 0.9} on stdout.
type Command struct {
	path string
	args []string
}

// NewCommand splits cmdline on whitespace; the first field is the executable.
func NewCommand(cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("sentiment command: empty command line")
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("sentiment command: %w", err)
	}
	return &Command{path: path, args: fields[1:]}, nil
}

type commandInput struct {
	Text string `json:"text"`
}

func (c *Command) Classify(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(commandInput{Text: text})
	if err != nil {
		return Result{}, err
	}
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = bytes.NewReader(body)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("sentiment command %s: %w (stderr: %s)", c.path, err, strings.TrimSpace(errBuf.String()))
	}
	var r Result
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &r); err != nil {
		return Result{}, fmt.Errorf("parse sentiment command output: %w", err)
	}
	return r, nil
}
