package emboss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a single EMBOSS invocation.
const DefaultTimeout = 30 * time.Second

// Runner executes one EMBOSS program over a single-record input and returns
// the program's output file content.
type Runner interface {
	Run(ctx context.Context, program, sequence string, args ...string) (string, error)
}

// ExecRunner runs EMBOSS binaries as subprocesses. Each call writes the
// sequence to a temporary FASTA file, passes an output path and removes
// both afterwards.
type ExecRunner struct {
	BinDir  string        // Directory holding the EMBOSS binaries; empty uses PATH
	Timeout time.Duration // Per-call limit, DefaultTimeout when zero
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, program, sequence string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	in, err := os.CreateTemp("", "bioquery-*.fasta")
	if err != nil {
		return "", fmt.Errorf("create input: %w", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.WriteString(">Query\n" + sequence + "\n"); err != nil {
		in.Close()
		return "", fmt.Errorf("write input: %w", err)
	}
	if err := in.Close(); err != nil {
		return "", fmt.Errorf("write input: %w", err)
	}

	out, err := os.CreateTemp("", "bioquery-*.out")
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	bin := program
	if r.BinDir != "" {
		bin = filepath.Join(r.BinDir, program)
	}
	argv := append([]string{in.Name(), out.Name()}, args...)
	argv = append(argv, "-auto")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s timed out after %s", program, timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", program, err, msg)
		}
		return "", fmt.Errorf("%s: %w", program, err)
	}

	data, err := os.ReadFile(out.Name())
	if err != nil {
		return "", fmt.Errorf("read %s output: %w", program, err)
	}
	return string(data), nil
}

// Available reports whether the embossversion program can be run.
func (r ExecRunner) Available(ctx context.Context) error {
	bin := "embossversion"
	if r.BinDir != "" {
		bin = filepath.Join(r.BinDir, bin)
	}
	if err := exec.CommandContext(ctx, bin, "-auto").Run(); err != nil {
		return fmt.Errorf("EMBOSS not found (install with: conda install -c bioconda emboss): %w", err)
	}
	return nil
}
