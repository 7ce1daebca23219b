package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errQueryFailed signals that a result was printed but carried an error
// status. main exits non-zero without printing it again.
var errQueryFailed = errors.New("query failed")

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query [text...]",
		Short: "Run one natural-language query",
		Long: `Run one query. The query text is the joined arguments, or standard input
when no arguments are given and input is piped. FASTA records, bare DNA runs
and protein runs are recognized anywhere in the text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readQuery(args)
			if err != nil {
				return err
			}

			engine, err := newEngine(a.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := engine.Run(cmd.Context(), text)
			a.logger.Debug("query processed",
				"query_id", out.QueryID,
				"sequences", len(out.Extraction.Sequences),
				"residual", out.Extraction.Residual,
			)

			w := cmd.OutOrStdout()
			if a.output == FormatJSON {
				if err := writeJSON(w, out); err != nil {
					return err
				}
			} else {
				renderOutcome(w, out)
			}
			if !out.Result.OK() {
				return errQueryFailed
			}
			return nil
		},
	}
}

// readQuery joins args, or reads piped stdin when there are none.
func (a *app) readQuery(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no query given: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no query given: stdin was empty")
	}
	return text, nil
}
