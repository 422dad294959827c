package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/messwatch/internal/report"
)

// wantJSON reports whether output to w should be JSON rather than styled.
func wantJSON(w io.Writer) bool {
	if flagJSON {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// emit prints the outcome of a report run and returns errReported when it
// was an error envelope.
func emit(cmd *cobra.Command, env *report.Envelope, err error) error {
	w := cmd.OutOrStdout()
	v := report.Render(env, err, time.Now())

	if wantJSON(w) {
		if werr := writeJSON(w, v); werr != nil {
			return werr
		}
	} else {
		renderStyled(w, v)
	}

	if _, failed := v.(*report.ErrorEnvelope); failed {
		return errReported
	}
	return nil
}

// usage emits a USAGE_ERROR envelope.
func usage(cmd *cobra.Command, format string, args ...any) error {
	return emit(cmd, nil, report.Errorf(report.CodeUsage, nil, format, args...))
}
