// Package diagnostics writes one-line failure reports for binder errors.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/argbind/internal/config"
	"github.com/funvibe/argbind/pkg/argbind"
)

// Reporter formats errors for a single output stream.
type Reporter struct {
	w     io.Writer
	code  *color.Color
	site  *color.Color
	plain bool
}

// NewReporter returns a Reporter for w. mode is one of the config color
// modes; in auto mode color is used only when w is a terminal and NO_COLOR
// is unset.
func NewReporter(w io.Writer, mode string) *Reporter {
	r := &Reporter{
		w:    w,
		code: color.New(color.FgRed, color.Bold),
		site: color.New(color.FgCyan),
	}
	if useColor(w, mode) {
		r.code.EnableColor()
		r.site.EnableColor()
	} else {
		r.code.DisableColor()
		r.site.DisableColor()
	}
	return r
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv(config.NoColorEnv); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report writes err as a single line.
//
//	error[TypeMismatchError]: deploy: expected array for argument 0, got -s
func (r *Reporter) Report(err error) {
	fmt.Fprintln(r.w, Format(err, r.code, r.site))
}

// Format renders err without a trailing newline. Either color may be nil.
func Format(err error, code, site *color.Color) string {
	paint := func(c *color.Color, s string) string {
		if c == nil {
			return s
		}
		return c.Sprint(s)
	}

	var e *argbind.Error
	if !errors.As(err, &e) {
		return paint(code, "error") + ": " + err.Error()
	}
	head := paint(code, fmt.Sprintf("error[%s]", e.Code))
	if e.CallSite == "" {
		return head + ": " + e.Message
	}
	return head + ": " + paint(site, e.CallSite) + ": " + e.Message
}

// Code returns the binder error code of err, or "" for other errors.
func Code(err error) argbind.ErrorCode {
	var e *argbind.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
