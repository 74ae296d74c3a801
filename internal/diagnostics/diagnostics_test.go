package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/argbind/internal/config"
	"github.com/funvibe/argbind/pkg/argbind"
)

func bindError(t *testing.T, site string, tokens ...string) error {
	t.Helper()
	var s string
	scope := argbind.NewScope().Declare("s", argbind.StringVar(&s))
	_, err := argbind.New(argbind.WithCallSite(site)).Bind(tokens, scope)
	if err == nil {
		t.Fatal("expected bind error")
	}
	return err
}

func TestReport_Plain(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, config.ColorNever)
	r.Report(bindError(t, "deploy", "-s", "s", "--", "-a", "x"))

	want := "error[TypeMismatchError]: deploy: expected string for argument 0, got -a\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestReport_NoCallSite(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, config.ColorNever).Report(bindError(t, "", "-s", "s", "--"))

	want := "error[MissingArgumentsError]: no values supplied\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestReport_OtherError(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, config.ColorNever).Report(errors.New("boom"))
	if buf.String() != "error: boom\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestReport_ColorAlways(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, config.ColorAlways).Report(bindError(t, "site", "-s", "s", "--"))
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", buf.String())
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", buf.String())
	}
}

func TestReport_AutoOnBufferIsPlain(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, config.ColorAuto).Report(bindError(t, "site", "-s", "s", "--"))
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("unexpected ANSI escapes in %q", buf.String())
	}
}

func TestCode(t *testing.T) {
	err := bindError(t, "", "-x")
	if Code(err) != argbind.CodeUnexpectedArgument {
		t.Errorf("Code = %q", Code(err))
	}
	if Code(errors.New("x")) != "" {
		t.Error("expected empty code for foreign error")
	}
}
