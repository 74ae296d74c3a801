// Package cli implements the argbind command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/funvibe/argbind/internal/config"
	"github.com/funvibe/argbind/internal/diagnostics"
	"github.com/funvibe/argbind/internal/history"
	"github.com/funvibe/argbind/internal/render"
	"github.com/funvibe/argbind/internal/server"
	"github.com/funvibe/argbind/pkg/argbind"
)

// Exit statuses.
const (
	ExitOK    = 0
	ExitBind  = 1
	ExitUsage = 2
)

const optString = "c:f:n:V:Aer:l:hv"

// RemoteTimeout bounds a call sent with -r.
var RemoteTimeout = 30 * time.Second

const usage = `usage: argbind [options] -- <declarations> -- <values>
       argbind [options] -l <limit>

options:
  -c path     config file (default: $ARGBIND_CONFIG or nearest argbind.yaml)
  -f format   output format: sh, json or yaml
  -n name     call site reported in diagnostics
  -V name     declare a variable; repeatable
  -A          accept any variable name even when -V is given
  -e          echo array values to stderr as they are bound
  -r addr     bind on a remote argbind-server (gRPC)
  -l limit    list the most recent calls from history
  -h          show this help
  -v          print the version

declarations:  -a name  -s name  -i name  -d name
values:        -a item...  -s text  -i digits  -d -k key... -v value...
`

type options struct {
	configPath string
	format     string
	callSite   string
	variables  []string
	open       bool
	echo       bool
	remote     string
	list       int
	help       bool
	version    bool
}

// parseArgs splits args (including the program name) at the first "--".
// Options come before it and the binder input after it. tokens is nil when
// there is no "--".
func parseArgs(args []string) (*options, []string, error) {
	head := args
	var tokens []string
	for i := 1; i < len(args); i++ {
		if args[i] == argbind.Separator {
			head = args[:i]
			tokens = append([]string{}, args[i+1:]...)
			break
		}
	}

	opts, optind, err := getopt.Getopts(head, optString)
	if err != nil {
		return nil, nil, err
	}
	if optind < len(head) {
		return nil, nil, fmt.Errorf("unexpected argument %q before %q", head[optind], argbind.Separator)
	}

	o := &options{}
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			o.configPath = opt.Value
		case 'f':
			if err := config.ValidateFormat(opt.Value); err != nil {
				return nil, nil, err
			}
			o.format = opt.Value
		case 'n':
			o.callSite = opt.Value
		case 'V':
			o.variables = append(o.variables, opt.Value)
		case 'A':
			o.open = true
		case 'e':
			o.echo = true
		case 'r':
			o.remote = opt.Value
		case 'l':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n <= 0 {
				return nil, nil, fmt.Errorf("-l: invalid limit %q", opt.Value)
			}
			o.list = n
		case 'h':
			o.help = true
		case 'v':
			o.version = true
		}
	}
	return o, tokens, nil
}

// Run executes the command with args (including the program name) and
// returns the exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	o, tokens, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "argbind: %v\n%s", err, usage)
		return ExitUsage
	}
	if o.help {
		fmt.Fprint(stdout, usage)
		return ExitOK
	}
	if o.version {
		fmt.Fprintln(stdout, "argbind "+config.Version)
		return ExitOK
	}

	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "argbind: %v\n", err)
		return ExitUsage
	}
	format := cfg.Format
	if o.format != "" {
		format = o.format
	}
	reporter := diagnostics.NewReporter(stderr, cfg.Color)

	if o.list > 0 {
		return listHistory(cfg, format, o.list, stdout, reporter)
	}
	if tokens == nil {
		fmt.Fprintf(stderr, "argbind: missing %q before the declarations\n%s", argbind.Separator, usage)
		return ExitUsage
	}

	var (
		res     *argbind.Result
		bindErr error
	)
	if o.remote != "" {
		resp, err := bindRemote(o, tokens)
		if err != nil {
			reporter.Report(err)
			return ExitBind
		}
		res, bindErr = resp.Result(), resp.Err()
	} else {
		binderOpts := []argbind.Option{
			argbind.WithCallSite(o.callSite),
			argbind.WithReserved(cfg.Reserved...),
		}
		if o.echo || cfg.Echo {
			binderOpts = append(binderOpts, argbind.WithEcho(stderr))
		}
		res, bindErr = argbind.New(binderOpts...).Bind(tokens, scopeFor(o))
		record(cfg, o.callSite, tokens, res, bindErr, reporter)
	}

	if err := render.Render(stdout, res, format); err != nil {
		reporter.Report(err)
		return ExitBind
	}
	if bindErr != nil {
		reporter.Report(bindErr)
		return ExitBind
	}
	return ExitOK
}

func scopeFor(o *options) *argbind.Scope {
	var scope *argbind.Scope
	if o.open || len(o.variables) == 0 {
		scope = argbind.OpenScope()
	} else {
		scope = argbind.NewScope()
	}
	for _, name := range o.variables {
		scope.Declare(name, argbind.ValueVar(new(argbind.Value)))
	}
	return scope
}

func bindRemote(o *options, tokens []string) (*server.Response, error) {
	client, err := server.Dial(o.remote)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), RemoteTimeout)
	defer cancel()

	req := &server.Request{CallSite: o.callSite, Tokens: tokens}
	if !o.open {
		req.Variables = o.variables
	}
	resp, err := client.Bind(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", o.remote, err)
	}
	return resp, nil
}

func record(cfg *config.Config, site string, tokens []string, res *argbind.Result, bindErr error, reporter *diagnostics.Reporter) {
	if cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		reporter.Report(fmt.Errorf("history: %w", err))
		return
	}
	defer store.Close()
	if err := store.Save(context.Background(), history.NewRecord(site, tokens, res, bindErr)); err != nil {
		reporter.Report(fmt.Errorf("history: %w", err))
	}
}

func listHistory(cfg *config.Config, format string, limit int, stdout io.Writer, reporter *diagnostics.Reporter) int {
	if cfg.History.Path == "" {
		reporter.Report(fmt.Errorf("history is disabled: set history.path in %s", config.ConfigFileNames[0]))
		return ExitUsage
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		reporter.Report(err)
		return ExitBind
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), limit)
	if err != nil {
		reporter.Report(err)
		return ExitBind
	}
	if err := render.History(stdout, records, format); err != nil {
		reporter.Report(err)
		return ExitBind
	}
	return ExitOK
}

// Main runs the command with the process arguments and exits.
func Main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(ExitBind)
		}
	}()
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}
