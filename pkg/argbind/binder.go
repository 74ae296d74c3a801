package argbind

import (
	"errors"
	"io"

	"github.com/ahrtr/gocontainer/set"
)

// DefaultReservedName can never be declared as an output variable.
const DefaultReservedName = "__argbind_ref"

// Binder runs calls. It is not modified by Bind, so one Binder may serve
// many goroutines.
type Binder struct {
	callSite string
	echo     io.Writer
	reserved set.Interface
}

// Option configures a Binder.
type Option func(*Binder)

// WithCallSite names the caller in diagnostics.
func WithCallSite(site string) Option {
	return func(b *Binder) { b.callSite = site }
}

// WithEcho makes every decoded array also be written to w, space separated,
// one line per array.
func WithEcho(w io.Writer) Option {
	return func(b *Binder) { b.echo = w }
}

// WithReserved adds names that may not be declared.
func WithReserved(names ...string) Option {
	return func(b *Binder) {
		for _, name := range names {
			b.reserved.Add(name)
		}
	}
}

// New returns a Binder. DefaultReservedName is always reserved.
func New(opts ...Option) *Binder {
	b := &Binder{reserved: set.New()}
	b.reserved.Add(DefaultReservedName)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBinder = New()

// Bind runs tokens through a Binder with default options.
func Bind(tokens []string, scope *Scope) (*Result, error) {
	return defaultBinder.Bind(tokens, scope)
}

// At returns a copy of b that reports site as the call site.
func (b *Binder) At(site string) *Binder {
	c := *b
	c.callSite = site
	return &c
}

// CallSite returns the configured call site.
func (b *Binder) CallSite() string {
	return b.callSite
}

// Bind parses the declaration section of tokens against scope, then decodes
// the value section into the declared variables.
//
// Variables are written as soon as their value is decoded. When a later
// value fails, earlier writes stay in place and the returned Result lists
// them.
func (b *Binder) Bind(tokens []string, scope *Scope) (*Result, error) {
	if scope == nil {
		scope = NewScope()
	}
	res := &Result{CallSite: b.callSite}
	s := newStream(tokens)

	decls, err := b.parseDeclarations(s, scope)
	res.Declarations = decls
	if err != nil {
		return res, b.annotate(err)
	}
	if err := b.consumeValues(s, decls, res); err != nil {
		return res, b.annotate(err)
	}
	return res, nil
}

func (b *Binder) annotate(err error) error {
	var e *Error
	if errors.As(err, &e) && e.CallSite == "" {
		e.CallSite = b.callSite
	}
	return err
}
