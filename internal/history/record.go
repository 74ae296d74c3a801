// Package history keeps a log of binder calls in SQLite.
package history

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/zeebo/blake3"

	"github.com/funvibe/argbind/pkg/argbind"
)

// Record is one logged call.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	CallSite string `json:"call_site" yaml:"call_site"`

	// Signature identifies the declared types of the call, so calls from
	// the same procedure group together.
	Signature string `json:"signature" yaml:"signature"`

	// Fingerprint identifies the exact token stream.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	Tokens    []string  `json:"tokens" yaml:"tokens"`
	Code      string    `json:"code,omitempty" yaml:"code,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	Bound     int       `json:"bound" yaml:"bound"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewRecord describes a finished call. res may be nil.
func NewRecord(callSite string, tokens []string, res *argbind.Result, err error) *Record {
	rec := &Record{
		ID:          uuid.NewString(),
		CallSite:    callSite,
		Fingerprint: Fingerprint(tokens),
		Tokens:      tokens,
		CreatedAt:   time.Now(),
	}
	if res != nil {
		rec.Signature = Signature(res.Signature())
		rec.Bound = len(res.Bindings)
	}
	if err != nil {
		rec.Message = err.Error()
		var e *argbind.Error
		if errors.As(err, &e) {
			rec.Code = string(e.Code)
		}
	}
	return rec
}

// OK reports whether the call succeeded.
func (r *Record) OK() bool {
	return r.Message == ""
}

// Signature hashes a declared type list.
func Signature(types []argbind.Type) string {
	h := fnv1a.Init64
	for _, t := range types {
		h = fnv1a.AddString64(h, t.Flag())
	}
	return fmt.Sprintf("%016x", h)
}

// Fingerprint hashes a token stream. Tokens are NUL-terminated so that
// ["ab"] and ["a", "b"] differ.
func Fingerprint(tokens []string) string {
	h := blake3.New()
	for _, tok := range tokens {
		h.WriteString(tok)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
