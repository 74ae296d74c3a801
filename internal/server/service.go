// Package server exposes the binder over gRPC and HTTP.
package server

import (
	"context"
	"errors"
	"expvar"
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/argbind/internal/config"
	"github.com/funvibe/argbind/internal/history"
	"github.com/funvibe/argbind/pkg/argbind"
)

var (
	bindCalls    = expvar.NewInt("bindCalls")
	bindFailures = expvar.NewInt("bindFailures")
	bindValues   = expvar.NewInt("bindValues")
	historyFails = expvar.NewInt("historyFailures")
)

// Request is one remote bind call. When Variables is empty every declared
// name is accepted.
type Request struct {
	CallSite  string   `json:"call_site,omitempty"`
	Variables []string `json:"variables,omitempty"`
	Tokens    []string `json:"tokens"`
}

// Binding is one written variable in wire form.
type Binding struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Text    string            `json:"text,omitempty"`
	Items   []string          `json:"items,omitempty"`
	Entries map[string]string `json:"entries,omitempty"`
}

// ErrorInfo carries a binder failure. Message excludes the call site.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// Response lists the bindings written by a call. Error is set when the
// call failed; Bindings then holds what was written before the failure.
type Response struct {
	InvocationID string     `json:"invocation_id"`
	CallSite     string     `json:"call_site"`
	Bindings     []Binding  `json:"bindings"`
	Error        *ErrorInfo `json:"error,omitempty"`
}

// Service runs bind calls for both front ends.
type Service struct {
	binder *argbind.Binder
	store  *history.Store
}

// NewService creates a service. store may be nil to disable history.
func NewService(binder *argbind.Binder, store *history.Store) *Service {
	if binder == nil {
		binder = argbind.New()
	}
	return &Service{binder: binder, store: store}
}

// Bind runs one call. A binder failure is reported in Response.Error, not
// as the returned error.
func (s *Service) Bind(ctx context.Context, req *Request) (*Response, error) {
	bindCalls.Add(1)

	site := req.CallSite
	if site == "" {
		site = config.DefaultServerCallSite
	}
	res, err := s.binder.At(site).Bind(req.Tokens, requestScope(req.Variables))

	resp := &Response{
		InvocationID: uuid.NewString(),
		CallSite:     site,
		Bindings:     toBindings(res),
	}
	bindValues.Add(int64(len(resp.Bindings)))
	if err != nil {
		bindFailures.Add(1)
		resp.Error = toErrorInfo(err)
	}

	if s.store != nil {
		rec := history.NewRecord(site, req.Tokens, res, err)
		rec.ID = resp.InvocationID
		if serr := s.store.Save(ctx, rec); serr != nil {
			historyFails.Add(1)
			log.Printf("history: %v", serr)
		}
	}
	return resp, nil
}

// History returns recent calls, newest first. When signature is set only
// calls with that declaration signature are returned.
func (s *Service) History(ctx context.Context, signature string, limit int) ([]*history.Record, error) {
	if s.store == nil {
		return nil, errHistoryDisabled
	}
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}
	if signature != "" {
		return s.store.BySignature(ctx, signature, limit)
	}
	return s.store.Recent(ctx, limit)
}

var errHistoryDisabled = errors.New("history is disabled")

func requestScope(names []string) *argbind.Scope {
	if len(names) == 0 {
		return argbind.OpenScope()
	}
	scope := argbind.NewScope()
	for _, name := range names {
		scope.Declare(name, argbind.ValueVar(new(argbind.Value)))
	}
	return scope
}

func toBindings(res *argbind.Result) []Binding {
	if res == nil {
		return nil
	}
	out := make([]Binding, 0, len(res.Bindings))
	for _, b := range res.Bindings {
		out = append(out, Binding{
			Name:    b.Name,
			Type:    b.Value.Type.String(),
			Text:    b.Value.Text,
			Items:   b.Value.Items,
			Entries: b.Value.Entries,
		})
	}
	return out
}

func toErrorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{Message: err.Error(), Index: -1}
	var e *argbind.Error
	if errors.As(err, &e) {
		info.Code = string(e.Code)
		info.Index = e.Index
		info.Message = e.Message
	}
	return info
}

// Result rebuilds a binder result from a response so it can be rendered
// like a local call. Bindings with an unknown type are skipped.
func (r *Response) Result() *argbind.Result {
	res := &argbind.Result{CallSite: r.CallSite}
	for i, b := range r.Bindings {
		t, ok := argbind.ParseType(b.Type)
		if !ok {
			continue
		}
		v := argbind.Value{Type: t, Text: b.Text}
		switch t {
		case argbind.Array:
			v.Items = b.Items
			if v.Items == nil {
				v.Items = []string{}
			}
		case argbind.Dictionary:
			v.Entries = b.Entries
			if v.Entries == nil {
				v.Entries = map[string]string{}
			}
		}
		res.Bindings = append(res.Bindings, argbind.Binding{Index: i, Name: b.Name, Value: v})
	}
	return res
}

// Err converts Error back into an *argbind.Error, or nil.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return &argbind.Error{
		Code:     argbind.ErrorCode(r.Error.Code),
		CallSite: r.CallSite,
		Index:    r.Error.Index,
		Message:  r.Error.Message,
	}
}
