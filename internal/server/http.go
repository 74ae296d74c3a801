package server

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/expvarhandler"

	"github.com/funvibe/argbind/internal/history"
)

// HTTPHandler serves the JSON gateway:
//
//	POST /bind               run a call, body is a Request
//	GET  /history?limit=N    recent calls, optionally &signature=S
//	GET  /stats              expvar counters, filtered with ?r=regexp
func (s *Service) HTTPHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/bind":
			s.handleBind(ctx)
		case "/history":
			s.handleHistory(ctx)
		case "/stats":
			expvarhandler.ExpvarHandler(ctx)
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}
}

func (s *Service) handleBind(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}
	var req Request
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.Error("invalid request: "+err.Error(), fasthttp.StatusBadRequest)
		return
	}
	resp, err := s.Bind(ctx, &req)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	status := fasthttp.StatusOK
	if resp.Error != nil {
		status = fasthttp.StatusUnprocessableEntity
	}
	writeJSON(ctx, status, resp)
}

func (s *Service) handleHistory(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.Response.Header.Set("Allow", fasthttp.MethodGet)
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}
	args := ctx.QueryArgs()
	limit := args.GetUintOrZero("limit")
	records, err := s.History(ctx, string(args.Peek("signature")), limit)
	if errors.Is(err, errHistoryDisabled) {
		ctx.Error(err.Error(), fasthttp.StatusNotFound)
		return
	}
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	writeJSON(ctx, fasthttp.StatusOK, records)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
