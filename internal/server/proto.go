package server

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
)

const (
	protoFile   = "argbind/v1/binder.proto"
	serviceName = "argbind.v1.Binder"
	bindMethod  = "/" + serviceName + "/Bind"
)

const protoSource = `syntax = "proto3";

package argbind.v1;

message BindRequest {
  string call_site = 1;
  repeated string variables = 2;
  repeated string tokens = 3;
}

message Binding {
  string name = 1;
  string type = 2;
  string text = 3;
  repeated string items = 4;
  map<string, string> entries = 5;
}

message BindError {
  string code = 1;
  string message = 2;
  int32 index = 3;
}

message BindResponse {
  string invocation_id = 1;
  string call_site = 2;
  repeated Binding bindings = 3;
  BindError error = 4;
}

service Binder {
  rpc Bind(BindRequest) returns (BindResponse);
}
`

var (
	descOnce sync.Once
	bindDesc *desc.MethodDescriptor
	descErr  error
)

// bindDescriptor parses the embedded service definition once.
func bindDescriptor() (*desc.MethodDescriptor, error) {
	descOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
		}
		fds, err := parser.ParseFiles(protoFile)
		if err != nil {
			descErr = fmt.Errorf("parse %s: %w", protoFile, err)
			return
		}
		sd := fds[0].FindService(serviceName)
		if sd == nil {
			descErr = fmt.Errorf("service %s not found", serviceName)
			return
		}
		bindDesc = sd.FindMethodByName("Bind")
		if bindDesc == nil {
			descErr = fmt.Errorf("method Bind not found in %s", serviceName)
		}
	})
	return bindDesc, descErr
}

func encodeRequest(md *desc.MethodDescriptor, req *Request) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md.GetInputType())
	if err := msg.TrySetFieldByName("call_site", req.CallSite); err != nil {
		return nil, err
	}
	for _, v := range req.Variables {
		if err := msg.TryAddRepeatedFieldByName("variables", v); err != nil {
			return nil, err
		}
	}
	for _, tok := range req.Tokens {
		if err := msg.TryAddRepeatedFieldByName("tokens", tok); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func decodeRequest(msg *dynamic.Message) *Request {
	return &Request{
		CallSite:  stringField(msg, "call_site"),
		Variables: stringsField(msg, "variables"),
		Tokens:    stringsField(msg, "tokens"),
	}
}

func encodeResponse(md *desc.MethodDescriptor, resp *Response) (*dynamic.Message, error) {
	out := md.GetOutputType()
	msg := dynamic.NewMessage(out)
	msg.SetFieldByName("invocation_id", resp.InvocationID)
	msg.SetFieldByName("call_site", resp.CallSite)

	bindingType := out.FindFieldByName("bindings").GetMessageType()
	for _, b := range resp.Bindings {
		bm := dynamic.NewMessage(bindingType)
		bm.SetFieldByName("name", b.Name)
		bm.SetFieldByName("type", b.Type)
		bm.SetFieldByName("text", b.Text)
		for _, item := range b.Items {
			bm.AddRepeatedFieldByName("items", item)
		}
		for k, v := range b.Entries {
			bm.PutMapFieldByName("entries", k, v)
		}
		if err := msg.TryAddRepeatedFieldByName("bindings", bm); err != nil {
			return nil, err
		}
	}

	if resp.Error != nil {
		em := dynamic.NewMessage(out.FindFieldByName("error").GetMessageType())
		em.SetFieldByName("code", resp.Error.Code)
		em.SetFieldByName("message", resp.Error.Message)
		em.SetFieldByName("index", int32(resp.Error.Index))
		if err := msg.TrySetFieldByName("error", em); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func decodeResponse(msg *dynamic.Message) *Response {
	resp := &Response{
		InvocationID: stringField(msg, "invocation_id"),
		CallSite:     stringField(msg, "call_site"),
	}
	items, _ := msg.GetFieldByName("bindings").([]interface{})
	for _, item := range items {
		bm, ok := item.(*dynamic.Message)
		if !ok {
			continue
		}
		b := Binding{
			Name:  stringField(bm, "name"),
			Type:  stringField(bm, "type"),
			Text:  stringField(bm, "text"),
			Items: stringsField(bm, "items"),
		}
		if entries, ok := bm.GetFieldByName("entries").(map[interface{}]interface{}); ok && len(entries) > 0 {
			b.Entries = make(map[string]string, len(entries))
			for k, v := range entries {
				b.Entries[k.(string)] = v.(string)
			}
		}
		resp.Bindings = append(resp.Bindings, b)
	}
	if msg.HasFieldName("error") {
		if em, ok := msg.GetFieldByName("error").(*dynamic.Message); ok {
			index, _ := em.GetFieldByName("index").(int32)
			resp.Error = &ErrorInfo{
				Code:    stringField(em, "code"),
				Message: stringField(em, "message"),
				Index:   int(index),
			}
		}
	}
	return resp
}

func stringField(msg *dynamic.Message, name string) string {
	s, _ := msg.GetFieldByName(name).(string)
	return s
}

func stringsField(msg *dynamic.Message, name string) []string {
	items, _ := msg.GetFieldByName(name).([]interface{})
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
