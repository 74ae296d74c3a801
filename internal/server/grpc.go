package server

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// grpcHandler adapts Service to the dynamic Bind method.
type grpcHandler struct {
	svc *Service
	md  *desc.MethodDescriptor
}

func (h *grpcHandler) bind(ctx context.Context, in *dynamic.Message) (interface{}, error) {
	resp, err := h.svc.Bind(ctx, decodeRequest(in))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := encodeResponse(h.md, resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// RegisterGRPC registers the Binder service on gs.
func RegisterGRPC(gs *grpc.Server, svc *Service) error {
	md, err := bindDescriptor()
	if err != nil {
		return err
	}
	h := &grpcHandler{svc: svc, md: md}

	sd := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := dynamic.NewMessage(md.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				handler := srv.(*grpcHandler)
				if interceptor == nil {
					return handler.bind(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: bindMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
					return handler.bind(ctx, req.(*dynamic.Message))
				})
			},
		}},
		Streams:  []grpc.StreamDesc{},
		Metadata: protoFile,
	}
	gs.RegisterService(sd, h)
	return nil
}

// Client calls a remote Binder service.
type Client struct {
	conn *grpc.ClientConn
	md   *desc.MethodDescriptor
}

// Dial creates a client for target. Connections are plaintext unless opts
// supply transport credentials.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	md, err := bindDescriptor()
	if err != nil {
		return nil, err
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", target, err)
	}
	return &Client{conn: conn, md: md}, nil
}

// Bind sends one call. A binder failure comes back in Response.Error.
func (c *Client) Bind(ctx context.Context, req *Request) (*Response, error) {
	in, err := encodeRequest(c.md, req)
	if err != nil {
		return nil, err
	}
	out := dynamic.NewMessage(c.md.GetOutputType())
	if err := c.conn.Invoke(ctx, bindMethod, in, out); err != nil {
		return nil, err
	}
	return decodeResponse(out), nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
