package grpchost

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/example/ridecard/internal/card/domain"
	"github.com/example/ridecard/internal/card/service"
)

// CodecName is the content subtype the card service is spoken in.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// ConfigureRequest asks the renderer for one card.
type ConfigureRequest struct {
	Request domain.RequestDescription `json:"request"`
	Context domain.RenderContext      `json:"context"`
	MaxSize domain.Size               `json:"max_size"`
}

// ConfigureReply carries the composed presentation.
type ConfigureReply struct {
	Presentation service.Presentation `json:"presentation"`
}

type ChromePolicyRequest struct{}

type ChromePolicyReply struct {
	SuppressAuxiliaryChrome bool `json:"suppress_auxiliary_chrome"`
}

// CardRendererServer defines the gRPC contract.
type CardRendererServer interface {
	Configure(context.Context, *ConfigureRequest) (*ConfigureReply, error)
	ChromePolicy(context.Context, *ChromePolicyRequest) (*ChromePolicyReply, error)
}

const (
	serviceName        = "card.CardRenderer"
	configureMethod    = "/" + serviceName + "/Configure"
	chromePolicyMethod = "/" + serviceName + "/ChromePolicy"
)

// RegisterCardRendererServer registers service implementation.
func RegisterCardRendererServer(s grpc.ServiceRegistrar, srv CardRendererServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*CardRendererServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Configure", Handler: _CardRenderer_Configure_Handler},
			{MethodName: "ChromePolicy", Handler: _CardRenderer_ChromePolicy_Handler},
		},
		Metadata: "card.proto",
	}, srv)
}

func _CardRenderer_Configure_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ConfigureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardRendererServer).Configure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: configureMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardRendererServer).Configure(ctx, req.(*ConfigureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CardRenderer_ChromePolicy_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ChromePolicyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardRendererServer).ChromePolicy(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: chromePolicyMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardRendererServer).ChromePolicy(ctx, req.(*ChromePolicyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the card service over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Configure requests a card presentation.
func (c *Client) Configure(ctx context.Context, in *ConfigureRequest, opts ...grpc.CallOption) (*ConfigureReply, error) {
	out := new(ConfigureReply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, configureMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ChromePolicy queries the auxiliary chrome declaration.
func (c *Client) ChromePolicy(ctx context.Context, opts ...grpc.CallOption) (*ChromePolicyReply, error) {
	out := new(ChromePolicyReply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, chromePolicyMethod, &ChromePolicyRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
