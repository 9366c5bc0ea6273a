package grpchost

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/ridecard/internal/card/domain"
	"github.com/example/ridecard/internal/card/service"
)

// Server implements CardRendererServer on top of the card service.
type Server struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewServer constructs a server.
func NewServer(svc *service.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger}
}

// Configure renders one card.
func (s *Server) Configure(ctx context.Context, in *ConfigureRequest) (*ConfigureReply, error) {
	rc := in.Context
	if rc == "" {
		rc = domain.ContextConfirmation
	}
	presentation, err := s.svc.Present(ctx, service.PresentRequest{
		Request: in.Request,
		Context: rc,
		MaxSize: in.MaxSize,
	})
	if err != nil {
		s.logger.Debug("configure failed", zap.Error(err))
		return nil, status.Error(codeFor(err), err.Error())
	}
	return &ConfigureReply{Presentation: presentation}, nil
}

// ChromePolicy returns the fixed suppression declaration.
func (s *Server) ChromePolicy(context.Context, *ChromePolicyRequest) (*ChromePolicyReply, error) {
	return &ChromePolicyReply{SuppressAuxiliaryChrome: s.svc.SuppressesAuxiliaryChrome()}, nil
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrCategoryResolution), errors.Is(err, domain.ErrInvalidSize):
		return codes.InvalidArgument
	case errors.Is(err, service.ErrConfigureTimeout):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}
