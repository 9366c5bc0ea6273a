package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/ridecard/internal/card/assets"
	"github.com/example/ridecard/internal/card/domain"
	"github.com/example/ridecard/internal/card/renderer"
	"github.com/example/ridecard/internal/card/surface"
)

// ErrConfigureTimeout is returned when the renderer never resolved its completion
// within the host deadline.
var ErrConfigureTimeout = errors.New("card configuration timed out")

const defaultConfigureTimeout = 2 * time.Second

// Service plays the host role: it allocates a bounded region, drives the
// renderer through one configuration and collects the composed presentation.
type Service struct {
	catalog *assets.Catalog
	events  domain.EventPublisher
	clock   domain.Clock
	logger  *zap.Logger
	timeout time.Duration
}

// New constructs a Service with the required collaborators.
func New(catalog *assets.Catalog, events domain.EventPublisher, clock domain.Clock, logger *zap.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultConfigureTimeout
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Service{catalog: catalog, events: events, clock: clock, logger: logger, timeout: timeout}
}

// PresentRequest is one presentation asked for by the assistant.
type PresentRequest struct {
	Request domain.RequestDescription
	Context domain.RenderContext
	MaxSize domain.Size
}

// Presentation is what the host composites.
type Presentation struct {
	ID                      uuid.UUID             `json:"presentation_id"`
	Binding                 domain.DisplayBinding `json:"binding"`
	DesiredSize             domain.Size           `json:"desired_size"`
	SuppressAuxiliaryChrome bool                  `json:"suppress_auxiliary_chrome"`
	HTML                    string                `json:"html"`
}

// Present configures a fresh renderer for req, waits for its completion and
// announces the bound card. A completion that has already resolved is used
// even when ctx has ended.
func (s *Service) Present(ctx context.Context, req PresentRequest) (Presentation, error) {
	surf, err := surface.NewHTMLSurface(s.catalog)
	if err != nil {
		return Presentation{}, err
	}
	id := uuid.New()
	logger := s.logger.With(zap.String("presentation_id", id.String()))
	r := renderer.New(domain.FixedSize(req.MaxSize), surf, logger)

	done := renderer.NewCompletion(nil)
	if err := r.Configure(ctx, req.Request, req.Context, done); err != nil {
		return Presentation{}, fmt.Errorf("configure card: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	size, err := done.Wait(waitCtx)
	if err != nil {
		logger.Warn("card completion not signalled", zap.Error(err))
		return Presentation{}, fmt.Errorf("%w: %v", ErrConfigureTimeout, err)
	}

	binding, html, _ := surf.Snapshot()
	s.announce(ctx, logger, req.Context, binding, size)
	return Presentation{
		ID:                      id,
		Binding:                 binding,
		DesiredSize:             size,
		SuppressAuxiliaryChrome: r.DeclaresAuxiliaryChromeSuppression(),
		HTML:                    html,
	}, nil
}

// announce publishes the CardBound event. Broker failures never fail the
// presentation.
func (s *Service) announce(ctx context.Context, logger *zap.Logger, rc domain.RenderContext, binding domain.DisplayBinding, size domain.Size) {
	if s.events == nil {
		return
	}
	event := domain.CardEvent{
		ID:          uuid.New(),
		Type:        domain.EventCardBound,
		Category:    binding.ImageVariant,
		Context:     rc,
		DesiredSize: size,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Warn("publish card event", zap.Error(err), zap.String("event_id", event.ID.String()))
	}
}

// SuppressesAuxiliaryChrome reports the renderer chrome policy without
// configuring anything.
func (s *Service) SuppressesAuxiliaryChrome() bool {
	return renderer.SuppressesAuxiliaryChrome
}

// Asset returns a packaged card image by key.
func (s *Service) Asset(key string) (assets.Asset, error) {
	return s.catalog.Lookup(key)
}
