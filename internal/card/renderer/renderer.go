package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/example/ridecard/internal/card/domain"
)

// SuppressesAuxiliaryChrome is the fixed chrome policy of the confirmation
// card: the host map repeats the pickup and dropoff already shown on the card.
const SuppressesAuxiliaryChrome = true

// ErrNilCompletion is returned when Configure is called without a completion.
var ErrNilCompletion = errors.New("completion is required")

// HostedViewRenderer is the contract a host drives. Hosts implement the caller
// side only and never depend on a concrete renderer.
type HostedViewRenderer interface {
	Configure(ctx context.Context, req domain.RequestDescription, rc domain.RenderContext, done *Completion) error
	DeclaresAuxiliaryChromeSuppression() bool
}

var _ HostedViewRenderer = (*Renderer)(nil)

// Renderer binds a ride request into a non-interactive card surface.
// It performs no I/O; notifying others about a bound card is the host's job.
type Renderer struct {
	sizes   domain.SizeProvider
	surface domain.Surface
	logger  *zap.Logger
	tracer  trace.Tracer
}

// New constructs a Renderer. logger is optional.
func New(sizes domain.SizeProvider, surface domain.Surface, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		sizes:   sizes,
		surface: surface,
		logger:  logger,
		tracer:  otel.Tracer("card.renderer"),
	}
}

// Configure resolves the ride category, binds the card and resolves done with
// the maximum size the host allows. On error nothing is bound and done stays
// unresolved.
func (r *Renderer) Configure(ctx context.Context, req domain.RequestDescription, rc domain.RenderContext, done *Completion) (err error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "card.configure", trace.WithAttributes(attribute.String("card.context", string(rc))))
	defer func() {
		result := "ok"
		if err != nil {
			result = failureLabel(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		configureTotal.WithLabelValues(result).Inc()
		configureDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		span.End()
	}()

	if done == nil {
		return ErrNilCompletion
	}
	if err := done.claim(); err != nil {
		return err
	}
	defer done.release()

	category, err := domain.ParseRideCategory(req.RideOptionName)
	if err != nil {
		r.logger.Warn("card configuration rejected", zap.Error(err), zap.String("context", string(rc)))
		return err
	}
	span.SetAttributes(attribute.String("card.category", string(category)))

	size := r.sizes.MaximumSize()
	if !size.Positive() {
		return fmt.Errorf("%w: %gx%g", domain.ErrInvalidSize, size.Width, size.Height)
	}

	binding := domain.NewDisplayBinding(req, category)
	if err := r.surface.Bind(ctx, binding); err != nil {
		return fmt.Errorf("bind surface: %w", err)
	}
	categoryTotal.WithLabelValues(string(category)).Inc()

	done.fulfil(size)
	r.logger.Debug("card configured",
		zap.String("category", string(category)),
		zap.Float64("width", size.Width),
		zap.Float64("height", size.Height),
	)
	return nil
}

// DeclaresAuxiliaryChromeSuppression asks the host not to draw its own map
// next to the card.
func (r *Renderer) DeclaresAuxiliaryChromeSuppression() bool {
	return SuppressesAuxiliaryChrome
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrCategoryResolution):
		return "unresolved_category"
	case errors.Is(err, domain.ErrInvalidSize):
		return "invalid_size"
	case errors.Is(err, ErrCompletionResolved), errors.Is(err, ErrNilCompletion):
		return "completion"
	default:
		return "error"
	}
}
