package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RideCategory is the closed set of recognized trip types. The value doubles as
// the key of the visual asset that represents the category.
type RideCategory string

const (
	CategoryBasic   RideCategory = "basic"
	CategoryPremier RideCategory = "premier"
)

var knownCategories = map[string]RideCategory{
	string(CategoryBasic):   CategoryBasic,
	string(CategoryPremier): CategoryPremier,
}

// Label returns the human readable category name.
func (c RideCategory) Label() string {
	switch c {
	case CategoryBasic:
		return "Basic"
	case CategoryPremier:
		return "Premier"
	default:
		return string(c)
	}
}

// AssetKey selects the packaged image for the category.
func (c RideCategory) AssetKey() string { return string(c) }

// ErrCategoryResolution matches every *CategoryResolutionError via errors.Is.
var ErrCategoryResolution = errors.New("ride category could not be resolved")

// ErrInvalidSize indicates the host reported a maximum size without positive area.
var ErrInvalidSize = errors.New("maximum size must have positive width and height")

// CategoryResolutionError reports an absent or unrecognized ride option name.
type CategoryResolutionError struct {
	Name    string
	Missing bool
}

func (e *CategoryResolutionError) Error() string {
	if e.Missing {
		return "resolve ride category: ride option name is missing"
	}
	return fmt.Sprintf("resolve ride category: unknown ride option %q", e.Name)
}

// Is lets callers match on ErrCategoryResolution.
func (e *CategoryResolutionError) Is(target error) bool {
	return target == ErrCategoryResolution
}

// ParseRideCategory lower-cases name and matches it exactly against the known
// labels. It never falls back to a default category.
func ParseRideCategory(name *string) (RideCategory, error) {
	if name == nil {
		return "", &CategoryResolutionError{Missing: true}
	}
	if category, ok := knownCategories[strings.ToLower(*name)]; ok {
		return category, nil
	}
	return "", &CategoryResolutionError{Name: *name}
}

// RenderContext tags the situation in which the host asks for configuration.
type RenderContext string

const (
	ContextConfirmation RenderContext = "confirmation"
	ContextHandled      RenderContext = "handled"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NamedPoint is a location with an optional display name.
type NamedPoint struct {
	Name       *string     `json:"name,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
}

// DisplayName returns the point name or the empty string when either the point
// or its name is absent.
func (p *NamedPoint) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return *p.Name
}

// RequestDescription is the read-only ride request handed over by the host.
type RequestDescription struct {
	RideOptionName  *string     `json:"ride_option_name,omitempty"`
	PickupLocation  *NamedPoint `json:"pickup_location,omitempty"`
	DropoffLocation *NamedPoint `json:"dropoff_location,omitempty"`
}

// DisplayBinding is the content bound into the card surface.
type DisplayBinding struct {
	PickupText        string       `json:"pickup_text"`
	DropoffText       string       `json:"dropoff_text"`
	CategoryLabelText string       `json:"category_label_text"`
	ImageVariant      RideCategory `json:"image_variant"`
}

// NewDisplayBinding maps a request with an already resolved category into the
// four output slots. Missing location names degrade to blank text.
func NewDisplayBinding(req RequestDescription, category RideCategory) DisplayBinding {
	return DisplayBinding{
		PickupText:        req.PickupLocation.DisplayName(),
		DropoffText:       req.DropoffLocation.DisplayName(),
		CategoryLabelText: "Vehicle Type: " + category.Label(),
		ImageVariant:      category,
	}
}

// Size is a width/height pair in host points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Positive reports whether both axes are strictly positive.
func (s Size) Positive() bool { return s.Width > 0 && s.Height > 0 }

// SizeProvider is queried synchronously for the maximum area the host allows.
type SizeProvider interface {
	MaximumSize() Size
}

// FixedSize is a SizeProvider with a constant maximum.
type FixedSize Size

func (f FixedSize) MaximumSize() Size { return Size(f) }

// Surface receives a complete binding. Implementations must apply it
// atomically: either the whole binding becomes visible or none of it.
type Surface interface {
	Bind(ctx context.Context, binding DisplayBinding) error
}

type CardEventType string

const EventCardBound CardEventType = "CardBound"

// CardEvent notifies interested parties that a card was bound.
type CardEvent struct {
	ID          uuid.UUID      `json:"id"`
	Type        CardEventType  `json:"type"`
	Category    RideCategory   `json:"category"`
	Context     RenderContext  `json:"context"`
	DesiredSize Size           `json:"desired_size"`
	CreatedAt   time.Time      `json:"created_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// EventPublisher delivers card events. Delivery failures never affect rendering.
type EventPublisher interface {
	Publish(ctx context.Context, event CardEvent) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
