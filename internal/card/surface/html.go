package surface

import (
	"context"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/example/ridecard/internal/card/assets"
	"github.com/example/ridecard/internal/card/domain"
)

// The card is display only: no links, forms or script.
const cardTemplate = `<div class="ride-card" role="img" aria-label="{{ category_label }}">
  <img class="ride-card__vehicle" src="{{ image_src|safe }}" alt="{{ image_alt }}" width="{{ image_width }}" height="{{ image_height }}">
  <p class="ride-card__category">{{ category_label }}</p>
  <dl class="ride-card__route">
    <dt>Pickup</dt><dd class="ride-card__pickup">{{ pickup }}</dd>
    <dt>Dropoff</dt><dd class="ride-card__dropoff">{{ dropoff }}</dd>
  </dl>
</div>`

// HTMLSurface renders the bound card into an HTML fragment.
type HTMLSurface struct {
	catalog *assets.Catalog
	tpl     *pongo2.Template

	mu      sync.RWMutex
	binding domain.DisplayBinding
	html    string
	bound   bool
}

// NewHTMLSurface compiles the card template against catalog.
func NewHTMLSurface(catalog *assets.Catalog) (*HTMLSurface, error) {
	tpl, err := pongo2.FromString(cardTemplate)
	if err != nil {
		return nil, fmt.Errorf("compile card template: %w", err)
	}
	return &HTMLSurface{catalog: catalog, tpl: tpl}, nil
}

// Bind renders binding and swaps it in only when rendering succeeded.
func (h *HTMLSurface) Bind(_ context.Context, binding domain.DisplayBinding) error {
	asset, err := h.catalog.ForCategory(binding.ImageVariant)
	if err != nil {
		return err
	}
	out, err := h.tpl.Execute(pongo2.Context{
		"image_src":      asset.DataURI(),
		"image_alt":      asset.Alt,
		"image_width":    asset.Width,
		"image_height":   asset.Height,
		"category_label": binding.CategoryLabelText,
		"pickup":         binding.PickupText,
		"dropoff":        binding.DropoffText,
	})
	if err != nil {
		return fmt.Errorf("render card: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.binding = binding
	h.html = out
	h.bound = true
	return nil
}

// Snapshot returns the visible binding, its HTML and whether anything was bound.
func (h *HTMLSurface) Snapshot() (domain.DisplayBinding, string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.binding, h.html, h.bound
}
