package renderer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/example/ridecard/internal/card/domain"
	"github.com/example/ridecard/internal/card/renderer"
	"github.com/example/ridecard/internal/card/surface"
)

type countingSizes struct {
	size  domain.Size
	calls int
}

func (c *countingSizes) MaximumSize() domain.Size {
	c.calls++
	return c.size
}

type failingSurface struct{}

func (failingSurface) Bind(context.Context, domain.DisplayBinding) error {
	return errors.New("surface gone")
}

func strPtr(s string) *string { return &s }

func basicRequest() domain.RequestDescription {
	return domain.RequestDescription{
		RideOptionName:  strPtr("Basic"),
		PickupLocation:  &domain.NamedPoint{Name: strPtr("Main St")},
		DropoffLocation: &domain.NamedPoint{Name: strPtr("5th Ave")},
	}
}

func newRenderer(size domain.Size) (*renderer.Renderer, *surface.MemorySurface) {
	surf := surface.NewMemorySurface()
	return renderer.New(domain.FixedSize(size), surf, nil), surf
}

func TestConfigureBindsCardAndResolvesMaximumSize(t *testing.T) {
	r, surf := newRenderer(domain.Size{Width: 400, Height: 300})

	var notified []domain.Size
	done := renderer.NewCompletion(func(size domain.Size) { notified = append(notified, size) })
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done))

	binding, ok := surf.Current()
	require.True(t, ok)
	require.Equal(t, domain.DisplayBinding{
		PickupText:        "Main St",
		DropoffText:       "5th Ave",
		CategoryLabelText: "Vehicle Type: Basic",
		ImageVariant:      domain.CategoryBasic,
	}, binding)

	size, err := done.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Size{Width: 400, Height: 300}, size)
	require.Equal(t, []domain.Size{{Width: 400, Height: 300}}, notified)
}

func TestConfigurePremierAnyCasing(t *testing.T) {
	for _, name := range []string{"Premier", "premier", "PREMIER"} {
		r, surf := newRenderer(domain.Size{Width: 320, Height: 200})
		req := domain.RequestDescription{RideOptionName: strPtr(name)}
		require.NoError(t, r.Configure(context.Background(), req, domain.ContextHandled, renderer.NewCompletion(nil)))

		binding, ok := surf.Current()
		require.True(t, ok)
		require.Equal(t, domain.CategoryPremier, binding.ImageVariant)
		require.Contains(t, binding.CategoryLabelText, "Premier")
		require.Empty(t, binding.PickupText)
		require.Empty(t, binding.DropoffText)
	}
}

func TestConfigureRejectsUnresolvedCategoryWithoutBinding(t *testing.T) {
	cases := map[string]domain.RequestDescription{
		"missing": {PickupLocation: &domain.NamedPoint{Name: strPtr("Main St")}},
		"unknown": {RideOptionName: strPtr("luxury"), PickupLocation: &domain.NamedPoint{Name: strPtr("Main St")}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			r, surf := newRenderer(domain.Size{Width: 400, Height: 300})
			done := renderer.NewCompletion(nil)

			err := r.Configure(context.Background(), req, domain.ContextConfirmation, done)
			require.ErrorIs(t, err, domain.ErrCategoryResolution)

			_, bound := surf.Current()
			require.False(t, bound)
			require.False(t, done.Resolved())
		})
	}
}

func TestConfigureKeepsPreviousBindingOnFailure(t *testing.T) {
	r, surf := newRenderer(domain.Size{Width: 400, Height: 300})
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, renderer.NewCompletion(nil)))
	before, _ := surf.Current()

	err := r.Configure(context.Background(), domain.RequestDescription{RideOptionName: strPtr("luxury")}, domain.ContextConfirmation, renderer.NewCompletion(nil))
	require.Error(t, err)

	after, _ := surf.Current()
	require.Equal(t, before, after)
}

func TestConfigureIsIdempotent(t *testing.T) {
	r, surf := newRenderer(domain.Size{Width: 400, Height: 300})

	first := renderer.NewCompletion(nil)
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, first))
	firstBinding, _ := surf.Current()

	second := renderer.NewCompletion(nil)
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, second))
	secondBinding, _ := surf.Current()

	if diff := cmp.Diff(firstBinding, secondBinding); diff != "" {
		t.Fatalf("binding changed between calls (-first +second):\n%s", diff)
	}
	firstSize, err := first.Wait(context.Background())
	require.NoError(t, err)
	secondSize, err := second.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, firstSize, secondSize)
}

func TestConfigureQueriesSizeAtCallTime(t *testing.T) {
	sizes := &countingSizes{size: domain.Size{Width: 400, Height: 300}}
	r := renderer.New(sizes, surface.NewMemorySurface(), nil)

	done := renderer.NewCompletion(nil)
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done))
	size, _ := done.Wait(context.Background())
	require.Equal(t, domain.Size{Width: 400, Height: 300}, size)

	sizes.size = domain.Size{Width: 250, Height: 120}
	done = renderer.NewCompletion(nil)
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done))
	size, _ = done.Wait(context.Background())
	require.Equal(t, domain.Size{Width: 250, Height: 120}, size)
	require.Equal(t, 2, sizes.calls)
}

func TestConfigureRejectsInvalidSize(t *testing.T) {
	r, surf := newRenderer(domain.Size{Width: 0, Height: 300})
	done := renderer.NewCompletion(nil)
	err := r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done)
	require.ErrorIs(t, err, domain.ErrInvalidSize)
	_, bound := surf.Current()
	require.False(t, bound)
	require.False(t, done.Resolved())
}

func TestConfigureCompletionRules(t *testing.T) {
	r, surf := newRenderer(domain.Size{Width: 400, Height: 300})
	require.ErrorIs(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, nil), renderer.ErrNilCompletion)

	done := renderer.NewCompletion(nil)
	require.NoError(t, done.Resolve(domain.Size{Width: 1, Height: 1}))
	err := r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done)
	require.ErrorIs(t, err, renderer.ErrCompletionResolved)
	_, bound := surf.Current()
	require.False(t, bound)
}

func TestConfigureSurfaceFailureLeavesCompletionUnresolved(t *testing.T) {
	r := renderer.New(domain.FixedSize{Width: 400, Height: 300}, failingSurface{}, nil)
	done := renderer.NewCompletion(nil)
	err := r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done)
	require.Error(t, err)
	require.False(t, done.Resolved())
}

func TestConfigureLeavesFailedCompletionReusable(t *testing.T) {
	r, surf := newRenderer(domain.Size{Width: 400, Height: 300})
	done := renderer.NewCompletion(nil)
	err := r.Configure(context.Background(), domain.RequestDescription{RideOptionName: strPtr("luxury")}, domain.ContextConfirmation, done)
	require.Error(t, err)

	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, done))
	require.True(t, done.Resolved())
	_, bound := surf.Current()
	require.True(t, bound)
}

func TestDeclaresAuxiliaryChromeSuppressionIsConstant(t *testing.T) {
	r, _ := newRenderer(domain.Size{Width: 400, Height: 300})
	require.True(t, r.DeclaresAuxiliaryChromeSuppression())
	require.NoError(t, r.Configure(context.Background(), basicRequest(), domain.ContextConfirmation, renderer.NewCompletion(nil)))
	for i := 0; i < 3; i++ {
		require.True(t, r.DeclaresAuxiliaryChromeSuppression())
	}
}
