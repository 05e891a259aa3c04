package session

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gopano/internal/viewer"
	"github.com/philipparndt/gopano/internal/viewpoint"
	"github.com/philipparndt/gopano/pkg/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tourJSON = `{
  "viewpoints": [
    {
      "id": "hall",
      "panoramas": [{"id": "day", "images": ["hall.jpg"]}, {"id": "night", "images": ["hall_n.jpg"]}],
      "hotpoints": [{"hotpointId": "kitchen", "anchorPosition": [0, 0, -10], "html": "Kitchen"}]
    },
    {"id": "kitchen", "panoramas": [{"id": "day", "images": ["kitchen.jpg"]}]},
    {"id": "garden", "panoramas": [{"id": "day", "images": ["garden.jpg"]}]}
  ]
}`

type blankSource struct{}

func (blankSource) Get(context.Context, string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func writeTour(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "tour.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSession(t *testing.T, content string) (*Session, *viewer.Viewer) {
	t.Helper()
	v := viewer.New(viewer.Options{Width: 800, Height: 600, Source: blankSource{}})
	s, err := New(context.Background(), v, writeTour(t, t.TempDir(), content))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		v.Close()
	})
	return s, v
}

func sel(vp, pano string) viewpoint.Selection {
	return viewpoint.Selection{ViewpointID: vp, PanoramaID: pano}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tr, err := Load(writeTour(t, dir, tourJSON))
	require.NoError(t, err)
	assert.Len(t, tr.Viewpoints, 3)
	assert.Equal(t, filepath.Join(dir, "hall.jpg"), tr.Viewpoints[0].Panoramas[0].Images[0])

	img := filepath.Join(dir, "pano.jpg")
	require.NoError(t, os.WriteFile(img, nil, 0o644))
	tr, err = Load(img)
	require.NoError(t, err)
	assert.Equal(t, []string{img}, tr.Viewpoints[0].Panoramas[0].Images)

	faces := t.TempDir()
	for _, name := range []string{"right", "left", "up", "down", "front", "back"} {
		require.NoError(t, os.WriteFile(filepath.Join(faces, name+".png"), nil, 0o644))
	}
	tr, err = Load(faces)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(faces, "front.png"), tr.Viewpoints[0].Panoramas[0].Images[4])

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestNewActivatesFirstPanorama(t *testing.T) {
	s, v := newSession(t, tourJSON)
	assert.Equal(t, sel("hall", "day"), s.Selection())
	assert.Len(t, v.Viewpoints.Viewpoints(), 3)
}

func TestNewRejectsEmptyTour(t *testing.T) {
	v := viewer.New(viewer.Options{Width: 800, Height: 600, Source: blankSource{}})
	defer v.Close()
	_, err := New(context.Background(), v, writeTour(t, t.TempDir(), `{"viewpoints": []}`))
	assert.Error(t, err)
}

func TestNextViewpointWraps(t *testing.T) {
	s, _ := newSession(t, tourJSON)
	ctx := context.Background()

	require.NoError(t, s.NextViewpoint(ctx, 1))
	assert.Equal(t, sel("kitchen", "day"), s.Selection())
	require.NoError(t, s.NextViewpoint(ctx, 2))
	assert.Equal(t, sel("hall", "day"), s.Selection())
	require.NoError(t, s.NextViewpoint(ctx, -1))
	assert.Equal(t, sel("garden", "day"), s.Selection())
}

func TestNextPanorama(t *testing.T) {
	s, _ := newSession(t, tourJSON)
	ctx := context.Background()

	require.NoError(t, s.NextPanorama(ctx, 1))
	assert.Equal(t, sel("hall", "night"), s.Selection())
	require.NoError(t, s.NextPanorama(ctx, 1))
	assert.Equal(t, sel("hall", "day"), s.Selection())
}

func TestHotpointNamingViewpointNavigates(t *testing.T) {
	s, v := newSession(t, tourJSON)

	v.HotpointClick.Publish(tour.Hotpoint{HotpointID: "cellar"})
	assert.Equal(t, sel("hall", "day"), s.Selection())

	v.HotpointClick.Publish(tour.Hotpoint{HotpointID: "kitchen"})
	assert.Equal(t, sel("kitchen", "day"), s.Selection())
}

func TestApplyReloadKeepsSelection(t *testing.T) {
	s, _ := newSession(t, tourJSON)
	ctx := context.Background()
	require.NoError(t, s.NextPanorama(ctx, 1))

	applied, err := s.ApplyReload(ctx)
	require.NoError(t, err)
	assert.False(t, applied)

	tr, err := tour.Decode([]byte(tourJSON), ".json")
	require.NoError(t, err)
	s.offer(tr)
	applied, err = s.ApplyReload(ctx)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Same(t, tr, s.Tour())
	assert.Equal(t, sel("hall", "night"), s.Selection())
}

func TestApplyReloadFallsBackToFirst(t *testing.T) {
	s, _ := newSession(t, tourJSON)
	ctx := context.Background()
	require.NoError(t, s.NextViewpoint(ctx, 2))

	tr, err := tour.Decode([]byte(`[{"id":"porch","panoramas":[{"id":"p","images":["porch.jpg"]}]}]`), ".json")
	require.NoError(t, err)
	s.offer(tr)
	_, err = s.ApplyReload(ctx)
	require.NoError(t, err)
	assert.Equal(t, sel("porch", "p"), s.Selection())
}

func TestOfferKeepsLatest(t *testing.T) {
	s, _ := newSession(t, tourJSON)
	first := &tour.Tour{}
	latest := &tour.Tour{}
	s.offer(first)
	s.offer(latest)
	assert.Same(t, latest, <-s.reloads)
}

func TestWatchReloadsChangedFile(t *testing.T) {
	s, _ := newSession(t, tourJSON)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"id":"attic","panoramas":[{"id":"p","images":["attic.jpg"]}]}]`), 0o644))

	require.Eventually(t, func() bool {
		applied, err := s.ApplyReload(ctx)
		return err == nil && applied
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, sel("attic", "p"), s.Selection())
}
