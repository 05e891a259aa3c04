package pano

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/philipparndt/gopano/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	// gate blocks Get for urls it contains until closed
	gate map[string]chan struct{}
}

func (f *fakeSource) Get(ctx context.Context, url string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gate[url]
	fail := f.fail[url]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("not found")
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func urls(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d.jpg", prefix, i)
	}
	return out
}

func TestNewRejectsWrongImageCounts(t *testing.T) {
	for _, n := range []int{0, 2, 5, 7, 23, 25} {
		_, err := New(urls("img", n), nil, Options{Source: &fakeSource{}})
		var countErr *ImageCountError
		require.ErrorAs(t, err, &countErr, "count %d", n)
		assert.Equal(t, n, countErr.Got)
	}
}

func TestKindFor(t *testing.T) {
	for n, want := range map[int]Kind{1: Sphere, 6: Cube, 24: Cube24} {
		k, err := KindFor(n)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}
}

func TestSphere(t *testing.T) {
	m, err := New([]string{"a.jpg"}, nil, Options{Name: "p1", Source: &fakeSource{}})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))

	assert.Equal(t, Sphere, m.Kind())
	assert.Equal(t, float32(100), m.Size())
	require.NotNil(t, m.Full())
	require.NotNil(t, m.Full().Mesh)
	assert.Equal(t, sphereSegments*sphereSegments, m.Full().Mesh.Geometry.QuadCount())
	require.Len(t, m.Materials(), 1)
	assert.Equal(t, "a.jpg", m.Materials()[0].Texture.Source)
}

func TestCubeHasSixDistinctMaterialsInOrder(t *testing.T) {
	images := []string{"r.jpg", "l.jpg", "u.jpg", "d.jpg", "f.jpg", "b.jpg"}
	m, err := New(images, nil, Options{Source: &fakeSource{}})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))

	mesh := m.Full().Mesh
	require.Len(t, mesh.Materials, 6)
	seen := map[*scene.Material]bool{}
	for i, mat := range mesh.Materials {
		assert.False(t, seen[mat])
		seen[mat] = true
		assert.Equal(t, images[i], mat.Texture.Source)
	}

	// group i is drawn with material i; after mirroring Z the front
	// image lies on -Z
	for i, g := range mesh.Geometry.Groups {
		assert.Equal(t, i, g.MaterialIndex)
	}
	for _, v := range mesh.Geometry.Groups[4].Quads[0] {
		assert.InDelta(t, -100, v.Pos.Z, 1e-4)
	}
	for _, v := range mesh.Geometry.Groups[0].Quads[0] {
		assert.InDelta(t, 100, v.Pos.X, 1e-4)
	}
}

func TestCube24Layout(t *testing.T) {
	m, err := New(urls("tile", 24), nil, Options{Source: &fakeSource{}})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))

	faces := m.Full().Children()
	require.Len(t, faces, 6)
	tiles := 0
	for fi, f := range faces {
		require.Len(t, f.Children(), 4)
		for ti, tile := range f.Children() {
			tiles++
			assert.Same(t, m.Materials()[fi*4+ti], tile.Mesh.Materials[0])
		}
	}
	assert.Equal(t, 24, tiles)

	// tiles together cover the cube surface
	box := m.Node.WorldBounds()
	size := box.Size()
	assert.InDelta(t, 200, size.X, 1e-3)
	assert.InDelta(t, 200, size.Y, 1e-3)
	assert.InDelta(t, 200, size.Z, 1e-3)

	right := faces[0].WorldBounds()
	assert.InDelta(t, 100, right.Min.X, 1e-3)
	assert.InDelta(t, 100, right.Max.X, 1e-3)
}

func TestCreateFailsOnImageError(t *testing.T) {
	src := &fakeSource{fail: map[string]bool{"a.jpg": true}}
	m, err := New([]string{"a.jpg"}, nil, Options{Source: src})
	require.NoError(t, err)
	assert.Error(t, m.Create(context.Background()))
	assert.Empty(t, m.Node.Children())
}

func TestProgressiveSwap(t *testing.T) {
	images := urls("full", 6)
	gate := make(chan struct{})
	src := &fakeSource{gate: map[string]chan struct{}{}}
	for _, u := range images {
		src.gate[u] = gate
	}
	m, err := New(images, urls("thumb", 6), Options{Source: src})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))

	require.NotNil(t, m.Thumbnail())
	assert.True(t, m.Loading())
	for _, mat := range m.Materials() {
		assert.True(t, mat.Hidden)
		assert.False(t, mat.Drawable())
	}
	thumbMesh := m.Thumbnail().Mesh

	close(gate)
	require.Eventually(t, func() bool {
		m.Update(0)
		return !m.Loading()
	}, time.Second, time.Millisecond)

	assert.Nil(t, m.Thumbnail())
	assert.True(t, thumbMesh.Geometry.Disposed())
	for i, mat := range m.Materials() {
		assert.True(t, mat.Drawable())
		assert.Equal(t, images[i], mat.Texture.Source)
	}
}

func TestProgressiveKeepsThumbnailOnFailure(t *testing.T) {
	images := urls("full", 6)
	src := &fakeSource{fail: map[string]bool{images[2]: true}}
	m, err := New(images, urls("thumb", 6), Options{Source: src})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))

	require.Eventually(t, func() bool {
		m.Update(0)
		return !m.Loading()
	}, time.Second, time.Millisecond)
	assert.NotNil(t, m.Thumbnail())
	assert.True(t, m.Materials()[2].Hidden)
}

func created(t *testing.T) *Mesh {
	t.Helper()
	m, err := New([]string{"a.jpg"}, nil, Options{Source: &fakeSource{}})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))
	return m
}

func TestFadeIn(t *testing.T) {
	m := created(t)
	m.FadeIn(100 * time.Millisecond)
	assert.Equal(t, float32(0), m.Opacity())
	assert.True(t, m.Node.Visible)

	assert.True(t, m.Update(0.05))
	assert.InDelta(t, 0.5, m.Opacity(), 1e-4)
	assert.True(t, m.Materials()[0].Transparent)

	m.Update(0.05)
	assert.False(t, m.Fading())
	assert.Equal(t, float32(1), m.Opacity())
	assert.False(t, m.Materials()[0].Transparent)
}

func TestFadeOutScalesAndHides(t *testing.T) {
	m := created(t)
	m.FadeOut(100 * time.Millisecond)
	assert.InDelta(t, 2, m.Node.Scale.X, 1e-5)

	m.Update(0.05)
	assert.InDelta(t, 2.5, m.Node.Scale.X, 1e-4)
	assert.InDelta(t, 0.5, m.Opacity(), 1e-4)

	m.Update(0.05)
	assert.False(t, m.Fading())
	assert.False(t, m.Node.Visible)
	assert.Equal(t, float32(1), m.Opacity())
	assert.InDelta(t, 1, m.Node.Scale.X, 1e-5)
	assert.False(t, m.Destroyed())
}

func TestFadeInThenFadeOutNeverLeavesIntermediateState(t *testing.T) {
	m := created(t)
	m.FadeIn(time.Second)
	m.Update(0.3)
	assert.InDelta(t, 0.3, m.Opacity(), 1e-3)

	m.FadeOut(time.Second)
	// the fade in was finalized before the fade out started
	assert.Equal(t, float32(1), m.Opacity())
	assert.InDelta(t, 2, m.Node.Scale.X, 1e-5)

	m.Update(1)
	assert.False(t, m.Fading())
	assert.False(t, m.Node.Visible)
	assert.Equal(t, float32(1), m.Opacity())
	assert.InDelta(t, 1, m.Node.Scale.X, 1e-5)
}

func TestFadeDoesNotDependOnSlicing(t *testing.T) {
	a, b := created(t), created(t)
	a.FadeIn(time.Second)
	b.FadeIn(time.Second)
	a.Update(0.5)
	for i := 0; i < 50; i++ {
		b.Update(0.01)
	}
	assert.InDelta(t, a.Opacity(), b.Opacity(), 1e-5)
}

func TestFadeOutDisposes(t *testing.T) {
	m := created(t)
	parent := scene.NewNode("v1")
	parent.Add(m.Node)
	mats := m.Materials()

	m.SetDisposeOnFadeOut(true)
	m.FadeOut(50 * time.Millisecond)
	m.Update(0.1)

	assert.True(t, m.Destroyed())
	assert.Nil(t, m.Node.Parent())
	assert.True(t, mats[0].Texture.Disposed())
}

func TestDestroyReleasesEverything(t *testing.T) {
	m, err := New(urls("full", 24), nil, Options{Source: &fakeSource{}})
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))
	parent := scene.NewNode("v1")
	parent.Add(m.Node)

	var meshes []*scene.Mesh
	m.Node.Walk(func(n *scene.Node) bool {
		if n.Mesh != nil {
			meshes = append(meshes, n.Mesh)
		}
		return true
	})
	require.Len(t, meshes, 24)

	m.Destroy()
	m.Destroy()

	for _, mesh := range meshes {
		assert.True(t, mesh.Geometry.Disposed())
		for _, mat := range mesh.Materials {
			assert.True(t, mat.Disposed())
			assert.True(t, mat.Texture.Disposed())
		}
	}
	assert.Nil(t, m.Node.Parent())
	assert.False(t, m.Update(1))
}

func TestCancelStopsCreate(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{gate: map[string]chan struct{}{"a.jpg": gate}}
	m, err := New([]string{"a.jpg"}, nil, Options{Source: src})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Create(context.Background()) }()
	m.Cancel()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("create did not stop")
	}
}
