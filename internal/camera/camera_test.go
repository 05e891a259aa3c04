package camera

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got math32.Vector3, tol float32) {
	t.Helper()
	assert.True(t, geometry.NearlyEqual(want, got, tol), "want %s got %s", geometry.Format(want), geometry.Format(got))
}

func settle(m *Manager) {
	for i := 0; i < 1000 && !m.Controls.Settled(); i++ {
		m.Update(1.0 / 60)
	}
}

func TestInfoRoundTrip(t *testing.T) {
	cases := map[string]Info{
		"general": {Near: 0.5, Far: 500, Zoom: 1.5, Eye: [3]float32{3, 4, 5}, Up: [3]float32{0, 1, 0}, Look: [3]float32{-1, 2, 0.5}},
		"long up": {Near: 0.1, Far: 1000, Zoom: 1, Eye: [3]float32{0, 0, 10}, Up: [3]float32{0, 2, 0}},
		"zoom beyond panorama range": {Near: 0.1, Far: 1000, Zoom: 3, Eye: [3]float32{0, 0, 10}, Up: [3]float32{0, 1, 0}},
		"eye above look": {Near: 0.1, Far: 1000, Zoom: 1, Eye: [3]float32{0, 10, 0}, Up: [3]float32{0, 0, -1}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			m := New(800, 600)
			require.NoError(t, m.SetInfo(in))
			out := m.Info()

			assert.Equal(t, in.Near, out.Near)
			assert.Equal(t, in.Far, out.Far)
			assert.InDelta(t, in.Zoom, out.Zoom, 1e-6)
			assertVec(t, geometry.FromArray(in.Eye), geometry.FromArray(out.Eye), 1e-4)
			assertVec(t, geometry.FromArray(in.Look), geometry.FromArray(out.Look), 1e-4)
			assert.Equal(t, in.Up, out.Up)
		})
	}
}

func TestSetInfoDefaults(t *testing.T) {
	m := New(800, 600)
	require.NoError(t, m.SetInfo(Info{Eye: [3]float32{0, 0, 10}}))
	out := m.Info()
	assert.Equal(t, float32(0.1), out.Near)
	assert.Equal(t, float32(100000), out.Far)
	assert.Equal(t, float32(1), out.Zoom)
	assert.Equal(t, [3]float32{0, 1, 0}, out.Up)
}

func TestSetInfoRejectsDegenerate(t *testing.T) {
	m := New(800, 600)
	before := m.Info()
	assert.ErrorIs(t, m.SetInfo(Info{Eye: [3]float32{1, 1, 1}, Look: [3]float32{1, 1, 1}}), ErrDegenerate)
	assert.ErrorIs(t, m.SetInfo(Info{Near: 10, Far: 1, Eye: [3]float32{0, 0, 5}}), ErrDegenerate)
	assert.ErrorIs(t, m.SetInfo(Info{Eye: [3]float32{math32.NaN(), 0, 0}}), ErrDegenerate)
	assert.Equal(t, before, m.Info())
}

func TestFlyToSamePositionIsRejected(t *testing.T) {
	m := New(800, 600)
	before := m.Info()
	p := math32.Vec3(1, 2, 3)

	err := m.FlyTo(p, p)
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.True(t, m.Controls.Settled())
	assert.False(t, m.Update(0.1))
	assert.Equal(t, before, m.Info())
}

func TestFlyToRejectsNonFinite(t *testing.T) {
	m := New(800, 600)
	before := m.Info()
	assert.ErrorIs(t, m.FlyTo(math32.Vec3(math32.Inf(1), 0, 0), math32.Vector3{}), ErrDegenerate)
	assert.Equal(t, before, m.Info())
}

func TestFlyToAnimates(t *testing.T) {
	m := New(800, 600)
	require.NoError(t, m.FlyTo(math32.Vec3(0, 0, 20), math32.Vec3(0, 0, 0)))
	assert.True(t, m.Update(1.0/60))
	settle(m)
	assertVec(t, math32.Vec3(0, 0, 20), m.Position(), 1e-2)
	assertVec(t, math32.Vec3(0, 0, -1), m.Direction(), 1e-3)
	assert.False(t, m.Update(1.0/60))
}

func TestFlyToClampsDistance(t *testing.T) {
	m := New(800, 600)
	lookAt := math32.Vec3(0, 0, 0)

	require.NoError(t, m.FlyTo(math32.Vec3(0, 0, 0.01), lookAt))
	settle(m)
	assert.InDelta(t, m.Near(), m.Position().DistanceTo(lookAt), 1e-3)

	require.NoError(t, m.FlyTo(math32.Vec3(0, 0, 1e6), lookAt))
	settle(m)
	assert.InDelta(t, m.Far(), m.Position().DistanceTo(lookAt), 1)
	assert.Greater(t, m.Position().Z, float32(0))
}

func TestTogglesRestorePreviousValues(t *testing.T) {
	m := New(800, 600)
	c := m.Controls

	c.DollySpeed = 3
	m.EnableZoom(false)
	assert.Equal(t, float32(0), c.DollySpeed)
	m.EnableZoom(false)
	m.EnableZoom(true)
	assert.Equal(t, float32(3), c.DollySpeed)

	c.AzimuthRotateSpeed, c.PolarRotateSpeed = -0.4, -0.3
	m.EnableRotate(false)
	assert.False(t, m.RotateEnabled())
	m.EnableRotate(true)
	assert.Equal(t, float32(-0.4), c.AzimuthRotateSpeed)
	assert.Equal(t, float32(-0.3), c.PolarRotateSpeed)

	c.TruckSpeed = 5
	m.EnablePan(false)
	m.EnablePan(true)
	assert.Equal(t, float32(5), c.TruckSpeed)

	m.EnableMouseLeft(false)
	assert.Equal(t, ActionNone, c.Buttons.Left)
	m.EnableMouseLeft(true)
	assert.Equal(t, ActionRotate, c.Buttons.Left)
}

func TestPanoramaPreset(t *testing.T) {
	m := New(800, 600)
	assert.Equal(t, ModePanorama, m.NavigationMode())
	assert.Equal(t, float32(0), m.Controls.TruckSpeed)
	assert.Equal(t, ActionZoom, m.Controls.Buttons.Wheel)

	m.ZoomTo(10, false)
	assert.Equal(t, float32(2), m.Zoom())
	m.ZoomTo(0.1, false)
	assert.Equal(t, float32(0.5), m.Zoom())
}

func TestProjectionSwitch(t *testing.T) {
	m := New(800, 400)

	// panorama mode keeps the perspective camera
	m.SetProjection(Orthographic)
	assert.Equal(t, Perspective, m.Projection())

	require.NoError(t, m.SetNavigationMode(ModeOrbit))
	require.NoError(t, m.SetInfo(Info{Eye: [3]float32{0, 0, 10}}))
	m.SetProjection(Orthographic)
	assert.Equal(t, Orthographic, m.Projection())
	assert.Equal(t, float32(orthoDistance), m.Controls.Distance())

	// frustum matches the perspective view at the target distance
	wantH := 10 * 2 * math32.Tan(math32.DegToRad(defaultFov)/2)
	assert.InDelta(t, wantH, m.OrthoHeight(), 1e-3)

	m.SetProjection(Perspective)
	assert.Equal(t, Perspective, m.Projection())
	assert.InDelta(t, 10, m.Controls.Distance(), 1e-4)
	assert.Equal(t, float32(1), m.Zoom())
}

func TestSetPositionAndDirection(t *testing.T) {
	m := New(800, 600)
	dir := math32.Vec3(1, 0, 1)
	require.NoError(t, m.SetPositionAndDirection(math32.Vec3(0, 1, 0), &dir, false))
	assertVec(t, math32.Vec3(0, 1, 0), m.Position(), 1e-4)
	assertVec(t, dir.Normal(), m.Direction(), 1e-5)

	// nil direction keeps the current one
	require.NoError(t, m.SetPositionAndDirection(math32.Vec3(5, 1, 0), nil, false))
	assertVec(t, dir.Normal(), m.Direction(), 1e-5)

	zero := math32.Vector3{}
	assert.ErrorIs(t, m.SetPositionAndDirection(math32.Vec3(0, 0, 0), &zero, false), ErrDegenerate)
}

func TestAdjustCameraByBbox(t *testing.T) {
	m := New(800, 600)
	box := math32.B3(-1000, -1000, -1000, 1000, 1000, 1000)
	m.AdjustCameraByBbox(box)
	diag := box.Size().Length()
	assert.InDelta(t, diag*adjustFactor, m.Far(), 1)
	assert.Equal(t, float32(0.1), m.Near())

	small := math32.B3(0, 0, 0, 0.1, 0.1, 0.1)
	m.AdjustCameraByBbox(small)
	assert.InDelta(t, small.Size().Length()/adjustFactor, m.Near(), 1e-6)
}

func TestClipPlanesFollowLens(t *testing.T) {
	m := New(800, 600)
	m.AdjustCameraByBbox(math32.B3(-1000, -1000, -1000, 1000, 1000, 1000))
	near, far := m.ClipPlanes()
	assert.Equal(t, float64(m.Near()), near)
	assert.Equal(t, float64(m.Far()), far)

	require.NoError(t, m.SetNearFar(2, 300))
	near, far = m.ClipPlanes()
	assert.Equal(t, 2.0, near)
	assert.Equal(t, 300.0, far)

	m.SetProjection(Orthographic)
	near, far = m.ClipPlanes()
	assert.Equal(t, float64(m.Near()), near)
	assert.Equal(t, float64(m.Far()), far)
}

func TestProjectUnproject(t *testing.T) {
	m := New(800, 600)
	require.NoError(t, m.SetInfo(Info{Eye: [3]float32{0, 1, 10}, Look: [3]float32{0, 1, 0}}))

	ndc, ok := m.Project(math32.Vec3(0, 1, 0))
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X, 1e-5)
	assert.InDelta(t, 0, ndc.Y, 1e-5)

	p := math32.Vec3(2, 3, -5)
	ndc, ok = m.Project(p)
	require.True(t, ok)
	ray := m.Unproject(ndc)
	// the ray passes through p
	tt := p.Sub(ray.Origin).Dot(ray.Dir)
	assertVec(t, p, ray.At(tt), 1e-3)

	_, ok = m.Project(math32.Vec3(0, 1, 20))
	assert.False(t, ok)
}

func TestHandleKey(t *testing.T) {
	m := New(800, 600)
	az := m.Controls.Azimuth()
	assert.True(t, m.HandleKey("ArrowLeft"))
	m.Controls.Snap()
	assert.InDelta(t, az+keyRotation, m.Controls.Azimuth(), 1e-5)

	m.EnableKeyControl(false)
	assert.False(t, m.HandleKey("ArrowLeft"))
	assert.False(t, m.HandleKey("KeyA"))
}

func TestFitToSphere(t *testing.T) {
	m := New(800, 600)
	require.NoError(t, m.FitToSphere(math32.Sphere{Center: math32.Vec3(1, 2, 3), Radius: 5}))
	settle(m)
	assertVec(t, math32.Vec3(1, 2, 3), m.Target(), 1e-2)
	assert.InDelta(t, m.DistanceToFitSphere(5), m.Controls.Distance(), 1e-2)
	assert.ErrorIs(t, m.FlyToBox(math32.B3Empty()), ErrDegenerate)
}
