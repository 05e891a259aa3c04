package gyro

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestParseLine(t *testing.T) {
	q, err := ParseLine(" 0, 0, 0, 2 \r\n")
	require.NoError(t, err)
	assert.Equal(t, math32.Quat{W: 1}, q)

	for _, line := range []string{"", "1,2,3", "a,0,0,1", "0,0,0,0", "1,2,3,4,5"} {
		_, err := ParseLine(line)
		assert.Error(t, err, line)
	}
}

func TestDirection(t *testing.T) {
	d := Direction(math32.Quat{W: 1})
	assert.InDelta(t, -1, d.Z, 1e-6)

	// quarter turn about Y looks along -X
	half := float32(math32.Pi / 4)
	d = Direction(math32.Quat{Y: math32.Sin(half), W: math32.Cos(half)})
	assert.InDelta(t, -1, d.X, 1e-5)
	assert.InDelta(t, 0, d.Z, 1e-5)
}

func TestReadKeepsLatest(t *testing.T) {
	s := NewSource("test", 115200)
	_, seq := s.Latest()
	assert.Zero(t, seq)

	err := s.Read(strings.NewReader("0,0,0,1\ngarbage\n\n0,1,0,0\n"))
	require.NoError(t, err)
	q, seq := s.Latest()
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, math32.Quat{Y: 1}, q)
}

func TestRunStopsWithContext(t *testing.T) {
	s := NewSource("test", 9600)
	r, w := io.Pipe()
	var opens atomic.Int32
	s.open = func(name string, mode *serial.Mode) (io.ReadCloser, error) {
		opens.Add(1)
		assert.Equal(t, "test", name)
		assert.Equal(t, 9600, mode.BaudRate)
		return r, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	_, err := w.Write([]byte("0,0,0,1\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, seq := s.Latest()
		return seq == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, int32(1), opens.Load())
}

func TestRunRetriesUntilCanceled(t *testing.T) {
	s := NewSource("missing", 9600)
	s.open = func(string, *serial.Mode) (io.ReadCloser, error) {
		return nil, errors.New("no such port")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Run(ctx))
}

type blankSource struct{}

func (blankSource) Get(context.Context, string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestPluginTurnsCamera(t *testing.T) {
	v := viewer.New(viewer.Options{Width: 800, Height: 600, Source: blankSource{}})
	s := NewSource("test", 9600)
	require.NoError(t, v.AddPlugin(s))

	assert.False(t, s.Apply(v))

	// quarter turn about Y
	require.NoError(t, s.Read(strings.NewReader("0,0.7071068,0,0.7071068\n")))
	v.Tick(0.02, nil)
	v.Camera.Controls.Snap()
	dir := v.Camera.Direction()
	assert.InDelta(t, -1, dir.X, 1e-3)

	// the same reading is applied once
	assert.False(t, s.Apply(v))

	v.RemovePlugin(s)
	assert.False(t, v.OnAnimate.HasSubscribers())
}
