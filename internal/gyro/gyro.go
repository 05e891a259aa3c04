// Package gyro reads orientation quaternions from an IMU on a serial port
// and turns the camera accordingly.
package gyro

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"cogentcore.org/core/math32"
	"go.bug.st/serial"
)

const retryDelay = 5 * time.Second

// ParseLine parses an "i,j,k,real" line into a unit quaternion
func ParseLine(line string) (math32.Quat, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 4 {
		return math32.Quat{}, fmt.Errorf("expected 4 values, got %d", len(parts))
	}
	var v [4]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math32.Quat{}, fmt.Errorf("invalid %s value: %w", [4]string{"i", "j", "k", "real"}[i], err)
		}
		v[i] = float32(f)
	}
	q := math32.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return math32.Quat{}, fmt.Errorf("zero quaternion")
	}
	return math32.Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}, nil
}

// Direction returns the view direction for an orientation: -Z rotated by q
func Direction(q math32.Quat) math32.Vector3 {
	return math32.Vec3(0, 0, -1).MulQuat(q)
}

// Ports lists the serial ports of the system
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// Source keeps the latest orientation read from a serial port
type Source struct {
	port string
	mode *serial.Mode
	open func(name string, mode *serial.Mode) (io.ReadCloser, error)

	mu     sync.Mutex
	latest math32.Quat
	seq    uint64

	plugin pluginState
}

// NewSource creates a source for a serial port
func NewSource(port string, baud int) *Source {
	return &Source{
		port: port,
		mode: &serial.Mode{BaudRate: baud},
		open: func(name string, mode *serial.Mode) (io.ReadCloser, error) {
			p, err := serial.Open(name, mode)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		latest: math32.Quat{W: 1},
	}
}

// Latest returns the newest orientation and a counter that increases with
// every reading
func (s *Source) Latest() (math32.Quat, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.seq
}

// Run reads the port until ctx is done, reopening it when it fails
func (s *Source) Run(ctx context.Context) error {
	for {
		port, err := s.open(s.port, s.mode)
		if err != nil {
			slog.Warn("failed to open serial port", "component", "gyro", "port", s.port, "err", err, "retry", retryDelay)
		} else {
			slog.Info("serial port opened", "component", "gyro", "port", s.port, "baud", s.mode.BaudRate)
			stop := context.AfterFunc(ctx, func() { port.Close() })
			err = s.Read(port)
			stop()
			port.Close()
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("serial port closed, reconnecting", "component", "gyro", "port", s.port, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryDelay):
		}
	}
}

// Read consumes quaternion lines from r until it ends. Malformed lines are
// logged and skipped.
func (s *Source) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, err := ParseLine(line)
		if err != nil {
			slog.Debug("invalid quaternion", "component", "gyro", "line", line, "err", err)
			continue
		}
		s.mu.Lock()
		s.latest = q
		s.seq++
		s.mu.Unlock()
	}
	return scanner.Err()
}
