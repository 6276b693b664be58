// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/render"
)

// SessionOptions configures StartSession.
type SessionOptions struct {
	Image    string
	HostPort int
	Mounts   []Mount

	// ReadyAttempts and ReadyInterval bound the wait for the DevTools
	// endpoint (default 60 x 500ms).
	ReadyAttempts int
	ReadyInterval time.Duration

	Logger *zap.Logger
}

// Session is a running headless browser container.
type Session struct {
	rt     Runtime
	logger *zap.Logger

	ID string
	// URL is the DevTools endpoint reachable from the host.
	URL string
}

// endpointProbe is replaced in tests.
var endpointProbe = func(url string) render.Probe {
	return render.EndpointProbe(nil, url+"/json/version")
}

// StartSession pulls the image when it is missing, starts it, and waits
// until the browser answers on its DevTools port.
func StartSession(ctx context.Context, rt Runtime, opts SessionOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HostPort <= 0 {
		opts.HostPort = DevToolsPort
	}
	if opts.ReadyAttempts <= 0 {
		opts.ReadyAttempts = 60
	}
	if opts.ReadyInterval <= 0 {
		opts.ReadyInterval = 500 * time.Millisecond
	}

	if err := rt.ImageExists(opts.Image); err != nil {
		logger.Info("pulling browser image", zap.String("image", opts.Image), zap.String("runtime", rt.Name()))
		if err := rt.Pull(ctx, opts.Image); err != nil {
			return nil, err
		}
	}

	id, err := rt.Start(ctx, opts.Image, StartOptions{HostPort: opts.HostPort, Mounts: opts.Mounts})
	if err != nil {
		return nil, err
	}
	s := &Session{
		rt:     rt,
		logger: logger,
		ID:     id,
		URL:    fmt.Sprintf("http://127.0.0.1:%d", opts.HostPort),
	}
	logger.Info("browser container started",
		zap.String("runtime", rt.Name()),
		zap.String("id", shortID(id)),
		zap.String("url", s.URL))

	ready, err := render.PollUntil(ctx, opts.ReadyAttempts, opts.ReadyInterval, endpointProbe(s.URL))
	if err == nil && !ready {
		err = fmt.Errorf("browser container %s did not answer on %s", shortID(id), s.URL)
	}
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close stops the container. It uses a fresh context so cleanup still runs
// after the export context is cancelled.
func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.rt.Stop(ctx, s.ID); err != nil {
		s.logger.Warn("stopping browser container", zap.Error(err))
		return err
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
