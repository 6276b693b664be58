// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deck-pdf/internal/render"
)

func stubProbe(t *testing.T, readyAfter int) *int {
	t.Helper()
	calls := 0
	orig := endpointProbe
	endpointProbe = func(string) render.Probe {
		return func(context.Context) (bool, error) {
			calls++
			return readyAfter > 0 && calls >= readyAfter, nil
		}
	}
	t.Cleanup(func() { endpointProbe = orig })
	return &calls
}

func TestStartSession(t *testing.T) {
	calls := stubProbe(t, 2)
	exec := &mockExecutor{
		runnableCmds: map[string]bool{"docker image inspect shell:1": true},
		outputFunc: func(_ string, args []string) (string, error) {
			if args[0] == "run" {
				return "0123456789abcdef\n", nil
			}
			return "", nil
		},
	}

	s, err := StartSession(context.Background(), newDockerRuntime(exec), SessionOptions{
		Image:         "shell:1",
		HostPort:      9400,
		Mounts:        []Mount{{Source: "/deck", ReadOnly: true}},
		ReadyInterval: time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", s.ID)
	assert.Equal(t, "http://127.0.0.1:9400", s.URL)
	assert.Equal(t, 2, *calls)

	require.NoError(t, s.Close())
	require.Len(t, exec.calls, 2, "no pull when the image exists")
	assert.Equal(t, []string{"docker", "stop", "0123456789abcdef"}, exec.calls[1])
}

func TestStartSession_PullsMissingImage(t *testing.T) {
	stubProbe(t, 1)
	exec := &mockExecutor{outputFunc: func(string, []string) (string, error) { return "id", nil }}

	_, err := StartSession(context.Background(), newPodmanRuntime(exec), SessionOptions{Image: "shell:1"})
	require.NoError(t, err)
	require.NotEmpty(t, exec.calls)
	assert.Equal(t, []string{"podman", "pull", "shell:1"}, exec.calls[0])
}

func TestStartSession_NeverReadyStopsContainer(t *testing.T) {
	stubProbe(t, 0)
	exec := &mockExecutor{
		runnableCmds: map[string]bool{"docker image inspect shell:1": true},
		outputFunc:   func(string, []string) (string, error) { return "id", nil },
	}

	_, err := StartSession(context.Background(), newDockerRuntime(exec), SessionOptions{
		Image:         "shell:1",
		ReadyAttempts: 3,
		ReadyInterval: time.Millisecond,
	})
	require.ErrorContains(t, err, "did not answer")
	assert.Equal(t, []string{"docker", "stop", "id"}, exec.calls[len(exec.calls)-1])
}

func TestStartSession_PullFailure(t *testing.T) {
	stubProbe(t, 1)
	exec := &mockExecutor{outputFunc: func(string, []string) (string, error) {
		return "", errors.New("registry unreachable")
	}}

	_, err := StartSession(context.Background(), newDockerRuntime(exec), SessionOptions{Image: "shell:1"})
	require.ErrorContains(t, err, "pulling shell:1")
	assert.Len(t, exec.calls, 1, "nothing is started after a failed pull")
}
