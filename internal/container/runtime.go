// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs a headless browser image under docker or podman so
// exports work on hosts without a local Chromium.
package container

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// DevToolsPort is the port the headless-shell image listens on.
	DevToolsPort = 9222
)

// Mount binds a host directory into the container.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// StartOptions configures a detached browser container.
type StartOptions struct {
	// HostPort is published on 127.0.0.1 and forwarded to DevToolsPort.
	HostPort int
	Mounts   []Mount
	// Args are appended after the image name.
	Args []string
}

// Runtime provides container operations: checking availability, verifying
// images, and starting and stopping containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(image string) error

	// Pull fetches image from its registry.
	Pull(ctx context.Context, image string) error

	// Start runs image detached and returns the container ID.
	Start(ctx context.Context, image string, opts StartOptions) (string, error)

	// Stop stops the container. Containers are started with --rm, so
	// stopping also removes them.
	Stop(ctx context.Context, id string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunOutput(ctx context.Context, name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunOutput(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// runtime implements Runtime for a specific container binary. Both Docker
// and Podman share the same logic; they differ only in binary name and the
// subcommand used to check image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Pull(ctx context.Context, image string) error {
	if _, err := r.exec.RunOutput(ctx, r.bin, "pull", image); err != nil {
		return fmt.Errorf("pulling %s with %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Start(ctx context.Context, image string, opts StartOptions) (string, error) {
	if opts.HostPort <= 0 {
		opts.HostPort = DevToolsPort
	}
	args := []string{
		"run", "-d", "--rm",
		"-p", fmt.Sprintf("127.0.0.1:%d:%d", opts.HostPort, DevToolsPort),
	}
	for _, m := range opts.Mounts {
		target := m.Target
		if target == "" {
			target = m.Source
		}
		bind := m.Source + ":" + target
		if m.ReadOnly {
			bind += ":ro"
		}
		args = append(args, "-v", bind)
	}
	args = append(args, image)
	args = append(args, opts.Args...)

	out, err := r.exec.RunOutput(ctx, r.bin, args...)
	if err != nil {
		return "", fmt.Errorf("starting %s container %s: %w", r.bin, image, err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return "", fmt.Errorf("starting %s container %s: no container id returned", r.bin, image)
	}
	return id, nil
}

func (r *runtime) Stop(ctx context.Context, id string) error {
	if _, err := r.exec.RunOutput(ctx, r.bin, "stop", id); err != nil {
		return fmt.Errorf("stopping %s container %s: %w", r.bin, id, err)
	}
	return nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
