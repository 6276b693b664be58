//go:build mage

// Package main contains Mage build targets for deck-pdf developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories an export expects.
var projectDirs = []string{
	"slides",
	".deck-pdf",
	".secrets",
}

// Init creates the project directory structure for a deck.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "deck-pdf"
	cmdPkg  = "./cmd/deck-pdf"
)

func binPath() string { return filepath.Join(binDir, binName) }

// Build compiles the CLI binary into bin/. VERSION sets the reported version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	out := binPath()
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. Browser tests are skipped with -short.
func Test() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// TestAll runs every test, including those that launch Chromium.
func TestAll() error {
	return sh.RunV("go", "test", "./...")
}

// Split cuts a combined deck export into slide fragments.
func Split(file string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "split", file)
}

// Unwatermark strips corner watermarks from the slide fragments.
func Unwatermark() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "unwatermark")
}

// Export renders the slides into the deck PDF.
func Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "export")
}

// Prepare turns a combined deck export into the deck PDF.
func Prepare(file string) error {
	mg.SerialDeps(mg.F(Split, file), Unwatermark, Export)
	return nil
}
