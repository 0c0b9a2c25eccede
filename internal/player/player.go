// Package player launches trailer playback. Every invocation uses
// exec.Command with an explicit argument slice; nothing passes through a
// shell.
package player

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// lookPath and command are swapped out in tests
var (
	lookPath = exec.LookPath
	command  = exec.CommandContext
)

// Player opens a video URL
type Player interface {
	// Name returns the player name
	Name() string

	// Available checks if the player binary exists in PATH
	Available() bool

	// Command builds the process that plays url
	Command(ctx context.Context, url, title string) *exec.Cmd

	// Detached reports whether the process returns immediately, leaving
	// playback to another application
	Detached() bool
}

// New creates a player by name. Unknown names fall back to the browser.
func New(name string) Player {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &Generic{name: "vlc"}
	case "iina", "celluloid":
		return &Generic{name: strings.ToLower(name)}
	default:
		return &Browser{goos: runtime.GOOS}
	}
}

// Play runs p for url. A detached player is started and left running;
// anything else is waited for.
func Play(ctx context.Context, p Player, url, title string) error {
	if url == "" {
		return fmt.Errorf("no video to play")
	}
	if !p.Available() {
		return fmt.Errorf("%s not found in PATH", p.Name())
	}

	cmd := p.Command(ctx, url, title)
	if p.Detached() {
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", p.Name(), err)
		}
		go cmd.Wait()
		return nil
	}

	if err := cmd.Run(); err != nil {
		// players exit non-zero when the user quits early
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("running %s: %w", p.Name(), err)
	}
	return nil
}

// MPV plays the URL through mpv (which resolves YouTube links via yt-dlp)
type MPV struct{}

func (m *MPV) Name() string   { return "mpv" }
func (m *MPV) Detached() bool { return false }

func (m *MPV) Available() bool {
	_, err := lookPath("mpv")
	return err == nil
}

func (m *MPV) Command(ctx context.Context, url, title string) *exec.Cmd {
	args := []string{url, "--really-quiet"}
	if title != "" {
		args = append(args, "--force-media-title="+title)
	}
	return command(ctx, "mpv", args...)
}

// Generic covers players that take the URL as their only argument
type Generic struct {
	name string
}

func (g *Generic) Name() string   { return g.name }
func (g *Generic) Detached() bool { return false }

func (g *Generic) Available() bool {
	_, err := lookPath(g.name)
	return err == nil
}

func (g *Generic) Command(ctx context.Context, url, _ string) *exec.Cmd {
	return command(ctx, g.name, url)
}

// Browser hands the URL to the desktop's default handler
type Browser struct {
	goos string
}

func (b *Browser) Name() string   { return "browser" }
func (b *Browser) Detached() bool { return true }

func (b *Browser) opener() (string, []string) {
	switch b.goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

func (b *Browser) Available() bool {
	name, _ := b.opener()
	_, err := lookPath(name)
	return err == nil
}

func (b *Browser) Command(ctx context.Context, url, _ string) *exec.Cmd {
	name, args := b.opener()
	return command(ctx, name, append(args, url)...)
}
