package network

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Link kinds accepted by NewLink.
const (
	LinkNMCLI  = "nmcli"
	LinkStatic = "static"
)

// ErrUnknownLink indicates an unsupported link kind in the settings.
var ErrUnknownLink = errors.New("unknown link kind")

// NewLink builds the Link named by kind.
//
//nolint:ireturn // Callers pick the link at runtime from settings.
func NewLink(kind string) (Link, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case LinkNMCLI, "":
		return NewNMCLILink(), nil
	case LinkStatic:
		return StaticLink{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLink, kind)
	}
}

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner runs commands through os/exec.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// NMCLILink drives NetworkManager through its command line client.
type NMCLILink struct {
	// run executes nmcli; replaced in tests.
	run CommandRunner
}

// NewNMCLILink creates a link that shells out to nmcli.
func NewNMCLILink() *NMCLILink {
	return &NMCLILink{run: execRunner}
}

// Join asks NetworkManager to connect to ssid.
func (l *NMCLILink) Join(ctx context.Context, ssid, secret string) error {
	args := []string{"device", "wifi", "connect", ssid}
	if secret != "" {
		args = append(args, "password", secret)
	}

	out, err := l.run(ctx, "nmcli", args...)
	if err != nil {
		return fmt.Errorf("nmcli connect: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return nil
}

// Connected reports whether NetworkManager sees full connectivity.
func (l *NMCLILink) Connected(ctx context.Context) (bool, error) {
	out, err := l.run(ctx, "nmcli", "-t", "-f", "STATE", "general")
	if err != nil {
		return false, fmt.Errorf("nmcli general: %w", err)
	}

	return strings.TrimSpace(string(out)) == "connected", nil
}

// StaticLink is for hosts whose network is managed elsewhere; it is always up.
type StaticLink struct{}

// Join does nothing.
func (StaticLink) Join(context.Context, string, string) error { return nil }

// Connected always reports true.
func (StaticLink) Connected(context.Context) (bool, error) { return true, nil }
