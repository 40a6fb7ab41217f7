// Package browser opens URLs in the user's default web browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// command is replaced in tests.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens url in the default web browser without waiting for it.
// It supports Linux, macOS and Windows.
func Open(url string) error {
	name, args, err := opener(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := command(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func opener(goos, url string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, nil
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		// the empty title keeps start from treating a quoted URL as one
		return "cmd", []string{"/c", "start", "", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
