package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVersionCmd(t *testing.T) {
	versionCmd := newVersionCmd()

	if versionCmd.Use != "version" {
		t.Errorf("Expected Use to be 'version', got %s", versionCmd.Use)
	}

	if versionCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if versionCmd.Run == nil {
		t.Error("Expected Run function to be set")
	}
}

func TestVersionCommandExecution(t *testing.T) {
	testVersion := "1.2.3-test"
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = testVersion

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, []string{})

	expected := "spotauth version " + testVersion + "\n"
	if buf.String() != expected {
		t.Errorf("Expected output %q, got %q", expected, buf.String())
	}
}

func TestVersionCommandWithEmptyVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = ""

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, []string{})

	if !strings.Contains(buf.String(), "spotauth version") {
		t.Error("Output should contain 'spotauth version' even with empty version")
	}
}
