package cmd

import (
	"bytes"
	"runtime/debug"
	"testing"
)

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.modified", Value: "false"},
			{Key: "GOOS", Value: "linux"},
		},
	})

	want := "worxstance version: unknown\ngo: go1.24.0\ncommit: abc123\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestPrintVersionWithoutBuildInfo(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, nil)

	if buf.String() != "worxstance version: unknown\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
