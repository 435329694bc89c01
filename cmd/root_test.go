package cmd

import (
	"bytes"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")

	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	got := out.String()
	if want := "receptionist version 1.2.3\n"; got != want {
		t.Errorf("version output = %q, want %q", got, want)
	}
}

func TestServeCommand_Defaults(t *testing.T) {
	cmd := newServeCmd()

	if got, err := cmd.Flags().GetString("transport"); err != nil || got != "webhook" {
		t.Errorf("transport default = %q, %v; want %q", got, err, "webhook")
	}
	if got, err := cmd.Flags().GetString("webhook-addr"); err != nil || got != ":8080" {
		t.Errorf("webhook-addr default = %q, %v; want %q", got, err, ":8080")
	}
	if got, err := cmd.Flags().GetBool("metrics-enabled"); err != nil || !got {
		t.Errorf("metrics-enabled default = %v, %v; want true", got, err)
	}
}

func TestSlotsCommand_ArgLimit(t *testing.T) {
	cmd := newSlotsCmd()
	if err := cmd.Args(cmd, []string{"2025-11-05", "extra"}); err == nil {
		t.Error("expected error for more than one argument")
	}
	if err := cmd.Args(cmd, nil); err != nil {
		t.Errorf("no arguments should be accepted: %v", err)
	}
}
