package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFirewallCheck_Defaults(t *testing.T) {
	out, _, err := executeRoot(t, "", "firewall", "check", "192.168.1.100", "8.8.8.8", "10.0.0.23")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "192.168.1.100: blocked\n8.8.8.8: allowed\n10.0.0.23: blocked\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestFirewallCheck_ConfigAndDenyList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "deny.yaml"), []byte("blocked:\n  - 5.5.5.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(cfgPath, []byte("blocked: [1.2.3.4]\ndeny_list: deny.yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := executeRoot(t, "", "firewall", "--config", cfgPath, "check", "1.2.3.4", "5.5.5.5", "6.6.6.6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"1.2.3.4: blocked", "5.5.5.5: blocked", "6.6.6.6: allowed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q, got:\n%s", want, out)
		}
	}
}

func TestFirewallCheck_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no addresses", []string{"firewall", "check"}},
		{"malformed address", []string{"firewall", "check", "1.2.3"}},
		{"out of range", []string{"firewall", "check", "1.2.3.256"}},
		{"missing config", []string{"firewall", "-c", "/nonexistent/sim.yaml", "check", "1.1.1.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := executeRoot(t, "", tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFirewallList(t *testing.T) {
	out, _, err := executeRoot(t, "", "firewall", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "10.0.0.23\n192.168.1.100\n" {
		t.Errorf("stdout = %q", out)
	}
}
