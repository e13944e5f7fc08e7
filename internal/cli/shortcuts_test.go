package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// TestLsShortcut tests the ls shortcut command
func TestLsShortcut(t *testing.T) {
	cmd := newLsShortcut()
	if cmd == nil {
		t.Fatal("newLsShortcut() returned nil")
	}

	if cmd.Use != "ls [resource]" {
		t.Errorf("Expected Use='ls [resource]', got '%s'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description is empty")
	}

	if cmd.RunE == nil {
		t.Error("RunE function is nil")
	}

	// Check for the shared list flags
	for _, name := range []string{"search", "filter", "sort", "desc", "page", "page-size", "columns", "all"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
}

// TestRmShortcut tests the rm shortcut command
func TestRmShortcut(t *testing.T) {
	cmd := newRmShortcut()
	if cmd == nil {
		t.Fatal("newRmShortcut() returned nil")
	}

	if cmd.Use != "rm <resource> <id> [id...]" {
		t.Errorf("Expected Use='rm <resource> <id> [id...]', got '%s'", cmd.Use)
	}

	yesFlag := cmd.Flags().Lookup("yes")
	if yesFlag == nil {
		t.Error("--yes flag not found")
	}
}

// TestShortcutCommands tests that all shortcut commands exist
func TestShortcutCommands(t *testing.T) {
	shortcuts := []struct {
		name     string
		createFn func() *cobra.Command
	}{
		{"ls", newLsShortcut},
		{"rm", newRmShortcut},
	}

	for _, sc := range shortcuts {
		t.Run(sc.name, func(t *testing.T) {
			cmd := sc.createFn()
			if cmd == nil {
				t.Fatalf("Shortcut command '%s' creation returned nil", sc.name)
			}

			if cmd.RunE == nil {
				t.Errorf("Shortcut command '%s' has no RunE function", sc.name)
			}

			if cmd.Short == "" {
				t.Errorf("Shortcut command '%s' has empty Short description", sc.name)
			}

			if cmd.Long == "" {
				t.Errorf("Shortcut command '%s' has empty Long description", sc.name)
			}
		})
	}
}

// TestAddShortcuts tests that AddShortcuts adds commands to root
func TestAddShortcuts(t *testing.T) {
	rootCmd := NewRootCmd()
	AddShortcuts(rootCmd)

	expectedShortcuts := []string{"ls", "rm"}
	foundShortcuts := make(map[string]bool)

	for _, cmd := range rootCmd.Commands() {
		foundShortcuts[cmd.Name()] = true
	}

	for _, expected := range expectedShortcuts {
		if !foundShortcuts[expected] {
			t.Errorf("Shortcut command '%s' not found in root command", expected)
		}
	}
}

// TestRunnersCoverEveryResource tests that shortcuts reach every resource
func TestRunnersCoverEveryResource(t *testing.T) {
	all := runners()
	for _, name := range resourceNames() {
		r, ok := all[name]
		if !ok {
			t.Errorf("No runner for resource '%s'", name)
			continue
		}
		if r.list == nil {
			t.Errorf("Resource '%s' has no list runner", name)
		}
	}
	if all["transactions"].delete != nil {
		t.Error("transactions must not be deletable")
	}

	if _, name, err := lookupRunner("bumps"); err != nil || name != "order-bumps" {
		t.Errorf("lookupRunner(bumps) = %s, %v", name, err)
	}
	if _, _, err := lookupRunner("widgets"); err == nil {
		t.Error("Expected an error for an unknown resource")
	}
}

// TestLsAndRmAgainstBackend runs both shortcuts end to end
func TestLsAndRmAgainstBackend(t *testing.T) {
	b, cfg := setup(t)

	res := runCLI(t, "", "--config", cfg, "ls", "--sort", "title")
	if res.err != nil {
		t.Fatalf("ls failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Advanced Go") || !strings.Contains(res.stdout, "Design 101") {
		t.Errorf("Expected every course in ls output:\n%s", res.stdout)
	}

	res = runCLI(t, "", "--config", cfg, "rm", "courses", "c3", "--yes")
	if res.err != nil {
		t.Fatalf("rm failed: %v\n%s", res.err, res.stderr)
	}
	if b.count("DELETE /admin/assets/delete-course/c3") != 1 {
		t.Errorf("Expected one DELETE for c3, got requests %v", b.Requests())
	}

	res = runCLI(t, "", "--config", cfg, "rm", "transactions", "x1", "--yes")
	if res.err == nil || !strings.Contains(res.err.Error(), "cannot be deleted") {
		t.Errorf("Expected transactions rm to be refused, got %v", res.err)
	}
}
