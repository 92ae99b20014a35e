package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildTreerateBinary builds the CLI into a temporary directory
func buildTreerateBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "treerate")

	// Build from the project root, one level up from the e2e directory
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/treerate")
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build treerate binary: %v\n%s", err, output)
	}

	return binaryPath
}

// createTestDocument writes a document, creating parent directories as needed
func createTestDocument(t *testing.T, dir, filename, content string) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", filename, err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}
	return filePath
}

// createTestConfigFile creates a .treerate.toml in testDir that sends reports
// to outputDir in the given format
func createTestConfigFile(t *testing.T, testDir, outputDir, format string) {
	t.Helper()
	configFile := filepath.Join(testDir, ".treerate.toml")
	configContent := fmt.Sprintf("[output]\nformat = %q\ndirectory = %q\n", format, outputDir)
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}

// runTreerate runs the binary and returns stdout, stderr and the run error
func runTreerate(binaryPath string, args ...string) (string, string, error) {
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
