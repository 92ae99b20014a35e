package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/treerate/domain"
)

// FileOutputWriter writes reports to a file, or to a writer when no path is given
type FileOutputWriter struct {
	status io.Writer // where to print status messages (typically stderr)
}

// NewFileOutputWriter creates a new FileOutputWriter
func NewFileOutputWriter(status io.Writer) *FileOutputWriter {
	if status == nil {
		status = os.Stderr
	}
	return &FileOutputWriter{status: status}
}

// Write implements domain.ReportWriter. File output goes through a temporary file
// in the target directory so a failed report never replaces an existing one.
func (w *FileOutputWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	if outputPath == "" {
		if writer == nil {
			writer = os.Stdout
		}
		if err := writeFunc(writer); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewOutputError(fmt.Sprintf("cannot create output directory: %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", outputPath), err)
	}
	defer os.Remove(tmp.Name())

	if err := writeFunc(tmp); err != nil {
		tmp.Close()
		return domain.NewOutputError("failed to write output", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", outputPath), err)
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		absPath = outputPath
	}
	fmt.Fprintf(w.status, "%s report generated: %s\n", strings.ToUpper(string(format)), absPath)
	return nil
}

// ReportPath returns the path inside directory for a report named name in the
// given format, or "" when no directory is configured
func ReportPath(directory, name string, format domain.OutputFormat) string {
	if directory == "" {
		return ""
	}
	ext := string(format)
	if format == domain.OutputFormatText {
		ext = "txt"
	}
	return filepath.Join(directory, name+"."+ext)
}
