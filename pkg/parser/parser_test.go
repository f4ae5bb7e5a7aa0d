package parser

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReaderSource_Next(t *testing.T) {
	content := "Domain decomposition ... took 0.5 seconds.\nRung distribution 0 1 2\nDone.\n"
	source := NewReaderSource("run.log", strings.NewReader(content))
	defer source.Close()

	ctx := context.Background()
	var lines []*LogLine

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		lines = append(lines, line)
	}

	if len(lines) != 3 {
		t.Fatalf("Got %d lines, want 3", len(lines))
	}

	for i, line := range lines {
		if line.Position != i {
			t.Errorf("lines[%d].Position = %d, want %d", i, line.Position, i)
		}
		if line.Source != "run.log" {
			t.Errorf("lines[%d].Source = %q, want %q", i, line.Source, "run.log")
		}
	}
	if lines[2].Content != "Done." {
		t.Errorf("Content = %q, want %q", lines[2].Content, "Done.")
	}
}

func TestReaderSource_KeepsBlankLines(t *testing.T) {
	source := NewReaderSource("blank", strings.NewReader("a\n\nb"))

	lines, err := ReadAll(context.Background(), source)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("Got %d lines, want 3", len(lines))
	}
	if lines[1].Content != "" || lines[1].Position != 1 {
		t.Errorf("lines[1] = %+v, want empty line at position 1", lines[1])
	}
	if lines[2].Content != "b" {
		t.Errorf("lines[2].Content = %q, want %q (unterminated final line)", lines[2].Content, "b")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")
	if err := os.WriteFile(logFile, []byte("one\ntwo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadFile(context.Background(), logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("Got %d lines, want 2", len(lines))
	}
	if lines[0].Source != logFile {
		t.Errorf("Source = %q, want %q", lines[0].Source, logFile)
	}
}

func TestReadFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "empty.log")
	if err := os.WriteFile(logFile, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadFile(context.Background(), logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Got %d lines, want 0", len(lines))
	}
}

func TestReadFile_FileNotFound(t *testing.T) {
	_, err := ReadFile(context.Background(), "/nonexistent/file.log")
	if err == nil {
		t.Fatal("ReadFile() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "opening log file") {
		t.Errorf("error = %v, want opening log file context", err)
	}
}

func TestReaderSource_ContextCancellation(t *testing.T) {
	source := NewReaderSource("test", strings.NewReader("line\n"))
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := source.Next(ctx)
	if err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestOpenFile_Close(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")
	if err := os.WriteFile(logFile, []byte("line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	source, err := OpenFile(logFile)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if source.Name() != logFile {
		t.Errorf("Name() = %q, want %q", source.Name(), logFile)
	}

	if err := source.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Second close is a no-op
	if err := source.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
