package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRunWatchCompilesOnceBeforeWaitingForEvents exercises the initial
// build that runWatch performs before it starts watching for further
// changes, without depending on real filesystem event timing.
func TestRunWatchCompilesOnceBeforeWaitingForEvents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.loom")
	if err := os.WriteFile(src, []byte(`component Hello() { return <div>Hi</div> }`), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	dest := filepath.Join(dir, "out")
	outDir = dest
	watchDebounce = 10 * time.Millisecond
	defer func() { outDir = ""; watchDebounce = 100 * time.Millisecond }()

	done := make(chan error, 1)
	go func() { done <- runWatch(nil, []string{src}) }()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := os.Stat(filepath.Join(dest, "client.js")); err == nil {
			return
		}
		select {
		case err := <-done:
			t.Fatalf("runWatch exited early: %v", err)
		case <-deadline:
			t.Fatalf("timed out waiting for initial build")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
