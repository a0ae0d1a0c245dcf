package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNew(t *testing.T) {
	w := New()
	if w.debounce != 100*time.Millisecond {
		t.Errorf("default debounce = %v, want 100ms", w.debounce)
	}
	if w.IsRunning() {
		t.Error("new watcher should not be running")
	}

	w = New(WithDebounce(0))
	if w.debounce != 0 {
		t.Errorf("debounce = %v, want 0", w.debounce)
	}
	w = New(WithDebounce(-time.Second))
	if w.debounce != 100*time.Millisecond {
		t.Errorf("negative debounce should be ignored, got %v", w.debounce)
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Operation
		ok   bool
	}{
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Create | fsnotify.Write, OpCreate, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRename, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		got, ok := convertOp(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("convertOp(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	w := New()

	if err := w.Watch(filepath.Join(dir, "ropecore.toml")); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Watch(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("Watch of a missing file: %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles = %d, want 2", got)
	}

	if err := w.Unwatch(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("Unwatch: %v", err)
	}
	files := w.WatchedFiles()
	if len(files) != 1 || filepath.Base(files[0]) != "ropecore.toml" {
		t.Errorf("WatchedFiles = %v", files)
	}
}

func TestQueueCoalesces(t *testing.T) {
	w := New(WithDebounce(50 * time.Millisecond))
	var got []Event
	w.OnChange(func(e Event) { got = append(got, e) })

	base := time.Now()
	w.queue(Event{Path: "/a", Op: OpCreate, Time: base})
	w.queue(Event{Path: "/a", Op: OpWrite, Time: base.Add(10 * time.Millisecond)})
	w.queue(Event{Path: "/b", Op: OpWrite, Time: base})
	w.queue(Event{Path: "/b", Op: OpRemove, Time: base.Add(20 * time.Millisecond)})

	w.flush(base.Add(30 * time.Millisecond))
	if len(got) != 0 {
		t.Fatalf("events flushed before the window closed: %v", got)
	}

	w.flush(base.Add(100 * time.Millisecond))
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	ops := map[string]Operation{}
	for _, e := range got {
		ops[e.Path] = e.Op
	}
	if ops["/a"] != OpCreate {
		t.Errorf("/a op = %v, want create", ops["/a"])
	}
	if ops["/b"] != OpRemove {
		t.Errorf("/b op = %v, want remove", ops["/b"])
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	w := New()
	called := false
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(Event) { called = true })

	w.emit(Event{Path: "/x", Op: OpWrite})
	if !called {
		t.Error("handler after a panicking one was not called")
	}
}

func TestRunDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ropecore.toml")
	if err := os.WriteFile(path, []byte("[log]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := New(WithDebounce(20 * time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(filepath.Join(dir, "other.toml")); err != nil {
		t.Fatal(err)
	}

	events := make(chan Event, 16)
	w.OnChange(func(e Event) { events <- e })

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = w.Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run = %v, want ErrRunning", err)
	}

	// Give the fsnotify watch a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "unwatched.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if filepath.Base(e.Path) != "ropecore.toml" {
			t.Errorf("event for %s, want ropecore.toml", e.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	wg.Wait()
	if runErr != nil {
		t.Errorf("Run = %v", runErr)
	}
	if w.IsRunning() {
		t.Error("watcher still running after cancel")
	}
}
