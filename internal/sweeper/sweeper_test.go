package sweeper_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voxpitch/internal/logging"
	"voxpitch/internal/sweeper"
	"voxpitch/internal/testsupport"
)

func TestSweepRemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh.mp3")
	old := filepath.Join(dir, "old.mp3")
	testsupport.WriteFile(t, fresh, []byte("new"))
	testsupport.WriteFile(t, old, []byte("stale"))

	// TTL is one hour: 59 minutes survives, 61 minutes does not.
	testsupport.Backdate(t, fresh, 59*time.Minute)
	testsupport.Backdate(t, old, 61*time.Minute)

	s := sweeper.New([]string{dir}, time.Hour, time.Minute, logging.NewNop())
	s.Sweep()

	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh artifact should survive: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expired artifact should be removed, got %v", err)
	}
}

func TestSweepCollectsScratchFiles(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, ".tmp-5f9b6c2a-1111-2222-3333-444444444444.mp3")
	testsupport.WriteFile(t, scratch, []byte("abandoned"))
	testsupport.Backdate(t, scratch, 2*time.Hour)

	s := sweeper.New([]string{dir}, time.Hour, time.Minute, logging.NewNop())
	s.Sweep()

	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatal("orphaned scratch file should be collected")
	}
}

func TestSweepSkipsBadDirectoryAndContinues(t *testing.T) {
	good := t.TempDir()
	victim := filepath.Join(good, "old.mp3")
	testsupport.WriteFile(t, victim, []byte("stale"))
	testsupport.Backdate(t, victim, 2*time.Hour)

	s := sweeper.New([]string{filepath.Join(good, "missing-subdir"), good}, time.Hour, time.Minute, logging.NewNop())
	s.Sweep()

	if _, err := os.Stat(victim); !os.IsNotExist(err) {
		t.Fatal("a bad directory earlier in the batch must not abort the sweep")
	}
}

func TestSweepIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.Backdate(t, sub, 2*time.Hour)

	s := sweeper.New([]string{dir}, time.Hour, time.Minute, logging.NewNop())
	s.Sweep()

	if _, err := os.Stat(sub); err != nil {
		t.Fatalf("directories must be left alone: %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := sweeper.New([]string{t.TempDir()}, time.Hour, 10*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestSweepWithClock(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "clip.mp3")
	testsupport.WriteFile(t, target, []byte("bytes"))

	// A clock two hours ahead makes a freshly written file expired.
	future := func() time.Time { return time.Now().Add(2 * time.Hour) }
	s := sweeper.New([]string{dir}, time.Hour, time.Minute, logging.NewNop(), sweeper.WithClock(future))
	s.Sweep()

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("file should be expired under the advanced clock")
	}
}
