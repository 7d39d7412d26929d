package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestWriter(t *testing.T, limit int64, backups int, compress bool) (*RotatingWriter, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: backups, Compress: compress})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.limit = limit
	return rw, path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deeper", "test.log")

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if !exists(path) {
			t.Errorf("log file was not created at %s", path)
		}
		if rw.path != path {
			t.Errorf("path = %q, want %q", rw.path, path)
		}
	})

	t.Run("picks up existing file size", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		if err := os.WriteFile(path, []byte("hello\n"), 0644); err != nil {
			t.Fatal(err)
		}

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if rw.size != 6 {
			t.Errorf("size = %d, want 6", rw.size)
		}
	})
}

func TestRotatingWriterRotation(t *testing.T) {
	line := []byte("this is a test message that will trigger rotation\n")

	t.Run("rotates when size exceeds limit", func(t *testing.T) {
		rw, path := newTestWriter(t, 100, 3, false)
		for range 5 {
			if _, err := rw.Write(line); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}
		_ = rw.Close()

		if !exists(path + ".1") {
			t.Error("backup file .1 was not created")
		}
		if !exists(path) {
			t.Error("current log file missing after rotation")
		}
	})

	t.Run("keeps only MaxBackups files", func(t *testing.T) {
		rw, path := newTestWriter(t, 50, 2, false)
		for range 10 {
			_, _ = rw.Write(line)
		}
		_ = rw.Close()

		if !exists(path+".1") || !exists(path+".2") {
			t.Error("backups .1 and .2 should exist")
		}
		if exists(path + ".3") {
			t.Error("backup .3 should not exist")
		}
	})

	t.Run("disabled when limit is 0", func(t *testing.T) {
		rw, path := newTestWriter(t, 0, 3, false)
		for range 100 {
			_, _ = rw.Write(line)
		}
		_ = rw.Close()

		if exists(path + ".1") {
			t.Error("backup should not exist when rotation is disabled")
		}
	})
}

func TestRotatingWriterCompression(t *testing.T) {
	rw, path := newTestWriter(t, 60, 2, true)
	for range 4 {
		_, _ = rw.Write([]byte("compress me please, this line is long enough\n"))
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	gzPath := path + ".1.gz"
	f, err := os.Open(gzPath)
	if err != nil {
		t.Fatalf("compressed backup missing: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader failed: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading gzip failed: %v", err)
	}
	if !strings.Contains(string(data), "compress me please") {
		t.Errorf("decompressed content = %q", data)
	}
	if exists(path + ".1") {
		t.Error("uncompressed backup should be removed after compression")
	}
}

func TestRotatingWriterConcurrency(t *testing.T) {
	rw, _ := newTestWriter(t, 1024, 3, false)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := rw.Write([]byte("concurrent line\n")); err != nil {
					t.Errorf("Write failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if err := rw.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRotatingWriterClose(t *testing.T) {
	rw, _ := newTestWriter(t, 0, 1, false)

	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("Write after Close should fail")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close = %v, want nil", err)
	}
}

func TestNewLoggerWithRotation(t *testing.T) {
	t.Run("logs to rotating file", func(t *testing.T) {
		dir := t.TempDir()

		logger, err := NewLoggerWithRotation(dir, LevelDebug, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewLoggerWithRotation failed: %v", err)
		}
		logger.Info("test message", "key", "value")
		_ = logger.Close()

		entries := readEntries(t, filepath.Join(dir, LogFileName))
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0]["msg"] != "test message" || entries[0]["key"] != "value" {
			t.Errorf("entry = %v", entries[0])
		}
	})

	t.Run("writes to stderr when dir is empty", func(t *testing.T) {
		logger, err := NewLoggerWithRotation("", LevelInfo, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewLoggerWithRotation failed: %v", err)
		}
		if logger.closer != nil {
			t.Error("expected no closer when dir is empty")
		}
	})
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.Compress {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}
