package window

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"envmonitor/internal/types"
)

// snapshotExt is appended to the key to form the snapshot file name.
const snapshotExt = ".json.zst"

// FileStorage keeps each key as a zstd-compressed file under dir. Writes
// go to a temporary file that is renamed into place, so a crash never leaves
// a half-written snapshot.
type FileStorage struct {
	dir string

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &FileStorage{dir: dir, encoder: enc, decoder: dec}, nil
}

// Path returns the file backing key.
func (f *FileStorage) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+snapshotExt)
}

// Get reads and decompresses the snapshot for key. A file that fails to
// decompress is reported as SnapshotCorrupt.
func (f *FileStorage) Get(key string) ([]byte, bool, error) {
	compressed, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading snapshot %s: %w", key, err)
	}

	data, err := f.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, types.NewAppError(
			types.ErrCodeSnapshotCorrupt,
			fmt.Sprintf("failed to decompress snapshot %s", key),
			err,
		)
	}
	return data, true, nil
}

// Set compresses data and atomically replaces the snapshot for key.
func (f *FileStorage) Set(key string, data []byte) error {
	compressed := f.encoder.EncodeAll(data, nil)

	tmp, err := os.CreateTemp(f.dir, sanitizeKey(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Close releases the zstd encoder and decoder.
func (f *FileStorage) Close() error {
	f.decoder.Close()
	return f.encoder.Close()
}

// Name implements core.HealthProbe.
func (f *FileStorage) Name() string { return "snapshot" }

// Check implements core.HealthProbe: the snapshot directory must exist and
// be a directory.
func (f *FileStorage) Check(context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("snapshot dir %s is not a directory", f.dir)
	}
	return nil
}

// sanitizeKey maps a key to a safe file name stem.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

// MemoryStorage is an in-process Storage for tests and ephemeral runs.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte

	// SetErr, when non-nil, is returned by every Set.
	SetErr error
	// GetErr, when non-nil, is returned by every Get.
	GetErr error
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Get returns a copy of the stored bytes.
func (m *MemoryStorage) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of data.
func (m *MemoryStorage) Set(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}
