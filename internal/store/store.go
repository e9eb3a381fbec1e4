package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"voxpitch/internal/config"
	"voxpitch/internal/logging"
	"voxpitch/internal/services"
)

// Kind distinguishes the two artifact populations.
type Kind string

const (
	KindOriginal Kind = "original"
	KindDerived  Kind = "derived"
)

// Artifact describes a stored audio file. The ID doubles as the filesystem
// name and the public identifier; holding it is the only access control.
type Artifact struct {
	ID      string
	Kind    Kind
	Size    int64
	ModTime time.Time
	Ext     string
}

// Store owns the incoming and derived directories and all naming within them.
type Store struct {
	incomingDir string
	derivedDir  string
	maxBytes    int64
	logger      *slog.Logger
}

// New constructs a store over the configured directories, creating them if
// needed.
func New(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("store requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		incomingDir: cfg.Paths.IncomingDir,
		derivedDir:  cfg.Paths.DerivedDir,
		maxBytes:    cfg.MaxUploadBytes(),
		logger:      logger.With(logging.String("component", "store")),
	}, nil
}

func (s *Store) dir(kind Kind) string {
	if kind == KindDerived {
		return s.derivedDir
	}
	return s.incomingDir
}

// Save streams an uploaded original into the incoming directory under a fresh
// id. Bytes land in a dot-prefixed scratch file first and are renamed into
// place only after the full payload is durable, so readers never observe a
// partial artifact. Identical payloads always get distinct ids.
func (s *Store) Save(r io.Reader, declaredMIME, declaredName string) (Artifact, error) {
	if !AllowedMIME(declaredMIME) {
		return Artifact{}, services.Wrap(services.ErrValidation, "store", "save",
			fmt.Sprintf("invalid content type %q, only audio files are allowed", declaredMIME), nil)
	}

	ext := extensionFor(declaredName, declaredMIME)
	id := uuid.NewString() + ext
	tempPath := s.scratchPath(KindOriginal, ext)

	size, err := s.writeCapped(tempPath, r)
	if err != nil {
		return Artifact{}, err
	}

	finalPath := filepath.Join(s.incomingDir, id)
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return Artifact{}, services.Wrap(services.ErrTransient, "store", "save", "finalize artifact", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrTransient, "store", "save", "stat artifact", err)
	}

	s.logger.Debug("artifact saved",
		logging.String("artifact_id", id),
		logging.Int64("size", size),
	)
	return Artifact{ID: id, Kind: KindOriginal, Size: size, ModTime: info.ModTime(), Ext: ext}, nil
}

func (s *Store) writeCapped(path string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "save", "create scratch file", err)
	}

	written, err := io.Copy(out, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, services.Wrap(services.ErrTransient, "store", "save", "write payload", err)
	}
	if written > s.maxBytes {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, services.Wrap(services.ErrValidation, "store", "save",
			fmt.Sprintf("payload exceeds the %d byte ceiling", s.maxBytes), nil)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, services.Wrap(services.ErrTransient, "store", "save", "flush payload", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return 0, services.Wrap(services.ErrTransient, "store", "save", "close payload", err)
	}
	return written, nil
}

// Resolve maps an id to its path inside the matching directory. The id must
// satisfy the token grammar before any filesystem access happens; anything
// else (separators, dot-dot, scratch names) is reported the same way as a
// never-existed artifact.
func (s *Store) Resolve(id string, kind Kind) (string, error) {
	if !ValidID(id) {
		return "", services.Wrap(services.ErrNotFound, "store", "resolve",
			fmt.Sprintf("no artifact %q", id), nil)
	}
	path := filepath.Join(s.dir(kind), id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "store", "resolve",
				fmt.Sprintf("no artifact %q", id), nil)
		}
		return "", services.Wrap(services.ErrTransient, "store", "resolve", "stat artifact", err)
	}
	return path, nil
}

// Open opens an artifact for streaming. The caller owns the returned file.
func (s *Store) Open(id string, kind Kind) (*os.File, Artifact, error) {
	path, err := s.Resolve(id, kind)
	if err != nil {
		return nil, Artifact{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// The sweeper may have raced us between resolve and open.
			return nil, Artifact{}, services.Wrap(services.ErrNotFound, "store", "open",
				fmt.Sprintf("no artifact %q", id), nil)
		}
		return nil, Artifact{}, services.Wrap(services.ErrTransient, "store", "open", "open artifact", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, Artifact{}, services.Wrap(services.ErrTransient, "store", "open", "stat artifact", err)
	}
	return file, Artifact{
		ID:      id,
		Kind:    kind,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Ext:     filepath.Ext(id),
	}, nil
}

// ScratchPath allocates a path for engine output inside the derived directory.
// The dot prefix keeps it invisible to Resolve until promoted.
func (s *Store) ScratchPath(ext string) string {
	return s.scratchPath(KindDerived, ext)
}

func (s *Store) scratchPath(kind Kind, ext string) string {
	return filepath.Join(s.dir(kind), ".tmp-"+uuid.NewString()+ext)
}

// Promote renames a completed engine output into the derived directory under
// a fresh derived id. On failure the scratch file is removed.
func (s *Store) Promote(scratchPath string) (Artifact, error) {
	id := NewDerivedID()
	finalPath := filepath.Join(s.derivedDir, id)
	if err := os.Rename(scratchPath, finalPath); err != nil {
		_ = os.Remove(scratchPath)
		return Artifact{}, services.Wrap(services.ErrTransient, "store", "promote", "finalize derived artifact", err)
	}
	info, err := os.Stat(finalPath)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrTransient, "store", "promote", "stat derived artifact", err)
	}
	s.logger.Debug("derived artifact promoted", logging.String("artifact_id", id))
	return Artifact{ID: id, Kind: KindDerived, Size: info.Size(), ModTime: info.ModTime(), Ext: filepath.Ext(id)}, nil
}

// Delete removes an artifact. A missing file is success: deletion legitimately
// races the retention sweeper.
func (s *Store) Delete(id string, kind Kind) error {
	if !ValidID(id) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir(kind), id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrTransient, "store", "delete", "remove artifact", err)
	}
	return nil
}

// Count reports how many artifacts of the given kind currently exist.
// Scratch files are excluded.
func (s *Store) Count(kind Kind) (int, error) {
	entries, err := os.ReadDir(s.dir(kind))
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "count", "list directory", err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !ValidID(entry.Name()) {
			continue
		}
		count++
	}
	return count, nil
}

// Dirs returns the directories the retention sweeper should scan.
func (s *Store) Dirs() []string {
	return []string{s.incomingDir, s.derivedDir}
}
