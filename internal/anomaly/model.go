// internal/anomaly/model.go
package anomaly

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"

	apperrors "sentinel-assessment/internal/common/errors"
)

// Artifact is a handle to the serialized anomaly-detection model. It is
// loaded once at startup and only reported on; nothing is scored against it.
type Artifact struct {
	Path     string
	Size     int64
	Checksum string
	LoadedAt time.Time
}

// Status is the read-only view shown on the About page and /ready.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Path     string    `json:"path,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Checksum string    `json:"checksum,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// LoadModel reads and fingerprints the artifact at path.
func LoadModel(path string) (*Artifact, error) {
	if path == "" {
		return nil, apperrors.NewModelLoadFailedError(path, errors.New("no model path configured"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewModelLoadFailedError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperrors.NewModelLoadFailedError(path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewModelLoadFailedError(path, errors.New("path is a directory"))
	}
	if info.Size() == 0 {
		return nil, apperrors.NewModelLoadFailedError(path, errors.New("model file is empty"))
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, apperrors.NewModelLoadFailedError(path, err)
	}

	return &Artifact{
		Path:     path,
		Size:     info.Size(),
		Checksum: hex.EncodeToString(h.Sum(nil)),
		LoadedAt: time.Now().UTC(),
	}, nil
}

// Status is safe to call on a nil artifact.
func (a *Artifact) Status() Status {
	if a == nil {
		return Status{}
	}
	return Status{
		Loaded:   true,
		Path:     a.Path,
		Size:     a.Size,
		Checksum: a.Checksum,
		LoadedAt: a.LoadedAt,
	}
}
