package anomaly

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sentinel-assessment/internal/common/errors"
)

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trained_model.pkl")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	artifact, err := LoadModel(path)
	require.NoError(t, err)

	assert.Equal(t, path, artifact.Path)
	assert.Equal(t, int64(3), artifact.Size)
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", artifact.Checksum)

	status := artifact.Status()
	assert.True(t, status.Loaded)
	assert.Equal(t, artifact.Checksum, status.Checksum)
}

func TestLoadModel_Failures(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.pkl")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"no path", ""},
		{"missing file", filepath.Join(dir, "absent.pkl")},
		{"directory", dir},
		{"empty file", empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := LoadModel(tt.path)
			assert.Nil(t, artifact)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeModelLoadFailed))
		})
	}
}

func TestStatus_NilArtifact(t *testing.T) {
	var artifact *Artifact
	assert.False(t, artifact.Status().Loaded)
}
