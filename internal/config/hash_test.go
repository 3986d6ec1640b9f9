package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChecksums_LockAndVerify(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "listen: \"127.0.0.1:8090\"\n")

	checksumPath, hash, err := GenerateChecksums(path, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), ".checksums"), checksumPath)
	assert.Len(t, hash, 64)

	// Locked config loads cleanly.
	_, err = Load(path)
	require.NoError(t, err)

	// Tampering is detected.
	require.NoError(t, os.WriteFile(path, []byte("listen: \"0.0.0.0:1\"\n"), 0600))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config verification failed")
}

func TestGenerateChecksums_DryRun(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "listen: \"127.0.0.1:8090\"\n")

	checksumPath, hash, err := GenerateChecksums(path, true)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	_, statErr := os.Stat(checksumPath)
	assert.True(t, os.IsNotExist(statErr), "dry run must not write .checksums")
}

func TestLoad_NoChecksumsSkipsVerification(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "listen: \"127.0.0.1:8090\"\n")

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestVerifyFileHash(t *testing.T) {
	path := writeConfig(t, "a: 1\n")

	hash, err := ComputeBlake3Hash(path)
	require.NoError(t, err)

	assert.NoError(t, VerifyFileHash(path, hash))
	assert.Error(t, VerifyFileHash(path, "deadbeef"))
}

func TestLoadChecksums_Missing(t *testing.T) {
	_, err := LoadChecksums(t.TempDir())
	assert.Error(t, err)
}
