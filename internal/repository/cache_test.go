package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePath(t *testing.T) {
	p, err := CachePath("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/x", "better_tilbudsavis", "offer_cache.json"), p)
}

func TestCachePathNoUserDir(t *testing.T) {
	orig := userCacheDir
	defer func() { userCacheDir = orig }()
	userCacheDir = func() (string, error) { return "", errors.New("no home") }

	_, err := CachePath("")
	assert.ErrorIs(t, err, ErrNoCacheDir)
}
