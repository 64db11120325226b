package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarcli/internal/config"
)

func validatorPaths(t *testing.T) *config.Paths {
	t.Helper()
	root := t.TempDir()
	return &config.Paths{
		RawDir:    filepath.Join(root, "raw"),
		SilverDir: filepath.Join(root, "silver"),
		PricesDir: filepath.Join(root, "prices"),
	}
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestValidateRawInputs(t *testing.T) {
	v := NewInputValidator(slog.Default())
	paths := validatorPaths(t)

	err := v.ValidateRawInputs(paths, "SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw documents")

	touch(t, filepath.Join(paths.RawDir, "0000320193.json"), `{}`)
	err = v.ValidateRawInputs(paths, "SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "benchmark series SPY")

	touch(t, paths.PricePath("SPY"), "date,close\n2021-01-04,370\n")
	assert.NoError(t, v.ValidateRawInputs(paths, "SPY"))
}

func TestValidateRawInputsEmptyDirectory(t *testing.T) {
	v := NewInputValidator(slog.Default())
	paths := validatorPaths(t)

	require.NoError(t, os.MkdirAll(paths.RawDir, 0755))
	touch(t, paths.PricePath("SPY"), "date,close\n2021-01-04,370\n")

	err := v.ValidateRawInputs(paths, "SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matching")
}

func TestValidateSilverInputs(t *testing.T) {
	v := NewInputValidator(slog.Default())
	paths := validatorPaths(t)

	err := v.ValidateSilverInputs(paths, "SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combined fundamentals")

	touch(t, paths.SilverPath(), "cik,end,fy,fp\n")
	touch(t, paths.PricePath("SPY"), "date,close\n2021-01-04,370\n")
	assert.NoError(t, v.ValidateSilverInputs(paths, "SPY"))
}

func TestValidateFileRejectsEmpty(t *testing.T) {
	v := NewInputValidator(slog.Default())
	paths := validatorPaths(t)

	touch(t, paths.SilverPath(), "")
	touch(t, paths.PricePath("SPY"), "date,close\n")

	err := v.ValidateSilverInputs(paths, "SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}
