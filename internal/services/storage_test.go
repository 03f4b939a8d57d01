package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (StorageService, string, string) {
	t.Helper()
	uploadDir := t.TempDir()
	matchDir := t.TempDir()
	s := NewStorageService(uploadDir, matchDir)
	require.NoError(t, s.EnsureDirs())
	return s, uploadDir, matchDir
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "resume.pdf", SanitizeFilename("resume.pdf"))
	assert.Equal(t, "my_resume_final_.docx", SanitizeFilename("my resume (final).docx"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "resume", SanitizeFilename("///"))
	assert.Equal(t, "resume", SanitizeFilename("...."))
}

func TestCopyToMatches(t *testing.T) {
	s, uploadDir, matchDir := newTestStorage(t)

	srcPath := filepath.Join(uploadDir, "resume_abc.pdf")
	require.NoError(t, os.WriteFile(srcPath, []byte("pdf bytes"), 0644))

	require.NoError(t, s.CopyToMatches(srcPath, "000001_0.72.pdf"))

	copied, err := os.ReadFile(filepath.Join(matchDir, "000001_0.72.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), copied)
}

func TestCopyToMatchesMissingSource(t *testing.T) {
	s, uploadDir, _ := newTestStorage(t)

	err := s.CopyToMatches(filepath.Join(uploadDir, "gone.pdf"), "000001_0.50.pdf")
	assert.Error(t, err)
}

func TestMatchFilePath(t *testing.T) {
	s, _, matchDir := newTestStorage(t)

	require.NoError(t, os.WriteFile(filepath.Join(matchDir, "000001_0.72.pdf"), []byte("x"), 0644))

	path, err := s.MatchFilePath("000001_0.72.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(matchDir, "000001_0.72.pdf"), path)

	// Path traversal and unknown names are refused.
	_, err = s.MatchFilePath("../000001_0.72.pdf")
	assert.Error(t, err)
	_, err = s.MatchFilePath("missing.pdf")
	assert.Error(t, err)
}
