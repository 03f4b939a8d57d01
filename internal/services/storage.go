package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type StorageService interface {
	SaveFile(file *multipart.FileHeader) (string, string, error)
	ReadFile(filePath string) ([]byte, error)
	CopyToMatches(srcPath string, matchedName string) error
	MatchFilePath(matchedName string) (string, error)
	EnsureDirs() error
}

type storageService struct {
	uploadPath string
	matchPath  string
}

func NewStorageService(uploadPath, matchPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
		matchPath:  matchPath,
	}
}

func (s *storageService) EnsureDirs() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.MkdirAll(s.matchPath, 0755); err != nil {
		return fmt.Errorf("failed to create match directory: %w", err)
	}

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename strips any path components and collapses characters
// that are unsafe in a stored filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "resume"
	}
	return name
}

func (s *storageService) SaveFile(file *multipart.FileHeader) (string, string, error) {
	// Validate file extensions
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" && ext != ".docx" {
		return "", "", fmt.Errorf("invalid file extension: %s", ext)
	}

	// Generate the unique filename
	uniqueFilename := fmt.Sprintf("resume_%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	// Open source file
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Create destination file
	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Copy file
	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}

// CopyToMatches copies an accepted resume into the match folder under
// its assigned rank name.
func (s *storageService) CopyToMatches(srcPath string, matchedName string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.matchPath, SanitizeFilename(matchedName))
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create match file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy match file: %w", err)
	}

	return nil
}

// MatchFilePath resolves a matched filename for download, refusing
// names that escape the match folder.
func (s *storageService) MatchFilePath(matchedName string) (string, error) {
	clean := SanitizeFilename(matchedName)
	if clean != matchedName {
		return "", fmt.Errorf("invalid matched filename: %s", matchedName)
	}

	filePath := filepath.Join(s.matchPath, clean)
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("matched file not found: %w", err)
	}

	return filePath, nil
}
