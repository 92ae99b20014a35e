package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ludo-technologies/treerate/domain"
)

// DocumentReaderImpl implements the DocumentCollector interface
type DocumentReaderImpl struct{}

// NewDocumentReader creates a new document reader service
func NewDocumentReader() *DocumentReaderImpl {
	return &DocumentReaderImpl{}
}

// CollectPairs pairs a reference file with a hypothesis file, or every reference document
// under a directory with the hypothesis at the same relative path
func (r *DocumentReaderImpl) CollectPairs(referencePath, hypothesisPath string, recursive bool, includePatterns, excludePatterns []string) ([]domain.DocumentPair, error) {
	refInfo, err := os.Stat(referencePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(referencePath, err)
	}

	hypInfo, hypErr := os.Stat(hypothesisPath)
	if hypErr != nil && !os.IsNotExist(hypErr) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", hypothesisPath), hypErr)
	}
	hypIsDir := hypErr == nil && hypInfo.IsDir()

	if !refInfo.IsDir() {
		hypFile := hypothesisPath
		if hypIsDir {
			hypFile = filepath.Join(hypothesisPath, filepath.Base(referencePath))
		}
		exists, err := r.FileExists(hypFile)
		if err != nil {
			return nil, err
		}
		return []domain.DocumentPair{{
			Name:              filepath.Base(referencePath),
			ReferencePath:     referencePath,
			HypothesisPath:    hypFile,
			HypothesisMissing: !exists,
		}}, nil
	}

	if hypErr == nil && !hypIsDir {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("reference %s is a directory but hypothesis %s is a file", referencePath, hypothesisPath), nil)
	}

	names, err := r.collectFromDirectory(referencePath, recursive, includePatterns, excludePatterns)
	if err != nil {
		return nil, err
	}

	pairs := make([]domain.DocumentPair, 0, len(names))
	for _, rel := range names {
		hypFile := filepath.Join(hypothesisPath, filepath.FromSlash(rel))
		exists, err := r.FileExists(hypFile)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, domain.DocumentPair{
			Name:              rel,
			ReferencePath:     filepath.Join(referencePath, filepath.FromSlash(rel)),
			HypothesisPath:    hypFile,
			HypothesisMissing: !exists,
		})
	}

	return pairs, nil
}

// ReadFile reads the content of a document
func (r *DocumentReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// FileExists checks if a regular file exists
func (r *DocumentReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// collectFromDirectory returns slash-separated paths relative to dirPath, in lexical order
func (r *DocumentReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var names []string

	walkFunc := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the rest of the tree is still collected
			return nil
		}
		if path == dirPath {
			return nil
		}

		// Hidden files and directories never hold documents
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if r.shouldIncludeFile(rel, includePatterns, excludePatterns) {
			names = append(names, rel)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return names, nil
}

// shouldIncludeFile matches a relative path, and its base name, against glob patterns
func (r *DocumentReaderImpl) shouldIncludeFile(rel string, includePatterns, excludePatterns []string) bool {
	base := filepath.Base(rel)

	for _, pattern := range excludePatterns {
		if matchGlob(pattern, rel) || matchGlob(pattern, base) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return isDocumentFile(rel)
	}

	for _, pattern := range includePatterns {
		if matchGlob(pattern, rel) || matchGlob(pattern, base) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, name string) bool {
	matched, err := doublestar.Match(pattern, name)
	return err == nil && matched
}

// isDocumentFile reports whether the extension is one the parser understands
func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
