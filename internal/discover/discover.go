// Package discover walks a repository and returns the sorted list of
// Python source files the extractor should parse. Grounded on the
// teacher's internal/discover/discover.go (non-source directory
// skip-list, repo-relative path computation), extended with real
// .gitignore support since this module targets exactly one language and
// can afford to honor the repository's own ignore rules rather than a
// hardcoded suffix list.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/suchanek/codekg/internal/lang"
)

// skipDirs are non-source directory names the walk never descends into,
// independent of any .gitignore (teacher's IGNORE_PATTERNS).
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	".venv": true, "venv": true, "env": true, ".tox": true,
	".mypy_cache": true, ".pytest_cache": true, ".ruff_cache": true,
	".nox": true, "__pycache__": true,
	"node_modules": true, "dist": true, "build": true,
	"site-packages": true, ".idea": true, ".vscode": true,
}

// FileInfo is one discovered Python source file.
type FileInfo struct {
	AbsPath string // absolute path on disk
	RelPath string // repo-relative POSIX path
}

// Discover walks repoRoot and returns every .py file it accepts, sorted by
// RelPath so extraction order never depends on filesystem iteration order.
// A .gitignore at the repository root, if present, is honored in addition
// to the built-in skip list. Discover does not follow symlinks that would
// resolve outside repoRoot.
func Discover(ctx context.Context, repoRoot string) ([]FileInfo, error) {
	repoRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, err
	}

	ignorer := loadGitignore(repoRoot)

	var files []FileInfo
	walkErr := filepath.Walk(repoRoot, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return filepath.SkipDir
		}

		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && (skipDirs[info.Name()] || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			if ignorer != nil && rel != "." && ignorer.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, lang.FileExtension) {
			return nil
		}
		if ignorer != nil && ignorer.MatchesPath(rel) {
			return nil
		}
		if escapesRoot(repoRoot, path) {
			return nil
		}

		files = append(files, FileInfo{AbsPath: path, RelPath: rel})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// escapesRoot reports whether path, after resolving symlinks, falls
// outside root. Non-symlink paths never escape by construction, so the
// common case costs nothing.
func escapesRoot(root, path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, "../")
}

func loadGitignore(repoRoot string) *gitignore.GitIgnore {
	path := filepath.Join(repoRoot, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ig, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return ig
}
