package scenario

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtension is the scenario file extension, also used as the marker
// segment that turns a reference into a single-file reference.
const DefaultExtension = "feature"

// UnresolvedError lists every reference that did not resolve to at least one scenario file.
type UnresolvedError struct {
	References []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("scenario paths not found: %s", strings.Join(e.References, ", "))
}

// Resolver maps references such as "tests.login.feature" or "tests.checkout"
// onto a scenario root directory.
type Resolver struct {
	root      string
	extension string
}

// NewResolver creates a resolver rooted at root. An empty root means the
// working directory, an empty extension means DefaultExtension.
func NewResolver(root, extension string) *Resolver {
	extension = strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if extension == "" {
		extension = DefaultExtension
	}
	return &Resolver{root: root, extension: extension}
}

// Root returns the directory references are resolved against.
func (r *Resolver) Root() string {
	return r.root
}

// Location translates a reference into a path. isFile reports whether the
// reference names a single scenario file. A reference that cannot name
// anything (empty, or only the marker segment) yields an empty path.
func (r *Resolver) Location(ref string) (path string, isFile bool) {
	ref = strings.Trim(strings.TrimSpace(ref), ".")
	if ref == "" {
		return "", false
	}
	segments := strings.Split(ref, ".")
	if segments[len(segments)-1] == r.extension {
		if len(segments) == 1 {
			return "", false
		}
		rel := filepath.Join(segments[:len(segments)-1]...) + "." + r.extension
		return filepath.Join(r.root, rel), true
	}
	return filepath.Join(r.root, filepath.Join(segments...)), false
}

// Resolve expands one reference into scenario files: the file itself for a
// file reference, or every scenario file below the directory otherwise.
func (r *Resolver) Resolve(ref string) ([]string, error) {
	path, isFile := r.Location(ref)
	if path == "" {
		return nil, &UnresolvedError{References: []string{ref}}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &UnresolvedError{References: []string{ref}}
	}

	if isFile {
		if info.IsDir() {
			return nil, &UnresolvedError{References: []string{ref}}
		}
		return []string{path}, nil
	}
	if !info.IsDir() {
		return nil, &UnresolvedError{References: []string{ref}}
	}

	files, err := r.walk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, &UnresolvedError{References: []string{ref}}
	}
	return files, nil
}

// ResolveAll resolves every reference. All misses are reported together in
// a single *UnresolvedError; files found for the other references are still returned.
func (r *Resolver) ResolveAll(refs []string) ([]string, error) {
	var files, missing []string
	for _, ref := range refs {
		found, err := r.Resolve(ref)
		if err != nil {
			missing = append(missing, ref)
			continue
		}
		files = append(files, found...)
	}
	if len(missing) > 0 {
		return files, &UnresolvedError{References: missing}
	}
	return files, nil
}

// Targets returns the existing location of every reference without
// expanding directories, plus the references that do not exist.
func (r *Resolver) Targets(refs []string) (targets, missing []string) {
	for _, ref := range refs {
		path, isFile := r.Location(ref)
		if path == "" {
			missing = append(missing, ref)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() == isFile {
			missing = append(missing, ref)
			continue
		}
		targets = append(targets, path)
	}
	return targets, missing
}

func (r *Resolver) walk(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), "."+r.extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
