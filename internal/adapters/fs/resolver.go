package fs

import (
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using filepath.Glob.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveInputs resolves image patterns relative to root into a sorted list of
// regular files. Absolute patterns are used as given. A pattern that matches
// nothing is an error.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrNoInputsSpecified
	}

	uniquePaths := make(map[string]bool)

	for _, input := range inputs {
		path := input
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, input)
		}

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(domain.Wrap(domain.ErrInputResolutionFailed, err, "failed to glob path"), "path", path)
		}

		found := 0
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			uniquePaths[match] = true
			found++
		}

		if found == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInputNotFound, "pattern matched no files"), "path", path)
		}
	}

	result := make([]string, 0, len(uniquePaths))
	for path := range uniquePaths {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}
