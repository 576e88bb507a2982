package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Layout owns the on-disk structure of the static artifact tree:
//
//	<root>/keywords.json
//	<root>/stats.json
//	<root>/full_index.json
//	<root>/quotes/<keyword>.json
//
// Reset reconstructs the tree from empty, so a generation run never mixes
// old and new artifacts. The replacement is not atomic across processes;
// callers must not serve traffic from a root that is being regenerated.
type Layout struct {
	root string
}

// NewLayout creates a layout rooted at the given artifact directory.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the artifact root directory.
func (l *Layout) Root() string {
	return l.root
}

// QuotesDir returns the directory holding the per-keyword artifacts.
func (l *Layout) QuotesDir() string {
	return filepath.Join(l.root, "quotes")
}

// KeywordFile returns the artifact path for a keyword.
func (l *Layout) KeywordFile(word string) string {
	return filepath.Join(l.QuotesDir(), word+".json")
}

// FullIndexFile returns the path of the full corpus index artifact.
func (l *Layout) FullIndexFile() string {
	return filepath.Join(l.root, "full_index.json")
}

// KeywordTableFile returns the path of the keyword table artifact.
func (l *Layout) KeywordTableFile() string {
	return filepath.Join(l.root, "keywords.json")
}

// StatsFile returns the path of the corpus statistics artifact.
func (l *Layout) StatsFile() string {
	return filepath.Join(l.root, "stats.json")
}

// Reset removes any previous artifact tree and recreates the directory
// structure empty.
func (l *Layout) Reset() error {
	if err := os.RemoveAll(l.root); err != nil {
		return fmt.Errorf("remove artifact root %s: %w", l.root, err)
	}
	if err := os.MkdirAll(l.QuotesDir(), 0o755); err != nil {
		return fmt.Errorf("create artifact tree %s: %w", l.root, err)
	}
	return nil
}

// CopyThrough copies the keyword table and stats artifacts produced by the
// indexing phase into the artifact tree unchanged.
func (l *Layout) CopyThrough(keywordTablePath, statsPath string) error {
	if err := copyFile(keywordTablePath, l.KeywordTableFile()); err != nil {
		return err
	}
	return copyFile(statsPath, l.StatsFile())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy artifact: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy artifact: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy artifact %s: %w", src, err)
	}
	return out.Close()
}
