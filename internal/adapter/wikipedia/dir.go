package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/couchcryptid/climate-graph/internal/domain"
)

// fixtureExt is the extension of raw wikitext files served by DirFetcher.
const fixtureExt = ".wiki"

// DirFetcher serves pages from a directory of raw wikitext files, one per
// title, named by FixtureName. Titles without a file are reported missing.
type DirFetcher struct {
	dir string
}

// NewDirFetcher returns a fetcher that reads pages from dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// FetchPage implements domain.PageFetcher.
func (d *DirFetcher) FetchPage(_ context.Context, title string) (domain.Page, error) {
	body, err := os.ReadFile(filepath.Join(d.dir, FixtureName(title)))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Page{Title: title}, nil
	}
	if err != nil {
		return domain.Page{}, fmt.Errorf("read fixture %q: %w", title, err)
	}
	return domain.Page{Title: title, Body: string(body), Found: true}, nil
}

// FixtureName maps a title to its file name: lower case, with every run of
// characters other than letters and digits folded to a single underscore.
// "Template:Weather box/Toronto" becomes "template_weather_box_toronto.wiki".
func FixtureName(title string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String() + fixtureExt
}
