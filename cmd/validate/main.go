// Command validate replays stored fixtures through the extractor and checks
// the results against the records genfixture wrote next to them. It also
// checks the structural guarantees every record must meet, so a parser change
// that alters output shows up before the unit tests are updated.
//
// Usage:
//
//	go run ./cmd/validate -dir internal/domain/testdata
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/climate-graph/internal/adapter/astro"
	"github.com/couchcryptid/climate-graph/internal/adapter/wikipedia"
	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
)

// Matches genfixture so RetrievedAt replays identically.
var fixtureTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// fixture is one stored record and the record the current code extracts.
type fixture struct {
	name     string
	stored   domain.Record
	replayed domain.Record
}

func main() {
	dir := flag.String("dir", "", "directory containing .wiki pages and .json records")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(os.Stdout, *dir))
}

func run(w io.Writer, dir string) int {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	fmt.Fprintln(w, "=== Climate Fixture Validation ===")

	fixtures, err := loadFixtures(dir)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load fixtures: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReplay(fixtures),
		validateSeriesShape(fixtures),
		validateRendering(fixtures),
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}
	fmt.Fprintf(w, "\nFixtures: %d\n", len(fixtures))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// loadFixtures reads every .json record in dir and replays its title against
// the .wiki pages in the same directory.
func loadFixtures(dir string) ([]fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pages := wikipedia.NewDirFetcher(dir)
	extractor := domain.NewExtractor(pages, astro.NewService(pages, logger), logger)

	fixtures := make([]fixture, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var stored domain.Record
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		fixtures = append(fixtures, fixture{
			name:     filepath.Base(path),
			stored:   stored,
			replayed: extractor.Extract(context.Background(), stored.Title),
		})
	}
	return fixtures, nil
}

// validateReplay checks that extraction still produces the stored records.
func validateReplay(fixtures []fixture) *phase {
	p := &phase{name: "Replay matches stored records"}
	for _, f := range fixtures {
		diff := cmp.Diff(f.stored, f.replayed,
			cmpopts.IgnoreUnexported(domain.Record{}),
			cmpopts.EquateEmpty(),
			cmpopts.EquateApprox(0, 1e-9),
		)
		if diff != "" {
			p.errorf("%s: record differs (-stored +replayed):\n%s", f.name, diff)
		}
	}
	return p
}

// validateSeriesShape checks that every series is empty or has all months.
func validateSeriesShape(fixtures []fixture) *phase {
	p := &phase{name: "Series are empty or complete"}
	schema := domain.DefaultSchema()
	for _, f := range fixtures {
		if f.replayed.PageError {
			p.errorf("%s: %q not found", f.name, f.stored.Title)
			continue
		}
		for _, c := range schema.Rows() {
			n := len(f.replayed.Series[c])
			if n != 0 && n != domain.NumMonths {
				p.errorf("%s: %s has %d readings", f.name, c, n)
			}
		}
	}
	return p
}

// validateRendering checks that records with data render a full table.
func validateRendering(fixtures []fixture) *phase {
	p := &phase{name: "Tables render"}
	for _, f := range fixtures {
		if !domain.HasPrintableData(f.replayed) {
			continue
		}
		text := domain.FormatText(f.replayed, true)
		lines := strings.Split(text, "\n")
		if !strings.HasPrefix(lines[0], f.replayed.Title) {
			p.errorf("%s: header does not start with the title", f.name)
		}
		width := len(lines[1])
		for i, line := range lines[1:] {
			if !strings.HasSuffix(line, "|") {
				if i == len(lines)-2 && line == f.replayed.Location {
					continue
				}
				p.errorf("%s: row %d is not a table row", f.name, i+1)
				continue
			}
			if len(line) != width {
				p.errorf("%s: row %d is %d wide, first row is %d", f.name, i+1, len(line), width)
			}
		}
	}
	return p
}
