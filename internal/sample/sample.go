// Package sample builds synthetic HRP1000/HRP1001 extracts for dry runs.
// Known defects can be injected so every validator check has something to
// find.
package sample

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"

	"hcm-migrate/internal/source"
)

// SAPDate is the date layout of SAP table exports.
const SAPDate = "02.01.2006"

// OpenEnd is SAP's "valid until further notice" end date.
const OpenEnd = "31.12.9999"

// ReportsTo is the HRP1001 relationship code for "reports to".
const ReportsTo = "A002"

// Options shape the generated organisation.
type Options struct {
	Seed     int64 `mapstructure:"seed"`
	Depth    int   `mapstructure:"depth"`
	Fanout   int   `mapstructure:"fanout"`
	MaxUnits int   `mapstructure:"max_units"`

	// Defects to inject.
	Orphans    int `mapstructure:"orphans"`
	Duplicates int `mapstructure:"duplicates"`
	Cycles     int `mapstructure:"cycles"`
	BadIDs     int `mapstructure:"bad_ids"`
}

// DefaultOptions returns a small clean organisation.
func DefaultOptions() Options {
	return Options{Seed: 1, Depth: 4, Fanout: 3, MaxUnits: 200}
}

// Extract is a generated pair of tables.
type Extract struct {
	Units         *source.Table
	Relationships *source.Table
}

type unit struct {
	id, name, abbr, status string
	start                  time.Time
}

type builder struct {
	f      *gofakeit.Faker
	cols   source.Columns
	units  []unit
	rels   [][2]string // child, parent
	nextID int
}

// Generate builds an organisation of up to MaxUnits units, Depth levels deep,
// where each unit has between one and Fanout children. The same Seed always
// yields the same extract.
func Generate(opts Options, cols source.Columns) *Extract {
	if opts.Depth < 1 {
		opts.Depth = 1
	}
	if opts.Fanout < 1 {
		opts.Fanout = 1
	}
	if opts.MaxUnits < 1 {
		opts.MaxUnits = 1
	}
	b := &builder{
		f:      gofakeit.New(opts.Seed),
		cols:   cols.WithDefaults(),
		nextID: 10000001,
	}

	root := b.add(1, "")
	frontier := []unit{root}
	for level := 2; level <= opts.Depth && len(b.units) < opts.MaxUnits; level++ {
		var next []unit
		for _, parent := range frontier {
			n := b.f.Number(1, opts.Fanout)
			for i := 0; i < n && len(b.units) < opts.MaxUnits; i++ {
				next = append(next, b.add(level, parent.id))
			}
		}
		frontier = next
	}

	b.injectDuplicates(opts.Duplicates)
	b.injectOrphans(opts.Orphans)
	b.injectCycles(opts.Cycles)
	b.injectBadIDs(opts.BadIDs)
	return b.extract()
}

func (b *builder) newID() string {
	id := fmt.Sprintf("%08d", b.nextID)
	b.nextID++
	return id
}

func (b *builder) name(level int) string {
	words := levelWords[min(level, len(levelWords))-1]
	word := words[b.f.Number(0, len(words)-1)]
	switch level {
	case 1:
		return b.f.Company() + " " + word
	case 2:
		return word
	case 3, 4:
		return regions[b.f.Number(0, len(regions)-1)] + " " + word
	default:
		return b.f.JobDescriptor() + " " + word
	}
}

func abbreviate(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r := []rune(w)[0]
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() == 4 {
			break
		}
	}
	return b.String()
}

func (b *builder) add(level int, parent string) unit {
	name := b.name(level)
	u := unit{
		id:     b.newID(),
		name:   name,
		abbr:   abbreviate(name),
		status: "1",
		start:  b.f.DateRange(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
	}
	if b.f.Number(1, 20) == 1 {
		u.status = "3"
	}
	b.units = append(b.units, u)
	if parent != "" {
		b.rels = append(b.rels, [2]string{u.id, parent})
	}
	return u
}

// injectDuplicates repeats existing unit rows under the same ID.
func (b *builder) injectDuplicates(n int) {
	for i := 0; i < n && len(b.units) > 0; i++ {
		u := b.units[b.f.Number(0, len(b.units)-1)]
		u.name += " (copy)"
		b.units = append(b.units, u)
	}
}

// injectOrphans adds units reporting to IDs that do not exist.
func (b *builder) injectOrphans(n int) {
	for i := 0; i < n; i++ {
		u := b.add(2, "")
		b.rels = append(b.rels, [2]string{u.id, fmt.Sprintf("%08d", 99999999-i)})
	}
}

// injectCycles adds pairs of units reporting to each other.
func (b *builder) injectCycles(n int) {
	for i := 0; i < n; i++ {
		a := b.add(3, "")
		c := b.add(3, "")
		b.rels = append(b.rels, [2]string{a.id, c.id}, [2]string{c.id, a.id})
	}
}

// injectBadIDs adds root units whose IDs lost their leading zeros.
func (b *builder) injectBadIDs(n int) {
	for i := 0; i < n; i++ {
		u := b.add(1, "")
		b.units[len(b.units)-1].id = strings.TrimLeft(u.id[1:], "0")
	}
}

func (b *builder) extract() *Extract {
	c := b.cols
	units := &source.Table{
		Name:     "HRP1000.csv",
		Header:   []string{c.UnitID, c.UnitName, c.UnitStatus, c.UnitStart, c.UnitEnd, c.UnitAbbr},
		Encoding: "utf-8",
	}
	start := map[string]time.Time{}
	for i, u := range b.units {
		if _, seen := start[u.id]; !seen {
			start[u.id] = u.start
		}
		units.Rows = append(units.Rows, source.Row{Line: i + 2, Cells: map[string]string{
			c.UnitID:     u.id,
			c.UnitName:   u.name,
			c.UnitStatus: u.status,
			c.UnitStart:  u.start.Format(SAPDate),
			c.UnitEnd:    OpenEnd,
			c.UnitAbbr:   u.abbr,
		}})
	}

	rels := &source.Table{
		Name:     "HRP1001.csv",
		Header:   []string{c.RelChild, c.RelParent, c.RelType, c.RelStatus, c.RelStart, c.RelEnd},
		Encoding: "utf-8",
	}
	for i, r := range b.rels {
		rels.Rows = append(rels.Rows, source.Row{Line: i + 2, Cells: map[string]string{
			c.RelChild:  r[0],
			c.RelParent: r[1],
			c.RelType:   ReportsTo,
			c.RelStatus: "1",
			c.RelStart:  start[r[0]].Format(SAPDate),
			c.RelEnd:    OpenEnd,
		}})
	}
	return &Extract{Units: units, Relationships: rels}
}
