package router

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/evidex/core"
)

// Category is one named intent with its trigger and term lists. New
// categories are added through the table, not through code.
type Category struct {
	Name       string   `toml:"name"`
	Triggers   []string `toml:"triggers"`
	MustHave   []string `toml:"must_have_terms"`
	BoostTerms []string `toml:"boost_terms"`
	Role       string   `toml:"role"`
	Expansions []string `toml:"expansions"`
}

// Table holds the full category configuration for a Router.
type Table struct {
	Categories []Category `toml:"categories"`
}

// LoadTable reads a category table from a TOML file and validates it.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var table Table
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse router table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks that every category is usable.
func (t *Table) Validate() error {
	for i, cat := range t.Categories {
		if cat.Name == "" {
			return fmt.Errorf("%w: category %d has no name", ErrInvalidTable, i)
		}
		if len(cat.Triggers) == 0 {
			return fmt.Errorf("%w: category %q has no triggers", ErrInvalidTable, cat.Name)
		}
		if cat.Role != "" {
			if err := core.ValidateRole(core.SubjectRole(cat.Role)); err != nil {
				return fmt.Errorf("%w: category %q: %v", ErrInvalidTable, cat.Name, err)
			}
		}
	}
	return nil
}

// DefaultTable returns the built-in categories, tuned against the IHSA
// rulebook corpus.
func DefaultTable() *Table {
	return &Table{
		Categories: []Category{
			{
				Name:       "coach age",
				Triggers:   []string{"coach", "coaching", "instructor", "trainer", "21", "1102"},
				MustHave:   []string{"21", "1102"},
				BoostTerms: []string{"minimum age", "years old", "twenty-one", "adult"},
				Role:       "coach",
				Expansions: []string{"coach minimum age 21 years old Rule 1102.A"},
			},
			{
				Name:       "qualification points",
				Triggers:   []string{"points", "qualify", "qualification", "regionals", "hunt seat"},
				MustHave:   []string{"points", "36", "28"},
				BoostTerms: []string{"qualify", "regionals", "hunt seat", "7201", "7203", "7207"},
				Role:       "rider",
				Expansions: []string{"36 points 28 points qualify for regionals Hunt Seat Rule 7201 7203 7207"},
			},
			{
				Name:       "medications",
				Triggers:   []string{"medication", "drug", "therapeutic", "cns"},
				MustHave:   []string{"medication", "4302", "3401"},
				BoostTerms: []string{"therapeutic", "central nervous system", "cns", "veterinarian"},
				Role:       "horse",
				Expansions: []string{"medications therapeutic use central nervous system drugs CNS Rule 4302 Rule 3401.J"},
			},
			{
				Name:       "alternates",
				Triggers:   []string{"alternate", "substitute", "substitution"},
				MustHave:   []string{"alternate", "4501"},
				BoostTerms: []string{"designated", "at least one", "substitution"},
				Expansions: []string{"alternates designated alternate at least one Rule 4501"},
			},
			{
				Name:       "prize lists",
				Triggers:   []string{"prizelist", "prize list", "prize-list"},
				MustHave:   []string{"prize", "5401"},
				BoostTerms: []string{"two weeks", "closing date", "online", "posted"},
				Role:       "official",
				Expansions: []string{"prize list two weeks prior closing date Section 5401"},
			},
			{
				Name:       "young hunter",
				Triggers:   []string{"young hunter", "jump", "how high"},
				MustHave:   []string{"young hunter", "hu111"},
				BoostTerms: []string{"2'9", "3'0", "3'3", "heights"},
				Role:       "horse",
				Expansions: []string{"Young Hunter heights 2'9 3'0 3'3 HU111"},
			},
			{
				Name:       "pony measurement",
				Triggers:   []string{"pony", "hands", "small pony", "large pony"},
				MustHave:   []string{"pony", "hands"},
				BoostTerms: []string{"12.2", "14.2", "hu141", "hu142", "measured"},
				Role:       "horse",
				Expansions: []string{"pony height hands 12.2 14.2 HU141 HU142"},
			},
			{
				Name:       "martingales",
				Triggers:   []string{"martingale", "tack", "equipment"},
				MustHave:   []string{"martingale"},
				BoostTerms: []string{"standing", "running", "prohibited", "hu105"},
				Role:       "horse",
				Expansions: []string{"martingale standing running prohibited allowed HU105"},
			},
		},
	}
}
