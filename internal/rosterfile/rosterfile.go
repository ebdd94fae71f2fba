// Package rosterfile loads prepared rosters (a party, a monster group)
// from CUE files.
//
// A roster file declares a list of combatants:
//
//	combatants: [
//		{name: "Aria", initiative: 15, player: true},
//		{name: "Goblin", initiative: 12, hp: 7, ac: 15},
//		{name: "Ghoul", initiative: 9, hp: 22, ac: 12,
//			conditions: [{name: "hasted", duration: 3}]},
//	]
//
// The file is unified with an embedded schema, so typos in field names,
// negative hit points and non-concrete values are rejected before
// anything reaches the engine.
package rosterfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/initiative/internal/combat"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalidRoster is wrapped by every validation failure.
var ErrInvalidRoster = errors.New("invalid roster file")

// Load reads and validates the roster file at path.
func Load(path string) ([]combat.Draft, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	return Parse(path, src)
}

// Parse validates CUE source against the roster schema and decodes the
// combatants in declaration order. filename is used in error positions.
func Parse(filename string, src []byte) ([]combat.Draft, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile roster schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, invalid(err)
	}
	if !data.LookupPath(cue.ParsePath("combatants")).Exists() {
		return nil, fmt.Errorf("%w: %s: missing combatants list", ErrInvalidRoster, filename)
	}

	v := schema.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, invalid(err)
	}

	var drafts []combat.Draft
	if err := v.LookupPath(cue.ParsePath("combatants")).Decode(&drafts); err != nil {
		return nil, invalid(err)
	}
	if drafts == nil {
		drafts = []combat.Draft{}
	}
	return drafts, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidRoster, cueerrors.Details(err, nil))
}
