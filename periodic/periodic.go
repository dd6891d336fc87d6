// Package periodic is the read-only periodic-table lookup (PT), ported
// from chemistry_lang/ch_periodic_table.py. The data file is embedded and
// read with gjson rather than encoding/json since every lookup is a single
// dotted-path read for one element symbol.
package periodic

import (
	_ "embed"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/cx-luo/chem-lang/numeric"
)

//go:embed periodic_table.json
var tableJSON []byte

var table = gjson.ParseBytes(tableJSON)

// Row is one element's row in the periodic table, exposed as a plain
// struct so callers (chem.Element's attribute lookup) don't need to know
// about gjson.
type Row struct {
	Symbol       string
	AtomicNumber int64
	Name         string
	AtomicMass   numeric.SigFig
	Group        int64
	Period       int64
	Category     string
}

// Lookup returns the row for an element symbol, or an error if the symbol
// isn't in the table.
func Lookup(symbol string) (Row, error) {
	result := table.Get(gjson.Escape(symbol))
	if !result.Exists() {
		return Row{}, fmt.Errorf("unknown element %q", symbol)
	}
	mass, err := numeric.Parse(result.Get("AtomicMass").Raw)
	if err != nil {
		mass = numeric.FromFloat(result.Get("AtomicMass").Float())
	}
	return Row{
		Symbol:       symbol,
		AtomicNumber: result.Get("AtomicNumber").Int(),
		Name:         result.Get("Name").String(),
		AtomicMass:   mass,
		Group:        result.Get("Group").Int(),
		Period:       result.Get("Period").Int(),
		Category:     result.Get("Category").String(),
	}, nil
}

// Attr fetches a single named attribute off an element's row as a string,
// used by Element.Attr to resolve arbitrary attribute access (`Na.Name`,
// `Cl.Group`, ...) against whatever keys the data file carries.
func Attr(symbol, attr string) (string, bool) {
	row := table.Get(gjson.Escape(symbol))
	if !row.Exists() {
		return "", false
	}
	val := row.Get(attr)
	if !val.Exists() {
		return "", false
	}
	return val.String(), true
}

// Exists reports whether symbol names a known element.
func Exists(symbol string) bool {
	return table.Get(gjson.Escape(symbol)).Exists()
}
