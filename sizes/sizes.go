// Package sizes holds a small table of named disk-image sizes, so a caller
// (in practice, the simplefs CLI) can write `format disk.img tiny` instead of
// having to know or compute a block count.
package sizes

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

// Preset names one predefined image size.
type Preset struct {
	Name        string `csv:"name"`
	Blocks      uint32 `csv:"blocks"`
	Description string `csv:"description"`
}

//go:embed presets.csv
var rawPresets string

var presets map[string]Preset

func init() {
	presets = make(map[string]Preset)

	err := gocsv.UnmarshalToCallback(
		strings.NewReader(rawPresets),
		func(p Preset) error {
			if _, exists := presets[p.Name]; exists {
				return fmt.Errorf("duplicate disk size preset %q", p.Name)
			}
			presets[p.Name] = p
			return nil
		},
	)
	if err != nil {
		panic(fmt.Sprintf("sizes: malformed presets.csv: %s", err))
	}
}

// Lookup returns the preset registered under name, if one exists.
func Lookup(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Names returns every registered preset name, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
