package linker

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Link script output modes.
const (
	MODE_EXECUTABLE  = "executable"
	MODE_RELOCATABLE = "relocatable"
)

// ScriptPlacement is a placement as written in a link script.
type ScriptPlacement struct {
	Section string `yaml:"section"`
	Address string `yaml:"address"`
}

// Script is a YAML link script.
type Script struct {
	Mode   string            `yaml:"mode"`
	Output string            `yaml:"output"`
	Place  []ScriptPlacement `yaml:"place"`
	Inputs []string          `yaml:"inputs"`
}

// LoadScript decodes a link script.
func LoadScript(r io.Reader) (script *Script, err error) {
	script = &Script{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err = dec.Decode(script)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		script = nil
		return
	}

	switch script.Mode {
	case "", MODE_EXECUTABLE, MODE_RELOCATABLE:
	default:
		err = fmt.Errorf("%w: %q", ErrScriptMode, script.Mode)
		script = nil
	}

	return
}

// Placements converts the script placements.
func (script *Script) Placements() (places []Placement, err error) {
	for _, sp := range script.Place {
		var addr uint64
		addr, err = strconv.ParseUint(sp.Address, 0, 32)
		if err != nil || !sectionRe.MatchString(sp.Section) {
			err = fmt.Errorf("%w: %v@%v", ErrPlacementInvalid, sp.Section, sp.Address)
			places = nil
			return
		}
		places = append(places, Placement{Section: sp.Section, Address: uint32(addr)})
	}

	return
}

// Apply configures a linker session from the script. Placements given on
// the command line replace script placements of the same section.
func (script *Script) Apply(ctx *Context) (err error) {
	places, err := script.Placements()
	if err != nil {
		return
	}

	if script.Mode == MODE_RELOCATABLE {
		ctx.Relocatable = true
	}

	for _, place := range places {
		replaced := false
		for _, have := range ctx.Placements {
			if have.Section == place.Section {
				replaced = true
				break
			}
		}
		if !replaced {
			ctx.Placements = append(ctx.Placements, place)
		}
	}

	return
}
