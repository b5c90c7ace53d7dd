package linker

import (
	"fmt"
	"regexp"
	"strconv"
)

// Placement pins an aggregated section to a virtual address.
type Placement struct {
	Section string
	Address uint32
}

var (
	placementRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)@(0[xX][0-9a-fA-F]+)$`)
	sectionRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ParsePlacement parses a name@0xADDR placement.
func ParsePlacement(text string) (place Placement, err error) {
	match := placementRe.FindStringSubmatch(text)
	if match == nil {
		err = fmt.Errorf("%w: %q", ErrPlacementInvalid, text)
		return
	}

	addr, err := strconv.ParseUint(match[2], 0, 32)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrPlacementInvalid, text)
		return
	}

	place = Placement{Section: match[1], Address: uint32(addr)}
	return
}

func (place Placement) String() string {
	return fmt.Sprintf("%v@0x%08x", place.Section, place.Address)
}

// span is the address range claimed by a placed section.
type span struct {
	Placement
	size uint32
}

func (sp span) end() uint64 {
	return uint64(sp.Address) + uint64(sp.size)
}

// overlaps compares half-open ranges; empty sections never overlap.
func (sp span) overlaps(other span) bool {
	if sp.size == 0 || other.size == 0 {
		return false
	}
	return uint64(sp.Address) < other.end() && uint64(other.Address) < sp.end()
}
