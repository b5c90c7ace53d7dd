package object

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/triad/translate"
)

const dumpWidth = 8

func flagString(set bool, name string) string {
	if set {
		return name
	}
	return strings.Repeat("-", len(name))
}

// Dump writes the tables in a human-readable form.
func (obj *Object) Dump(w io.Writer) (err error) {
	var sb strings.Builder

	translate.Fprint(&sb, "#.symtab\n")
	translate.Fprint(&sb, "%5s %-16s %-12s %10s %s\n", "index", "name", "section", "value", "flags")
	for index, sym := range obj.Symbols {
		section := fmt.Sprintf("%d", sym.Section)
		if int(sym.Section) < len(obj.Sections) {
			section = obj.Sections[sym.Section].Name
		}
		fmt.Fprintf(&sb, "%5d %-16s %-12s 0x%08x %s%s%s\n", index, sym.Name, section, uint32(sym.Value),
			flagString(sym.Defined, "D"), flagString(sym.External, "E"), flagString(sym.Global, "G"))
	}

	for index, sec := range obj.Sections {
		if index <= int(SECTION_ABSOLUTE) {
			continue
		}
		translate.Fprint(&sb, "\n#.%s base 0x%x length 0x%x\n", sec.Name, uint32(sec.Base), sec.Length)
		dumpBytes(&sb, 0, sec.Bytes())
	}

	if len(obj.Relocations) != 0 {
		translate.Fprint(&sb, "\n#.rela\n")
		translate.Fprint(&sb, "%-12s %10s %-6s %-16s %10s\n", "section", "offset", "type", "symbol", "addend")
		for _, rel := range obj.Relocations {
			section, symbol := "?", "?"
			if int(rel.Section) < len(obj.Sections) {
				section = obj.Sections[rel.Section].Name
			}
			if int(rel.Symbol) < len(obj.Symbols) {
				symbol = obj.Symbols[rel.Symbol].Name
			}
			fmt.Fprintf(&sb, "%-12s 0x%08x %-6v %-16s %10d\n", section, rel.Offset, rel.Type, symbol, rel.Addend)
		}
	}

	_, err = io.WriteString(w, sb.String())
	return
}

// Dump writes a hex listing of every segment.
func (exe *Executable) Dump(w io.Writer) (err error) {
	var sb strings.Builder

	for _, seg := range exe.Segments {
		dumpBytes(&sb, seg.Address, seg.Data)
	}

	_, err = io.WriteString(w, sb.String())
	return
}

func dumpBytes(sb *strings.Builder, addr uint32, data []byte) {
	for n := 0; n < len(data); n += dumpWidth {
		fmt.Fprintf(sb, "%08x:", addr+uint32(n))
		for _, b := range data[n:min(n+dumpWidth, len(data))] {
			fmt.Fprintf(sb, " %02x", b)
		}
		sb.WriteString("\n")
	}
}
