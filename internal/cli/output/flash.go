package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/foxcodenine/iot-parking-console/internal/cli/flash"
)

type flashStyle struct {
	mark  string
	color *color.Color
}

// Colours follow flash.Severity.Class: blue, red, orange, green.
var flashStyles = map[flash.Severity]flashStyle{
	flash.SeverityInfo:    {"i", color.New(color.FgBlue)},
	flash.SeverityError:   {"✗", color.New(color.FgRed)},
	flash.SeverityWarning: {"!", color.New(color.FgYellow)},
	flash.SeveritySuccess: {"✓", color.New(color.FgGreen)},
}

// Flash writes one line per message, prefixed by a severity mark. Colour
// is dropped when stdout is not a terminal.
func Flash(w io.Writer, snap flash.Snapshot) {
	style, ok := flashStyles[snap.Severity]
	if !ok {
		style = flashStyles[flash.SeverityInfo]
	}
	for _, m := range snap.Messages {
		fmt.Fprintln(w, style.color.Sprintf("%s %s", style.mark, m))
	}
}
