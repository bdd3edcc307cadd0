package display

import (
	"fmt"
	"io"

	"github.com/backmassage/skipfix/internal/term"
)

const banner = `     _    _        __ _
 ___| | _(_)_ __  / _(_)_  __
/ __| |/ / | '_ \| |_| \ \/ /
\__ \   <| | |_) |  _| |>  <
|___/_|\_\_| .__/|_| |_/_/\_\
           |_|
`

// PrintBanner prints the ASCII art banner in magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta.Sprint(banner))
	fmt.Fprintln(w)
}
