package sequence

import (
	"fmt"
	"strconv"
)

// NumberFormat renders human-readable document numbers from allocated sequence
// values. Rendering is pure and never consults storage.
type NumberFormat struct {
	Prefix string
	Width  int
}

// Render formats an allocated value using the zero-padded template,
// e.g. Prefix "AR-" and Width 6 render 42 as "AR-000042".
func (f NumberFormat) Render(value int64) string {
	if f.Width <= 0 {
		return f.Prefix + strconv.FormatInt(value, 10)
	}
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, value)
}
