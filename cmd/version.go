package cmd

import (
	"fmt"
	"io"

	"github.com/earthboundkid/versioninfo/v2"
)

func Version(w io.Writer) {
	fmt.Fprintf(w, "pixel-array-viewer %s\n", versioninfo.Short())
}
