// metawatch keeps a resource directory's meta.xml manifest in sync with the
// files on disk, regenerating it whenever the tree changes.
package main

import (
	"os"

	"github.com/hupe1980/metawatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
