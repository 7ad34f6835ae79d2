// Command kbperm searches, permutes, and ranks keyboard layouts by
// exhaustively enumerating character assignments against n-gram
// frequency and fingering-effort models.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "kbperm",
		Usage: "exhaustive keyboard layout permutation search",
		Commands: []*cli.Command{
			searchCommand,
			rankCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if isBrokenPipe(err) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "kbperm:", err)
		os.Exit(1)
	}
}

// isBrokenPipe reports whether err (or a write error wrapping it)
// resulted from the reader end of stdout going away; the process
// exits 0 in that case instead of reporting an error.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
