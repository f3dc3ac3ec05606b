// Command qparam compiles URL query parameters into filter expressions and
// SQL, and runs them against a SQLite content database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/qparam/internal/cli"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "qparam:", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
