package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Exit codes reported by the CLI.
const (
	CodeFailure  = 1
	CodeNotFound = 2
	CodeNotReady = 3
	CodeAborted  = 4
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}
