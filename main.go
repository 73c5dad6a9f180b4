package main

import (
	"context"
	"fmt"
	"os"

	"fjacquet/spend-dashboard/cmd/formats"
	"fjacquet/spend-dashboard/cmd/root"
	"fjacquet/spend-dashboard/cmd/serve"
	"fjacquet/spend-dashboard/cmd/summary"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(formats.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
