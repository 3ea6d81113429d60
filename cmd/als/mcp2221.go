package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/als/adapter"
	"github.com/mklimuk/als/cmd/als/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "inspect and recover the MCP2221 bridge",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221IndexFlag = &cli.IntFlag{
	Name:  "index",
	Value: -1,
	Usage: "bridge index when several are connected",
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Usage: "print the bridge I2C engine state",
	Flags: []cli.Flag{mcp2221IndexFlag},
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.Status(c.Context)
		if err != nil {
			return console.Exit(console.CodeFailure, "adapter communication error: %s", console.Red(err))
		}
		return printYAML(c, status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel a stuck transfer and release the bus",
	Flags: []cli.Flag{mcp2221IndexFlag},
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.ReleaseBus(c.Context)
		if err != nil {
			return console.Exit(console.CodeFailure, "adapter communication error: %s", console.Red(err))
		}
		return printYAML(c, status)
	},
}

func printYAML(c *cli.Context, v interface{}) error {
	enc := yaml.NewEncoder(c.App.Writer)
	defer func() { _ = enc.Close() }()
	err := enc.Encode(v)
	if err != nil {
		return console.Exit(console.CodeFailure, "encoding error: %s", console.Red(err))
	}
	return nil
}
