package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/karalabe/hid"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/als/adapter"
)

// bridges lists the USB to I2C bridges the als command can drive.
var bridges = []struct {
	name      string
	adapter   string
	vendorID  uint16
	productID uint16
}{
	{"MCP2221", adapterMCP2221, adapter.VendorID, adapter.ProductID},
	{"CH347", adapterCH347, adapter.CH347VendorID, adapter.CH347ProductID},
}

var usbCmd = cli.Command{
	Name:  "usb",
	Usage: "list USB HID devices",
	Subcommands: cli.Commands{
		&usbLsCmd,
		&usbDetectCmd,
	},
}

var usbLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list all HID devices",
	Action: func(c *cli.Context) error {
		devices := hid.Enumerate(0, 0)

		w := tabwriter.NewWriter(c.App.Writer, 24, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tINTERFACE\tMANUFACTURER\tPRODUCT\n")
		for _, dev := range devices {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%#x\t%#x\t%d\t%s\t%s\n",
				dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Interface, dev.Manufacturer, dev.Product)
		}
		return w.Flush()
	},
}

var usbDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "list connected bridges usable with --adapter",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(c.App.Writer, 16, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "VENDOR\tPRODUCT\tINTERFACE\tDEVICE\tADAPTER\n")
		for _, b := range bridges {
			for _, dev := range hid.Enumerate(b.vendorID, b.productID) {
				_, _ = fmt.Fprintf(w, "%#x\t%#x\t%d\t%s\t%s\n", dev.VendorID, dev.ProductID, dev.Interface, b.name, b.adapter)
			}
		}
		return w.Flush()
	},
}
