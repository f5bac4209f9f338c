// Command boxctl is a small demonstration CLI over the codec engine: it
// decodes a hex-encoded frame against one of a handful of built-in demo
// message descriptors and prints the resulting object graph.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/driver"
)

func demoMessages() map[string]*descriptor.Message {
	simple := &descriptor.Message{
		Name: "simple",
		Fields: []*descriptor.Field{
			{Name: "flag", Kind: descriptor.KindByte},
			{Name: "value", Kind: descriptor.KindInt, Endianness: bitstream.BigEndian},
		},
	}
	frame := &descriptor.Message{
		Name: "frame",
		Fields: []*descriptor.Field{
			{Name: "payload", Kind: descriptor.KindShort, Endianness: bitstream.BigEndian},
			{Name: "crc", Kind: descriptor.KindChecksum, Checksum: &descriptor.ChecksumSpec{
				Algorithm: "CRC16/CCITT-FALSE",
				Seed:      0xFFFF,
				SkipEnd:   2,
				WidthBits: 16,
			}},
		},
	}
	return map[string]*descriptor.Message{"simple": simple, "frame": frame}
}

func decodeCommand(c *cli.Context) error {
	name := c.Args().First()
	hexInput := c.String("hex")
	if name == "" || hexInput == "" {
		return cli.NewExitError("usage: boxctl decode <message> --hex <hexbytes>", 1)
	}

	msgs := demoMessages()
	msg, ok := msgs[name]
	if !ok {
		names := make([]string, 0, len(msgs))
		for n := range msgs {
			names = append(names, n)
		}
		sort.Strings(names)
		return cli.NewExitError(fmt.Sprintf("unknown message %q, have %v", name, names), 1)
	}

	raw, err := hex.DecodeString(hexInput)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid hex: %v", err), 1)
	}

	d := driver.New()
	obj, err := d.Decode(msg, raw)
	if err != nil {
		color.Red("decode failed: %v", err)
		return cli.NewExitError(err, 1)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		color.Cyan("%s", k)
		fmt.Printf(" = %v\n", obj[k])
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "boxctl"
	app.Usage = "decode hex frames against built-in demo message descriptors"
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "decode <message> --hex <hexbytes>",
			ArgsUsage: "<message>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "hex", Usage: "hex-encoded frame bytes"},
			},
			Action: decodeCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
