package main

import (
	"fmt"
	"strings"

	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
	"github.com/spf13/cobra"
)

// kindNames lists the payload kinds for flag help.
func kindNames() string {
	names := make([]string, len(capture.Kinds))
	for i, k := range capture.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newDecodeCommand(a *app) *cobra.Command {
	var (
		kind    string
		hexData string
		lengths string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a binary payload and print it",
		Long: `Decode a binary payload read from a file, stdin or --hex and print the
decoded value as YAML or JSON.

Folder item payloads can be checked against the per-item lengths declared by
the sender with --lengths.`,
		Example: `  avrcpbrowse decode --kind folder_items response.bin
  avrcpbrowse decode --kind setting_pairs --hex "02 01 02 02 01"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := capture.ParseKind(kind)
			if err != nil {
				return err
			}

			var data []byte
			if hexData != "" {
				if len(args) > 0 {
					return fmt.Errorf("--hex and a file argument are mutually exclusive")
				}
				data, err = parseHex(hexData)
			} else {
				data, err = readInput(cmd, args)
			}
			if err != nil {
				return err
			}

			itemLengths, err := parseLengths(lengths)
			if err != nil {
				return err
			}

			codec, err := a.codec()
			if err != nil {
				return err
			}

			value, _, err := inspector.Decode(codec, inspector.Payload{Kind: k, Data: data, ItemLengths: itemLengths})
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), value, output)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&kind, "kind", "k", string(capture.KindFolderItems), "Payload kind: "+kindNames())
	flags.StringVar(&hexData, "hex", "", "Read the payload from this hex string instead of a file")
	flags.StringVar(&lengths, "lengths", "", "Declared per-item lengths, comma separated (folder_items, player_list)")
	flags.StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")

	return cmd
}
