package main

import (
	"fmt"
	"os"

	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// encodeDocument parses a YAML document of the given kind and
// encodes it. Lengths are only returned for folder item lists.
func encodeDocument(codec *avrcp.Codec, kind capture.Kind, doc []byte) ([]byte, []uint32, error) {
	switch kind {
	case capture.KindFolderItems, capture.KindPlayerList:
		var list avrcp.FolderItemList
		if err := yaml.Unmarshal(doc, &list); err != nil {
			return nil, nil, fmt.Errorf("invalid folder item list: %w", err)
		}
		if kind == capture.KindPlayerList && len(list.Players()) != list.Count() {
			return nil, nil, fmt.Errorf("a media player list may only hold player entries")
		}
		return codec.EncodeFolderItemsFramed(&list)

	case capture.KindElementAttributes:
		var attrs []avrcp.Attribute
		if err := yaml.Unmarshal(doc, &attrs); err != nil {
			return nil, nil, fmt.Errorf("invalid attribute list: %w", err)
		}
		data, err := codec.EncodeElementAttributes(attrs)
		return data, nil, err

	case capture.KindSettingIDs, capture.KindSettingValues:
		var ids []uint8
		if err := yaml.Unmarshal(doc, &ids); err != nil {
			return nil, nil, fmt.Errorf("invalid id list: %w", err)
		}
		data, err := codec.EncodeSettingIDs(ids)
		return data, nil, err

	case capture.KindSettingPairs:
		var pairs []avrcp.SettingPair
		if err := yaml.Unmarshal(doc, &pairs); err != nil {
			return nil, nil, fmt.Errorf("invalid setting pairs: %w", err)
		}
		data, err := codec.EncodeSettingPairs(pairs)
		return data, nil, err

	case capture.KindSettingTexts:
		var texts []avrcp.SettingText
		if err := yaml.Unmarshal(doc, &texts); err != nil {
			return nil, nil, fmt.Errorf("invalid setting texts: %w", err)
		}
		data, err := codec.EncodeSettingTexts(texts)
		return data, nil, err

	case capture.KindFolderItemsRequest:
		var req avrcp.FolderItemsRequest
		if err := yaml.Unmarshal(doc, &req); err != nil {
			return nil, nil, fmt.Errorf("invalid folder items request: %w", err)
		}
		data, err := codec.EncodeFolderItemsRequest(&req)
		return data, nil, err

	default:
		return nil, nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}

func newEncodeCommand(a *app) *cobra.Command {
	var (
		kind    string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a YAML document into a binary payload",
		Long: `Encode a YAML document, in the format printed by decode, into the binary
payload layout.

Without --out the payload is printed as hex. For folder item lists the
per-item lengths are printed on a second line.`,
		Example: `  avrcpbrowse decode response.bin | avrcpbrowse encode --out copy.bin
  echo '[{attr_id: 2, value: 1}]' | avrcpbrowse encode --kind setting_pairs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := capture.ParseKind(kind)
			if err != nil {
				return err
			}

			doc, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			codec, err := a.codec()
			if err != nil {
				return err
			}

			data, lengths, err := encodeDocument(codec, k, doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outFile != "" {
				if err := os.WriteFile(outFile, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", outFile, err)
				}
				if lengths != nil {
					fmt.Fprintf(out, "item_lengths: %s\n", formatLengths(lengths))
				}
				return nil
			}

			fmt.Fprintf(out, "%x\n", data)
			if lengths != nil {
				fmt.Fprintf(out, "item_lengths: %s\n", formatLengths(lengths))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&kind, "kind", "k", string(capture.KindFolderItems), "Payload kind: "+kindNames())
	flags.StringVar(&outFile, "out", "", "Write the raw payload to this file instead of printing hex")

	return cmd
}
