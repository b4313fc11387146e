package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run executes one CLI invocation with a fresh app, like a separate
// process would.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	a := &app{}
	cmd := newRootCommand(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

// isolate keeps tests away from any real configuration.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// writeConfig writes a config using a fresh badger capture store that
// records every payload.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf(`logging:
  level: ERROR
capture:
  type: badger
  badger:
    db_path: %s
inspector:
  capture_mode: all
`, filepath.Join(dir, "captures"))

	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sampleList() *avrcp.FolderItemList {
	return &avrcp.FolderItemList{
		Status:     avrcp.StatusNoError,
		UIDCounter: 3,
		Items: []avrcp.FolderItem{
			avrcp.NewFolder(avrcp.FolderEntry{UID: 42, FolderType: avrcp.FolderTypeAlbums, Playable: true, Name: avrcp.UTF8("Albums")}),
			avrcp.NewMedia(avrcp.MediaElement{
				UID:        7,
				MediaType:  avrcp.MediaTypeAudio,
				Name:       avrcp.UTF8("Song A"),
				Attributes: []avrcp.Attribute{{ID: avrcp.AttrTitle, Value: avrcp.UTF8("Song A")}},
			}),
		},
	}
}

const sampleListYAML = `status: 4
uid_counter: 3
items:
  - kind: folder
    folder:
      uid: 42
      folder_type: 2
      playable: true
      name: {charset_id: 106, value: Albums}
  - kind: media
    media:
      uid: 7
      media_type: 0
      name: {charset_id: 106, value: Song A}
      attributes:
        - id: 1
          value: {charset_id: 106, value: Song A}
`

func TestDecode_Hex(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "decode", "--kind", "setting_pairs", "--hex", "02 01 02 02 01")
	require.NoError(t, err)
	assert.Equal(t, "- attr_id: 1\n  value: 2\n- attr_id: 2\n  value: 1\n", out)
}

func TestDecode_FileWithLengths(t *testing.T) {
	isolate(t)

	data, lengths, err := avrcp.DefaultCodec().EncodeFolderItemsFramed(sampleList())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "response.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))

	out, err := run(t, "", "decode", path, "--lengths", formatLengths(lengths), "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"uid_counter": 3`)
	assert.Contains(t, out, `"kind": "media"`)
	assert.Contains(t, out, `"value": "Albums"`)

	lengths[1]++
	_, err = run(t, "", "decode", path, "--lengths", formatLengths(lengths))
	assert.True(t, errors.Is(err, avrcp.ErrTruncatedRecord))
}

func TestDecode_Stdin(t *testing.T) {
	isolate(t)

	out, err := run(t, string([]byte{0x02, 0x01, 0x02}), "decode", "--kind", "setting_ids")
	require.NoError(t, err)

	var ids []uint8
	require.NoError(t, yaml.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []uint8{0x01, 0x02}, ids)
}

func TestDecode_Errors(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "decode", "--kind", "setting_pairs", "--hex", "05 01")
	assert.True(t, errors.Is(err, avrcp.ErrTruncatedRecord))

	_, err = run(t, "", "decode", "--kind", "bogus", "--hex", "00")
	assert.ErrorContains(t, err, "unknown payload kind")

	_, err = run(t, "", "decode", "--hex", "zz")
	assert.ErrorContains(t, err, "invalid hex")

	_, err = run(t, "", "decode", "--hex", "00", "file.bin")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestEncode_FolderItems(t *testing.T) {
	isolate(t)

	want, lengths, err := avrcp.DefaultCodec().EncodeFolderItemsFramed(sampleList())
	require.NoError(t, err)

	out, err := run(t, sampleListYAML, "encode")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x\nitem_lengths: %s\n", want, formatLengths(lengths)), out)
}

func TestEncode_ToFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "pairs.bin")
	out, err := run(t, "[{attr_id: 2, value: 1}]", "encode", "--kind", "setting_pairs", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x01}, data)
}

func TestEncode_PlayerListRejectsFolders(t *testing.T) {
	isolate(t)

	_, err := run(t, sampleListYAML, "encode", "--kind", "player_list")
	assert.ErrorContains(t, err, "only hold player entries")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	isolate(t)

	out, err := run(t, sampleListYAML, "encode")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	decoded, err := run(t, "", "decode", "--hex", lines[0], "--lengths", strings.TrimPrefix(lines[1], "item_lengths: "))
	require.NoError(t, err)

	again, err := run(t, decoded, "encode")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

var (
	captureIDPattern = regexp.MustCompile(`capture ([0-9a-f-]{36})`)
	uuidPattern      = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

func TestIngestAndCaptures(t *testing.T) {
	isolate(t)
	cfgPath := writeConfig(t)

	data, lengths, err := avrcp.DefaultCodec().EncodeFolderItemsFramed(sampleList())
	require.NoError(t, err)

	input := fmt.Sprintf(`# recorded on the bench
folder_items %x %s
setting_pairs 0501

setting_ids 020102
not-a-kind 00
`, data, formatLengths(lengths))

	out, err := run(t, input, "--config", cfgPath, "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "stdin:2: folder_items ok, 2 items")
	assert.Contains(t, out, "stdin:3: setting_pairs TruncatedRecord")
	assert.Contains(t, out, "stdin:6: invalid line")
	assert.Contains(t, out, "ingested 4 payloads: 2 ok, 2 failed, 0 dropped")

	// Only successful payloads report their capture id
	assert.Len(t, captureIDPattern.FindAllStringSubmatch(out, -1), 2)

	list, err := run(t, "", "--config", cfgPath, "captures", "list", "--kind", "setting_pairs")
	require.NoError(t, err)
	assert.Contains(t, list, "TruncatedRecord")
	assert.NotContains(t, list, "folder_items")

	failedID := uuidPattern.FindString(list)
	require.NotEmpty(t, failedID)

	all, err := run(t, "", "--config", cfgPath, "captures", "list")
	require.NoError(t, err)
	assert.Equal(t, 3, len(uuidPattern.FindAllString(all, -1)))

	show, err := run(t, "", "--config", cfgPath, "captures", "show", failedID)
	require.NoError(t, err)
	assert.Contains(t, show, "outcome:      TruncatedRecord")
	assert.Contains(t, show, "note:         stdin:3")
	assert.Contains(t, show, "decode: TruncatedRecord")

	out, err = run(t, "", "--config", cfgPath, "captures", "delete", failedID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+failedID)

	_, err = run(t, "", "--config", cfgPath, "captures", "show", failedID)
	assert.True(t, errors.Is(err, capture.ErrCaptureNotFound))
}

func TestCapturesShowDecodes(t *testing.T) {
	isolate(t)
	cfgPath := writeConfig(t)

	out, err := run(t, "setting_ids 020102\n", "--config", cfgPath, "ingest")
	require.NoError(t, err)
	ids := captureIDPattern.FindStringSubmatch(out)
	require.Len(t, ids, 2)

	show, err := run(t, "", "--config", cfgPath, "captures", "show", ids[1])
	require.NoError(t, err)
	assert.Contains(t, show, "outcome:      ok")
	assert.Contains(t, show, "payload:      3 B")

	_, decoded, found := strings.Cut(show, "decoded:\n")
	require.True(t, found)

	var values []uint8
	require.NoError(t, yaml.Unmarshal([]byte(decoded), &values))
	assert.Equal(t, []uint8{0x01, 0x02}, values)
}

func TestCaptures_InvalidArgs(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "captures", "show", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid capture id")

	_, err = run(t, "", "captures", "list", "--limit=-1")
	assert.ErrorContains(t, err, "--limit")
}

func TestExport_ArchiveDisabled(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "export")
	assert.ErrorContains(t, err, "archive is disabled")
}

func TestInit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "avrcpbrowse.yaml")

	out, err := run(t, "", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "", "init", "--path", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "", "init", "--path", path, "--force")
	require.NoError(t, err)

	// The written file is usable as --config
	_, err = run(t, "", "--config", path, "decode", "--kind", "setting_ids", "--hex", "00")
	require.NoError(t, err)
}

func TestParseLengths(t *testing.T) {
	lengths, err := parseLengths(" 21, 37 ")
	require.NoError(t, err)
	assert.Equal(t, []uint32{21, 37}, lengths)

	lengths, err = parseLengths("")
	require.NoError(t, err)
	assert.Nil(t, lengths)

	_, err = parseLengths("21,x")
	assert.Error(t, err)

	_, err = parseLengths("4294967296")
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	data, err := parseHex("0x01 02\n0a")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x0a}, data)
}

func TestParseIngestLine(t *testing.T) {
	p, err := parseIngestLine("folder_items 0400 5,6")
	require.NoError(t, err)
	assert.Equal(t, capture.KindFolderItems, p.Kind)
	assert.Equal(t, []byte{0x04, 0x00}, p.Data)
	assert.Equal(t, []uint32{5, 6}, p.ItemLengths)

	_, err = parseIngestLine("folder_items")
	assert.Error(t, err)

	_, err = parseIngestLine("folder_items 00 1 extra")
	assert.Error(t, err)
}

func TestCapturesPrune(t *testing.T) {
	isolate(t)
	cfgPath := writeConfig(t)

	_, err := run(t, "setting_ids 020102\nsetting_pairs 0501\n", "--config", cfgPath, "ingest")
	require.NoError(t, err)

	out, err := run(t, "", "--config", cfgPath, "captures", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 of 2 captures")

	out, err = run(t, "", "--config", cfgPath, "captures", "prune", "--max-age", "1ns", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would delete 2 of 2 captures")

	out, err = run(t, "", "--config", cfgPath, "captures", "prune", "--max-age", "1ns", "--keep-failures")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1 of 2 captures")

	list, err := run(t, "", "--config", cfgPath, "captures", "list")
	require.NoError(t, err)
	assert.Contains(t, list, "TruncatedRecord")
	assert.Len(t, uuidPattern.FindAllString(list, -1), 1)
}
