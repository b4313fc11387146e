package avrcp

import (
	"bytes"
	"fmt"

	"github.com/marmos91/avrcpbrowse/internal/protocol/avrcp/wire"
)

const (
	opEncodeItems = "encode folder items"
	opDecodeItems = "decode folder items"

	// minItemSize is the smallest encoded item (folder or media with an
	// empty name and no attributes). Used only to bound preallocation.
	minItemSize = 15
)

// ============================================================================
// Encoding
// ============================================================================

// EncodeFolderItems serializes list into its flat wire record.
//
// Errors:
//   - ErrAttributeCountExceeded: a media element carries more than
//     MaxAttributes attributes
//   - ErrStringTooLong: a name or attribute value exceeds 65535 bytes
//   - ErrFeatureListOverflow: a player feature source exceeds 16 bytes
//   - ErrUnknownItemTag: an item's Kind is unknown or its variant is unset
func (c *Codec) EncodeFolderItems(list *FolderItemList) ([]byte, error) {
	b, _, err := c.encodeFolderItems(list)
	return b, err
}

// EncodeFolderItemsFramed serializes list and also returns the encoded byte
// length of every item, in order. The native response call takes this
// lengths array alongside the payload.
func (c *Codec) EncodeFolderItemsFramed(list *FolderItemList) ([]byte, []uint32, error) {
	return c.encodeFolderItems(list)
}

func (c *Codec) encodeFolderItems(list *FolderItemList) ([]byte, []uint32, error) {
	if list == nil {
		return nil, nil, newError(ErrKindTruncatedRecord, opEncodeItems, "", -1, "nil list")
	}

	buf := new(bytes.Buffer)

	_ = wire.WriteUint8(buf, list.Status)
	_ = wire.WriteUint32(buf, list.UIDCounter)
	_ = wire.WriteUint32(buf, uint32(len(list.Items)))

	lengths := make([]uint32, 0, len(list.Items))
	for i := range list.Items {
		start := buf.Len()
		if err := c.encodeItem(buf, i, &list.Items[i]); err != nil {
			return nil, nil, err
		}
		lengths = append(lengths, uint32(buf.Len()-start))
	}

	return buf.Bytes(), lengths, nil
}

func (c *Codec) encodeItem(buf *bytes.Buffer, i int, it *FolderItem) error {
	prefix := fmt.Sprintf("items[%d]", i)

	switch {
	case it.Kind == ItemPlayer && it.Player != nil:
		return c.encodePlayer(buf, prefix, it.Player)
	case it.Kind == ItemFolder && it.Folder != nil:
		return c.encodeFolder(buf, prefix, it.Folder)
	case it.Kind == ItemMedia && it.Media != nil:
		return c.encodeMedia(buf, prefix, it.Media)
	default:
		return newError(ErrKindUnknownItemTag, opEncodeItems, prefix, buf.Len(),
			"kind %s without matching variant", it.Kind)
	}
}

func (c *Codec) encodePlayer(buf *bytes.Buffer, prefix string, p *PlayerItem) error {
	if len(p.Features) > FeatureMaskSize {
		return newError(ErrKindFeatureListOverflow, opEncodeItems, prefix+".features", buf.Len(),
			"%d bytes, mask is %d", len(p.Features), FeatureMaskSize)
	}

	_ = wire.WriteUint8(buf, TagPlayer)
	_ = wire.WriteUint16(buf, p.PlayerID)
	_ = wire.WriteUint8(buf, p.MajorType)
	_ = wire.WriteUint32(buf, p.SubType)
	_ = wire.WriteUint8(buf, p.PlayStatus)
	if err := wire.WritePadded(buf, p.Features, FeatureMaskSize); err != nil {
		return newError(ErrKindFeatureListOverflow, opEncodeItems, prefix+".features", buf.Len(), "%v", err)
	}

	return encodeText(buf, opEncodeItems, prefix+".name", p.Name, MaxStringLength)
}

func (c *Codec) encodeFolder(buf *bytes.Buffer, prefix string, f *FolderEntry) error {
	_ = wire.WriteUint8(buf, TagFolder)
	_ = wire.WriteUint64(buf, f.UID)
	_ = wire.WriteUint8(buf, f.FolderType)
	_ = wire.WriteBool(buf, f.Playable)

	return encodeText(buf, opEncodeItems, prefix+".name", f.Name, MaxStringLength)
}

func (c *Codec) encodeMedia(buf *bytes.Buffer, prefix string, m *MediaElement) error {
	_ = wire.WriteUint8(buf, TagMedia)
	_ = wire.WriteUint64(buf, m.UID)
	_ = wire.WriteUint8(buf, m.MediaType)

	if err := encodeText(buf, opEncodeItems, prefix+".name", m.Name, MaxStringLength); err != nil {
		return err
	}

	return c.encodeAttributeList(buf, opEncodeItems, prefix+".attributes", m.Attributes, MaxStringLength)
}

// ============================================================================
// Decoding
// ============================================================================

// DecodeFolderItems parses a folder item list record.
//
// The header is read first; then exactly item_count items are decoded, each
// selected by its tag byte. Decode either returns a list with
// len(Items) == item_count or fails; it never returns partial results.
//
// Errors:
//   - ErrTruncatedRecord: the buffer ends inside a fixed-width field
//   - ErrStringLengthOverflow: a string's declared length runs past the end
//   - ErrInvalidUTF8: a UTF-8 string is invalid (strict policy)
//   - ErrUnknownItemTag: a tag is not player, folder or media
//   - ErrAttributeCountExceeded: a media item declares too many attributes
//   - ErrTrailingBytes: bytes remain after the last item
func (c *Codec) DecodeFolderItems(b []byte) (*FolderItemList, error) {
	list, _, err := c.decodeFolderItems(b)
	return list, err
}

// DecodeFolderItemsFramed decodes b and checks it against the per-item
// byte lengths declared by the sender.
//
// The declared lengths must cover exactly item_count items and every item
// must consume exactly its declared length. Any mismatch fails with
// ErrTruncatedRecord; the record is never re-synchronised.
func (c *Codec) DecodeFolderItemsFramed(b []byte, declared []uint32) (*FolderItemList, error) {
	list, actual, err := c.decodeFolderItems(b)
	if err != nil {
		return nil, err
	}

	if len(declared) != len(actual) {
		return nil, newError(ErrKindTruncatedRecord, opDecodeItems, "item_lengths", -1,
			"%d declared lengths for %d items", len(declared), len(actual))
	}

	var offset uint32 = headerSize
	for i := range actual {
		if declared[i] != actual[i] {
			return nil, newError(ErrKindTruncatedRecord, opDecodeItems, fmt.Sprintf("items[%d]", i), int(offset),
				"declared length %d, decoded %d", declared[i], actual[i])
		}
		offset += actual[i]
	}

	return list, nil
}

const headerSize = 9

func (c *Codec) decodeFolderItems(b []byte) (*FolderItemList, []uint32, error) {
	r := wire.NewReader(b)

	status, err := r.Uint8("status")
	if err != nil {
		return nil, nil, readFailure(opDecodeItems, "status", err)
	}
	uidCounter, err := r.Uint32("uid_counter")
	if err != nil {
		return nil, nil, readFailure(opDecodeItems, "uid_counter", err)
	}
	count, err := r.Uint32("item_count")
	if err != nil {
		return nil, nil, readFailure(opDecodeItems, "item_count", err)
	}

	// item_count is untrusted; size the slice by what could possibly fit.
	capacity := int(min(uint64(count), uint64(r.Remaining()/minItemSize)))

	list := &FolderItemList{
		Status:     status,
		UIDCounter: uidCounter,
		Items:      make([]FolderItem, 0, capacity),
	}
	lengths := make([]uint32, 0, capacity)

	for i := uint32(0); i < count; i++ {
		start := r.Offset()
		item, err := c.decodeItem(r, int(i))
		if err != nil {
			return nil, nil, err
		}
		list.Items = append(list.Items, item)
		lengths = append(lengths, uint32(r.Offset()-start))
	}

	if err := c.checkTrailing(r, opDecodeItems); err != nil {
		return nil, nil, err
	}

	return list, lengths, nil
}

func (c *Codec) decodeItem(r *wire.Reader, i int) (FolderItem, error) {
	prefix := fmt.Sprintf("items[%d]", i)

	start := r.Offset()
	tag, err := r.Uint8(prefix + ".tag")
	if err != nil {
		return FolderItem{}, readFailure(opDecodeItems, prefix+".tag", err)
	}

	switch tag {
	case TagPlayer:
		p, err := c.decodePlayer(r, prefix)
		if err != nil {
			return FolderItem{}, err
		}
		return FolderItem{Kind: ItemPlayer, Player: p}, nil
	case TagFolder:
		f, err := c.decodeFolder(r, prefix)
		if err != nil {
			return FolderItem{}, err
		}
		return FolderItem{Kind: ItemFolder, Folder: f}, nil
	case TagMedia:
		m, err := c.decodeMedia(r, prefix)
		if err != nil {
			return FolderItem{}, err
		}
		return FolderItem{Kind: ItemMedia, Media: m}, nil
	default:
		return FolderItem{}, newError(ErrKindUnknownItemTag, opDecodeItems, prefix+".tag", start,
			"tag 0x%02x", tag)
	}
}

func (c *Codec) decodePlayer(r *wire.Reader, prefix string) (*PlayerItem, error) {
	var (
		p   PlayerItem
		err error
	)

	if p.PlayerID, err = r.Uint16(prefix + ".player_id"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".player_id", err)
	}
	if p.MajorType, err = r.Uint8(prefix + ".major_type"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".major_type", err)
	}
	if p.SubType, err = r.Uint32(prefix + ".sub_type"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".sub_type", err)
	}
	if p.PlayStatus, err = r.Uint8(prefix + ".play_status"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".play_status", err)
	}
	if p.Features, err = r.Fixed(prefix+".features", FeatureMaskSize); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".features", err)
	}
	if p.Name, err = c.decodeText(r, opDecodeItems, prefix+".name"); err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Codec) decodeFolder(r *wire.Reader, prefix string) (*FolderEntry, error) {
	var (
		f   FolderEntry
		err error
	)

	if f.UID, err = r.Uint64(prefix + ".uid"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".uid", err)
	}
	if f.FolderType, err = r.Uint8(prefix + ".folder_type"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".folder_type", err)
	}
	if f.Playable, err = r.Bool(prefix + ".playable"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".playable", err)
	}
	if f.Name, err = c.decodeText(r, opDecodeItems, prefix+".name"); err != nil {
		return nil, err
	}

	return &f, nil
}

func (c *Codec) decodeMedia(r *wire.Reader, prefix string) (*MediaElement, error) {
	var (
		m   MediaElement
		err error
	)

	if m.UID, err = r.Uint64(prefix + ".uid"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".uid", err)
	}
	if m.MediaType, err = r.Uint8(prefix + ".media_type"); err != nil {
		return nil, readFailure(opDecodeItems, prefix+".media_type", err)
	}
	if m.Name, err = c.decodeText(r, opDecodeItems, prefix+".name"); err != nil {
		return nil, err
	}

	if m.Attributes, err = c.decodeAttributeList(r, opDecodeItems, prefix+".attributes"); err != nil {
		return nil, err
	}

	return &m, nil
}
