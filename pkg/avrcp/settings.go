package avrcp

import (
	"bytes"
	"fmt"

	"github.com/marmos91/avrcpbrowse/internal/protocol/avrcp/wire"
)

// ============================================================================
// Player Application Settings
// ============================================================================
//
// The player application setting exchanges carry small byte-oriented lists:
//
//	id list     : count(1) id(1)*                    (list attributes)
//	value list  : count(1) value(1)*                 (list values)
//	pairs       : count(1) { attr_id(1) value(1) }*  (get/set current values)
//	text list   : count(1) { id(1) text }*           (attribute/value text)
//
// ID and value lists and pair lists hold at most MaxAppAttributes entries.
// Text lists are bounded by Options.MaxAttributes and Options.MaxTextLength.

const (
	opEncodeSettings = "encode settings"
	opDecodeSettings = "decode settings"
)

// SettingPair is one (attribute, value) pair of the current settings.
type SettingPair struct {
	AttrID uint8 `json:"attr_id" yaml:"attr_id"`
	Value  uint8 `json:"value" yaml:"value"`
}

// SettingText is the display text of a setting attribute or value.
type SettingText struct {
	ID   uint8 `json:"id" yaml:"id"`
	Text Text  `json:"text" yaml:"text"`
}

// SettingPairsFromFlat converts an interleaved [id, value, id, value, ...]
// array into pairs. An odd number of entries fails with
// ErrMalformedPairList.
func SettingPairsFromFlat(flat []byte) ([]SettingPair, error) {
	if len(flat)%2 != 0 {
		return nil, newError(ErrKindMalformedPairList, "settings pairs from flat", "", -1,
			"%d entries", len(flat))
	}

	pairs := make([]SettingPair, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		pairs = append(pairs, SettingPair{AttrID: flat[i], Value: flat[i+1]})
	}
	return pairs, nil
}

// FlattenSettingPairs is the inverse of SettingPairsFromFlat.
func FlattenSettingPairs(pairs []SettingPair) []byte {
	flat := make([]byte, 0, 2*len(pairs))
	for _, p := range pairs {
		flat = append(flat, p.AttrID, p.Value)
	}
	return flat
}

// EncodeSettingIDs serializes a list of setting attribute ids (or, for the
// list values exchange, value ids).
func (c *Codec) EncodeSettingIDs(ids []uint8) ([]byte, error) {
	if len(ids) > MaxAppAttributes {
		return nil, newError(ErrKindAttributeCountExceeded, opEncodeSettings, "ids", 0,
			"%d ids, maximum %d", len(ids), MaxAppAttributes)
	}

	buf := new(bytes.Buffer)
	_ = wire.WriteUint8(buf, uint8(len(ids)))
	buf.Write(ids)
	return buf.Bytes(), nil
}

// DecodeSettingIDs parses a list written by EncodeSettingIDs.
func (c *Codec) DecodeSettingIDs(b []byte) ([]uint8, error) {
	r := wire.NewReader(b)

	count, err := c.readSettingCount(r, "ids")
	if err != nil {
		return nil, err
	}

	ids, err := r.Fixed("ids", count)
	if err != nil {
		return nil, readFailure(opDecodeSettings, "ids", err)
	}

	if err := c.checkTrailing(r, opDecodeSettings); err != nil {
		return nil, err
	}
	return ids, nil
}

// EncodeSettingValues serializes a list of values for one attribute.
func (c *Codec) EncodeSettingValues(values []uint8) ([]byte, error) {
	return c.EncodeSettingIDs(values)
}

// DecodeSettingValues parses a list written by EncodeSettingValues.
func (c *Codec) DecodeSettingValues(b []byte) ([]uint8, error) {
	return c.DecodeSettingIDs(b)
}

// EncodeSettingPairs serializes current setting values.
func (c *Codec) EncodeSettingPairs(pairs []SettingPair) ([]byte, error) {
	if len(pairs) > MaxAppAttributes {
		return nil, newError(ErrKindAttributeCountExceeded, opEncodeSettings, "pairs", 0,
			"%d pairs, maximum %d", len(pairs), MaxAppAttributes)
	}

	buf := new(bytes.Buffer)
	_ = wire.WriteUint8(buf, uint8(len(pairs)))
	buf.Write(FlattenSettingPairs(pairs))
	return buf.Bytes(), nil
}

// DecodeSettingPairs parses a list written by EncodeSettingPairs.
func (c *Codec) DecodeSettingPairs(b []byte) ([]SettingPair, error) {
	r := wire.NewReader(b)

	count, err := c.readSettingCount(r, "pairs")
	if err != nil {
		return nil, err
	}

	flat, err := r.Fixed("pairs", 2*count)
	if err != nil {
		return nil, readFailure(opDecodeSettings, "pairs", err)
	}

	if err := c.checkTrailing(r, opDecodeSettings); err != nil {
		return nil, err
	}
	return SettingPairsFromFlat(flat)
}

// EncodeSettingTexts serializes attribute or value display texts. Each text
// is limited to MaxTextLength bytes; longer texts fail with
// ErrStringTooLong instead of being truncated.
func (c *Codec) EncodeSettingTexts(texts []SettingText) ([]byte, error) {
	if len(texts) > c.opts.MaxAttributes {
		return nil, newError(ErrKindAttributeCountExceeded, opEncodeSettings, "texts", 0,
			"%d texts, maximum %d", len(texts), c.opts.MaxAttributes)
	}

	buf := new(bytes.Buffer)
	_ = wire.WriteUint8(buf, uint8(len(texts)))
	for i, t := range texts {
		_ = wire.WriteUint8(buf, t.ID)
		if err := encodeText(buf, opEncodeSettings, fmt.Sprintf("texts[%d]", i), t.Text, c.opts.MaxTextLength); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeSettingTexts parses a list written by EncodeSettingTexts.
func (c *Codec) DecodeSettingTexts(b []byte) ([]SettingText, error) {
	r := wire.NewReader(b)

	count, err := r.Uint8("texts.count")
	if err != nil {
		return nil, readFailure(opDecodeSettings, "texts.count", err)
	}
	if int(count) > c.opts.MaxAttributes {
		return nil, newError(ErrKindAttributeCountExceeded, opDecodeSettings, "texts", 0,
			"%d texts, maximum %d", count, c.opts.MaxAttributes)
	}

	texts := make([]SettingText, 0, count)
	for i := 0; i < int(count); i++ {
		field := fmt.Sprintf("texts[%d]", i)

		id, err := r.Uint8(field + ".id")
		if err != nil {
			return nil, readFailure(opDecodeSettings, field+".id", err)
		}
		text, err := c.decodeText(r, opDecodeSettings, field+".text")
		if err != nil {
			return nil, err
		}
		texts = append(texts, SettingText{ID: id, Text: text})
	}

	if err := c.checkTrailing(r, opDecodeSettings); err != nil {
		return nil, err
	}
	return texts, nil
}

func (c *Codec) readSettingCount(r *wire.Reader, field string) (int, error) {
	count, err := r.Uint8(field + ".count")
	if err != nil {
		return 0, readFailure(opDecodeSettings, field+".count", err)
	}
	if int(count) > MaxAppAttributes {
		return 0, newError(ErrKindAttributeCountExceeded, opDecodeSettings, field, 0,
			"%d entries, maximum %d", count, MaxAppAttributes)
	}
	return int(count), nil
}
