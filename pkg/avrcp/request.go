package avrcp

import (
	"bytes"

	"github.com/marmos91/avrcpbrowse/internal/protocol/avrcp/wire"
)

const (
	opEncodeRequest = "encode folder items request"
	opDecodeRequest = "decode folder items request"

	requestSize = 13
)

// FolderItemsRequest is a get folder items request as delivered by the
// native stack:
//
//	scope(1) start_item(4) end_item(4) size(4)
//
// Size is the maximum response size the remote accepts, in bytes.
type FolderItemsRequest struct {
	Scope     uint8  `json:"scope" yaml:"scope"`
	StartItem uint32 `json:"start_item" yaml:"start_item"`
	EndItem   uint32 `json:"end_item" yaml:"end_item"`
	Size      uint32 `json:"size" yaml:"size"`
}

// Validate checks the scope and item range.
func (req *FolderItemsRequest) Validate() error {
	return req.validate(opDecodeRequest)
}

func (req *FolderItemsRequest) validate(op string) error {
	if req.Scope > ScopeNowPlaying {
		return newError(ErrKindUnknownScope, op, "scope", 0, "scope 0x%02x", req.Scope)
	}
	if req.StartItem > req.EndItem {
		return newError(ErrKindInvalidRange, op, "start_item", 1,
			"start %d after end %d", req.StartItem, req.EndItem)
	}
	return nil
}

// ItemCount returns the number of items the request asks for. It is wider
// than the range fields since 0..0xFFFFFFFF spans 2^32 items.
func (req *FolderItemsRequest) ItemCount() uint64 {
	return uint64(req.EndItem) - uint64(req.StartItem) + 1
}

// Window returns the slice of items selected by the request. Bounds past
// the end of items are clamped.
func (req *FolderItemsRequest) Window(items []FolderItem) []FolderItem {
	start := uint64(req.StartItem)
	end := uint64(req.EndItem) + 1
	n := uint64(len(items))

	if start >= n {
		return []FolderItem{}
	}
	if end > n {
		end = n
	}
	return items[start:end]
}

// EncodeFolderItemsRequest serializes req.
func (c *Codec) EncodeFolderItemsRequest(req *FolderItemsRequest) ([]byte, error) {
	if err := req.validate(opEncodeRequest); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.Grow(requestSize)

	_ = wire.WriteUint8(buf, req.Scope)
	_ = wire.WriteUint32(buf, req.StartItem)
	_ = wire.WriteUint32(buf, req.EndItem)
	_ = wire.WriteUint32(buf, req.Size)

	return buf.Bytes(), nil
}

// DecodeFolderItemsRequest parses and validates a request.
func (c *Codec) DecodeFolderItemsRequest(b []byte) (*FolderItemsRequest, error) {
	r := wire.NewReader(b)

	var (
		req FolderItemsRequest
		err error
	)

	if req.Scope, err = r.Uint8("scope"); err != nil {
		return nil, readFailure(opDecodeRequest, "scope", err)
	}
	if req.StartItem, err = r.Uint32("start_item"); err != nil {
		return nil, readFailure(opDecodeRequest, "start_item", err)
	}
	if req.EndItem, err = r.Uint32("end_item"); err != nil {
		return nil, readFailure(opDecodeRequest, "end_item", err)
	}
	if req.Size, err = r.Uint32("size"); err != nil {
		return nil, readFailure(opDecodeRequest, "size", err)
	}

	if err := c.checkTrailing(r, opDecodeRequest); err != nil {
		return nil, err
	}
	if err := req.validate(opDecodeRequest); err != nil {
		return nil, err
	}

	return &req, nil
}
