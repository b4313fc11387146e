package inspector

import (
	"fmt"

	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
)

// Decode decodes p.Data according to p.Kind without rate limiting,
// metrics or capturing. It returns the decoded value (see Result.Value)
// and the number of entries.
//
// A folder items or player list payload with ItemLengths set is decoded
// with the declared lengths verified.
func Decode(codec *avrcp.Codec, p Payload) (any, int, error) {
	if codec == nil {
		codec = avrcp.DefaultCodec()
	}

	switch p.Kind {
	case capture.KindFolderItems:
		list, err := decodeFolderItems(codec, p)
		if err != nil {
			return nil, 0, err
		}
		return list, list.Count(), nil

	case capture.KindPlayerList:
		list, err := decodeFolderItems(codec, p)
		if err != nil {
			return nil, 0, err
		}
		if err := checkPlayersOnly(list); err != nil {
			return nil, 0, err
		}
		return list, list.Count(), nil

	case capture.KindElementAttributes:
		attrs, err := codec.DecodeElementAttributes(p.Data)
		if err != nil {
			return nil, 0, err
		}
		return attrs, len(attrs), nil

	case capture.KindSettingIDs:
		ids, err := codec.DecodeSettingIDs(p.Data)
		if err != nil {
			return nil, 0, err
		}
		return ids, len(ids), nil

	case capture.KindSettingValues:
		values, err := codec.DecodeSettingValues(p.Data)
		if err != nil {
			return nil, 0, err
		}
		return values, len(values), nil

	case capture.KindSettingPairs:
		pairs, err := codec.DecodeSettingPairs(p.Data)
		if err != nil {
			return nil, 0, err
		}
		return pairs, len(pairs), nil

	case capture.KindSettingTexts:
		texts, err := codec.DecodeSettingTexts(p.Data)
		if err != nil {
			return nil, 0, err
		}
		return texts, len(texts), nil

	case capture.KindFolderItemsRequest:
		req, err := codec.DecodeFolderItemsRequest(p.Data)
		if err != nil {
			return nil, 0, err
		}
		return req, 1, nil

	default:
		return nil, 0, fmt.Errorf("decode: unknown payload kind %q", p.Kind)
	}
}

func decodeFolderItems(codec *avrcp.Codec, p Payload) (*avrcp.FolderItemList, error) {
	if p.ItemLengths != nil {
		return codec.DecodeFolderItemsFramed(p.Data, p.ItemLengths)
	}
	return codec.DecodeFolderItems(p.Data)
}

// checkPlayersOnly rejects a media player list holding folder or media
// entries.
func checkPlayersOnly(list *avrcp.FolderItemList) error {
	for idx, it := range list.Items {
		if it.Kind != avrcp.ItemPlayer {
			return &avrcp.CodecError{
				Kind:   avrcp.ErrKindUnknownItemTag,
				Op:     "decode player list",
				Field:  fmt.Sprintf("items[%d].tag", idx),
				Offset: -1,
				Detail: fmt.Sprintf("%s entry in a media player list", it.Kind),
			}
		}
	}
	return nil
}
