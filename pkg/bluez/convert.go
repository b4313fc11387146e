package bluez

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
)

// ============================================================================
// Property Names
// ============================================================================

const (
	propName       = "Name"
	propType       = "Type"
	propSubtype    = "Subtype"
	propStatus     = "Status"
	propFolderType = "FolderType"
	propPlayable   = "Playable"
	propMetadata   = "Metadata"
)

// metadataAttributes maps MediaItem1 metadata keys to element attribute ids.
var metadataAttributes = map[string]uint32{
	"Title":          avrcp.AttrTitle,
	"Artist":         avrcp.AttrArtist,
	"Album":          avrcp.AttrAlbum,
	"TrackNumber":    avrcp.AttrTrackNumber,
	"NumberOfTracks": avrcp.AttrNumTracks,
	"Genre":          avrcp.AttrGenre,
	"Duration":       avrcp.AttrPlayingTime,
}

var folderTypes = map[string]uint8{
	"mixed":     avrcp.FolderTypeMixed,
	"titles":    avrcp.FolderTypeTitles,
	"albums":    avrcp.FolderTypeAlbums,
	"artists":   avrcp.FolderTypeArtists,
	"genres":    avrcp.FolderTypeGenres,
	"playlists": avrcp.FolderTypePlaylists,
	"years":     avrcp.FolderTypeYears,
}

var playStatuses = map[string]uint8{
	"stopped":      avrcp.PlayStatusStopped,
	"playing":      avrcp.PlayStatusPlaying,
	"paused":       avrcp.PlayStatusPaused,
	"forward-seek": avrcp.PlayStatusFwdSeek,
	"reverse-seek": avrcp.PlayStatusRevSeek,
	"error":        avrcp.PlayStatusError,
}

var majorTypes = map[string]uint8{
	"Audio":              avrcp.MajorTypeAudio,
	"Video":              avrcp.MajorTypeVideo,
	"Audio Broadcasting": avrcp.MajorTypeBroadcastAudio,
	"Video Broadcasting": avrcp.MajorTypeBroadcastVideo,
}

var subTypes = map[string]uint32{
	"Audio Book": avrcp.SubTypeAudioBook,
	"Podcast":    avrcp.SubTypePodcast,
}

// ============================================================================
// Object Path Numbering
// ============================================================================

// pathNumber extracts the trailing number of an object path element with the
// given prefix, e.g. 12 from ".../player0/NowPlaying/item12" with "item".
func pathNumber(path dbus.ObjectPath, prefix string) (uint64, error) {
	s := string(path)
	last := s[strings.LastIndex(s, "/")+1:]
	if !strings.HasPrefix(last, prefix) {
		return 0, fmt.Errorf("object path %s does not end in %s<n>", path, prefix)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(last, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("object path %s: %w", path, err)
	}
	return n, nil
}

// ============================================================================
// MediaItem1
// ============================================================================

// FolderItemFromMediaItem converts the properties of an org.bluez.MediaItem1
// object into a folder item. The item UID is the number in the object path.
//
// Items of type "folder" become folder entries; "audio" and "video" become
// media elements with one attribute per known Metadata key, ordered by
// attribute id.
func FolderItemFromMediaItem(path dbus.ObjectPath, props map[string]dbus.Variant) (avrcp.FolderItem, error) {
	uid, err := pathNumber(path, "item")
	if err != nil {
		return avrcp.FolderItem{}, err
	}

	name, _ := stringProp(props, propName)
	itemType, ok := stringProp(props, propType)
	if !ok {
		return avrcp.FolderItem{}, fmt.Errorf("%s: missing %s property", path, propType)
	}

	switch itemType {
	case "folder":
		folderType, ok := folderTypes[strings.ToLower(stringOr(props, propFolderType, "mixed"))]
		if !ok {
			return avrcp.FolderItem{}, fmt.Errorf("%s: unknown folder type %q", path, stringOr(props, propFolderType, ""))
		}
		playable, _ := boolProp(props, propPlayable)
		return avrcp.NewFolder(avrcp.FolderEntry{
			UID:        uid,
			FolderType: folderType,
			Playable:   playable,
			Name:       avrcp.UTF8(name),
		}), nil

	case "audio", "video":
		mediaType := avrcp.MediaTypeAudio
		if itemType == "video" {
			mediaType = avrcp.MediaTypeVideo
		}
		attrs, err := attributesFromMetadata(props)
		if err != nil {
			return avrcp.FolderItem{}, fmt.Errorf("%s: %w", path, err)
		}
		if name == "" {
			name = titleOf(attrs)
		}
		return avrcp.NewMedia(avrcp.MediaElement{
			UID:        uid,
			MediaType:  mediaType,
			Name:       avrcp.UTF8(name),
			Attributes: attrs,
		}), nil

	default:
		return avrcp.FolderItem{}, fmt.Errorf("%s: unknown item type %q", path, itemType)
	}
}

func attributesFromMetadata(props map[string]dbus.Variant) ([]avrcp.Attribute, error) {
	v, ok := props[propMetadata]
	if !ok {
		return nil, nil
	}
	meta, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("%s has signature %s, want a{sv}", propMetadata, v.Signature())
	}

	var attrs []avrcp.Attribute
	for key, value := range meta {
		id, known := metadataAttributes[key]
		if !known {
			continue
		}
		text, err := variantText(value)
		if err != nil {
			return nil, fmt.Errorf("metadata %s: %w", key, err)
		}
		attrs = append(attrs, avrcp.Attribute{ID: id, Value: avrcp.UTF8(text)})
	}

	sort.Slice(attrs, func(i, j int) bool { return attrs[i].ID < attrs[j].ID })
	return attrs, nil
}

// variantText renders a metadata value the way element attributes carry
// it: strings verbatim, numbers in decimal.
func variantText(v dbus.Variant) (string, error) {
	switch x := v.Value().(type) {
	case string:
		return x, nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		return "", fmt.Errorf("unsupported value of signature %s", v.Signature())
	}
}

func titleOf(attrs []avrcp.Attribute) string {
	for _, a := range attrs {
		if a.ID == avrcp.AttrTitle {
			return a.Value.Value
		}
	}
	return ""
}

// ============================================================================
// MediaPlayer1
// ============================================================================

// PlayerFromMediaPlayer converts the properties of an org.bluez.MediaPlayer1
// object into a player entry. The player id is the number in the object
// path ("player0" is id 0).
//
// BlueZ does not expose the feature bitmask, so Features is left empty and
// encodes as all zeroes.
func PlayerFromMediaPlayer(path dbus.ObjectPath, props map[string]dbus.Variant) (avrcp.PlayerItem, error) {
	id, err := pathNumber(path, "player")
	if err != nil {
		return avrcp.PlayerItem{}, err
	}
	if id > 0xFFFF {
		return avrcp.PlayerItem{}, fmt.Errorf("%s: player id %d out of range", path, id)
	}

	major, ok := majorTypes[stringOr(props, propType, "Audio")]
	if !ok {
		return avrcp.PlayerItem{}, fmt.Errorf("%s: unknown player type %q", path, stringOr(props, propType, ""))
	}

	status, ok := playStatuses[stringOr(props, propStatus, "stopped")]
	if !ok {
		status = avrcp.PlayStatusError
	}

	name, _ := stringProp(props, propName)

	return avrcp.PlayerItem{
		PlayerID:   uint16(id),
		MajorType:  major,
		SubType:    subTypes[stringOr(props, propSubtype, "")],
		PlayStatus: status,
		Name:       avrcp.UTF8(name),
	}, nil
}

// ============================================================================
// Variant Helpers
// ============================================================================

func stringProp(props map[string]dbus.Variant, name string) (string, bool) {
	v, ok := props[name]
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	return s, ok
}

func stringOr(props map[string]dbus.Variant, name, def string) string {
	if s, ok := stringProp(props, name); ok {
		return s
	}
	return def
}

func boolProp(props map[string]dbus.Variant, name string) (bool, bool) {
	v, ok := props[name]
	if !ok {
		return false, false
	}
	b, ok := v.Value().(bool)
	return b, ok
}
