package avrcp

import "fmt"

// ItemKind selects the variant of a FolderItem.
type ItemKind uint8

const (
	// ItemPlayer is a media player entry (get media player list).
	ItemPlayer ItemKind = ItemKind(TagPlayer)

	// ItemFolder is a browsable folder.
	ItemFolder ItemKind = ItemKind(TagFolder)

	// ItemMedia is a playable media element with attributes.
	ItemMedia ItemKind = ItemKind(TagMedia)
)

func (k ItemKind) String() string {
	switch k {
	case ItemPlayer:
		return "player"
	case ItemFolder:
		return "folder"
	case ItemMedia:
		return "media"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(k))
	}
}

// MarshalText renders the kind by name for YAML and JSON output.
func (k ItemKind) MarshalText() ([]byte, error) {
	switch k {
	case ItemPlayer, ItemFolder, ItemMedia:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown item kind 0x%02x", uint8(k))
	}
}

// UnmarshalText parses a kind name.
func (k *ItemKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*k = ItemPlayer
	case "folder":
		*k = ItemFolder
	case "media":
		*k = ItemMedia
	default:
		return fmt.Errorf("unknown item kind %q", text)
	}
	return nil
}

// Text is a length-prefixed string with an explicit character set.
//
// The wire length is always len(Value) in bytes, never a character count.
// A zero CharsetID is written as CharsetUTF8.
type Text struct {
	CharsetID uint16 `json:"charset_id" yaml:"charset_id"`
	Value     string `json:"value" yaml:"value"`
}

// UTF8 returns a Text tagged as UTF-8.
func UTF8(s string) Text {
	return Text{CharsetID: CharsetUTF8, Value: s}
}

func (t Text) String() string {
	return t.Value
}

// charset returns the charset to put on the wire.
func (t Text) charset() uint16 {
	if t.CharsetID == 0 {
		return CharsetUTF8
	}
	return t.CharsetID
}

// Attribute is one element attribute of a media item.
type Attribute struct {
	ID    uint32 `json:"id" yaml:"id"`
	Value Text   `json:"value" yaml:"value"`
}

// PlayerItem describes a media player.
type PlayerItem struct {
	PlayerID   uint16 `json:"player_id" yaml:"player_id"`
	MajorType  uint8  `json:"major_type" yaml:"major_type"`
	SubType    uint32 `json:"sub_type" yaml:"sub_type"`
	PlayStatus uint8  `json:"play_status" yaml:"play_status"`

	// Features is the supported-command bitmask. Shorter sources are zero
	// padded to FeatureMaskSize on encode; decode always yields exactly
	// FeatureMaskSize bytes.
	Features []byte `json:"features" yaml:"features,flow"`

	Name Text `json:"name" yaml:"name"`
}

// FolderEntry describes a browsable folder.
type FolderEntry struct {
	UID        uint64 `json:"uid" yaml:"uid"`
	FolderType uint8  `json:"folder_type" yaml:"folder_type"`
	Playable   bool   `json:"playable" yaml:"playable"`
	Name       Text   `json:"name" yaml:"name"`
}

// MediaElement describes a playable item.
type MediaElement struct {
	UID       uint64 `json:"uid" yaml:"uid"`
	MediaType uint8  `json:"media_type" yaml:"media_type"`
	Name      Text   `json:"name" yaml:"name"`

	// Attributes are in request order. A target may return fewer attributes
	// than were requested; len(Attributes) is the effective count.
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// FolderItem is one entry of a folder item list. Exactly one of Player,
// Folder and Media is set, matching Kind.
type FolderItem struct {
	Kind   ItemKind      `json:"kind" yaml:"kind"`
	Player *PlayerItem   `json:"player,omitempty" yaml:"player,omitempty"`
	Folder *FolderEntry  `json:"folder,omitempty" yaml:"folder,omitempty"`
	Media  *MediaElement `json:"media,omitempty" yaml:"media,omitempty"`
}

// NewPlayer wraps a player description as a FolderItem.
func NewPlayer(p PlayerItem) FolderItem {
	return FolderItem{Kind: ItemPlayer, Player: &p}
}

// NewFolder wraps a folder description as a FolderItem.
func NewFolder(f FolderEntry) FolderItem {
	return FolderItem{Kind: ItemFolder, Folder: &f}
}

// NewMedia wraps a media element as a FolderItem.
func NewMedia(m MediaElement) FolderItem {
	return FolderItem{Kind: ItemMedia, Media: &m}
}

// DisplayName returns the name of whichever variant is set.
func (it FolderItem) DisplayName() string {
	switch {
	case it.Player != nil:
		return it.Player.Name.Value
	case it.Folder != nil:
		return it.Folder.Name.Value
	case it.Media != nil:
		return it.Media.Name.Value
	default:
		return ""
	}
}

// FolderItemList is the payload of a get folder items or get media player
// list response. It is built per exchange and consumed once.
//
// The wire item_count is always len(Items).
type FolderItemList struct {
	Status     uint8        `json:"status" yaml:"status"`
	UIDCounter uint32       `json:"uid_counter" yaml:"uid_counter"`
	Items      []FolderItem `json:"items" yaml:"items"`
}

// NewPlayerList builds a media player list response.
func NewPlayerList(status uint8, uidCounter uint32, players ...PlayerItem) *FolderItemList {
	items := make([]FolderItem, 0, len(players))
	for _, p := range players {
		items = append(items, NewPlayer(p))
	}
	return &FolderItemList{Status: status, UIDCounter: uidCounter, Items: items}
}

// Players returns the player entries of the list, in order.
func (l *FolderItemList) Players() []PlayerItem {
	var out []PlayerItem
	for _, it := range l.Items {
		if it.Kind == ItemPlayer && it.Player != nil {
			out = append(out, *it.Player)
		}
	}
	return out
}

// Count returns the number of items (the wire item_count).
func (l *FolderItemList) Count() int {
	return len(l.Items)
}
