package avrcp

// ============================================================================
// Item Type Tags
// ============================================================================

// Item type tags as written in the first byte of every folder item record.
const (
	TagPlayer uint8 = 0x00
	TagFolder uint8 = 0x01
	TagMedia  uint8 = 0x02
)

// ============================================================================
// Character Sets
// ============================================================================

// CharsetUTF8 is the IANA MIBenum for UTF-8, the only character set the
// browsing path produces.
const CharsetUTF8 uint16 = 0x006A

// ============================================================================
// Limits
// ============================================================================

const (
	// FeatureMaskSize is the width of a player's feature bitmask on the wire.
	FeatureMaskSize = 16

	// DefaultMaxAttributes is the default cap on media element attributes,
	// one per attribute id in the profile's element attribute space.
	DefaultMaxAttributes = 7

	// MaxAppAttributes caps player application setting id/value lists.
	MaxAppAttributes = 16

	// DefaultMaxTextLength is the default cap on attribute and setting text.
	// The native text buffers are 255 bytes including the terminator.
	DefaultMaxTextLength = 254

	// MaxStringLength is the largest string a 16-bit length field can carry.
	MaxStringLength = 65535
)

// ============================================================================
// Status Codes
// ============================================================================

// Response status codes carried in the first header byte.
const (
	StatusInvalidCommand   uint8 = 0x00
	StatusInvalidParameter uint8 = 0x01
	StatusNotFound         uint8 = 0x02
	StatusInternalError    uint8 = 0x03
	StatusNoError          uint8 = 0x04
	StatusUIDChanged       uint8 = 0x05
	StatusInvalidDirection uint8 = 0x07
	StatusNotADirectory    uint8 = 0x08
	StatusDoesNotExist     uint8 = 0x09
	StatusInvalidScope     uint8 = 0x0A
	StatusRangeOutOfBounds uint8 = 0x0B
	StatusUIDIsADirectory  uint8 = 0x0C
	StatusMediaInUse       uint8 = 0x0D
	StatusPlayListFull     uint8 = 0x0E
	StatusSearchNotSupp    uint8 = 0x0F
	StatusSearchInProgress uint8 = 0x10
	StatusInvalidPlayerID  uint8 = 0x11
	StatusPlayerNotBrowsed uint8 = 0x12
	StatusPlayerNotAddr    uint8 = 0x13
	StatusNoValidSearchRes uint8 = 0x14
	StatusNoAvailPlayers   uint8 = 0x15
	StatusAddrPlayerChg    uint8 = 0x16
)

// ============================================================================
// Player Types
// ============================================================================

// Player major types (bitmask).
const (
	MajorTypeAudio          uint8 = 0x01
	MajorTypeVideo          uint8 = 0x02
	MajorTypeBroadcastAudio uint8 = 0x04
	MajorTypeBroadcastVideo uint8 = 0x08
)

// Player sub types (bitmask).
const (
	SubTypeNone      uint32 = 0x00
	SubTypeAudioBook uint32 = 0x01
	SubTypePodcast   uint32 = 0x02
)

// Play status values.
const (
	PlayStatusStopped uint8 = 0x00
	PlayStatusPlaying uint8 = 0x01
	PlayStatusPaused  uint8 = 0x02
	PlayStatusFwdSeek uint8 = 0x03
	PlayStatusRevSeek uint8 = 0x04
	PlayStatusError   uint8 = 0xFF
)

// ============================================================================
// Folder and Media Types
// ============================================================================

// Folder types.
const (
	FolderTypeMixed     uint8 = 0x00
	FolderTypeTitles    uint8 = 0x01
	FolderTypeAlbums    uint8 = 0x02
	FolderTypeArtists   uint8 = 0x03
	FolderTypeGenres    uint8 = 0x04
	FolderTypePlaylists uint8 = 0x05
	FolderTypeYears     uint8 = 0x06
)

// Media element types.
const (
	MediaTypeAudio uint8 = 0x00
	MediaTypeVideo uint8 = 0x01
)

// ============================================================================
// Element Attribute IDs
// ============================================================================

// Media element attribute identifiers.
const (
	AttrTitle       uint32 = 0x01
	AttrArtist      uint32 = 0x02
	AttrAlbum       uint32 = 0x03
	AttrTrackNumber uint32 = 0x04
	AttrNumTracks   uint32 = 0x05
	AttrGenre       uint32 = 0x06
	AttrPlayingTime uint32 = 0x07
)

// ============================================================================
// Browse Scopes
// ============================================================================

// Scopes of a get folder items request.
const (
	ScopePlayerList uint8 = 0x00
	ScopeFileSystem uint8 = 0x01
	ScopeSearch     uint8 = 0x02
	ScopeNowPlaying uint8 = 0x03
)
