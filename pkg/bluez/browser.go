// Package bluez builds folder item lists from the media browsing objects
// BlueZ exports on the system bus.
//
// BlueZ represents a remote target's players as org.bluez.MediaPlayer1
// objects, their folders as org.bluez.MediaFolder1 and folder contents as
// org.bluez.MediaItem1. The Browser reads those objects and converts them
// into avrcp.FolderItemList values that can be encoded for the native
// stack.
package bluez

import (
	"context"
	"fmt"
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
)

const (
	service = "org.bluez"

	ifaceMediaPlayer = "org.bluez.MediaPlayer1"
	ifaceMediaFolder = "org.bluez.MediaFolder1"

	methodGetManagedObjects = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
	methodListItems         = ifaceMediaFolder + ".ListItems"
)

// ManagedObjects is the result of ObjectManager.GetManagedObjects: object
// path to interface name to properties.
type ManagedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Bus is the subset of the BlueZ D-Bus API used by the Browser.
type Bus interface {
	// GetManagedObjects returns every object BlueZ exports.
	GetManagedObjects(ctx context.Context) (ManagedObjects, error)

	// ListItems calls MediaFolder1.ListItems on a player's folder.
	ListItems(ctx context.Context, player dbus.ObjectPath, filter map[string]dbus.Variant) (map[dbus.ObjectPath]map[string]dbus.Variant, error)
}

// SystemBus talks to BlueZ over a D-Bus connection.
type SystemBus struct {
	conn *dbus.Conn
}

// ConnectSystemBus connects to the system bus.
func ConnectSystemBus() (*SystemBus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return &SystemBus{conn: conn}, nil
}

func (b *SystemBus) GetManagedObjects(ctx context.Context) (ManagedObjects, error) {
	var out ManagedObjects
	err := b.conn.Object(service, "/").CallWithContext(ctx, methodGetManagedObjects, 0).Store(&out)
	if err != nil {
		return nil, fmt.Errorf("GetManagedObjects: %w", err)
	}
	return out, nil
}

func (b *SystemBus) ListItems(ctx context.Context, player dbus.ObjectPath, filter map[string]dbus.Variant) (map[dbus.ObjectPath]map[string]dbus.Variant, error) {
	var out map[dbus.ObjectPath]map[string]dbus.Variant
	err := b.conn.Object(service, player).CallWithContext(ctx, methodListItems, 0, filter).Store(&out)
	if err != nil {
		return nil, fmt.Errorf("ListItems on %s: %w", player, err)
	}
	return out, nil
}

// Close closes the bus connection.
func (b *SystemBus) Close() error {
	return b.conn.Close()
}

// Browser reads BlueZ media objects and converts them into folder item
// lists.
type Browser struct {
	bus Bus
}

// NewBrowser creates a Browser on top of bus.
func NewBrowser(bus Bus) *Browser {
	return &Browser{bus: bus}
}

// Players returns every MediaPlayer1 object as a media player list,
// ordered by object path.
//
// Parameters:
//   - ctx: Context for the D-Bus call
//   - uidCounter: UID counter to put in the response header
func (b *Browser) Players(ctx context.Context, uidCounter uint32) (*avrcp.FolderItemList, error) {
	objects, err := b.bus.GetManagedObjects(ctx)
	if err != nil {
		return nil, err
	}

	paths := make([]dbus.ObjectPath, 0, len(objects))
	for path, ifaces := range objects {
		if _, ok := ifaces[ifaceMediaPlayer]; ok {
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	players := make([]avrcp.PlayerItem, 0, len(paths))
	for _, path := range paths {
		p, err := PlayerFromMediaPlayer(path, objects[path][ifaceMediaPlayer])
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	logger.Debug("Found %d media players", len(players))
	return avrcp.NewPlayerList(avrcp.StatusNoError, uidCounter, players...), nil
}

// ListFolder lists the current folder of a player for a get folder items
// request. Items are ordered by UID and windowed to the request range.
//
// Parameters:
//   - ctx: Context for the D-Bus call
//   - player: MediaPlayer1 object path; its MediaFolder1 is listed
//   - req: Scope and item range
//   - uidCounter: UID counter to put in the response header
func (b *Browser) ListFolder(ctx context.Context, player dbus.ObjectPath, req *avrcp.FolderItemsRequest, uidCounter uint32) (*avrcp.FolderItemList, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Scope == avrcp.ScopePlayerList {
		return b.Players(ctx, uidCounter)
	}

	filter := map[string]dbus.Variant{
		"Start": dbus.MakeVariant(req.StartItem),
		"End":   dbus.MakeVariant(req.EndItem),
	}

	objects, err := b.bus.ListItems(ctx, player, filter)
	if err != nil {
		return nil, err
	}

	items := make([]avrcp.FolderItem, 0, len(objects))
	for path, props := range objects {
		it, err := FolderItemFromMediaItem(path, props)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return itemUID(items[i]) < itemUID(items[j]) })

	// BlueZ already applies Start/End, but some targets ignore the range.
	if uint64(len(items)) > req.ItemCount() {
		items = items[:req.ItemCount()]
	}

	logger.Debug("Listed %d items under %s (scope %d, range %d-%d)",
		len(items), player, req.Scope, req.StartItem, req.EndItem)

	return &avrcp.FolderItemList{
		Status:     avrcp.StatusNoError,
		UIDCounter: uidCounter,
		Items:      items,
	}, nil
}

func itemUID(it avrcp.FolderItem) uint64 {
	switch {
	case it.Folder != nil:
		return it.Folder.UID
	case it.Media != nil:
		return it.Media.UID
	default:
		return 0
	}
}
