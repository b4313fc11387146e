package avrcp

const (
	opFromArrays = "from arrays"
	opToArrays   = "to arrays"
)

// FolderItemArrays is the service layer's parallel-array form of a folder
// listing. Entry i of every per-item array describes item i. Attribute ids
// and values of all media items are concatenated in item order;
// AttrCounts[i] says how many belong to item i.
//
// Only folder and media element entries have an array form. Player lists
// are built with NewPlayerList.
type FolderItemArrays struct {
	Status     uint8
	UIDCounter uint32

	ItemTypes    []uint8
	UIDs         []uint64
	Types        []uint8
	Playable     []bool
	DisplayNames []string
	AttrCounts   []uint8

	AttrIDs    []uint32
	AttrValues []string
}

// FromArrays builds a FolderItemList from parallel arrays. Names and
// attribute values are tagged UTF-8.
//
// Errors:
//   - ErrArrayLengthMismatch: per-item arrays differ in length, or the
//     attribute arrays do not match the sum of AttrCounts
//   - ErrUnknownItemTag: an item type is not folder or media
//   - ErrAttributeCountExceeded: a media item has more than MaxAttributes
func (c *Codec) FromArrays(a *FolderItemArrays) (*FolderItemList, error) {
	n := len(a.ItemTypes)
	for _, l := range []int{len(a.UIDs), len(a.Types), len(a.Playable), len(a.DisplayNames), len(a.AttrCounts)} {
		if l != n {
			return nil, newError(ErrKindArrayLengthMismatch, opFromArrays, "", -1,
				"per-item arrays have lengths %d and %d", n, l)
		}
	}
	if len(a.AttrIDs) != len(a.AttrValues) {
		return nil, newError(ErrKindArrayLengthMismatch, opFromArrays, "attributes", -1,
			"%d ids, %d values", len(a.AttrIDs), len(a.AttrValues))
	}

	list := &FolderItemList{
		Status:     a.Status,
		UIDCounter: a.UIDCounter,
		Items:      make([]FolderItem, 0, n),
	}

	next := 0
	for i := 0; i < n; i++ {
		switch a.ItemTypes[i] {
		case TagFolder:
			if a.AttrCounts[i] != 0 {
				return nil, newError(ErrKindArrayLengthMismatch, opFromArrays, "attr_counts", -1,
					"folder item %d declares %d attributes", i, a.AttrCounts[i])
			}
			list.Items = append(list.Items, NewFolder(FolderEntry{
				UID:        a.UIDs[i],
				FolderType: a.Types[i],
				Playable:   a.Playable[i],
				Name:       UTF8(a.DisplayNames[i]),
			}))

		case TagMedia:
			count := int(a.AttrCounts[i])
			if count > c.opts.MaxAttributes {
				return nil, newError(ErrKindAttributeCountExceeded, opFromArrays, "attr_counts", -1,
					"media item %d declares %d attributes, maximum %d", i, count, c.opts.MaxAttributes)
			}
			if next+count > len(a.AttrIDs) {
				return nil, newError(ErrKindArrayLengthMismatch, opFromArrays, "attributes", -1,
					"media item %d needs %d attributes, %d left", i, count, len(a.AttrIDs)-next)
			}

			var attrs []Attribute
			if count > 0 {
				attrs = make([]Attribute, 0, count)
				for j := next; j < next+count; j++ {
					attrs = append(attrs, Attribute{ID: a.AttrIDs[j], Value: UTF8(a.AttrValues[j])})
				}
			}
			next += count

			list.Items = append(list.Items, NewMedia(MediaElement{
				UID:        a.UIDs[i],
				MediaType:  a.Types[i],
				Name:       UTF8(a.DisplayNames[i]),
				Attributes: attrs,
			}))

		default:
			return nil, newError(ErrKindUnknownItemTag, opFromArrays, "item_types", -1,
				"item %d has type 0x%02x", i, a.ItemTypes[i])
		}
	}

	if next != len(a.AttrIDs) {
		return nil, newError(ErrKindArrayLengthMismatch, opFromArrays, "attributes", -1,
			"%d attributes declared, %d supplied", next, len(a.AttrIDs))
	}

	return list, nil
}

// ToArrays flattens list into parallel arrays. Charset ids are dropped.
func (c *Codec) ToArrays(list *FolderItemList) (*FolderItemArrays, error) {
	n := len(list.Items)
	a := &FolderItemArrays{
		Status:       list.Status,
		UIDCounter:   list.UIDCounter,
		ItemTypes:    make([]uint8, 0, n),
		UIDs:         make([]uint64, 0, n),
		Types:        make([]uint8, 0, n),
		Playable:     make([]bool, 0, n),
		DisplayNames: make([]string, 0, n),
		AttrCounts:   make([]uint8, 0, n),
	}

	for i, it := range list.Items {
		switch {
		case it.Kind == ItemFolder && it.Folder != nil:
			f := it.Folder
			a.ItemTypes = append(a.ItemTypes, TagFolder)
			a.UIDs = append(a.UIDs, f.UID)
			a.Types = append(a.Types, f.FolderType)
			a.Playable = append(a.Playable, f.Playable)
			a.DisplayNames = append(a.DisplayNames, f.Name.Value)
			a.AttrCounts = append(a.AttrCounts, 0)

		case it.Kind == ItemMedia && it.Media != nil:
			m := it.Media
			if len(m.Attributes) > c.opts.MaxAttributes {
				return nil, newError(ErrKindAttributeCountExceeded, opToArrays, "attributes", -1,
					"media item %d has %d attributes, maximum %d", i, len(m.Attributes), c.opts.MaxAttributes)
			}
			a.ItemTypes = append(a.ItemTypes, TagMedia)
			a.UIDs = append(a.UIDs, m.UID)
			a.Types = append(a.Types, m.MediaType)
			a.Playable = append(a.Playable, true)
			a.DisplayNames = append(a.DisplayNames, m.Name.Value)
			a.AttrCounts = append(a.AttrCounts, uint8(len(m.Attributes)))
			for _, attr := range m.Attributes {
				a.AttrIDs = append(a.AttrIDs, attr.ID)
				a.AttrValues = append(a.AttrValues, attr.Value.Value)
			}

		default:
			return nil, newError(ErrKindUnknownItemTag, opToArrays, "items", -1,
				"item %d of kind %s has no array form", i, it.Kind)
		}
	}

	return a, nil
}
