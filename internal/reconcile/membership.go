package reconcile

import "reelist/internal/services/plex"

// MembershipIndex answers whether a library item is already in the
// target collection. It is built once per run from the collection's
// current members and keyed by both rating key and IMDb ID, so the same
// work is recognized whether or not its identifier is discoverable on
// either side.
type MembershipIndex struct {
	keys map[string]struct{}
}

// NewMembershipIndex indexes the collection's current members.
func NewMembershipIndex(members []plex.Item) *MembershipIndex {
	idx := &MembershipIndex{keys: make(map[string]struct{}, len(members)*2)}
	for _, member := range members {
		if member.RatingKey != "" {
			idx.keys["rk:"+member.RatingKey] = struct{}{}
		}
		if member.IMDBID != "" {
			idx.keys["id:"+member.IMDBID] = struct{}{}
		}
	}
	return idx
}

// Contains reports membership for a matched item. The entry's own IMDb
// ID is checked too: a member stored without a discoverable identifier
// still blocks a duplicate add when the rating keys line up, and vice
// versa.
func (x *MembershipIndex) Contains(item plex.Item, entryIMDBID string) bool {
	if _, ok := x.keys["rk:"+item.RatingKey]; ok {
		return true
	}
	if item.IMDBID != "" {
		if _, ok := x.keys["id:"+item.IMDBID]; ok {
			return true
		}
	}
	if entryIMDBID != "" {
		if _, ok := x.keys["id:"+entryIMDBID]; ok {
			return true
		}
	}
	return false
}

// Len reports how many keys the index holds.
func (x *MembershipIndex) Len() int { return len(x.keys) }
