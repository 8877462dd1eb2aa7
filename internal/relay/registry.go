package relay

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/ayushi2910/video-streaming-platform/internal/metrics"
	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
)

// Notifier delivers a message to a connection. It must not block and
// reports false when the connection is unknown or cannot take the message.
type Notifier interface {
	Notify(id protocol.ConnID, msg *protocol.Message) bool
}

// room is a named set of connections. Its mutex serializes membership
// changes together with their notifications.
type room struct {
	id      string
	mu      sync.Mutex
	members []protocol.ConnID
	closed  bool
}

func (r *room) remove(id protocol.ConnID) bool {
	i := slices.Index(r.members, id)
	if i < 0 {
		return false
	}
	r.members = slices.Delete(r.members, i, i+1)
	return true
}

// RoomSnapshot is a point-in-time copy of one room.
type RoomSnapshot struct {
	ID      string            `json:"room_id"`
	Members []protocol.ConnID `json:"members"`
}

// Registry owns every room on the relay.
//
// Lock order is room.mu then Registry.mu. Registry.mu is never held while
// acquiring a room lock.
type Registry struct {
	mu          sync.Mutex
	rooms       map[string]*room
	memberships map[protocol.ConnID]map[string]struct{}

	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewRegistry creates an empty registry that delivers notifications
// through n.
func NewRegistry(n Notifier, m *metrics.Metrics, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		rooms:       make(map[string]*room),
		memberships: make(map[protocol.ConnID]map[string]struct{}),
		notifier:    n,
		metrics:     m,
		log:         log,
	}
}

// Join moves conn into roomID. Every room conn currently occupies is left
// first, the same room included. The joiner receives members-in-room before
// any other member sees member-joined. Join returns the members that were
// already present.
func (r *Registry) Join(conn protocol.ConnID, roomID string) []protocol.ConnID {
	for _, prior := range r.RoomsOf(conn) {
		r.Leave(conn, prior)
	}

	for {
		rm := r.getOrCreate(roomID)

		rm.mu.Lock()
		if rm.closed {
			// emptied and removed between lookup and lock
			rm.mu.Unlock()
			continue
		}

		others := slices.Clone(rm.members)
		rm.members = append(rm.members, conn)

		r.mu.Lock()
		set, ok := r.memberships[conn]
		if !ok {
			set = make(map[string]struct{})
			r.memberships[conn] = set
		}
		set[roomID] = struct{}{}
		r.mu.Unlock()

		r.metrics.Joined()
		r.log.Info("Client joined room", "conn", conn, "room", roomID, "members", len(rm.members))

		members := others
		if members == nil {
			members = []protocol.ConnID{}
		}
		r.notifier.Notify(conn, &protocol.Message{
			Type:    protocol.TypeMembersInRoom,
			RoomID:  roomID,
			Members: members,
		})
		for _, other := range others {
			r.notifier.Notify(other, &protocol.Message{
				Type:   protocol.TypeMemberJoined,
				RoomID: roomID,
				Member: conn,
			})
		}
		rm.mu.Unlock()

		return others
	}
}

// Leave removes conn from roomID and tells the remaining members. The room
// is deleted once it is empty. Leaving a room conn is not in does nothing.
func (r *Registry) Leave(conn protocol.ConnID, roomID string) {
	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed || !rm.remove(conn) {
		return
	}

	r.mu.Lock()
	if set, ok := r.memberships[conn]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(r.memberships, conn)
		}
	}
	if len(rm.members) == 0 {
		rm.closed = true
		if r.rooms[roomID] == rm {
			delete(r.rooms, roomID)
		}
	}
	r.mu.Unlock()

	r.log.Info("Client left room", "conn", conn, "room", roomID, "members", len(rm.members))
	if rm.closed {
		r.metrics.RoomDeleted()
		r.log.Info("Room deleted", "room", roomID)
		return
	}

	for _, other := range rm.members {
		r.notifier.Notify(other, &protocol.Message{
			Type:   protocol.TypeMemberLeft,
			RoomID: roomID,
			Member: conn,
		})
	}
}

// DisconnectAll removes conn from every room it occupies.
func (r *Registry) DisconnectAll(conn protocol.ConnID) {
	for _, roomID := range r.RoomsOf(conn) {
		r.Leave(conn, roomID)
	}
}

// RoomsOf returns the rooms conn is a member of, sorted by id.
func (r *Registry) RoomsOf(conn protocol.ConnID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.memberships[conn]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Room returns a snapshot of roomID, or false when it does not exist.
func (r *Registry) Room(roomID string) (RoomSnapshot, bool) {
	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return RoomSnapshot{}, false
	}
	return rm.snapshot()
}

// Rooms returns a snapshot of all non-empty rooms, sorted by id.
func (r *Registry) Rooms() []RoomSnapshot {
	r.mu.Lock()
	all := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		all = append(all, rm)
	}
	r.mu.Unlock()

	snaps := make([]RoomSnapshot, 0, len(all))
	for _, rm := range all {
		if snap, ok := rm.snapshot(); ok {
			snaps = append(snaps, snap)
		}
	}
	slices.SortFunc(snaps, func(a, b RoomSnapshot) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return snaps
}

func (r *Registry) getOrCreate(roomID string) *room {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{id: roomID}
		r.rooms[roomID] = rm
		r.metrics.RoomCreated()
		r.log.Info("Room created", "room", roomID)
	}
	return rm
}

// snapshot hides rooms that are closed or still waiting for their first
// member.
func (rm *room) snapshot() (RoomSnapshot, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed || len(rm.members) == 0 {
		return RoomSnapshot{}, false
	}
	return RoomSnapshot{ID: rm.id, Members: slices.Clone(rm.members)}, true
}
