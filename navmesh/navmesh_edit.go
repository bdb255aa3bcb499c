package navmesh

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/gorustyt/polynav/common"
)

type EditKind uint8

const (
	Obstacle EditKind = iota + 1
	Bridge
)

func (k EditKind) String() string {
	switch k {
	case Obstacle:
		return "obstacle"
	case Bridge:
		return "bridge"
	default:
		return "unknown"
	}
}

func ParseEditKind(s string) (EditKind, bool) {
	switch s {
	case "obstacle":
		return Obstacle, true
	case "bridge":
		return Bridge, true
	}
	return 0, false
}

// EditID is an opaque edit token.
type EditID string

type Edit struct {
	ID       EditID
	Kind     EditKind
	Boundary common.Ring
}

// IDGenerator returns a fresh edit id on every call.
type IDGenerator func() EditID

// counterIDs hands out "1", "2", ... for one layer.
type counterIDs struct {
	next uint64
}

func (c *counterIDs) generate() EditID {
	c.next++
	return EditID(strconv.FormatUint(c.next, 10))
}

// UUIDGenerator produces random v4 ids, for layers whose edits are shared across processes.
func UUIDGenerator() IDGenerator {
	return func() EditID {
		return EditID(uuid.NewString())
	}
}

// editRegistry keeps edits in insertion order so rebuilds are deterministic.
type editRegistry struct {
	order []EditID
	edits map[EditID]*Edit
}

func newEditRegistry() *editRegistry {
	return &editRegistry{edits: make(map[EditID]*Edit)}
}

func (r *editRegistry) add(e *Edit) bool {
	if _, ok := r.edits[e.ID]; ok {
		return false
	}
	r.edits[e.ID] = e
	r.order = append(r.order, e.ID)
	return true
}

func (r *editRegistry) remove(id EditID) (*Edit, bool) {
	e, ok := r.edits[id]
	if !ok {
		return nil, false
	}
	delete(r.edits, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, true
}

func (r *editRegistry) get(id EditID) (*Edit, bool) {
	e, ok := r.edits[id]
	return e, ok
}

func (r *editRegistry) len() int {
	return len(r.order)
}

// each visits the edits of one kind in insertion order.
func (r *editRegistry) each(kind EditKind, fn func(e *Edit) error) error {
	for _, id := range r.order {
		e := r.edits[id]
		if e.Kind != kind {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *editRegistry) list() []Edit {
	res := make([]Edit, 0, len(r.order))
	for _, id := range r.order {
		e := r.edits[id]
		res = append(res, Edit{ID: e.ID, Kind: e.Kind, Boundary: common.CopyRing(e.Boundary)})
	}
	return res
}
