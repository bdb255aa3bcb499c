package navmesh

import (
	"errors"
	"fmt"

	"github.com/gorustyt/polynav/common"
	"github.com/gorustyt/polynav/common/message"
	"github.com/gorustyt/polynav/common/rw"
	"github.com/gorustyt/polynav/recast"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrBadSnapshot = errors.New("navmesh: bad snapshot")

const (
	SNAPSHOT_MAGIC   = 'P'<<24 | 'N'<<16 | 'A'<<8 | 'V'
	SNAPSHOT_VERSION = 1
)

// Snapshot holds what a layer cannot recompute: the original region, the ordered edits
// and the id counter. Rings are flattened x0,y0,x1,y1,...
type Snapshot struct {
	LayerID  int32             `msgpack:"layer"`
	Mode     GraphMode         `msgpack:"mode"`
	NextID   uint64            `msgpack:"next"`
	Original []SnapshotPolygon `msgpack:"original"`
	Edits    []SnapshotEdit    `msgpack:"edits"`
}

type SnapshotPolygon struct {
	Outer []float64   `msgpack:"outer"`
	Holes [][]float64 `msgpack:"holes"`
}

type SnapshotEdit struct {
	ID     string    `msgpack:"id"`
	Kind   EditKind  `msgpack:"kind"`
	Points []float64 `msgpack:"points"`
}

func (l *Layer) Snapshot() *Snapshot {
	snap := &Snapshot{
		LayerID: l.id,
		Mode:    l.mode,
		NextID:  l.counter.next,
	}
	for _, p := range l.original {
		sp := SnapshotPolygon{Outer: common.FlattenRing(p.Points())}
		for _, h := range p.HoleRings() {
			sp.Holes = append(sp.Holes, common.FlattenRing(h))
		}
		snap.Original = append(snap.Original, sp)
	}
	for _, e := range l.edits.list() {
		snap.Edits = append(snap.Edits, SnapshotEdit{
			ID:     string(e.ID),
			Kind:   e.Kind,
			Points: common.FlattenRing(e.Boundary),
		})
	}
	return snap
}

// RestoreLayer rebuilds a layer from a snapshot. The current region is recomputed from
// the original and the edits, never stored.
func RestoreLayer(snap *Snapshot, opts ...Option) (*Layer, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil", ErrBadSnapshot)
	}
	l := NewLayer(snap.LayerID, opts...)
	l.mode = snap.Mode
	l.counter.next = snap.NextID

	polys := make([]*recast.Polygon, 0, len(snap.Original))
	for i, sp := range snap.Original {
		holes := make([]common.Ring, 0, len(sp.Holes))
		for _, h := range sp.Holes {
			holes = append(holes, common.UnflattenRing(h))
		}
		p, err := recast.NewPolygonFromRings(common.UnflattenRing(sp.Outer), holes...)
		if err != nil {
			return nil, fmt.Errorf("%w: polygon %d: %v", ErrBadSnapshot, i, err)
		}
		polys = append(polys, p)
	}
	l.SetInitialPolygons(polys)

	for _, se := range snap.Edits {
		if se.Kind != Obstacle && se.Kind != Bridge {
			return nil, fmt.Errorf("%w: edit %s kind %d", ErrBadSnapshot, se.ID, se.Kind)
		}
		ring := common.UnflattenRing(se.Points)
		if err := recast.ValidateRing(ring); err != nil {
			return nil, fmt.Errorf("%w: edit %s: %v", ErrBadSnapshot, se.ID, err)
		}
		if !l.edits.add(&Edit{ID: EditID(se.ID), Kind: se.Kind, Boundary: ring}) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEdit, se.ID)
		}
	}
	if err := l.Rebuild(); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Snapshot) ToBin() []byte {
	w := rw.NewBinWriter()
	w.WriteUInt32(SNAPSHOT_MAGIC)
	w.WriteUInt32(SNAPSHOT_VERSION)
	w.WriteInt32(s.LayerID)
	w.WriteUInt8(uint8(s.Mode))
	w.WriteUInt64(s.NextID)
	w.WriteUInt32(uint32(len(s.Original)))
	for _, p := range s.Original {
		writeCoords(w, p.Outer)
		w.WriteUInt32(uint32(len(p.Holes)))
		for _, h := range p.Holes {
			writeCoords(w, h)
		}
	}
	w.WriteUInt32(uint32(len(s.Edits)))
	for _, e := range s.Edits {
		w.WriteString(e.ID)
		w.WriteUInt8(uint8(e.Kind))
		writeCoords(w, e.Points)
	}
	return w.GetWriteBytes()
}

func (s *Snapshot) FromBin(data []byte) error {
	r := rw.NewBinReader(data)
	if r.ReadUInt32() != SNAPSHOT_MAGIC {
		return fmt.Errorf("%w: wrong magic", ErrBadSnapshot)
	}
	if v := r.ReadUInt32(); v != SNAPSHOT_VERSION {
		return fmt.Errorf("%w: wrong version %d", ErrBadSnapshot, v)
	}
	s.LayerID = r.ReadInt32()
	s.Mode = GraphMode(r.ReadUInt8())
	s.NextID = r.ReadUInt64()

	n, err := readCount(r, 4)
	if err != nil {
		return err
	}
	s.Original = make([]SnapshotPolygon, n)
	for i := range s.Original {
		if s.Original[i].Outer, err = readCoords(r); err != nil {
			return err
		}
		nh, err := readCount(r, 4)
		if err != nil {
			return err
		}
		for j := 0; j < nh; j++ {
			h, err := readCoords(r)
			if err != nil {
				return err
			}
			s.Original[i].Holes = append(s.Original[i].Holes, h)
		}
	}

	if n, err = readCount(r, 7); err != nil {
		return err
	}
	s.Edits = make([]SnapshotEdit, n)
	for i := range s.Edits {
		s.Edits[i].ID = r.ReadString()
		s.Edits[i].Kind = EditKind(r.ReadUInt8())
		if s.Edits[i].Points, err = readCoords(r); err != nil {
			return err
		}
	}
	if r.Err() != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, r.Err())
	}
	if r.Size() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrBadSnapshot, r.Size())
	}
	return nil
}

func writeCoords(w *rw.ReaderWriter, coords []float64) {
	w.WriteUInt32(uint32(len(coords)))
	w.WriteFloat64s(coords)
}

func readCoords(r *rw.ReaderWriter) ([]float64, error) {
	n, err := readCount(r, 8)
	if err != nil {
		return nil, err
	}
	res := make([]float64, n)
	r.ReadFloat64s(res)
	return res, nil
}

// readCount reads an element count and checks it against the bytes left, elemSize being
// the smallest encoding of one element.
func readCount(r *rw.ReaderWriter, elemSize int) (int, error) {
	n := int(r.ReadUInt32())
	if r.Err() != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadSnapshot, r.Err())
	}
	if n*elemSize > r.Size() {
		return 0, fmt.Errorf("%w: count %d exceeds data", ErrBadSnapshot, n)
	}
	return n, nil
}

// Codec turns snapshots into bytes and back.
type Codec interface {
	Name() string
	Encode(snap *Snapshot) ([]byte, error)
	Decode(data []byte) (*Snapshot, error)
}

type BinaryCodec struct{}

func (BinaryCodec) Name() string { return "bin" }

func (BinaryCodec) Encode(snap *Snapshot) ([]byte, error) {
	return snap.ToBin(), nil
}

func (BinaryCodec) Decode(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := snap.FromBin(data); err != nil {
		return nil, err
	}
	return snap, nil
}

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Encode(snap *Snapshot) ([]byte, error) {
	return msgpack.Marshal(snap)
}

func (MsgpackCodec) Decode(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := msgpack.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	return snap, nil
}

// ProtoCodec stores the snapshot as a google.protobuf.Struct document.
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "proto" }

func (ProtoCodec) Encode(snap *Snapshot) ([]byte, error) {
	original := make([]any, 0, len(snap.Original))
	for _, p := range snap.Original {
		holes := make([]any, 0, len(p.Holes))
		for _, h := range p.Holes {
			holes = append(holes, toAnyList(h))
		}
		original = append(original, map[string]any{
			"outer": toAnyList(p.Outer),
			"holes": holes,
		})
	}
	edits := make([]any, 0, len(snap.Edits))
	for _, e := range snap.Edits {
		edits = append(edits, map[string]any{
			"id":     e.ID,
			"kind":   e.Kind.String(),
			"points": toAnyList(e.Points),
		})
	}
	return message.EncodeMap(map[string]any{
		"layer":    float64(snap.LayerID),
		"mode":     snap.Mode.String(),
		"next":     float64(snap.NextID),
		"original": original,
		"edits":    edits,
	})
}

func (ProtoCodec) Decode(data []byte) (*Snapshot, error) {
	doc, err := message.DecodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	snap := &Snapshot{}
	layer, ok1 := doc["layer"].(float64)
	next, ok2 := doc["next"].(float64)
	modeName, ok3 := doc["mode"].(string)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: missing header fields", ErrBadSnapshot)
	}
	snap.LayerID = int32(layer)
	snap.NextID = uint64(next)
	if snap.Mode, err = ParseGraphMode(modeName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	original, _ := doc["original"].([]any)
	for _, v := range original {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: polygon is not an object", ErrBadSnapshot)
		}
		outer, err := fromAnyList(m["outer"])
		if err != nil {
			return nil, err
		}
		sp := SnapshotPolygon{Outer: outer}
		holes, _ := m["holes"].([]any)
		for _, h := range holes {
			hc, err := fromAnyList(h)
			if err != nil {
				return nil, err
			}
			sp.Holes = append(sp.Holes, hc)
		}
		snap.Original = append(snap.Original, sp)
	}

	edits, _ := doc["edits"].([]any)
	for _, v := range edits {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: edit is not an object", ErrBadSnapshot)
		}
		id, _ := m["id"].(string)
		kindName, _ := m["kind"].(string)
		kind, ok := ParseEditKind(kindName)
		if !ok {
			return nil, fmt.Errorf("%w: edit %s kind %q", ErrBadSnapshot, id, kindName)
		}
		points, err := fromAnyList(m["points"])
		if err != nil {
			return nil, err
		}
		snap.Edits = append(snap.Edits, SnapshotEdit{ID: id, Kind: kind, Points: points})
	}
	return snap, nil
}

func toAnyList(v []float64) []any {
	res := make([]any, len(v))
	for i, f := range v {
		res[i] = f
	}
	return res
}

func fromAnyList(v any) ([]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: coordinates are not a list", ErrBadSnapshot)
	}
	res := make([]float64, len(list))
	for i, e := range list {
		f, ok := e.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: coordinate %d is not a number", ErrBadSnapshot, i)
		}
		res[i] = f
	}
	return res, nil
}

var codecs = map[string]Codec{
	"bin":     BinaryCodec{},
	"msgpack": MsgpackCodec{},
	"proto":   ProtoCodec{},
}

// CodecByName accepts "bin", "msgpack" and "proto"; the empty name selects msgpack.
func CodecByName(name string) (Codec, error) {
	if name == "" {
		name = "msgpack"
	}
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("navmesh: unknown codec %q", name)
	}
	return c, nil
}
