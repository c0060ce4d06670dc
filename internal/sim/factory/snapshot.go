package factory

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// RobotView is one robot as presentation layers see it.
type RobotView struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

// Snapshot is the read-only view of the whole simulation. It is the only
// surface the screen, the directors and the observer stream consume.
type Snapshot struct {
	Tick    uint64      `json:"tick"`
	Foos    int         `json:"foos"`
	Bars    int         `json:"bars"`
	Foobars int         `json:"foobars"`
	Money   string      `json:"money"`
	Robots  []RobotView `json:"robots"`
}

func (f *RoboticFactory) Snapshot() Snapshot {
	robots := f.stock.Robots()
	views := make([]RobotView, 0, len(robots))
	for _, r := range robots {
		views = append(views, RobotView{
			ID:       r.ID,
			Status:   r.Status(),
			Location: string(r.State.Location),
		})
	}
	return Snapshot{
		Tick:    f.tick,
		Foos:    f.stock.FooCount(),
		Bars:    f.stock.BarCount(),
		Foobars: f.stock.FoobarCount(),
		Money:   f.stock.Money().StringFixed(2),
		Robots:  views,
	}
}

// StateDigest hashes the full simulation state in a fixed field order.
// Two factories built from the same settings and seed, fed the same
// commands, produce the same digest sequence; the replay tool relies on
// this.
func (f *RoboticFactory) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, f.tick)
	digestWriteString(h, f.stock.Money().StringFixed(2))

	digestWriteU64(h, &tmp, uint64(f.stock.FooCount()))
	digestWriteU64(h, &tmp, uint64(len(f.stock.bars)))
	for _, b := range f.stock.bars {
		digestWriteU64(h, &tmp, uint64(b.Seconds))
	}
	digestWriteU64(h, &tmp, uint64(len(f.stock.foobars)))
	for _, fb := range f.stock.foobars {
		digestWriteU64(h, &tmp, uint64(fb.Serial))
	}

	digestWriteU64(h, &tmp, uint64(len(f.stock.robots)))
	for _, r := range f.stock.robots {
		st := r.State
		digestWriteU64(h, &tmp, uint64(r.ID))
		digestWriteString(h, string(st.Kind))
		digestWriteU64(h, &tmp, uint64(st.Remaining))
		digestWriteString(h, string(st.Location))
		digestWriteString(h, string(st.Destination))
		digestWriteString(h, st.Material.Name)
		digestWriteU64(h, &tmp, uint64(st.ReservedBar.Seconds))
		digestWriteU64(h, &tmp, uint64(len(st.Batch)))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteString(h hash.Hash, s string) {
	var tmp [8]byte
	digestWriteU64(h, &tmp, uint64(len(s)))
	h.Write([]byte(s))
}
