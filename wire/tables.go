package wire

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Field slots, in schema order.
const (
	snapshotPointsA = iota
	snapshotPointsB
	snapshotMoneyA
	snapshotMoneyB
	snapshotBonusA
	snapshotBonusB
	snapshotPlayed
	snapshotHalf
	snapshotRound
	snapshotActionA
	snapshotActionB
	snapshotRoll
	snapshotWinner
	snapshotFields
)

const (
	matchPlayerA = iota
	matchPlayerB
	matchWinner
	matchSnapshots
	matchRounds
	matchPointsA
	matchPointsB
	matchLeadChanges
	matchDecisiveRound
	matchClosestMargin
	matchWinnerTrailing
	matchFields
)

const (
	matrixNames = iota
	matrixValues
	matrixSampleSize
	matrixFields
)

const (
	trajectoryNames = iota
	trajectoryTimes
	trajectoryShares
	trajectoryFields
)

// vtableOffset converts a field slot into its vtable offset.
func vtableOffset(slot int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*slot)
}

// table wraps flatbuffers.Table with slot-based accessors.
type table struct {
	tab flatbuffers.Table
}

func (t *table) Init(buf []byte, i flatbuffers.UOffsetT) {
	t.tab.Bytes = buf
	t.tab.Pos = i
}

func (t *table) field(slot int) flatbuffers.UOffsetT {
	return flatbuffers.UOffsetT(t.tab.Offset(vtableOffset(slot)))
}

func (t *table) int32At(slot int) int32 {
	if o := t.field(slot); o != 0 {
		return t.tab.GetInt32(o + t.tab.Pos)
	}
	return 0
}

func (t *table) int8At(slot int) int8 {
	if o := t.field(slot); o != 0 {
		return t.tab.GetInt8(o + t.tab.Pos)
	}
	return 0
}

func (t *table) float32At(slot int) float32 {
	if o := t.field(slot); o != 0 {
		return t.tab.GetFloat32(o + t.tab.Pos)
	}
	return 0
}

func (t *table) float64At(slot int) float64 {
	if o := t.field(slot); o != 0 {
		return t.tab.GetFloat64(o + t.tab.Pos)
	}
	return 0
}

func (t *table) boolAt(slot int) bool {
	if o := t.field(slot); o != 0 {
		return t.tab.GetBool(o + t.tab.Pos)
	}
	return false
}

func (t *table) stringAt(slot int) string {
	if o := t.field(slot); o != 0 {
		return t.tab.String(o + t.tab.Pos)
	}
	return ""
}

func (t *table) vectorLen(slot int) int {
	if o := t.field(slot); o != 0 {
		return t.tab.VectorLen(o)
	}
	return 0
}

func (t *table) float64s(slot int) []float64 {
	o := t.field(slot)
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	a := t.tab.Vector(o)
	out := make([]float64, n)
	for j := range out {
		out[j] = t.tab.GetFloat64(a + flatbuffers.UOffsetT(j*8))
	}
	return out
}

func (t *table) strings(slot int) []string {
	o := t.field(slot)
	if o == 0 {
		return nil
	}
	n := t.tab.VectorLen(o)
	a := t.tab.Vector(o)
	out := make([]string, n)
	for j := range out {
		out[j] = string(t.tab.ByteVector(a + flatbuffers.UOffsetT(j*4)))
	}
	return out
}

// tableAt initialises obj as element j of a vector of tables.
func (t *table) tableAt(slot int, obj *table, j int) bool {
	o := t.field(slot)
	if o == 0 {
		return false
	}
	x := t.tab.Vector(o)
	x += flatbuffers.UOffsetT(j) * 4
	x = t.tab.Indirect(x)
	obj.Init(t.tab.Bytes, x)
	return true
}

// rootTable reads the root table of a finished buffer.
func rootTable(buf []byte) *table {
	n := flatbuffers.GetUOffsetT(buf)
	t := &table{}
	t.Init(buf, n)
	return t
}

func createStrings(b *flatbuffers.Builder, values []string) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(values))
	for i, s := range values {
		offsets[i] = b.CreateString(s)
	}
	b.StartVector(4, len(offsets), 4)
	// Add in reverse order (FlatBuffers convention)
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return b.EndVector(len(offsets))
}

func createFloat64s(b *flatbuffers.Builder, values []float64) flatbuffers.UOffsetT {
	b.StartVector(8, len(values), 8)
	for i := len(values) - 1; i >= 0; i-- {
		b.PrependFloat64(values[i])
	}
	return b.EndVector(len(values))
}

func createTables(b *flatbuffers.Builder, offsets []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	b.StartVector(4, len(offsets), 4)
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return b.EndVector(len(offsets))
}
