// Package wire encodes match histories, interaction matrices and
// replicator trajectories as FlatBuffers for external visualisers.
package wire

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/simulation"
)

// ErrMalformed is returned when a buffer cannot be decoded.
var ErrMalformed = errors.New("malformed buffer")

// minBuffer is the smallest buffer that can hold a root offset and a table.
const minBuffer = 8

// EncodeMatch serialises a match result including its history.
func EncodeMatch(r simulation.MatchResult) []byte {
	b := flatbuffers.NewBuilder(1024)

	snaps := make([]flatbuffers.UOffsetT, len(r.History))
	for i, s := range r.History {
		snaps[i] = buildSnapshot(b, s)
	}
	snapsVec := createTables(b, snaps)
	playerA := b.CreateString(r.Players[0])
	playerB := b.CreateString(r.Players[1])

	b.StartObject(matchFields)
	b.PrependUOffsetTSlot(matchPlayerA, playerA, 0)
	b.PrependUOffsetTSlot(matchPlayerB, playerB, 0)
	b.PrependInt8Slot(matchWinner, r.WinnerID, 0)
	b.PrependUOffsetTSlot(matchSnapshots, snapsVec, 0)
	b.PrependInt32Slot(matchRounds, int32(r.Rounds), 0)
	b.PrependInt32Slot(matchPointsA, int32(r.Points[0]), 0)
	b.PrependInt32Slot(matchPointsB, int32(r.Points[1]), 0)
	b.PrependInt32Slot(matchLeadChanges, int32(r.Tension.LeadChanges), 0)
	b.PrependInt32Slot(matchDecisiveRound, int32(r.Tension.DecisiveRound), 0)
	b.PrependFloat32Slot(matchClosestMargin, r.Tension.ClosestMargin, 0)
	b.PrependBoolSlot(matchWinnerTrailing, r.Tension.WinnerWasTrailing, false)
	b.Finish(b.EndObject())
	return b.FinishedBytes()
}

func buildSnapshot(b *flatbuffers.Builder, s engine.Snapshot) flatbuffers.UOffsetT {
	b.StartObject(snapshotFields)
	b.PrependInt32Slot(snapshotPointsA, int32(s.Points[0]), 0)
	b.PrependInt32Slot(snapshotPointsB, int32(s.Points[1]), 0)
	b.PrependFloat64Slot(snapshotMoneyA, s.Resources[0], 0)
	b.PrependFloat64Slot(snapshotMoneyB, s.Resources[1], 0)
	b.PrependInt32Slot(snapshotBonusA, int32(s.LossBonus[0]), 0)
	b.PrependInt32Slot(snapshotBonusB, int32(s.LossBonus[1]), 0)
	if c := s.Choice; c != nil {
		b.PrependBoolSlot(snapshotPlayed, true, false)
		b.PrependInt32Slot(snapshotHalf, int32(c.Half), 0)
		b.PrependInt32Slot(snapshotRound, int32(c.Round), 0)
		b.PrependInt32Slot(snapshotActionA, int32(c.Actions[0]), 0)
		b.PrependInt32Slot(snapshotActionB, int32(c.Actions[1]), 0)
		b.PrependFloat64Slot(snapshotRoll, c.Roll, 0)
		b.PrependInt8Slot(snapshotWinner, int8(c.Winner), 0)
	}
	return b.EndObject()
}

// DecodeMatch reads a buffer written by EncodeMatch. Timing data is not
// carried and is left zero.
func DecodeMatch(buf []byte) (r simulation.MatchResult, err error) {
	defer recoverMalformed(&err)
	if len(buf) < minBuffer {
		return r, fmt.Errorf("%w: %d bytes", ErrMalformed, len(buf))
	}

	t := rootTable(buf)
	r.Players = [2]string{t.stringAt(matchPlayerA), t.stringAt(matchPlayerB)}
	r.WinnerID = t.int8At(matchWinner)
	r.Rounds = int(t.int32At(matchRounds))
	r.Points = [2]int{int(t.int32At(matchPointsA)), int(t.int32At(matchPointsB))}
	r.Tension = simulation.TensionMetrics{
		LeadChanges:       int(t.int32At(matchLeadChanges)),
		DecisiveRound:     int(t.int32At(matchDecisiveRound)),
		ClosestMargin:     t.float32At(matchClosestMargin),
		TotalRounds:       r.Rounds,
		WinnerWasTrailing: t.boolAt(matchWinnerTrailing),
	}

	n := t.vectorLen(matchSnapshots)
	if n == 0 {
		return r, nil
	}
	r.History = make(engine.History, n)
	var s table
	for i := 0; i < n; i++ {
		t.tableAt(matchSnapshots, &s, i)
		r.History[i] = readSnapshot(&s)
	}
	return r, nil
}

func readSnapshot(s *table) engine.Snapshot {
	out := engine.Snapshot{
		Points:    [2]int{int(s.int32At(snapshotPointsA)), int(s.int32At(snapshotPointsB))},
		Resources: [2]float64{s.float64At(snapshotMoneyA), s.float64At(snapshotMoneyB)},
		LossBonus: [2]int{int(s.int32At(snapshotBonusA)), int(s.int32At(snapshotBonusB))},
	}
	if s.boolAt(snapshotPlayed) {
		out.Choice = &engine.Choice{
			Half:    int(s.int32At(snapshotHalf)),
			Round:   int(s.int32At(snapshotRound)),
			Actions: [2]int{int(s.int32At(snapshotActionA)), int(s.int32At(snapshotActionB))},
			Roll:    s.float64At(snapshotRoll),
			Winner:  engine.Slot(s.int8At(snapshotWinner)),
		}
	}
	return out
}

// EncodeMatrix serialises an interaction matrix row-major.
func EncodeMatrix(m *evolution.InteractionMatrix) []byte {
	b := flatbuffers.NewBuilder(256)

	flat := make([]float64, 0, m.Size()*m.Size())
	for _, row := range m.Values {
		flat = append(flat, row...)
	}
	values := createFloat64s(b, flat)
	names := createStrings(b, m.Names)

	b.StartObject(matrixFields)
	b.PrependUOffsetTSlot(matrixNames, names, 0)
	b.PrependUOffsetTSlot(matrixValues, values, 0)
	b.PrependInt32Slot(matrixSampleSize, int32(m.SampleSize), 0)
	b.Finish(b.EndObject())
	return b.FinishedBytes()
}

// DecodeMatrix reads a buffer written by EncodeMatrix.
func DecodeMatrix(buf []byte) (m *evolution.InteractionMatrix, err error) {
	defer recoverMalformed(&err)
	if len(buf) < minBuffer {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(buf))
	}

	t := rootTable(buf)
	names := t.strings(matrixNames)
	flat := t.float64s(matrixValues)
	if len(flat) != len(names)*len(names) {
		return nil, fmt.Errorf("%w: %d values for %d names", ErrMalformed, len(flat), len(names))
	}

	m = evolution.NewInteractionMatrix(names, int(t.int32At(matrixSampleSize)))
	for i := range m.Values {
		copy(m.Values[i], flat[i*len(names):(i+1)*len(names)])
	}
	return m, nil
}

// EncodeTrajectory serialises a replicator trajectory row-major.
func EncodeTrajectory(tr *evolution.Trajectory) []byte {
	b := flatbuffers.NewBuilder(1024)

	flat := make([]float64, 0, len(tr.Shares)*len(tr.Names))
	for _, row := range tr.Shares {
		flat = append(flat, row...)
	}
	shares := createFloat64s(b, flat)
	times := createFloat64s(b, tr.Times)
	names := createStrings(b, tr.Names)

	b.StartObject(trajectoryFields)
	b.PrependUOffsetTSlot(trajectoryNames, names, 0)
	b.PrependUOffsetTSlot(trajectoryTimes, times, 0)
	b.PrependUOffsetTSlot(trajectoryShares, shares, 0)
	b.Finish(b.EndObject())
	return b.FinishedBytes()
}

// DecodeTrajectory reads a buffer written by EncodeTrajectory.
func DecodeTrajectory(buf []byte) (tr *evolution.Trajectory, err error) {
	defer recoverMalformed(&err)
	if len(buf) < minBuffer {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(buf))
	}

	t := rootTable(buf)
	tr = &evolution.Trajectory{
		Names: t.strings(trajectoryNames),
		Times: t.float64s(trajectoryTimes),
	}
	flat := t.float64s(trajectoryShares)
	width := len(tr.Names)
	if len(flat) != len(tr.Times)*width {
		return nil, fmt.Errorf("%w: %d shares for %d timepoints of %d strategies", ErrMalformed, len(flat), len(tr.Times), width)
	}
	tr.Shares = make([][]float64, len(tr.Times))
	for k := range tr.Shares {
		tr.Shares[k] = flat[k*width : (k+1)*width]
	}
	return tr, nil
}

// recoverMalformed turns an out-of-range read on a corrupt buffer into an
// ErrMalformed error.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrMalformed, r)
	}
}
