package evolution

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/simulation"
	"github.com/signalnine/ecoround/strategy"
)

// CensusResult counts the distinct action sequences seen in random play.
type CensusResult struct {
	Games    int `json:"games"`
	Distinct int `json:"distinct"`
	Longest  int `json:"longest"`
}

// Census plays random against random `games` times and counts the
// distinct per-player action sequences observed across both seats.
func (t *Tournament) Census(ctx context.Context, games int) (CensusResult, error) {
	if games <= 0 {
		return CensusResult{}, fmt.Errorf("%w: games must be positive, got %d", engine.ErrConfiguration, games)
	}
	results, err := simulation.RunBatchParallel(ctx, strategy.Random(), strategy.Random(), games, t.Match,
		simulation.BatchOptions{Seed: t.Config.Seed, Workers: t.Config.Workers, KeepHistory: true})
	if err != nil {
		return CensusResult{}, err
	}

	seen := make(map[string]struct{})
	longest := 0
	for _, r := range results {
		for _, slot := range []engine.Slot{engine.PlayerA, engine.PlayerB} {
			choices := r.History.Choices(slot)
			seen[sequenceKey(choices)] = struct{}{}
			longest = max(longest, len(choices))
		}
	}

	t.Logger.Debug("census complete", "games", games, "distinct", len(seen))
	return CensusResult{Games: games, Distinct: len(seen), Longest: longest}, nil
}

func sequenceKey(choices []int) string {
	var b strings.Builder
	b.Grow(len(choices))
	for _, c := range choices {
		b.WriteByte(byte('0' + c))
	}
	return b.String()
}
