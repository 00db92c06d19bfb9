package simulation

import (
	"context"
	"runtime"
	"testing"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/strategy"
)

func BenchmarkPlayMatch(b *testing.B) {
	cfg := DefaultMatchConfig()
	p0, p1 := strategy.ShortTerm(), strategy.Random()
	rng := engine.NewSource(42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PlayMatch(p0, p1, cfg, rng); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPlayMatch_Lookahead(b *testing.B) {
	cfg := DefaultMatchConfig()
	p0, p1 := strategy.BuyForNextTwo(), strategy.SupportEnumerated()
	rng := engine.NewSource(42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := PlayMatch(p0, p1, cfg, rng); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSerial_Batch1000(b *testing.B) {
	cfg := DefaultMatchConfig()
	p0, p1 := strategy.ShortTerm(), strategy.Random()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RunBatch(p0, p1, 1000, cfg, BatchOptions{Seed: 42}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParallel_Batch1000(b *testing.B) {
	cfg := DefaultMatchConfig()
	p0, p1 := strategy.ShortTerm(), strategy.Random()
	opts := BatchOptions{Seed: 42, Workers: runtime.NumCPU()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RunBatchParallel(context.Background(), p0, p1, 1000, cfg, opts); err != nil {
			b.Fatal(err)
		}
	}
}
