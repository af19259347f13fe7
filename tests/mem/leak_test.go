//go:build test

package mem

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/proximity"
	"github.com/beamkey/decoder/pkg/traversal"
	"github.com/beamkey/decoder/pkg/weighting"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testWords = []string{
	"a", "ab", "abc", "abcd",
	"h", "he", "hel", "hell", "hello",
	"w", "wo", "wor", "worl", "world",
	"p", "pr", "pro", "prog", "program",
	"t", "th", "the", "ther", "there",
	"c", "co", "com", "comp", "computer",
}

func buildTestSession() *traversal.Session {
	builder := dict.NewBuilder().WithHeader(dict.DefaultHeaderPolicy{})
	for _, w := range testWords {
		builder.AddWord(w, 200)
	}
	dictionary := builder.Build()
	grid := proximity.NewKeyGrid(proximity.DefaultQWERTYKeys())
	digraphs := dict.NewDigraphTable(dictionary.Header())
	return traversal.NewSession(dictionary, grid, weighting.NewTyping(), digraphs, 0)
}

func decodeWord(sess *traversal.Session, grid *proximity.KeyGrid, word string) {
	samples := make([]proximity.Sample, 0, len(word))
	for _, r := range word {
		cp := decode.CodePoint(r)
		key, ok := grid.KeyFor(cp)
		if !ok {
			continue
		}
		samples = append(samples, proximity.Sample{PrimaryCodePoint: cp, X: key.X, Y: key.Y, Used: true})
	}
	if len(samples) == 0 {
		return
	}
	grid.LoadSamples(samples)
	_ = sess.Decode(len(samples), decode.NotADictPos, 0)
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000, 2500}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runBasicMemoryTest(t, iterCount)
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 1000},
		{workers: 2, iterationsPerWorker: 500},
		{workers: 4, iterationsPerWorker: 250},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

// runBasicMemoryTest repeatedly decodes the same word set through one
// Session and checks that the pool/cache reuse keeps steady-state memory
// bounded, rather than growing linearly with iteration count.
func runBasicMemoryTest(t *testing.T, iterations int) {
	sess := buildTestSession()
	grid := sess.Proximity.(*proximity.KeyGrid)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	for i := 0; i < iterations; i++ {
		for _, word := range testWords {
			decodeWord(sess, grid, word)
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	memDelta := int64(final.Alloc - baseline.Alloc)
	totalOps := iterations * len(testWords)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f", iterations, totalOps, memDelta, memPerOp)

	if memPerOp > 2000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
}

// runConcurrentMemoryTest decodes from multiple goroutines, each against its
// own Session (a Session's Cache is not safe for concurrent use), and checks
// no goroutines leak.
func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	var baselineGoroutines = runtime.NumGoroutine()

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := buildTestSession()
			grid := sess.Proximity.(*proximity.KeyGrid)
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, word := range testWords {
					decodeWord(sess, grid, word)
				}
			}
		}()
	}
	wg.Wait()

	runtime.GC()
	finalGoroutines := runtime.NumGoroutine()
	goroutineDelta := finalGoroutines - baselineGoroutines

	t.Logf("workers=%d iter_per_worker=%d goroutine_delta=%d", workers, iterationsPerWorker, goroutineDelta)

	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}
