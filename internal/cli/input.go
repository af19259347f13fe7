// Package cli provides a stdin/stdout debug loop for driving the decode
// engine interactively, without going through the msgpack server protocol.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/beamkey/decoder/internal/utils"
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/proximity"
	"github.com/beamkey/decoder/pkg/server"
	"github.com/charmbracelet/log"
)

// InputHandler reads typed words from stdin, synthesises a perfect-tap
// sample sequence for each one via a KeyGrid, and prints the engine's
// ranked suggestions. It exists for manual testing of a compiled
// dictionary and weighting configuration without a msgpack client.
type InputHandler struct {
	engine       *server.Engine
	grid         *proximity.KeyGrid
	requestCount int
}

// NewInputHandler builds an InputHandler around an already-wired engine and
// the key grid it shares with that engine.
func NewInputHandler(engine *server.Engine, grid *proximity.KeyGrid) *InputHandler {
	return &InputHandler{engine: engine, grid: grid}
}

// Start begins the REPL loop, reading one word per line until stdin closes.
func (h *InputHandler) Start() error {
	log.Print("decoder CLI [debug]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a word and press Enter to see ranked suggestions (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		word := strings.TrimSpace(line)
		if word == "" {
			continue
		}
		h.handleWord(word)
	}
}

// handleWord converts word into a tap sequence and runs one decode call.
func (h *InputHandler) handleWord(word string) {
	h.requestCount++

	samples := make([]server.SampleInput, 0, len(word))
	for _, r := range word {
		cp := decode.CodePoint(r)
		key, ok := h.grid.KeyFor(cp)
		if !ok {
			log.Warnf("no key for %q, skipping sample", string(r))
			continue
		}
		samples = append(samples, server.SampleInput{CodePoint: int32(cp), X: int32(key.X), Y: int32(key.Y)})
	}
	if len(samples) == 0 {
		log.Errorf("no usable samples for %q", word)
		return
	}

	start := time.Now()
	suggestions := h.engine.Decode(samples, "", 0, false)
	elapsed := time.Since(start)
	log.Debugf("decoded %q in %v", word, elapsed)

	if len(suggestions) == 0 {
		log.Warnf("no suggestions for %q", word)
		return
	}

	log.Printf("Found %d suggestions for %q:", len(suggestions), word)
	ranks := utils.CreateRankList(len(suggestions))
	for i, s := range suggestions {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", string(s.CodePoints))
		log.Printf("%2d. %-40s (score: %8s)", ranks[i], clWord, utils.FormatWithCommas(s.Score))
	}
}
