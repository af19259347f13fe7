package dict

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/beamkey/decoder/internal/utils"
	"github.com/charmbracelet/log"
)

// LoadChunks reads every dict_XXXX.bin chunk file in dirPath (the on-disk
// binary word-lexicon format) and adds every word to builder. Unlike a
// prefix-completion trie that can grow by loading
// additional chunks mid-session, a beam search session needs the whole
// lexicon resident up front - CreateAndGetAllChildDicNodes walks a fixed
// ptNode array, so there is no point a decode call could consult a
// partially-loaded dictionary. Chunks are therefore read once, in full,
// at startup, rather than lazily per-request.
func LoadChunks(builder *Builder, dirPath string) (int, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return 0, fmt.Errorf("read dict dir %s: %w", dirPath, err)
	}

	var chunkFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "dict_") && strings.HasSuffix(name, ".bin") {
			chunkFiles = append(chunkFiles, name)
		}
	}
	sort.Strings(chunkFiles)

	total := 0
	maxRank := 0
	type pending struct {
		word string
		rank int
	}
	var words []pending

	for _, name := range chunkFiles {
		path := filepath.Join(dirPath, name)
		n, err := readChunkFile(path, func(word string, rank int) {
			words = append(words, pending{word, rank})
			if rank > maxRank {
				maxRank = rank
			}
		})
		if err != nil {
			log.Errorf("failed to read dict chunk %s: %v", path, err)
			return total, err
		}
		total += n
		log.Debugf("loaded chunk %s: %d words", name, n)
	}

	if maxRank == 0 {
		maxRank = 1
	}
	for _, w := range words {
		probability := rankToProbability(w.rank, maxRank)
		builder.AddWord(w.word, probability)
	}

	log.Debugf("dictionary loaded: %d words across %d chunks", total, len(chunkFiles))
	return total, nil
}

// readChunkFile parses one chunk's binary format: a little-endian int32 word
// count header, followed by that many [uint16 wordLen][word bytes][uint16
// rank] entries (rank 1 = most frequent).
func readChunkFile(path string, emit func(word string, rank int)) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return 0, fmt.Errorf("read chunk header: %w", err)
	}

	count := 0
	for count < int(totalEntries) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				break
			}
			return count, fmt.Errorf("read word length: %w", err)
		}
		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return count, fmt.Errorf("read word: %w", err)
		}
		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return count, fmt.Errorf("read rank: %w", err)
		}
		emit(string(wordBytes), int(rank))
		count++
	}
	return count, nil
}

// rankToProbability maps a 1-based frequency rank onto the decode engine's
// [0, decode.MaxProbability] unigram probability range, rank 1 (most
// frequent) mapping to the top of the range.
func rankToProbability(rank, maxRank int) int {
	if rank <= 1 {
		return 255
	}
	inverse := maxRank - rank + 1
	p := (inverse * 255) / maxRank
	if p < 1 {
		p = 1
	}
	if p > 255 {
		p = 255
	}
	return p
}

// LoadWordlist reads a plain "word frequency" per-line text lexicon (spec
// §7's smaller text format, used for tests and small custom dictionaries)
// and adds every line to builder. Frequency is optional; a bare word
// defaults to a mid-range probability.
func LoadWordlist(builder *Builder, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wordlist %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		word := fields[0]
		if !utils.IsValidInput(word) {
			continue
		}
		probability := 128
		if len(fields) > 1 {
			if freq, err := strconv.Atoi(fields[1]); err == nil {
				if freq > 255 {
					freq = 255
				}
				if freq > 0 {
					probability = freq
				}
			}
		}
		builder.AddWord(word, probability)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}
