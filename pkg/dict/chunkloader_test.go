package dict

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/beamkey/decoder/pkg/decode"
)

func writeChunk(t *testing.T, path string, entries map[string]uint16) {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(entries)))
	for word, rank := range entries {
		binary.Write(&buf, binary.LittleEndian, uint16(len(word)))
		buf.WriteString(word)
		binary.Write(&buf, binary.LittleEndian, rank)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test chunk: %v", err)
	}
}

func TestLoadChunksAcrossMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, filepath.Join(dir, "dict_0001.bin"), map[string]uint16{"cat": 1, "dog": 2})
	writeChunk(t, filepath.Join(dir, "dict_0002.bin"), map[string]uint16{"bird": 3})

	builder := NewBuilder()
	n, err := LoadChunks(builder, dir)
	if err != nil {
		t.Fatalf("unexpected error loading chunks: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 words loaded, got %d", n)
	}

	policy := builder.Build()
	for _, w := range []string{"cat", "dog", "bird"} {
		if policy.TerminalPositionOfWord([]decode.CodePoint(w), true) == decode.NotADictPos {
			t.Fatalf("expected %q to be present in the built dictionary", w)
		}
	}
}

func TestLoadChunksRankOrdersProbability(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, filepath.Join(dir, "dict_0001.bin"), map[string]uint16{"common": 1, "rare": 100})

	builder := NewBuilder()
	if _, err := LoadChunks(builder, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	policy := builder.Build()
	commonPos := policy.TerminalPositionOfWord([]decode.CodePoint("common"), true)
	rarePos := policy.TerminalPositionOfWord([]decode.CodePoint("rare"), true)
	commonProb := policy.ProbabilityOfPtNode(decode.NotADictPos, commonPos)
	rareProb := policy.ProbabilityOfPtNode(decode.NotADictPos, rarePos)
	if commonProb <= rareProb {
		t.Fatalf("expected rank-1 word to have higher probability than rank-100: common=%d rare=%d", commonProb, rareProb)
	}
}

func TestLoadChunksIgnoresNonChunkFiles(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, filepath.Join(dir, "dict_0001.bin"), map[string]uint16{"cat": 1})
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a chunk"), 0o644)

	builder := NewBuilder()
	n, err := LoadChunks(builder, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the .bin chunk to be read, got %d words", n)
	}
}

func TestLoadWordlistParsesFrequenciesAndComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	content := "# comment line\n\ncat 200\ndog\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write wordlist: %v", err)
	}

	builder := NewBuilder()
	n, err := LoadWordlist(builder, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 words loaded (comment/blank skipped), got %d", n)
	}

	policy := builder.Build()
	catPos := policy.TerminalPositionOfWord([]decode.CodePoint("cat"), true)
	dogPos := policy.TerminalPositionOfWord([]decode.CodePoint("dog"), true)
	if catPos == decode.NotADictPos || dogPos == decode.NotADictPos {
		t.Fatal("expected both 'cat' and 'dog' to be present")
	}
}

func TestLoadWordlistSkipsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	content := "12345\nhello\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write wordlist: %v", err)
	}

	builder := NewBuilder()
	n, err := LoadWordlist(builder, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the valid word to be loaded, got %d", n)
	}
	policy := builder.Build()
	if policy.TerminalPositionOfWord([]decode.CodePoint("12345"), true) != decode.NotADictPos {
		t.Fatal("expected the all-numeric entry to have been rejected by IsValidInput")
	}
}

func TestLoadChunksMissingDirReturnsError(t *testing.T) {
	builder := NewBuilder()
	if _, err := LoadChunks(builder, "/nonexistent/path/for/test"); err == nil {
		t.Fatal("expected an error reading a nonexistent directory")
	}
}
