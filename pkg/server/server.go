// Package server implements MessagePack IPC for decode + dictionary status requests.
package server

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/beamkey/decoder/internal/logger"
	"github.com/beamkey/decoder/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var logg = logger.Default("decoder")

// Server handles decode requests and config updates.
type Server struct {
	engine     *Engine
	config     *config.Config
	configPath string
	// Reuse objects to prevent allocations
	decoder      *msgpack.Decoder
	writeMutex   sync.Mutex
	requestCount int64
}

// NewServer creates a server with the given engine and configuration.
func NewServer(engine *Engine, cfg *config.Config, configPath string) *Server {
	server := &Server{
		engine:     engine,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(os.Stdin),
	}
	log.Debugf("Creating server with engine word count: %d", engine.WordCount)
	return server
}

// reloadConfig reloads configuration from the TOML file.
func (s *Server) reloadConfig() error {
	newConfig, err := config.LoadConfig(s.configPath)
	if err != nil {
		log.Warnf("Failed to reload config, keeping current: %v", err)
		return err
	}
	s.config = newConfig
	log.Debugf("Config reloaded from: %s", s.configPath)
	return nil
}

// Start begins listening for decode requests.
func (s *Server) Start() error {
	logg.Debug("Starting MessagePack decode server")
	for {
		if err := s.processRequest(); err != nil {
			if err == io.EOF {
				logg.Debug("Client disconnected")
				return nil
			}
			continue
		}
	}
}

// processRequest handles a single request.
func (s *Server) processRequest() error {
	s.requestCount++
	if s.requestCount%100 == 0 {
		s.reloadConfig()
	}

	var rawRequest map[string]interface{}
	logg.Debug("Waiting for request...")
	if err := s.decoder.Decode(&rawRequest); err != nil {
		log.Debugf("Decode error: %v", err)
		return err
	}

	if action, exists := rawRequest["action"]; exists {
		if actionStr, ok := action.(string); ok {
			return s.processDictionaryRequest(rawRequest, actionStr)
		}
	}

	return s.processDecodeRequest(rawRequest)
}

func (s *Server) processDecodeRequest(rawRequest map[string]interface{}) error {
	var request DecodeRequest
	if id, ok := rawRequest["id"].(string); ok {
		request.ID = id
	}
	if prev, ok := rawRequest["prev"].(string); ok {
		request.PrevWord = prev
	}
	if commit, ok := numberField(rawRequest["commit"]); ok {
		request.CommitPoint = int(commit)
	}
	if continuous, ok := rawRequest["continuous"].(bool); ok {
		request.Continuous = continuous
	}
	if rawSamples, ok := rawRequest["samples"].([]interface{}); ok {
		request.Samples = decodeSamples(rawSamples)
	}

	log.Debugf("Received decode request: samples=%d, prev=%q", len(request.Samples), request.PrevWord)

	if len(request.Samples) == 0 {
		return s.sendError(request.ID, "empty sample sequence", 400)
	}

	start := time.Now()
	suggestions := s.engine.Decode(request.Samples, request.PrevWord, request.CommitPoint, request.Continuous)
	elapsed := time.Since(start)

	responseSuggestions := make([]DecodeSuggestion, len(suggestions))
	for i, sug := range suggestions {
		responseSuggestions[i] = DecodeSuggestion{
			Word:                      string(sug.CodePoints),
			Score:                     sug.Score,
			Kind:                      int(sug.Kind),
			SecondWordFirstInputIndex: sug.SecondWordFirstInputIndex,
		}
	}

	response := &DecodeResponse{
		ID:          request.ID,
		Suggestions: responseSuggestions,
		Count:       len(responseSuggestions),
		TimeTaken:   elapsed.Microseconds(),
		Corrupted:   s.engine.IsCorrupted(),
	}
	return s.sendResponse(response)
}

func decodeSamples(raw []interface{}) []SampleInput {
	out := make([]SampleInput, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var sample SampleInput
		if cp, ok := numberField(m["cp"]); ok {
			sample.CodePoint = int32(cp)
		}
		if x, ok := numberField(m["x"]); ok {
			sample.X = int32(x)
		}
		if y, ok := numberField(m["y"]); ok {
			sample.Y = int32(y)
		}
		out = append(out, sample)
	}
	return out
}

func numberField(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// sendResponse encodes and sends a MessagePack response to stdout atomically.
func (s *Server) sendResponse(response any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	if err := encoder.Encode(response); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	os.Stdout.Sync()
	return nil
}

// sendError sends a MessagePack error response.
func (s *Server) sendError(id string, message string, code int) error {
	return s.sendResponse(&DecodeError{ID: id, Error: message, Code: code})
}

// processDictionaryRequest handles dictionary status requests.
func (s *Server) processDictionaryRequest(rawRequest map[string]interface{}, action string) error {
	var id string
	if rawID, ok := rawRequest["id"]; ok {
		id, _ = rawID.(string)
	}

	switch action {
	case "get_info":
		return s.sendResponse(&DictionaryResponse{
			ID:        id,
			Status:    "ok",
			WordCount: s.engine.WordCount,
			IsCorrupt: s.engine.IsCorrupted(),
		})
	case "reload":
		return s.sendResponse(&DictionaryResponse{
			ID:     id,
			Status: "ok",
		})
	default:
		return s.sendResponse(&DictionaryResponse{
			ID:     id,
			Status: "error",
			Error:  fmt.Sprintf("unknown action: %s", action),
		})
	}
}
