/*
Package main implements the decoder's server and commandline interface.

The decoder takes a sequence of noisy touch or gesture samples and an
on-disk word lexicon with unigram and bigram statistics, and produces a
ranked list of word (and word-pair) suggestions via beam search over a
patricia-trie lexicon.

# Server Mode

The server speaks MessagePack over stdin/stdout for editor/input-method
integrations: one decode request carries a sample sequence and gets back a
ranked suggestion list.

# CLI Mode

The CLI provides an interactive shell for debugging: type a word, see what
the engine would have decoded from a perfect QWERTY tap sequence for it.

# Data Files

The data directory may contain dictionary files named dict_0001.bin,
dict_0002.bin, etc. (the binary chunk format), or a plain words.txt
wordlist. If neither is present the engine starts with an empty lexicon.

# Config

Runtime configuration is managed via a config.toml file, which supports
settings for the server, session sizing, and weighting policy. A default
configuration is created automatically if one does not exist.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/beamkey/decoder/internal/cli"
	"github.com/beamkey/decoder/internal/utils"
	"github.com/beamkey/decoder/pkg/config"
	"github.com/beamkey/decoder/pkg/decode"
	"github.com/beamkey/decoder/pkg/dict"
	"github.com/beamkey/decoder/pkg/proximity"
	"github.com/beamkey/decoder/pkg/server"
	"github.com/beamkey/decoder/pkg/weighting"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "decoder"
)

// sigHandler exits cleanly on SIGINT/SIGTERM.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires flags, config, dictionary loading and either a server or CLI
// loop. It does not implement decode logic itself, only startup flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	dataDir := flag.String("data", "data/", "Directory containing dictionary chunk or wordlist files")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	gestureMode := flag.Bool("gesture", false, "Use the gesture weighting policy instead of typing")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = resolveConfigPath()
	}
	appConfig, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if *gestureMode {
		appConfig.Weighting.Mode = "gesture"
	}

	builder := dict.NewBuilder().WithHeader(dict.DefaultHeaderPolicy{})
	wordCount, dictBytes := loadDictionary(builder, *dataDir)
	dictionary := builder.Build()

	grid := proximity.NewKeyGrid(proximity.DefaultQWERTYKeys())
	grid.EnableTouchPositionCorrection(true)

	engine := server.NewEngine(dictionary, grid, dictBytes, wordCount)
	if appConfig.Weighting.Mode == "gesture" {
		centers := make(map[decode.CodePoint]struct{ X, Y int })
		for _, k := range proximity.DefaultQWERTYKeys() {
			centers[k.CodePoint] = struct{ X, Y int }{k.X, k.Y}
		}
		engine.Session.Weighting = weighting.NewGesture(centers, appConfig.Weighting.MostCommonKeyWidth)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(engine, grid)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	srv := server.NewServer(engine, appConfig, configPath)
	showStartupInfo(*dataDir, wordCount)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// loadDictionary loads every dict_XXXX.bin chunk in dir, falling back to a
// words.txt wordlist when no chunks are present, and returns the word count
// and total on-disk byte size (used to size the beam search's node pool
// via the large-vs-small capacity rule).
func loadDictionary(builder *dict.Builder, dir string) (wordCount int, dictBytes int64) {
	if dir == "" {
		log.Warn("no data dir specified, running with empty dictionary")
		return 0, 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("data dir %s not readable, running with empty dictionary: %v", dir, err)
		return 0, 0
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			dictBytes += info.Size()
		}
	}

	if n, err := dict.LoadChunks(builder, dir); err == nil && n > 0 {
		return n, dictBytes
	}

	wordlist := filepath.Join(dir, "words.txt")
	if n, err := dict.LoadWordlist(builder, wordlist); err == nil {
		return n, dictBytes
	}

	log.Warnf("no dictionary chunks or wordlist found under %s, running with empty dictionary", dir)
	return 0, dictBytes
}

// resolveConfigPath finds a writable config.toml location in the platform
// config directory, falling back to ~/.decoder, the temp directory and the
// executable's directory, and uses a plain relative path if no path resolver
// can be built or no location is returned (e.g. in a sandboxed test
// environment with no real executable path).
func resolveConfigPath() string {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		log.Debugf("path resolver unavailable, using relative config path: %v", err)
		return "config.toml"
	}
	path, err := resolver.GetConfigPath("config.toml")
	if err != nil {
		return "config.toml"
	}
	return path
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)
	logger.Print("")
	logger.Print("[decoder] beam-search soft-keyboard decoding engine")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use --help to see available options")
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataDir string, wordCount int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println("  decoder  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("words loaded: %d", wordCount)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
