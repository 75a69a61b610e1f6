/*
Package main implements the mohu fuzzy matching server and CLI application.

Mohu matches queries against a mixed Chinese/English vocabulary using
character-level, pinyin-level or hybrid fuzzy matching. It can operate as
a MessagePack IPC server for integration with other processes, or as a
CLI application for interactive testing.

# Usage

Start the server with a vocabulary file:

	mohu -dict words.txt

Run in CLI mode with pinyin matching and debug logging:

	mohu -dict words.txt -c -mode pinyin -d

The dictionary file is either plain text (one word per line, # comments)
or the msgpack binary format produced by the dictionary package.

# Configuration

Runtime configuration is managed through a TOML file:

	[matcher]
	max_distance = 2
	ignore_tones = true
	similarity_threshold = 0.0

	[server]
	max_limit = 64

The config file is created with defaults if it doesn't exist. A custom
path can be given with -config.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Send a match
request:

	{"id": "req1", "q": "beijing", "m": "pinyin", "l": 10}

Receive ranked matches with similarity scores:

	{"id": "req1", "r": [{"w": "北京", "s": 1.0}], "c": 1, "t": 87}

Dictionary requests (add, remove, count, list) mutate or inspect the
vocabulary at runtime.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/youhengchan/mohu/internal/logger"
	"github.com/youhengchan/mohu/pkg/config"
	"github.com/youhengchan/mohu/pkg/dictionary"
	"github.com/youhengchan/mohu/pkg/matcher"
	"github.com/youhengchan/mohu/pkg/server"
)

func main() {
	dictPath := flag.String("dict", "", "path to a dictionary file (.txt, .bin or .msgpack)")
	configPath := flag.String("config", "", "path to a TOML config file")
	debug := flag.Bool("d", false, "enable debug logging")
	cliMode := flag.Bool("c", false, "interactive CLI mode instead of IPC server")
	mode := flag.String("mode", string(matcher.ModeHybrid), "match mode for CLI queries: char, pinyin or hybrid")
	limit := flag.Int("limit", 10, "max results per CLI query")
	flag.Parse()

	logger.SetDebug(*debug)

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	if cfgPath != "" {
		log.Debugf("Using config: %s", cfgPath)
	}

	m, err := matcher.New(cfg)
	if err != nil {
		log.Fatalf("Creating matcher: %v", err)
	}

	if *dictPath != "" {
		words, err := dictionary.LoadFile(*dictPath)
		if err != nil {
			log.Fatalf("Loading dictionary: %v", err)
		}
		m.Build(words)
		log.Infof("Built dictionary with %d words", m.WordCount())
	} else {
		m.Build(nil)
		log.Warn("No dictionary given, starting empty; add words via dictionary requests")
	}

	if *cliMode {
		runCLI(m, matcher.Mode(*mode), *limit)
		return
	}

	srv := server.New(m, cfg.Server.MaxLimit)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func runCLI(m *matcher.Matcher, mode matcher.Mode, limit int) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			fmt.Print("> ")
			continue
		}
		results, err := m.Match(query, mode, matcher.WithLimit(limit))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			fmt.Print("> ")
			continue
		}
		for _, r := range results {
			fmt.Printf("  %-20s %.3f\n", r.Word, r.Similarity)
		}
		fmt.Print("> ")
	}
}
