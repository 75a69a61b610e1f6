/*
Package dictionary loads vocabularies from disk for the matcher to build
on. Two formats are supported: plain UTF-8 text with one word per line,
and a msgpack-encoded binary word list for larger dictionaries.
*/
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/youhengchan/mohu/internal/utils"
)

// binaryVersion guards the msgpack layout; bump on incompatible change.
const binaryVersion = 1

// WordList is the binary dictionary payload.
type WordList struct {
	Version int      `msgpack:"v"`
	Words   []string `msgpack:"w"`
}

// LoadFile loads a word list, picking the format from the extension:
// .txt is text, .bin and .msgpack are binary.
func LoadFile(path string) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		return LoadTextFile(path)
	case ".bin", ".msgpack":
		return LoadBinaryFile(path)
	default:
		return nil, fmt.Errorf("unsupported dictionary extension %q for %s", ext, path)
	}
}

// LoadTextFile reads one word per line. Blank lines and lines starting
// with # are skipped; surrounding whitespace is trimmed; order is
// preserved and duplicates removed.
func LoadTextFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	words = utils.Dedupe(words)
	log.Debugf("Loaded %d words from %s", len(words), path)
	return words, nil
}

// LoadBinaryFile reads a msgpack word list written by SaveBinaryFile.
func LoadBinaryFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	var list WordList
	if err := msgpack.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary %s: %w", path, err)
	}
	if list.Version != binaryVersion {
		return nil, fmt.Errorf("dictionary %s has unsupported version %d (want %d)", path, list.Version, binaryVersion)
	}
	words := utils.Dedupe(list.Words)
	log.Debugf("Loaded %d words from %s", len(words), path)
	return words, nil
}

// SaveBinaryFile writes words as a msgpack word list.
func SaveBinaryFile(path string, words []string) error {
	data, err := msgpack.Marshal(WordList{Version: binaryVersion, Words: words})
	if err != nil {
		return fmt.Errorf("failed to encode dictionary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dictionary %s: %w", path, err)
	}
	return nil
}
