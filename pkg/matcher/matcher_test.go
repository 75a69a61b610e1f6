package matcher

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/youhengchan/mohu/pkg/config"
)

func newTestMatcher(t *testing.T, mutate func(*config.Config)) *Matcher {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestMatchCharFuzzy(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "application", "apply"})

	results, err := m.Match("appl", ModeChar)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	// "application" is 7 edits away and must be cut by max_distance;
	// the tie at 0.8 breaks ascending, so "apple" precedes "apply".
	expected := []Result{
		{Word: "apple", Similarity: 0.8},
		{Word: "apply", Similarity: 0.8},
	}
	if !reflect.DeepEqual(results, expected) {
		t.Errorf("Match(appl, char) = %v, want %v", results, expected)
	}
}

func TestMatchPinyinHomophone(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"北京", "背景", "南京"})

	results, err := m.Match("背景", ModePinyin)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("Match(背景, pinyin) = %v, want at least the two homophones", results)
	}
	// Both homophones score 1.0 and order ascending on the tie.
	if results[0].Word != "北京" || results[0].Similarity != 1.0 {
		t.Errorf("first = %+v, want 北京 at 1.0", results[0])
	}
	if results[1].Word != "背景" || results[1].Similarity != 1.0 {
		t.Errorf("second = %+v, want 背景 at 1.0", results[1])
	}
}

func TestMatchRomanizedQuery(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"北京", "南京"})

	results, err := m.Match("beijing", ModePinyin)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) == 0 || results[0].Word != "北京" || results[0].Similarity != 1.0 {
		t.Errorf("Match(beijing, pinyin) = %v, want 北京 at 1.0 first", results)
	}
}

func TestMatchHybridFusion(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"北京", "背景"})

	results, err := m.Match("北京", ModeHybrid)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Match(北京, hybrid) = %v, want 2 results", results)
	}
	if results[0].Word != "北京" || results[0].Similarity != 1.0 {
		t.Errorf("first = %+v, want 北京 at 1.0", results[0])
	}
	// Char similarity 0, pinyin similarity 1: fused mean is 0.5.
	if results[1].Word != "背景" || math.Abs(results[1].Similarity-0.5) > 1e-9 {
		t.Errorf("second = %+v, want 背景 at 0.5", results[1])
	}
}

func TestMatchThresholdFilter(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "banana"})

	results, err := m.Match("xyz", ModeChar, WithThreshold(0.5))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Match(xyz, char, threshold 0.5) = %v, want empty", results)
	}
}

func TestDynamicAdd(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{})

	added, err := m.AddWord("hello")
	if err != nil || !added {
		t.Fatalf("AddWord(hello) = (%v, %v), want (true, nil)", added, err)
	}
	added, err = m.AddWord("hello")
	if err != nil || added {
		t.Fatalf("duplicate AddWord(hello) = (%v, %v), want (false, nil)", added, err)
	}

	results, err := m.Match("helo", ModeChar)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) != 1 || results[0].Word != "hello" || math.Abs(results[0].Similarity-0.8) > 1e-9 {
		t.Errorf("Match(helo, char) = %v, want hello at 0.8", results)
	}
}

func TestMatchIdentity(t *testing.T) {
	m := newTestMatcher(t, nil)
	words := []string{"apple", "北京", "上海", "banana"}
	m.Build(words)

	for _, w := range words {
		results, err := m.Match(w, ModeChar)
		if err != nil {
			t.Fatalf("Match(%q): %v", w, err)
		}
		if len(results) == 0 || results[0].Word != w || results[0].Similarity != 1.0 {
			t.Errorf("Match(%q, char) = %v, want itself at 1.0 first", w, results)
		}
	}
}

func TestMatchSortedAndBounded(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "apply", "ample", "maple", "appel"})

	results, err := m.Match("appl", ModeChar, WithLimit(3))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) > 3 {
		t.Errorf("limit exceeded: %d results", len(results))
	}
	for i := 1; i < len(results); i++ {
		prev, curr := results[i-1], results[i]
		if prev.Similarity < curr.Similarity {
			t.Errorf("results not sorted by similarity: %v", results)
		}
		if prev.Similarity == curr.Similarity && prev.Word > curr.Word {
			t.Errorf("tie not broken by ascending word: %v", results)
		}
	}
	for _, r := range results {
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("similarity %v outside [0,1]", r.Similarity)
		}
	}
}

func TestMatchValidation(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple"})

	if _, err := m.Match("a", Mode("soundex")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown mode error = %v, want ErrInvalidArgument", err)
	}
	if _, err := m.Match("a", ModeChar, WithThreshold(1.5)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad threshold error = %v, want ErrInvalidArgument", err)
	}
	if _, err := m.Match("a", ModeChar, WithLimit(-1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative limit error = %v, want ErrInvalidArgument", err)
	}
	if _, err := m.AddWord(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty AddWord error = %v, want ErrInvalidArgument", err)
	}
}

func TestMatchEmptyAndUnbuilt(t *testing.T) {
	m := newTestMatcher(t, nil)

	results, err := m.Match("anything", ModeHybrid)
	if err != nil {
		t.Fatalf("Match before build: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Match before build = %v, want empty", results)
	}

	m.Build([]string{"apple"})
	results, err = m.Match("", ModeChar)
	if err != nil {
		t.Fatalf("Match(empty): %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Match(empty) = %v, want empty", results)
	}
}

func TestBuildReplacesDictionary(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "banana"})
	m.Build([]string{"cherry"})

	if got := m.Words(); !reflect.DeepEqual(got, []string{"cherry"}) {
		t.Errorf("Words after rebuild = %v, want [cherry]", got)
	}
	results, err := m.Match("apple", ModeChar)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, r := range results {
		if r.Word == "apple" {
			t.Errorf("stale word survived rebuild: %v", results)
		}
	}
}

func TestBuildDeduplicates(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "banana", "apple", "", "banana"})

	if got := m.WordCount(); got != 2 {
		t.Errorf("WordCount = %d, want 2", got)
	}
	if got := m.Words(); !reflect.DeepEqual(got, []string{"apple", "banana"}) {
		t.Errorf("Words = %v, want first-occurrence order", got)
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "banana"})
	before := m.Words()

	if added, _ := m.AddWord("cherry"); !added {
		t.Fatal("AddWord(cherry) = false")
	}
	if !m.RemoveWord("cherry") {
		t.Fatal("RemoveWord(cherry) = false")
	}
	if m.RemoveWord("cherry") {
		t.Error("second RemoveWord(cherry) = true")
	}
	if got := m.Words(); !reflect.DeepEqual(got, before) {
		t.Errorf("Words after add+remove = %v, want %v", got, before)
	}

	// Removal must be visible to queries.
	m.Build([]string{"apple", "banana"})
	m.RemoveWord("banana")
	results, err := m.Match("banana", ModeChar)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, r := range results {
		if r.Word == "banana" {
			t.Errorf("removed word still matches: %v", results)
		}
	}
}

func TestWordsSnapshotIndependent(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"apple", "banana"})

	snapshot := m.Words()
	snapshot[0] = "mangled"
	if got := m.Words(); !reflect.DeepEqual(got, []string{"apple", "banana"}) {
		t.Errorf("mutating snapshot leaked into matcher: %v", got)
	}
}

func TestHybridEqualsMeanOfModes(t *testing.T) {
	m := newTestMatcher(t, nil)
	m.Build([]string{"北京", "背景", "南京", "apple"})
	query := "北京"

	charResults, _ := m.Match(query, ModeChar)
	pinyinResults, _ := m.Match(query, ModePinyin)
	hybridResults, _ := m.Match(query, ModeHybrid)

	charSim := map[string]float64{}
	for _, r := range charResults {
		charSim[r.Word] = r.Similarity
	}
	pinyinSim := map[string]float64{}
	for _, r := range pinyinResults {
		pinyinSim[r.Word] = r.Similarity
	}
	for _, r := range hybridResults {
		_, inChar := charSim[r.Word]
		_, inPinyin := pinyinSim[r.Word]
		if !inChar || !inPinyin {
			continue
		}
		mean := (charSim[r.Word] + pinyinSim[r.Word]) / 2
		if math.Abs(r.Similarity-mean) > 1e-9 {
			t.Errorf("hybrid %q = %v, want mean %v", r.Word, r.Similarity, mean)
		}
	}
}

func TestCharConfusionLowersCost(t *testing.T) {
	m := newTestMatcher(t, func(cfg *config.Config) {
		cfg.Matcher.CharConfusionPath = filepath.Join("testdata", "char_confusion.json")
	})
	m.Build([]string{"日期"})

	results, err := m.Match("曰期", ModeChar)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// 日/曰 substitution costs 0.5, so similarity is 1 - 0.5/2.
	if len(results) != 1 || math.Abs(results[0].Similarity-0.75) > 1e-9 {
		t.Errorf("Match(曰期, char) = %v, want 日期 at 0.75", results)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Matcher.SimilarityThreshold = 2
	if _, err := New(cfg); err == nil {
		t.Error("New accepted out-of-range threshold")
	}

	cfg = config.DefaultConfig()
	cfg.Matcher.CharConfusionPath = filepath.Join("testdata", "does_not_exist.json")
	if _, err := New(cfg); err == nil {
		t.Error("New accepted missing confusion file")
	}
}
