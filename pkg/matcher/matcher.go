package matcher

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/youhengchan/mohu/internal/utils"
	"github.com/youhengchan/mohu/pkg/config"
	"github.com/youhengchan/mohu/pkg/confusion"
	"github.com/youhengchan/mohu/pkg/distance"
	"github.com/youhengchan/mohu/pkg/pinyin"
)

// Matcher owns the dictionary and its two parallel indexes. Queries from
// multiple goroutines are safe against a stable dictionary; mutations take
// the write lock and queries observe either the pre- or post-mutation
// state, never a partial view.
type Matcher struct {
	mu sync.RWMutex

	cfg        config.MatcherConfig
	conv       *pinyin.Converter
	charConf   *confusion.Table
	pinyinConf *confusion.Table

	entries []entry
	ids     map[string]int

	charIdx *index
	pinIdx  *index
	surface *patricia.Trie

	built bool
	dirty bool
}

// matchParams carries the per-call overrides for Match.
type matchParams struct {
	threshold float64
	limit     int
}

// MatchOption overrides a configured default for a single Match call.
type MatchOption func(*matchParams)

// WithThreshold overrides the configured similarity threshold. Values
// outside [0, 1] make Match fail with ErrInvalidArgument.
func WithThreshold(t float64) MatchOption {
	return func(p *matchParams) { p.threshold = t }
}

// WithLimit caps the number of returned results. Zero means unbounded;
// negative values make Match fail with ErrInvalidArgument.
func WithLimit(n int) MatchOption {
	return func(p *matchParams) { p.limit = n }
}

// New creates a matcher from cfg, loading the confusion tables named by
// it. A nil cfg means built-in defaults. A confusion path that is set but
// unreadable or malformed is fatal here.
func New(cfg *config.Config) (*Matcher, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matcher config: %w", err)
	}
	charConf, err := loadTable(cfg.Matcher.CharConfusionPath)
	if err != nil {
		return nil, err
	}
	pinyinConf, err := loadTable(cfg.Matcher.PinyinConfusionPath)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		cfg:        cfg.Matcher,
		conv:       pinyin.NewConverter(cfg.Matcher.IgnoreTones),
		charConf:   charConf,
		pinyinConf: pinyinConf,
		ids:        map[string]int{},
	}, nil
}

func loadTable(path string) (*confusion.Table, error) {
	if path == "" {
		return confusion.NewTable(), nil
	}
	return confusion.Load(path)
}

// Build replaces the dictionary with words, deduplicated preserving first
// occurrence, and rebuilds both indexes. Empty strings are dropped.
func (m *Matcher) Build(words []string) {
	deduped := utils.Dedupe(words)
	entries := make([]entry, 0, len(deduped))
	ids := make(map[string]int, len(deduped))
	for _, w := range deduped {
		if w == "" {
			log.Debug("Skipping empty word in build input")
			continue
		}
		ids[w] = len(entries)
		entries = append(entries, m.newEntry(w))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	m.ids = ids
	m.reindexLocked()
	m.built = true
	m.dirty = false
}

func (m *Matcher) newEntry(word string) entry {
	return entry{
		word:  word,
		chars: utils.Graphemes(word),
		syls:  m.conv.Convert(word),
	}
}

func (m *Matcher) reindexLocked() {
	m.charIdx = buildIndex(m.entries, func(e *entry) []string { return e.chars })
	m.pinIdx = buildIndex(m.entries, func(e *entry) []string { return e.syls })
	m.surface = buildSurface(m.entries)
	log.Debugf("Reindexed %d words", len(m.ids))
}

// Match returns the dictionary entries most similar to text under the
// given mode, sorted by descending similarity with ties broken by
// ascending word. Matching before any Build yields an empty result.
func (m *Matcher) Match(text string, mode Mode, opts ...MatchOption) ([]Result, error) {
	switch mode {
	case ModeChar, ModePinyin, ModeHybrid:
	default:
		return nil, fmt.Errorf("unknown match mode %q: %w", mode, ErrInvalidArgument)
	}
	params := matchParams{threshold: m.cfg.SimilarityThreshold}
	for _, opt := range opts {
		opt(&params)
	}
	if params.threshold < 0 || params.threshold > 1 {
		return nil, fmt.Errorf("similarity threshold %g outside [0,1]: %w", params.threshold, ErrInvalidArgument)
	}
	if params.limit < 0 {
		return nil, fmt.Errorf("negative result limit %d: %w", params.limit, ErrInvalidArgument)
	}
	if text == "" {
		return []Result{}, nil
	}

	m.reindexIfDirty()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.built {
		log.Debug("Match called before build, returning no results")
		return []Result{}, nil
	}

	var results []Result
	switch mode {
	case ModeChar:
		results = m.matchCharLocked(text)
	case ModePinyin:
		results = m.matchPinyinLocked(text)
	case ModeHybrid:
		results = m.matchHybridLocked(text, params.limit)
	}
	results = filterThreshold(results, params.threshold)
	return truncate(results, params.limit), nil
}

func (m *Matcher) reindexIfDirty() {
	m.mu.RLock()
	dirty := m.dirty
	m.mu.RUnlock()
	if !dirty {
		return
	}
	m.mu.Lock()
	if m.dirty {
		m.reindexLocked()
		m.dirty = false
	}
	m.mu.Unlock()
}

// matchCharLocked scores the query's graphemes against every candidate the
// char index yields, plus every word within the length window (a word can
// be within edit range without sharing a single token).
func (m *Matcher) matchCharLocked(text string) []Result {
	query := utils.Graphemes(text)
	cands := map[int]bool{}
	m.charIdx.collect(query, cands)
	m.collectByLength(query, func(e *entry) []string { return e.chars }, cands)
	return m.score(query, cands, func(e *entry) []string { return e.chars }, m.charConf)
}

func (m *Matcher) matchPinyinLocked(text string) []Result {
	query := m.conv.Convert(text)
	if len(query) == 0 {
		return nil
	}
	cands := map[int]bool{}
	m.pinIdx.collect(query, cands)
	collectSurface(m.surface, query, cands)
	m.collectByLength(query, func(e *entry) []string { return e.syls }, cands)
	return m.score(query, cands, func(e *entry) []string { return e.syls }, m.pinyinConf)
}

// matchHybridLocked fuses the two single-mode rankings, each truncated to
// the requested limit first. Fused score is the equal-weight sum, so a
// word present in both lists scores the mean of its two similarities.
func (m *Matcher) matchHybridLocked(text string, limit int) []Result {
	charResults := truncate(m.matchCharLocked(text), limit)
	pinyinResults := truncate(m.matchPinyinLocked(text), limit)

	fused := make(map[string]float64, len(charResults)+len(pinyinResults))
	for _, r := range charResults {
		fused[r.Word] += r.Similarity * hybridWeight
	}
	for _, r := range pinyinResults {
		fused[r.Word] += r.Similarity * hybridWeight
	}

	results := make([]Result, 0, len(fused))
	for word, sim := range fused {
		results = append(results, Result{Word: word, Similarity: sim})
	}
	sortResults(results)
	return results
}

func (m *Matcher) collectByLength(query []string, tokens func(*entry) []string, into map[int]bool) {
	window := m.cfg.MaxDistance
	for id := range m.entries {
		e := &m.entries[id]
		if e.deleted {
			continue
		}
		diff := len(tokens(e)) - len(query)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			into[id] = true
		}
	}
}

func (m *Matcher) score(query []string, cands map[int]bool, tokens func(*entry) []string, table *confusion.Table) []Result {
	maxDist := float64(m.cfg.MaxDistance)
	results := make([]Result, 0, len(cands))
	for id := range cands {
		e := &m.entries[id]
		if e.deleted {
			continue
		}
		toks := tokens(e)
		d := distance.Weighted(query, toks, table)
		if d > maxDist {
			continue
		}
		results = append(results, Result{
			Word:       e.word,
			Similarity: distance.Similarity(d, len(query), len(toks)),
		})
	}
	sortResults(results)
	return results
}

// AddWord inserts word if absent. The indexes are rebuilt lazily on the
// next query. Empty words are rejected.
func (m *Matcher) AddWord(word string) (bool, error) {
	if word == "" {
		return false, fmt.Errorf("empty word: %w", ErrInvalidArgument)
	}
	e := m.newEntry(word)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[word]; ok {
		return false, nil
	}
	m.ids[word] = len(m.entries)
	m.entries = append(m.entries, e)
	m.built = true
	m.dirty = true
	return true, nil
}

// RemoveWord deletes word if present, tombstoning its arena slot until the
// next full Build.
func (m *Matcher) RemoveWord(word string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[word]
	if !ok {
		return false
	}
	m.entries[id].deleted = true
	delete(m.ids, word)
	m.dirty = true
	return true
}

// WordCount returns the current dictionary size.
func (m *Matcher) WordCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Words returns an independent snapshot of the dictionary in insertion
// order.
func (m *Matcher) Words() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	words := make([]string, 0, len(m.ids))
	for i := range m.entries {
		if m.entries[i].deleted {
			continue
		}
		words = append(words, m.entries[i].word)
	}
	return words
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Word < results[j].Word
	})
}

func filterThreshold(results []Result, threshold float64) []Result {
	if threshold <= 0 {
		return results
	}
	kept := results[:0]
	for _, r := range results {
		if r.Similarity >= threshold {
			kept = append(kept, r)
		}
	}
	return kept
}

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
