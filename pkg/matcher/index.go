package matcher

import (
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/youhengchan/mohu/pkg/ahocorasick"
)

// entry is one dictionary word in the id-indexed arena. Removed words are
// tombstoned; ids stay stable until the next full Build.
type entry struct {
	word    string
	chars   []string
	syls    []string
	deleted bool
}

// index is one of the two parallel lookup structures (char-form or
// pinyin-form): an Aho-Corasick automaton over full token sequences plus a
// reverse map from single tokens to the ids of the words containing them.
type index struct {
	ac     *ahocorasick.Automaton
	owners map[string][]int
}

func buildIndex(entries []entry, tokens func(*entry) []string) *index {
	ix := &index{
		ac:     ahocorasick.New(),
		owners: map[string][]int{},
	}
	for id := range entries {
		e := &entries[id]
		if e.deleted {
			continue
		}
		toks := tokens(e)
		ix.ac.Insert(id, toks)
		seen := map[string]bool{}
		for _, tok := range toks {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			ix.owners[tok] = append(ix.owners[tok], id)
		}
	}
	ix.ac.Build()
	return ix
}

// collect adds every word id the query could plausibly edit into: automaton
// infix hits and words sharing at least one token with the query.
func (ix *index) collect(query []string, into map[int]bool) {
	for _, id := range ix.ac.Search(query) {
		into[id] = true
	}
	for _, tok := range query {
		for _, id := range ix.owners[tok] {
			into[id] = true
		}
	}
}

// buildSurface indexes the joined pinyin spelling of every live word in a
// patricia trie, so a partial romanized query can pull in every word whose
// pinyin it prefixes.
func buildSurface(entries []entry) *patricia.Trie {
	trie := patricia.NewTrie()
	joined := make(map[string][]int)
	for id := range entries {
		e := &entries[id]
		if e.deleted || len(e.syls) == 0 {
			continue
		}
		key := joinTokens(e.syls)
		joined[key] = append(joined[key], id)
	}
	for key, ids := range joined {
		trie.Insert(patricia.Prefix(key), ids)
	}
	return trie
}

// collectSurface adds words whose joined pinyin starts with the query's
// joined pinyin.
func collectSurface(trie *patricia.Trie, query []string, into map[int]bool) {
	if trie == nil || len(query) == 0 {
		return
	}
	_ = trie.VisitSubtree(patricia.Prefix(joinTokens(query)), func(_ patricia.Prefix, item patricia.Item) error {
		for _, id := range item.([]int) {
			into[id] = true
		}
		return nil
	})
}

func joinTokens(tokens []string) string {
	n := 0
	for _, t := range tokens {
		n += len(t)
	}
	buf := make([]byte, 0, n)
	for _, t := range tokens {
		buf = append(buf, t...)
	}
	return string(buf)
}
