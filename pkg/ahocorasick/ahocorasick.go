/*
Package ahocorasick provides multi-pattern matching over token sequences
using an Aho-Corasick automaton.

Unlike byte- or rune-based automatons, patterns here are sequences of
arbitrary string tokens, so the same structure indexes grapheme sequences
and pinyin syllable sequences. Search enumerates every registered pattern
occurring as a contiguous infix of the input.
*/
package ahocorasick

type node struct {
	next map[string]*node
	fail *node
	out  []int
}

func newNode() *node {
	return &node{next: map[string]*node{}}
}

// Automaton is a token-keyed Aho-Corasick automaton. Insert all patterns,
// call Build once, then Search any number of times. An automaton is
// immutable after Build and safe for concurrent searches.
type Automaton struct {
	root     *node
	patterns int
	built    bool
}

// New returns an empty automaton.
func New() *Automaton {
	return &Automaton{root: newNode()}
}

// Insert registers a pattern under the given id. Empty patterns are
// ignored. Must be called before Build.
func (a *Automaton) Insert(id int, pattern []string) {
	if len(pattern) == 0 || a.built {
		return
	}
	n := a.root
	for _, tok := range pattern {
		child, ok := n.next[tok]
		if !ok {
			child = newNode()
			n.next[tok] = child
		}
		n = child
	}
	n.out = append(n.out, id)
	a.patterns++
}

// Build computes the failure links breadth-first and propagates outputs
// along the failure chain, finalizing the automaton.
func (a *Automaton) Build() {
	queue := make([]*node, 0, len(a.root.next))
	for _, child := range a.root.next {
		child.fail = a.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for tok, child := range n.next {
			queue = append(queue, child)
			f := n.fail
			for f != nil {
				if t, ok := f.next[tok]; ok {
					child.fail = t
					break
				}
				f = f.fail
			}
			if child.fail == nil {
				child.fail = a.root
			}
			child.out = append(child.out, child.fail.out...)
		}
	}
	a.built = true
}

// Search returns the ids of every pattern occurring as a contiguous infix
// of tokens. The result is de-duplicated and unordered.
func (a *Automaton) Search(tokens []string) []int {
	if !a.built || len(tokens) == 0 {
		return nil
	}
	seen := map[int]bool{}
	var hits []int
	n := a.root
	for _, tok := range tokens {
		for {
			if next, ok := n.next[tok]; ok {
				n = next
				break
			}
			if n == a.root {
				break
			}
			n = n.fail
		}
		for _, id := range n.out {
			if !seen[id] {
				seen[id] = true
				hits = append(hits, id)
			}
		}
	}
	return hits
}

// Len reports the number of registered patterns.
func (a *Automaton) Len() int {
	return a.patterns
}
