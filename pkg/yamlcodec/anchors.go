package yamlcodec

import (
	"errors"
	"fmt"

	"github.com/DandyLyons/frontrange/pkg/node"
)

// ErrAliasBeforeAnchor is returned when an alias would be written before the
// anchor it refers to, which no YAML parser can read back.
var ErrAliasBeforeAnchor = errors.New("alias precedes its anchor")

// sortKeys orders every mapping in n by key. A pair holding an anchor is
// pulled ahead of the first pair that aliases it, so the output stays
// readable.
func sortKeys(n node.Node) node.Node {
	switch n.Kind() {
	case node.KindSequence:
		items := n.Items()
		for i := range items {
			items[i] = sortKeys(items[i])
		}

		return n.WithItems(items)
	case node.KindMapping:
		var m node.Mapping
		for key, value := range n.Mapping().All() {
			m.Set(key, sortKeys(value))
		}

		m.SortFunc(node.CompareKeys)

		var out node.Mapping
		for _, p := range anchorsFirst(m.Pairs()) {
			out.Set(p.Key, p.Value)
		}

		return n.WithMapping(out)
	default:
		return n
	}
}

// anchorsFirst keeps pairs in order except that a pair defining an anchor
// moves to just before the first sibling that aliases it.
func anchorsFirst(pairs []node.Pair) []node.Pair {
	defs := make([]map[string]bool, len(pairs))
	uses := make([]map[string]bool, len(pairs))

	for i, p := range pairs {
		defs[i] = map[string]bool{}
		collectAnchors(p.Key, defs[i])
		collectAnchors(p.Value, defs[i])

		uses[i] = map[string]bool{}
		collectAliases(p.Key, uses[i])
		collectAliases(p.Value, uses[i])
	}

	out := make([]node.Pair, 0, len(pairs))
	placed := make([]bool, len(pairs))
	visiting := make([]bool, len(pairs))

	var place func(i int)
	place = func(i int) {
		if placed[i] || visiting[i] {
			return
		}

		visiting[i] = true

		for name := range uses[i] {
			if defs[i][name] {
				continue
			}

			for j := range pairs {
				if j != i && !placed[j] && defs[j][name] {
					place(j)
				}
			}
		}

		visiting[i] = false
		placed[i] = true
		out = append(out, pairs[i])
	}

	for i := range pairs {
		place(i)
	}

	return out
}

func collectAnchors(n node.Node, into map[string]bool) {
	if n.Anchor() != "" && !n.IsAlias() {
		into[n.Anchor()] = true
	}

	eachChild(n, func(child node.Node) { collectAnchors(child, into) })
}

func collectAliases(n node.Node, into map[string]bool) {
	if n.IsAlias() {
		into[n.AliasName()] = true
	}

	eachChild(n, func(child node.Node) { collectAliases(child, into) })
}

func eachChild(n node.Node, fn func(node.Node)) {
	switch n.Kind() {
	case node.KindSequence:
		for _, item := range n.Items() {
			fn(item)
		}
	case node.KindMapping:
		for _, p := range n.Mapping().Pairs() {
			fn(p.Key)
			fn(p.Value)
		}
	}
}

// checkAliasOrder walks n in output order and fails on an alias whose
// anchor is only defined further on. Aliases with no anchor anywhere are
// left alone.
func checkAliasOrder(n node.Node) error {
	all := map[string]bool{}
	collectAnchors(n, all)

	defined := map[string]bool{}

	var walk func(n node.Node) error
	walk = func(n node.Node) error {
		if n.IsAlias() {
			if all[n.AliasName()] && !defined[n.AliasName()] {
				return fmt.Errorf("emit: %w: *%s", ErrAliasBeforeAnchor, n.AliasName())
			}

			return nil
		}

		if n.Anchor() != "" {
			defined[n.Anchor()] = true
		}

		var err error

		eachChild(n, func(child node.Node) {
			if err == nil {
				err = walk(child)
			}
		})

		return err
	}

	return walk(n)
}
