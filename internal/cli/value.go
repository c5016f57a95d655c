package cli

import (
	"errors"
	"fmt"

	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/yamlcodec"
)

// parseValue turns a command line value into a node. By default the value
// is a string, quoted when it would otherwise read as another type. With
// asYAML it is read as a YAML value, so "[a, b]" becomes a sequence and "3"
// an integer.
func parseValue(text string, asYAML bool) (node.Node, error) {
	if !asYAML {
		return node.FromValue(text), nil
	}

	n, err := yamlcodec.Compose([]byte(text))
	if errors.Is(err, yamlcodec.ErrEmptyDocument) {
		return node.StyledScalar("null", node.StylePlain), nil
	}

	if err != nil {
		return node.Node{}, fmt.Errorf("value %q: %w", text, err)
	}

	return n, nil
}
