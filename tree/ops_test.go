package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trinitylake/trinitylake-go/tree"
)

func TestFindVersionFromRootNodeMatchesVersion(t *testing.T) {
	node := tree.NewNode(7)
	assert.EqualValues(t, 7, tree.FindVersionFromRootNode(node))

	published := node.WithVersion(12)
	assert.EqualValues(t, 12, tree.FindVersionFromRootNode(published))
}
