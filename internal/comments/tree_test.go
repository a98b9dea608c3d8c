package comments

import (
	"testing"

	"discuss/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id uint) *uint {
	return &id
}

func fixture() []models.Comment {
	// Two root threads plus one nested chain, in fetch order
	return []models.Comment{
		{ID: 1, PostID: 7, Content: "first root"},
		{ID: 2, PostID: 7, ParentID: ptr(1), Content: "reply to 1"},
		{ID: 3, PostID: 7, ParentID: ptr(2), Content: "reply to 2"},
		{ID: 4, PostID: 7, Content: "second root"},
		{ID: 5, PostID: 7, ParentID: ptr(1), Content: "second reply to 1"},
	}
}

func TestRoots(t *testing.T) {
	roots := Roots(fixture())

	require.Len(t, roots, 2)
	assert.Equal(t, uint(1), roots[0].ID)
	assert.Equal(t, uint(4), roots[1].ID)
}

func TestRootsEmptyInput(t *testing.T) {
	assert.Empty(t, Roots(nil))
}

func TestChildrenPreservesInputOrder(t *testing.T) {
	kids := Children(fixture(), 1)

	require.Len(t, kids, 2)
	assert.Equal(t, uint(2), kids[0].ID)
	assert.Equal(t, uint(5), kids[1].ID)
}

func TestChildrenUnknownIDIsEmptyNotError(t *testing.T) {
	assert.Empty(t, Children(fixture(), 999))
}

func TestChildrenOfLeaf(t *testing.T) {
	assert.Empty(t, Children(fixture(), 3))
}

func TestBuildChainDescendsInOrder(t *testing.T) {
	cs := []models.Comment{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
	}

	roots := Build(cs)

	require.Len(t, roots, 1)
	assert.Equal(t, uint(1), roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, uint(2), roots[0].Children[0].ID)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, uint(3), roots[0].Children[0].Children[0].ID)
	assert.Empty(t, roots[0].Children[0].Children[0].Children)
}

func TestBuildCoversEveryComment(t *testing.T) {
	cs := fixture()
	roots := Build(cs)

	var count int
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			count++
			walk(n.Children)
		}
	}
	walk(roots)

	assert.Equal(t, len(cs), count)
}

func TestBuildSiblingOrderMatchesFetchOrder(t *testing.T) {
	roots := Build(fixture())

	require.Len(t, roots, 2)
	assert.Equal(t, uint(1), roots[0].ID)
	assert.Equal(t, uint(4), roots[1].ID)

	kids := roots[0].Children
	require.Len(t, kids, 2)
	assert.Equal(t, uint(2), kids[0].ID)
	assert.Equal(t, uint(5), kids[1].ID)
}

func TestBuildMissingParentIsUnreachable(t *testing.T) {
	cs := []models.Comment{
		{ID: 1},
		{ID: 2, ParentID: ptr(42)}, // parent not in snapshot
	}

	roots := Build(cs)

	require.Len(t, roots, 1)
	assert.Equal(t, uint(1), roots[0].ID)
	assert.Empty(t, roots[0].Children)
}

func TestPureFunctionsAreIdempotent(t *testing.T) {
	cs := fixture()

	first := Roots(cs)
	second := Roots(cs)
	assert.Equal(t, first, second)

	kidsFirst := Children(cs, 1)
	kidsSecond := Children(cs, 1)
	assert.Equal(t, kidsFirst, kidsSecond)

	// Input snapshot is untouched
	assert.Equal(t, fixture(), cs)
}
