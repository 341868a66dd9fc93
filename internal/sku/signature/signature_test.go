package signature

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_OrderIndependent(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	a := node.Generate()
	b := node.Generate()
	c := node.Generate()

	forward := []MaterialLine{
		{MaterialID: a, QuantityUsed: 2},
		{MaterialID: b, QuantityUsed: 1},
		{MaterialID: c, QuantityUsed: 5},
	}
	reversed := []MaterialLine{
		{MaterialID: c, QuantityUsed: 5},
		{MaterialID: b, QuantityUsed: 1},
		{MaterialID: a, QuantityUsed: 2},
	}

	h1, err := Hash(mustCanonicalize(t, forward))
	require.NoError(t, err)
	h2, err := Hash(mustCanonicalize(t, reversed))
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestHash_Deterministic(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	lines := []MaterialLine{
		{MaterialID: node.Generate(), QuantityUsed: 3},
		{MaterialID: node.Generate(), QuantityUsed: 7},
	}

	canonical := mustCanonicalize(t, lines)
	h1, err := Hash(canonical)
	require.NoError(t, err)
	h2, err := Hash(canonical)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 32)
}

func TestHash_DistinguishesQuantity(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	id := node.Generate()

	h1, err := Hash(mustCanonicalize(t, []MaterialLine{{MaterialID: id, QuantityUsed: 1}}))
	require.NoError(t, err)
	h2, err := Hash(mustCanonicalize(t, []MaterialLine{{MaterialID: id, QuantityUsed: 2}}))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHash_DistinguishesMaterialSets(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	a := node.Generate()
	b := node.Generate()

	h1, err := Hash(mustCanonicalize(t, []MaterialLine{{MaterialID: a, QuantityUsed: 1}}))
	require.NoError(t, err)
	h2, err := Hash(mustCanonicalize(t, []MaterialLine{
		{MaterialID: a, QuantityUsed: 1},
		{MaterialID: b, QuantityUsed: 1},
	}))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCanonicalize_RejectsEmpty(t *testing.T) {
	_, err := Canonicalize(nil)
	assert.ErrorIs(t, err, ErrNoMaterials)
}

func TestCanonicalize_RejectsNonPositiveQuantity(t *testing.T) {
	node, _ := snowflake.NewNode(1)

	_, err := Canonicalize([]MaterialLine{{MaterialID: node.Generate(), QuantityUsed: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = Canonicalize([]MaterialLine{{MaterialID: node.Generate(), QuantityUsed: -3}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCanonicalize_RejectsDuplicateMaterial(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	id := node.Generate()

	_, err := Canonicalize([]MaterialLine{
		{MaterialID: id, QuantityUsed: 1},
		{MaterialID: id, QuantityUsed: 2},
	})
	assert.ErrorIs(t, err, ErrDuplicateMaterial)
}

func TestBuild_CanonicalJSONIsSorted(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	a := node.Generate()
	b := node.Generate()

	sorted, canonical, digest, err := Build([]MaterialLine{
		{MaterialID: b, QuantityUsed: 2},
		{MaterialID: a, QuantityUsed: 1},
	})
	require.NoError(t, err)
	require.Len(t, sorted, 2)

	assert.True(t, sorted[0].MaterialID.String() < sorted[1].MaterialID.String())
	assert.NotEmpty(t, canonical)
	assert.Len(t, digest, 32)
}

func mustCanonicalize(t *testing.T, lines []MaterialLine) []MaterialLine {
	t.Helper()
	out, err := Canonicalize(lines)
	require.NoError(t, err)
	return out
}
