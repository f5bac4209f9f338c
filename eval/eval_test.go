package eval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateSizeFastPath(t *testing.T) {
	n, err := EvaluateSize("42", nil)
	require.NoError(t, err)
	require.Equal(t, 42, n)
}

func TestEvaluateSizeFromField(t *testing.T) {
	ctx := NewContext(map[string]any{"count": int64(7)})
	n, err := EvaluateSize("count", ctx)
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestConditionComparison(t *testing.T) {
	ctx := NewContext(map[string]any{"kind": int64(2)})
	e := MustParse("kind == 2")
	ok, err := e.Bool(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEmptyConditionDefaultsTrue(t *testing.T) {
	e := MustParse("")
	ok, err := e.Bool(NewContext(map[string]any{}))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPrefixVariable(t *testing.T) {
	ctx := NewContext(map[string]any{}).WithPrefix(1)
	e := MustParse("prefix == 1")
	ok, err := e.Bool(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArithmeticAndLogical(t *testing.T) {
	ctx := NewContext(map[string]any{"x": int64(2), "y": int64(3)})
	e := MustParse("x + y == 5 && x < y")
	ok, err := e.Bool(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParentFieldReference(t *testing.T) {
	root := map[string]any{"version": int64(3)}
	ctx := NewContext(root).PushSelf(map[string]any{"flag": true})
	e := MustParse("../version == 3")
	ok, err := e.Bool(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLenFunction(t *testing.T) {
	ctx := NewContext(map[string]any{"items": []any{int64(1), int64(2), int64(3)}})
	e := MustParse("len(items)")
	n, err := e.Int(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestIndexing(t *testing.T) {
	ctx := NewContext(map[string]any{"items": []any{int64(10), int64(20)}})
	e := MustParse("items[1]")
	n, err := e.Int(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 20, n)
}

func TestNegativeSizeRejected(t *testing.T) {
	ctx := NewContext(map[string]any{"n": int64(-1)})
	e := MustParse("n")
	_, err := e.Size(ctx)
	require.Error(t, err)
}

func TestUnknownVariableErrors(t *testing.T) {
	ctx := NewContext(map[string]any{})
	e := MustParse("missing == 1")
	_, err := e.Bool(ctx)
	require.Error(t, err)
}
