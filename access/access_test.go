package access

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int32
	Y int32
}

func TestBindByLowerCamelName(t *testing.T) {
	var p point
	require.NoError(t, Bind(&p, map[string]any{"x": int32(3), "y": int32(4)}))
	require.Equal(t, int32(3), p.X)
	require.Equal(t, int32(4), p.Y)
}

func TestExtractRoundTrip(t *testing.T) {
	p := point{X: 7, Y: 9}
	m, err := Extract(&p)
	require.NoError(t, err)
	require.Equal(t, int32(7), m["x"])
	require.Equal(t, int32(9), m["y"])

	var p2 point
	require.NoError(t, Bind(&p2, m))
	require.Equal(t, p, p2)
}

func TestBindConvertibleType(t *testing.T) {
	var p point
	require.NoError(t, Bind(&p, map[string]any{"x": int64(5)}))
	require.Equal(t, int32(5), p.X)
}

func TestBindRequiresPointer(t *testing.T) {
	var p point
	err := Bind(p, map[string]any{"x": int32(1)})
	require.Error(t, err)
}

func TestExtractProducesExactMap(t *testing.T) {
	p := point{X: 1, Y: 2}
	m, err := Extract(&p)
	require.NoError(t, err)

	want := map[string]any{"x": int32(1), "y": int32(2)}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
	}
}
