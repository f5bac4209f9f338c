package convert

import (
	"fmt"
	"testing"

	"github.com/binframe/codec/eval"
	"github.com/stretchr/testify/require"
)

func TestChooseFirstMatchingAlternative(t *testing.T) {
	ctx := eval.NewContext(map[string]any{"kind": int64(2)})
	set := &Set{
		Alternatives: []Alternative{
			{Condition: eval.MustParse("kind == 1"), Converter: &Converter{Name: "one"}},
			{Condition: eval.MustParse("kind == 2"), Converter: &Converter{Name: "two"}},
		},
		Default: &Converter{Name: "default"},
	}
	conv, err := set.Choose(ctx)
	require.NoError(t, err)
	require.Equal(t, "two", conv.Name)
}

func TestChooseFallsBackToDefault(t *testing.T) {
	ctx := eval.NewContext(map[string]any{"kind": int64(9)})
	set := &Set{
		Alternatives: []Alternative{
			{Condition: eval.MustParse("kind == 1"), Converter: &Converter{Name: "one"}},
		},
		Default: &Converter{Name: "default"},
	}
	conv, err := set.Choose(ctx)
	require.NoError(t, err)
	require.Equal(t, "default", conv.Name)
}

func TestDecodeValueWrapsConverterError(t *testing.T) {
	ctx := eval.NewContext(map[string]any{})
	set := NewSet(&Converter{
		Decode: func(any) (any, error) { return nil, fmt.Errorf("boom") },
	})
	_, err := set.DecodeValue(ctx, uint8(1))
	require.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	err := Validate(int64(-1), func(v any) error {
		if v.(int64) < 0 {
			return fmt.Errorf("must be non-negative")
		}
		return nil
	})
	require.Error(t, err)
}

func TestIdentityPassthrough(t *testing.T) {
	c := Identity()
	v, err := c.Decode(int64(5))
	require.NoError(t, err)
	require.Equal(t, int64(5), v)
}
