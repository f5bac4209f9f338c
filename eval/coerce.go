package eval

import (
	"fmt"
	"math/big"
)

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case *big.Int:
		f := new(big.Float).SetInt(t)
		r, _ := f.Float64()
		return r, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("eval: cannot convert %T to number", v)
	}
}

func toInt(v any) (int64, error) {
	switch t := v.(type) {
	case *big.Int:
		return t.Int64(), nil
	default:
		f, err := toFloat(v)
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	}
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case nil:
		return false, nil
	default:
		f, err := toFloat(v)
		if err != nil {
			return false, fmt.Errorf("eval: cannot convert %T to bool", v)
		}
		return f != 0, nil
	}
}
