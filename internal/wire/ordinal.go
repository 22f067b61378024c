package wire

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Ordinal is a document version as carried in an envelope. Clients may send
// any number; a fractional value is truncated toward zero so the edit it came
// with is still applied.
type Ordinal int64

// UnmarshalJSON accepts integers, fractions and numeric strings.
func (o *Ordinal) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*o = Ordinal(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("version %q: %w", n, err)
	}
	return o.setFloat(f)
}

// DecodeMsgpack accepts any msgpack integer or float.
func (o *Ordinal) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	switch n := v.(type) {
	case int64:
		*o = Ordinal(n)
	case uint64:
		if n > math.MaxInt64 {
			return fmt.Errorf("version %d out of range", n)
		}
		*o = Ordinal(n)
	case float64:
		return o.setFloat(n)
	default:
		return fmt.Errorf("version: unexpected %T", v)
	}
	return nil
}

func (o *Ordinal) setFloat(f float64) error {
	f = math.Trunc(f)
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("version %v out of range", f)
	}
	*o = Ordinal(f)
	return nil
}
