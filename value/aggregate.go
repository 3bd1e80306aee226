package value

// Aggregation helpers tolerate empty input and None values: an empty input
// yields None instead of zero.

func Sum(values []Value) (Value, error) {
	var (
		acc = None
		err error
	)
	for _, v := range values {
		acc, err = Add(acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func Avg(values []Value) (Value, error) {
	total, err := Sum(values)
	if err != nil || IsNone(total) {
		return total, err
	}
	return Div(total, Float(len(values)))
}

func Min(values []Value) (Value, error) {
	return pick(values, func(c int) bool {
		return c < 0
	})
}

func Max(values []Value) (Value, error) {
	return pick(values, func(c int) bool {
		return c > 0
	})
}

func pick(values []Value, better func(int) bool) (Value, error) {
	if len(values) == 0 {
		return None, nil
	}
	for _, v := range values {
		if e, ok := v.(Error); ok {
			return e, nil
		}
	}
	res := values[0]
	for _, v := range values[1:] {
		c, err := Compare(v, res)
		if err != nil {
			return nil, err
		}
		if better(c) {
			res = v
		}
	}
	return res, nil
}
