package slices

// map each element in sli.
//
// each element indexed `N` of the returned slice is `mapper(sli[N])`.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// Map over sli with mapper.
//
// If mapper causes error, return (nil, error).
// Otherwise, return (mapping result, nil).
func MapUntilError[T any, R any](sli []T, mapper func(v T) (R, error)) ([]R, error) {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		r, err := mapper(v)
		if err != nil {
			return nil, err
		}
		ret[nth] = r
	}
	return ret, nil
}

// collect keys of a map. Ordering is not stable.
func KeysOf[K comparable, V any](m map[K]V) []K {
	ret := make([]K, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	return ret
}

// convert slice to map, keyed by getkey.
//
// If keys collide, a value coming later takes over the previous one.
func ToMap[K comparable, V any](sli []V, getkey func(V) K) map[K]V {
	ret := make(map[K]V, len(sli))
	for _, v := range sli {
		ret[getkey(v)] = v
	}
	return ret
}

// pick elements satisfying pred.
func Filter[T any](sli []T, pred func(v T) bool) []T {
	ret := make([]T, 0, len(sli))
	for _, v := range sli {
		if pred(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// true if at least one element satisfies pred.
func Some[T any](sli []T, pred func(v T) bool) bool {
	for _, v := range sli {
		if pred(v) {
			return true
		}
	}
	return false
}

// true if all elements satisfy pred. Vacuously true for an empty slice.
func Every[T any](sli []T, pred func(v T) bool) bool {
	for _, v := range sli {
		if !pred(v) {
			return false
		}
	}
	return true
}

func Contains[T comparable](sli []T, item T) bool {
	for _, v := range sli {
		if v == item {
			return true
		}
	}
	return false
}

func Concat[T any](slis ...[]T) []T {
	size := 0
	for _, s := range slis {
		size += len(s)
	}
	ret := make([]T, 0, size)
	for _, s := range slis {
		ret = append(ret, s...)
	}
	return ret
}
