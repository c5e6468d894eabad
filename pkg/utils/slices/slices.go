package slices

import "sort"

// map each element in sli.
//
// # Args
//
// - sli : slice of `T`s
//
// - mapper : mapping function from T to R
//
// # Returns
//
// slice of `R`s. Each element indexed `N` is given with `mapper(sli[N])` .
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// keys of m, sorted.
func KeysOf[K interface {
	comparable
	~string
}, V any](m map[K]V) []K {
	ks := make([]K, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

// Map over sli with mapper.
//
// If mapper causes error, return (nil, error). Otherwise (mapping result, nil).
func MapUntilError[T any, R any](sli []T, mapper func(v T) (R, error)) ([]R, error) {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		mapped, err := mapper(v)
		if err != nil {
			return nil, err
		}
		ret[nth] = mapped
	}
	return ret, nil
}
