package roster

import "github.com/trezcool/rollcall/core"

// MaxHeaderScan is the number of leading rows searched for the header.
const MaxHeaderScan = 5

// LocateHeader returns the index of the first of the `maxScan` leading rows that holds
// both a name label and a student ID label. It returns ErrHeaderNotFound otherwise.
func LocateHeader(rows [][]string, maxScan int) (int, error) {
	if maxScan <= 0 {
		maxScan = MaxHeaderScan
	}
	for i := 0; i < len(rows) && i < maxScan; i++ {
		var hasName, hasID bool
		for _, c := range rows[i] {
			label := core.NormalizeLabel(c)
			if _, ok := nameRules.matches(label); ok {
				hasName = true
			}
			if _, ok := headerIDRules.matches(label); ok {
				hasID = true
			}
		}
		if hasName && hasID {
			return i, nil
		}
	}
	return -1, ErrHeaderNotFound
}
