package persist

import (
	"math"

	"github.com/aljosa/paima-cards/internal/types"
)

func addInt64AndU64Checked(base int64, delta uint64, field string) (int64, error) {
	if delta > uint64(math.MaxInt64) {
		return 0, types.ErrOverflow.Wrapf("%s overflows int64", field)
	}
	d := int64(delta)
	if base > math.MaxInt64-d {
		return 0, types.ErrOverflow.Wrapf("%s overflows int64", field)
	}
	return base + d, nil
}

// RoundDeadline is the height at which a round started at start times out.
func RoundDeadline(start, roundLength int64) (int64, error) {
	if roundLength <= 0 {
		return 0, types.ErrCorruptState.Wrapf("round length %d", roundLength)
	}
	return addInt64AndU64Checked(start, uint64(roundLength), "round deadline")
}

func nextHeight(height int64) (int64, error) {
	return addInt64AndU64Checked(height, 1, "next block height")
}
