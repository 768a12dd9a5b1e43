package process

// Notes:
// - Only non-existent and non-positive pids are exercised. Killing a real
//   process group is covered by the rasterizer integration tests.

import "testing"

func TestKillProcessGroup_IgnoresInvalidPIDs(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1, 999999999} {
		KillProcessGroup(pid)
	}
}
