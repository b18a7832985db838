package dispatch

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// WorkerCount is the smallest of the physical core count, the number of
// products, and the user override, ignoring values that are not positive.
// The result is never below one.
func WorkerCount(physical, products, override int) int {
	n := 0
	for _, v := range []int{physical, products, override} {
		if v <= 0 {
			continue
		}
		if n == 0 || v < n {
			n = v
		}
	}
	if n < 1 {
		return 1
	}
	return n
}

// PhysicalCPUs returns the number of physical cores, falling back to the
// logical count when the platform does not report it.
func PhysicalCPUs() int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
