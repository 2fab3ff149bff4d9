package decoder

import "testing"

// patternRunLengths expands a bit pattern into its run lengths, leading
// module first.
func patternRunLengths(pattern, modules int) []int {
	var runs []int
	prev := (pattern >> uint(modules-1)) & 1
	length := 0
	for i := modules - 1; i >= 0; i-- {
		bit := (pattern >> uint(i)) & 1
		if bit == prev {
			length++
			continue
		}
		runs = append(runs, length)
		prev = bit
		length = 1
	}
	return append(runs, length)
}

func TestSymbolPatternShape(t *testing.T) {
	for cluster := 0; cluster <= 6; cluster += 3 {
		for _, value := range []int{0, 1, 17, 450, 899, 928} {
			pattern := SymbolPattern(cluster, value)
			if pattern>>(modulesInCodeword-1)&1 != 1 {
				t.Errorf("cluster %d value %d: pattern %#x does not start with a bar",
					cluster, value, pattern)
			}
			if pattern&1 != 0 {
				t.Errorf("cluster %d value %d: pattern %#x does not end with a space",
					cluster, value, pattern)
			}
			runs := patternRunLengths(pattern, modulesInCodeword)
			if len(runs) != barsInModule {
				t.Errorf("cluster %d value %d: %d runs, want %d",
					cluster, value, len(runs), barsInModule)
			}
		}
	}
}

func TestCodewordValueRoundTrip(t *testing.T) {
	for cluster := 0; cluster <= 6; cluster += 3 {
		for value := 0; value < numberOfCodewords; value++ {
			pattern := SymbolPattern(cluster, value)
			if got := codewordValue(pattern); got != value {
				t.Fatalf("cluster %d: codewordValue(%#x) = %d, want %d",
					cluster, pattern, got, value)
			}
		}
	}
}

func TestCodewordValueUnknownPattern(t *testing.T) {
	// all bars is not a valid symbol
	if got := codewordValue(0x1ffff); got != -1 {
		t.Errorf("codewordValue(0x1ffff) = %d, want -1", got)
	}
}

func TestClusterBucketRelation(t *testing.T) {
	// The alternating sum of the four bar widths determines the cluster.
	for cluster := 0; cluster <= 6; cluster += 3 {
		for _, value := range []int{0, 42, 300, 901, 928} {
			runs := patternRunLengths(SymbolPattern(cluster, value), modulesInCodeword)
			bucket := (runs[0] - runs[2] + runs[4] - runs[6] + 9) % 9
			if bucket != cluster {
				t.Errorf("cluster %d value %d: bucket %d", cluster, value, bucket)
			}
		}
	}
}

func TestGuardPatternShapes(t *testing.T) {
	startRuns := patternRunLengths(startPatternBits, modulesInCodeword)
	wantStart := []int{8, 1, 1, 1, 1, 1, 1, 3}
	if !equalInts(startRuns, wantStart) {
		t.Errorf("start pattern runs = %v, want %v", startRuns, wantStart)
	}
	stopRuns := patternRunLengths(stopPatternBits, modulesInStopPattern)
	wantStop := []int{7, 1, 1, 3, 1, 1, 1, 2, 1}
	if !equalInts(stopRuns, wantStop) {
		t.Errorf("stop pattern runs = %v, want %v", stopRuns, wantStop)
	}
}
