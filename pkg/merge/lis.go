package merge

// longestIncreasingSubsequence returns the longest non-decreasing
// subsequence of items, ordered by the parallel sortKeys slice. Patience
// sorting with binary search, O(n log n).
//
// https://en.wikipedia.org/wiki/Longest_increasing_subsequence#Efficient_algorithms
func longestIncreasingSubsequence(items, sortKeys []string) []string {
	n := len(sortKeys)
	if n == 0 {
		return nil
	}

	prev := make([]int, n)    // index of the predecessor of i in the subsequence
	tails := make([]int, n+1) // tails[l] = index of the smallest tail of length l

	length := 0
	for i := 0; i < n; i++ {
		// Binary search for the smallest l in [1, length] such that
		// sortKeys[tails[l]] > sortKeys[i].
		lo, hi := 1, length+1
		for lo < hi {
			mid := lo + (hi-lo)/2
			if sortKeys[tails[mid]] > sortKeys[i] {
				hi = mid
			} else {
				lo = mid + 1
			}
		}

		if lo > 1 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		tails[lo] = i

		if lo > length {
			length = lo
		}
	}

	result := make([]string, length)
	k := tails[length]
	for j := length - 1; j >= 0; j-- {
		result[j] = items[k]
		k = prev[k]
	}
	return result
}
