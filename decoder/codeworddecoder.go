package decoder

import "math"

// ratiosTable holds, per symbol, the width of each of its eight bar/space
// runs as a fraction of the 17 modules. Used for closest-match decoding of
// distorted codewords.
var ratiosTable = buildRatiosTable()

func buildRatiosTable() [][barsInModule]float32 {
	table := make([][barsInModule]float32, len(symbolIndex))
	for i := range symbolIndex {
		currentSymbol := int(symbolIndex[i].pattern)
		currentBit := currentSymbol & 0x1
		for j := 0; j < barsInModule; j++ {
			var size float32
			for (currentSymbol & 0x1) == currentBit {
				size += 1.0
				currentSymbol >>= 1
			}
			currentBit = currentSymbol & 0x1
			table[i][barsInModule-j-1] = size / float32(modulesInCodeword)
		}
	}
	return table
}

// DecodedValue converts a module bit count into the pattern of the best
// matching symbol, preferring an exact table hit over a ratio match.
func DecodedValue(moduleBitCount []int) int {
	pattern := exactPattern(sampleBitCounts(moduleBitCount))
	if pattern != -1 {
		return pattern
	}
	return closestPattern(moduleBitCount)
}

// sampleBitCounts resamples the raw pixel run lengths into 17 evenly
// spaced module samples, regrouped into eight run counts.
func sampleBitCounts(moduleBitCount []int) []int {
	bitCountSum := sumInts(moduleBitCount)
	result := make([]int, barsInModule)
	bitCountIndex := 0
	sumPreviousBits := 0
	for i := 0; i < modulesInCodeword; i++ {
		sampleIndex := float64(bitCountSum)/(2.0*float64(modulesInCodeword)) +
			float64(i)*float64(bitCountSum)/float64(modulesInCodeword)
		if float64(sumPreviousBits+moduleBitCount[bitCountIndex]) <= sampleIndex {
			sumPreviousBits += moduleBitCount[bitCountIndex]
			bitCountIndex++
		}
		result[bitCountIndex]++
	}
	return result
}

func exactPattern(moduleBitCount []int) int {
	pattern := bitValue(moduleBitCount)
	if codewordValue(pattern) == -1 {
		return -1
	}
	return pattern
}

// bitValue packs run lengths into a bit pattern, even-indexed runs being
// bars.
func bitValue(moduleBitCount []int) int {
	var result int64
	for i := 0; i < len(moduleBitCount); i++ {
		for bit := 0; bit < moduleBitCount[i]; bit++ {
			result <<= 1
			if i%2 == 0 {
				result |= 1
			}
		}
	}
	return int(result)
}

// closestPattern finds the symbol whose run width ratios are nearest to
// the observed ratios by squared error.
func closestPattern(moduleBitCount []int) int {
	bitCountSum := sumInts(moduleBitCount)
	bitCountRatios := make([]float32, barsInModule)
	if bitCountSum > 1 {
		for i := range bitCountRatios {
			bitCountRatios[i] = float32(moduleBitCount[i]) / float32(bitCountSum)
		}
	}
	bestMatchError := float32(math.MaxFloat32)
	bestMatch := -1
	for j := range ratiosTable {
		var matchError float32
		ratioTableRow := ratiosTable[j]
		for k := 0; k < barsInModule; k++ {
			diff := ratioTableRow[k] - bitCountRatios[k]
			matchError += diff * diff
			if matchError >= bestMatchError {
				break
			}
		}
		if matchError < bestMatchError {
			bestMatchError = matchError
			bestMatch = int(symbolIndex[j].pattern)
		}
	}
	return bestMatch
}

func sumInts(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}
