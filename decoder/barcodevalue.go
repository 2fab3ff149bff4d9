package decoder

import "sort"

// BarcodeValue counts occurrences of candidate codeword values at one
// matrix position so the most frequently seen value wins.
type BarcodeValue struct {
	values map[int]int
}

// NewBarcodeValue creates an empty BarcodeValue.
func NewBarcodeValue() *BarcodeValue {
	return &BarcodeValue{values: make(map[int]int)}
}

// SetValue records one more occurrence of value.
func (bv *BarcodeValue) SetValue(value int) {
	bv.values[value]++
}

// Value returns every value tied for the highest occurrence count, or nil
// when nothing has been recorded.
func (bv *BarcodeValue) Value() []int {
	maxConfidence := -1
	var result []int
	for value, confidence := range bv.values {
		if confidence > maxConfidence {
			maxConfidence = confidence
			result = []int{value}
		} else if confidence == maxConfidence {
			result = append(result, value)
		}
	}
	sort.Ints(result)
	return result
}

// Confidence returns the occurrence count recorded for value.
func (bv *BarcodeValue) Confidence(value int) int {
	return bv.values[value]
}
