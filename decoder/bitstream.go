package decoder

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/barcoded/pdf417/macro"
)

// Text compaction sub-modes.
type textMode int

const (
	textModeAlpha textMode = iota
	textModeLower
	textModeMixed
	textModePunct
	textModeAlphaShift
	textModePunctShift
)

// Mode latch and shift codewords.
const (
	textCompactionModeLatch       = 900
	byteCompactionModeLatch       = 901
	numericCompactionModeLatch    = 902
	modeShiftToByteCompactionMode = 913
	macroTerminator               = 922
	macroOptionalField            = 923
	byteCompactionModeLatch6      = 924
	eciUserDefined                = 925
	eciGeneralPurpose             = 926
	eciCharset                    = 927
	macroControlBlock             = 928

	maxNumericCodewords = 15

	macroFieldFileName     = 0
	macroFieldSegmentCount = 1
	macroFieldTimestamp    = 2
	macroFieldSender       = 3
	macroFieldAddressee    = 4
	macroFieldFileSize     = 5
	macroFieldChecksum     = 6

	// sub-mode latch and shift values within text compaction
	tcPL  = 25
	tcLL  = 27
	tcAS  = 27
	tcML  = 28
	tcAL  = 28
	tcPS  = 29
	tcPAL = 29

	numberOfSequenceCodewords = 2
)

var punctChars = []byte(";<>@[\\]_`~!\r\t,:\n-.$/\"|*()?{}'")
var mixedChars = []byte("0123456789&\r\t,:#-.$/+%*=^")

// exp900 holds powers of 900 for numeric compaction decoding.
var exp900 = buildExp900()

func buildExp900() [16]*big.Int {
	var table [16]*big.Int
	table[0] = big.NewInt(1)
	table[1] = big.NewInt(900)
	for i := 2; i < len(table); i++ {
		table[i] = new(big.Int).Mul(table[i-1], table[1])
	}
	return table
}

// output accumulates the decompacted payload. Raw bytes are kept alongside
// the text so character set conversion never loses the original data.
type output struct {
	text    strings.Builder
	raw     []byte
	charset *charmap.Charmap
}

// writeASCII appends a byte that is ASCII regardless of the active ECI.
func (o *output) writeASCII(b byte) {
	o.text.WriteByte(b)
	o.raw = append(o.raw, b)
}

// writeByte appends a payload byte, converting through the active ECI
// character set for the text form.
func (o *output) writeByte(b byte) {
	o.raw = append(o.raw, b)
	if o.charset != nil {
		r := o.charset.DecodeByte(b)
		o.text.WriteRune(r)
		return
	}
	o.text.WriteByte(b)
}

func (o *output) writeString(s string) {
	o.text.WriteString(s)
	o.raw = append(o.raw, s...)
}

func (o *output) len() int { return o.text.Len() }

// setCharset switches the character set for subsequent byte compaction
// data according to an ECI designator. Unknown designators and UTF-8
// leave bytes unconverted.
func (o *output) setCharset(eci int) {
	o.charset = charsetForECI(eci)
}

func charsetForECI(eci int) *charmap.Charmap {
	switch eci {
	case 0, 2:
		return charmap.CodePage437
	case 1, 3:
		return charmap.ISO8859_1
	case 4:
		return charmap.ISO8859_2
	case 5:
		return charmap.ISO8859_3
	case 6:
		return charmap.ISO8859_4
	case 7:
		return charmap.ISO8859_5
	case 8:
		return charmap.ISO8859_6
	case 9:
		return charmap.ISO8859_7
	case 10:
		return charmap.ISO8859_8
	case 11:
		return charmap.ISO8859_9
	case 12:
		return charmap.ISO8859_10
	case 15:
		return charmap.ISO8859_13
	case 16:
		return charmap.ISO8859_14
	case 17:
		return charmap.ISO8859_15
	case 18:
		return charmap.ISO8859_16
	case 21:
		return charmap.Windows1250
	case 22:
		return charmap.Windows1251
	case 23:
		return charmap.Windows1252
	case 24:
		return charmap.Windows1256
	default:
		return nil
	}
}

// decodeBitStream decompacts corrected codewords into a Result. When the
// mode sequence is invalid the payload decoded so far is returned together
// with ErrInvalidMode.
func decodeBitStream(codewords []int, ecLevel int) (*Result, error) {
	result := &output{}

	codeIndex, err := textCompaction(codewords, 1, result)
	if err != nil {
		return partialResult(result, ecLevel, nil), err
	}
	var macroInfo *macro.Info
	for codeIndex < codewords[0] {
		code := codewords[codeIndex]
		codeIndex++
		switch code {
		case textCompactionModeLatch:
			codeIndex, err = textCompaction(codewords, codeIndex, result)
		case byteCompactionModeLatch, byteCompactionModeLatch6:
			codeIndex, err = byteCompaction(code, codewords, codeIndex, result)
		case modeShiftToByteCompactionMode:
			if codeIndex >= codewords[0] {
				err = fmt.Errorf("byte shift truncated at end of stream: %w", ErrInvalidMode)
				break
			}
			result.writeByte(byte(codewords[codeIndex]))
			codeIndex++
		case numericCompactionModeLatch:
			codeIndex, err = numericCompaction(codewords, codeIndex, result)
		case eciCharset:
			if codeIndex >= codewords[0] {
				err = fmt.Errorf("charset designator truncated at end of stream: %w", ErrInvalidMode)
				break
			}
			result.setCharset(codewords[codeIndex])
			codeIndex++
		case eciGeneralPurpose:
			// two-codeword designator, unsupported, skip
			codeIndex += 2
		case eciUserDefined:
			// one-codeword designator, unsupported, skip
			codeIndex++
		case macroControlBlock:
			macroInfo = macro.NewInfo()
			codeIndex, err = decodeMacroBlock(codewords, codeIndex, macroInfo)
		case macroOptionalField, macroTerminator:
			// only valid inside a macro control block
			err = fmt.Errorf("codeword %d outside macro block: %w", code, ErrInvalidMode)
		default:
			// Lenient fallback: treat an unexpected data codeword as text
			// compaction with a missing latch.
			codeIndex--
			codeIndex, err = textCompaction(codewords, codeIndex, result)
		}
		if err != nil {
			return partialResult(result, ecLevel, macroInfo), err
		}
	}
	if result.len() == 0 && macroInfo == nil {
		return nil, ErrStructuralMismatch
	}
	res := partialResult(result, ecLevel, macroInfo)
	return res, nil
}

func partialResult(o *output, ecLevel int, macroInfo *macro.Info) *Result {
	return &Result{
		Text:    o.text.String(),
		Bytes:   o.raw,
		ECLevel: ecLevel,
		Macro:   macroInfo,
	}
}

// decodeMacroBlock parses a macro control block: segment index, file ID,
// then optional tagged fields up to an optional terminator.
func decodeMacroBlock(codewords []int, codeIndex int, info *macro.Info) (int, error) {
	if codeIndex+numberOfSequenceCodewords > codewords[0] {
		return 0, ErrStructuralMismatch
	}
	segmentIndexArray := make([]int, numberOfSequenceCodewords)
	for i := 0; i < numberOfSequenceCodewords; i++ {
		segmentIndexArray[i] = codewords[codeIndex]
		codeIndex++
	}
	segmentIndexString, err := decodeBase900toBase10(segmentIndexArray, numberOfSequenceCodewords)
	if err != nil {
		return 0, err
	}
	if segmentIndexString == "" {
		info.SegmentIndex = 0
	} else {
		val, err := strconv.Atoi(segmentIndexString)
		if err != nil {
			return 0, ErrStructuralMismatch
		}
		info.SegmentIndex = val
	}

	// file ID codewords are 0-899 numbers, each zero-filled to width 3
	var fileID strings.Builder
	for codeIndex < codewords[0] &&
		codeIndex < len(codewords) &&
		codewords[codeIndex] != macroTerminator &&
		codewords[codeIndex] != macroOptionalField {
		fmt.Fprintf(&fileID, "%03d", codewords[codeIndex])
		codeIndex++
	}
	if fileID.Len() == 0 {
		return 0, ErrStructuralMismatch
	}
	info.FileID = fileID.String()

	optionalFieldsStart := -1
	if codeIndex < len(codewords) && codewords[codeIndex] == macroOptionalField {
		optionalFieldsStart = codeIndex + 1
	}

	for codeIndex < codewords[0] {
		switch codewords[codeIndex] {
		case macroOptionalField:
			codeIndex++
			codeIndex, err = decodeMacroOptionalField(codewords, codeIndex, info)
			if err != nil {
				return 0, err
			}
		case macroTerminator:
			codeIndex++
			info.LastSegment = true
		default:
			return 0, fmt.Errorf("codeword %d in macro block: %w", codewords[codeIndex], ErrInvalidMode)
		}
	}

	if optionalFieldsStart != -1 {
		optionalFieldsLength := codeIndex - optionalFieldsStart
		if info.LastSegment {
			optionalFieldsLength--
		}
		if optionalFieldsLength > 0 {
			info.OptionalData = make([]int, optionalFieldsLength)
			copy(info.OptionalData, codewords[optionalFieldsStart:optionalFieldsStart+optionalFieldsLength])
		}
	}

	return codeIndex, nil
}

func decodeMacroOptionalField(codewords []int, codeIndex int, info *macro.Info) (int, error) {
	field := codewords[codeIndex]
	codeIndex++
	switch field {
	case macroFieldFileName:
		var fileName output
		var err error
		codeIndex, err = textCompaction(codewords, codeIndex, &fileName)
		if err != nil {
			return 0, err
		}
		info.FileName = fileName.text.String()
	case macroFieldSender:
		var sender output
		var err error
		codeIndex, err = textCompaction(codewords, codeIndex, &sender)
		if err != nil {
			return 0, err
		}
		info.Sender = sender.text.String()
	case macroFieldAddressee:
		var addressee output
		var err error
		codeIndex, err = textCompaction(codewords, codeIndex, &addressee)
		if err != nil {
			return 0, err
		}
		info.Addressee = addressee.text.String()
	case macroFieldSegmentCount:
		value, next, err := decodeMacroNumericField(codewords, codeIndex)
		if err != nil {
			return 0, err
		}
		count, err := strconv.Atoi(value)
		if err != nil {
			return 0, ErrStructuralMismatch
		}
		info.SegmentCount = count
		codeIndex = next
	case macroFieldTimestamp:
		value, next, err := decodeMacroNumericField(codewords, codeIndex)
		if err != nil {
			return 0, err
		}
		ts, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, ErrStructuralMismatch
		}
		info.Timestamp = ts
		codeIndex = next
	case macroFieldFileSize:
		value, next, err := decodeMacroNumericField(codewords, codeIndex)
		if err != nil {
			return 0, err
		}
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, ErrStructuralMismatch
		}
		info.FileSize = size
		codeIndex = next
	case macroFieldChecksum:
		value, next, err := decodeMacroNumericField(codewords, codeIndex)
		if err != nil {
			return 0, err
		}
		sum, err := strconv.Atoi(value)
		if err != nil {
			return 0, ErrStructuralMismatch
		}
		info.Checksum = sum
		codeIndex = next
	default:
		return 0, fmt.Errorf("macro field tag %d: %w", field, ErrInvalidMode)
	}
	return codeIndex, nil
}

func decodeMacroNumericField(codewords []int, codeIndex int) (string, int, error) {
	var value output
	codeIndex, err := numericCompaction(codewords, codeIndex, &value)
	if err != nil {
		return "", 0, err
	}
	return value.text.String(), codeIndex, nil
}

// textCompaction decodes the Text compaction mode: two 0-29 half-codeword
// values per codeword, interpreted against the active sub-mode.
func textCompaction(codewords []int, codeIndex int, result *output) (int, error) {
	size := (codewords[0] - codeIndex) * 2
	if size < 0 {
		size = 0
	}
	textCompactionData := make([]int, size)
	byteCompactionData := make([]int, size)

	index := 0
	end := false
	subMode := textModeAlpha
	for codeIndex < codewords[0] && !end {
		code := codewords[codeIndex]
		codeIndex++
		if code < textCompactionModeLatch {
			textCompactionData[index] = code / 30
			textCompactionData[index+1] = code % 30
			index += 2
		} else {
			switch code {
			case textCompactionModeLatch:
				textCompactionData[index] = textCompactionModeLatch
				index++
			case byteCompactionModeLatch, byteCompactionModeLatch6,
				numericCompactionModeLatch, macroControlBlock,
				macroOptionalField, macroTerminator:
				codeIndex--
				end = true
			case modeShiftToByteCompactionMode:
				if codeIndex >= codewords[0] {
					end = true
					break
				}
				textCompactionData[index] = modeShiftToByteCompactionMode
				byteCompactionData[index] = codewords[codeIndex]
				codeIndex++
				index++
			case eciCharset:
				// flush what we have under the old charset, then switch
				subMode = decodeTextCompaction(textCompactionData, byteCompactionData, index, result, subMode)
				if codeIndex >= codewords[0] {
					return 0, ErrStructuralMismatch
				}
				result.setCharset(codewords[codeIndex])
				codeIndex++
				newSize := (codewords[0] - codeIndex) * 2
				if newSize < 0 {
					newSize = 0
				}
				textCompactionData = make([]int, newSize)
				byteCompactionData = make([]int, newSize)
				index = 0
			}
		}
	}
	decodeTextCompaction(textCompactionData, byteCompactionData, index, result, subMode)
	return codeIndex, nil
}

// decodeTextCompaction maps half-codeword values to characters, handling
// the four sub-modes with their latches and one-character shifts. The
// returned mode is the latched mode for a following segment.
func decodeTextCompaction(textCompactionData, byteCompactionData []int, length int,
	result *output, startMode textMode) textMode {

	subMode := startMode
	priorToShiftMode := startMode
	latchedMode := startMode
	for i := 0; i < length; i++ {
		subModeCh := textCompactionData[i]
		var ch byte
		switch subMode {
		case textModeAlpha:
			if subModeCh < 26 {
				ch = byte('A' + subModeCh)
			} else {
				switch subModeCh {
				case 26:
					ch = ' '
				case tcLL:
					subMode = textModeLower
					latchedMode = subMode
				case tcML:
					subMode = textModeMixed
					latchedMode = subMode
				case tcPS:
					priorToShiftMode = subMode
					subMode = textModePunctShift
				case modeShiftToByteCompactionMode:
					result.writeByte(byte(byteCompactionData[i]))
				case textCompactionModeLatch:
					subMode = textModeAlpha
					latchedMode = subMode
				}
			}

		case textModeLower:
			if subModeCh < 26 {
				ch = byte('a' + subModeCh)
			} else {
				switch subModeCh {
				case 26:
					ch = ' '
				case tcAS:
					priorToShiftMode = subMode
					subMode = textModeAlphaShift
				case tcML:
					subMode = textModeMixed
					latchedMode = subMode
				case tcPS:
					priorToShiftMode = subMode
					subMode = textModePunctShift
				case modeShiftToByteCompactionMode:
					result.writeByte(byte(byteCompactionData[i]))
				case textCompactionModeLatch:
					subMode = textModeAlpha
					latchedMode = subMode
				}
			}

		case textModeMixed:
			if subModeCh < tcPL {
				ch = mixedChars[subModeCh]
			} else {
				switch subModeCh {
				case tcPL:
					subMode = textModePunct
					latchedMode = subMode
				case 26:
					ch = ' '
				case tcLL:
					subMode = textModeLower
					latchedMode = subMode
				case tcAL, textCompactionModeLatch:
					subMode = textModeAlpha
					latchedMode = subMode
				case tcPS:
					priorToShiftMode = subMode
					subMode = textModePunctShift
				case modeShiftToByteCompactionMode:
					result.writeByte(byte(byteCompactionData[i]))
				}
			}

		case textModePunct:
			if subModeCh < tcPAL {
				ch = punctChars[subModeCh]
			} else {
				switch subModeCh {
				case tcPAL, textCompactionModeLatch:
					subMode = textModeAlpha
					latchedMode = subMode
				case modeShiftToByteCompactionMode:
					result.writeByte(byte(byteCompactionData[i]))
				}
			}

		case textModeAlphaShift:
			subMode = priorToShiftMode
			if subModeCh < 26 {
				ch = byte('A' + subModeCh)
			} else {
				switch subModeCh {
				case 26:
					ch = ' '
				case textCompactionModeLatch:
					subMode = textModeAlpha
				}
			}

		case textModePunctShift:
			subMode = priorToShiftMode
			if subModeCh < tcPAL {
				ch = punctChars[subModeCh]
			} else {
				switch subModeCh {
				case tcPAL, textCompactionModeLatch:
					subMode = textModeAlpha
				case modeShiftToByteCompactionMode:
					result.writeByte(byte(byteCompactionData[i]))
				}
			}
		}
		if ch != 0 {
			result.writeASCII(ch)
		}
	}
	return latchedMode
}

// byteCompaction decodes the Byte compaction mode: groups of five
// codewords carry six bytes base 900, a trailing short group carries one
// byte per codeword.
func byteCompaction(mode int, codewords []int, codeIndex int, result *output) (int, error) {
	end := false

	for codeIndex < codewords[0] && !end {
		// leading character set switches
		for codeIndex < codewords[0] && codewords[codeIndex] == eciCharset {
			codeIndex++
			if codeIndex >= codewords[0] {
				return codeIndex, fmt.Errorf("charset designator truncated at end of stream: %w", ErrInvalidMode)
			}
			result.setCharset(codewords[codeIndex])
			codeIndex++
		}

		if codeIndex >= codewords[0] || codewords[codeIndex] >= textCompactionModeLatch {
			end = true
			continue
		}
		// one block of up to five codewords
		var value int64
		count := 0
		for {
			value = 900*value + int64(codewords[codeIndex])
			codeIndex++
			count++
			if count >= 5 || codeIndex >= codewords[0] || codewords[codeIndex] >= textCompactionModeLatch {
				break
			}
		}
		if count == 5 && (mode == byteCompactionModeLatch6 ||
			(codeIndex < codewords[0] && codewords[codeIndex] < textCompactionModeLatch)) {
			for i := 0; i < 6; i++ {
				result.writeByte(byte(value >> uint(8 * (5 - i))))
			}
		} else {
			// trailing group, one byte per codeword
			codeIndex -= count
			for codeIndex < codewords[0] && !end {
				code := codewords[codeIndex]
				codeIndex++
				if code < textCompactionModeLatch {
					result.writeByte(byte(code))
				} else if code == eciCharset {
					if codeIndex >= codewords[0] {
						return codeIndex, fmt.Errorf("charset designator truncated at end of stream: %w", ErrInvalidMode)
					}
					result.setCharset(codewords[codeIndex])
					codeIndex++
				} else {
					codeIndex--
					end = true
				}
			}
		}
	}
	return codeIndex, nil
}

// numericCompaction decodes the Numeric compaction mode: batches of up to
// 15 codewords carry up to 44 digits base 900 behind a leading marker
// digit.
func numericCompaction(codewords []int, codeIndex int, result *output) (int, error) {
	count := 0
	end := false

	numericCodewords := make([]int, maxNumericCodewords)

	for codeIndex < codewords[0] && !end {
		code := codewords[codeIndex]
		codeIndex++
		if codeIndex == codewords[0] {
			end = true
		}
		if code < textCompactionModeLatch {
			numericCodewords[count] = code
			count++
		} else {
			switch code {
			case textCompactionModeLatch, byteCompactionModeLatch,
				byteCompactionModeLatch6, macroControlBlock,
				macroOptionalField, macroTerminator, eciCharset:
				codeIndex--
				end = true
			}
		}
		if (count%maxNumericCodewords == 0 || code == numericCompactionModeLatch || end) && count > 0 {
			s, err := decodeBase900toBase10(numericCodewords, count)
			if err != nil {
				return 0, err
			}
			result.writeString(s)
			count = 0
		}
	}
	return codeIndex, nil
}

// decodeBase900toBase10 converts a batch of base 900 codewords to its
// digit string. The converted number always starts with a marker '1'
// which is stripped.
func decodeBase900toBase10(codewords []int, count int) (string, error) {
	result := new(big.Int)
	for i := 0; i < count; i++ {
		term := new(big.Int).Mul(exp900[count-i-1], big.NewInt(int64(codewords[i])))
		result.Add(result, term)
	}
	resultString := result.String()
	if len(resultString) == 0 || resultString[0] != '1' {
		return "", ErrStructuralMismatch
	}
	return resultString[1:], nil
}
