package encoder

import (
	"fmt"
	"math/big"
)

// Compaction modes during high-level encoding.
const (
	modeText = iota
	modeByte
	modeNumeric
)

// Text compaction sub-modes.
const (
	submodeAlpha = iota
	submodeLower
	submodeMixed
	submodePunct
)

// Mode latch and shift codewords.
const (
	latchToText       = 900
	latchToBytePadded = 901
	latchToNumeric    = 902
	shiftToByte       = 913
	latchToByte       = 924
)

// mixedTable maps a byte to its Mixed sub-mode value, -1 when the byte is
// not in the sub-mode.
var mixedTable = buildCharTable("0123456789&\r\t,:#-.$/+%*=^")

// punctTable maps a byte to its Punctuation sub-mode value.
var punctTable = buildCharTable(";<>@[\\]_`~!\r\t,:\n-.$/\"|*()?{}'")

func buildCharTable(chars string) [128]int {
	var table [128]int
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(chars); i++ {
		table[chars[i]] = i
	}
	return table
}

// EncodeHighLevel compacts a message into data codewords following the
// mode selection rules of ISO/IEC 15438 annex P: runs of 13 or more digits
// go numeric, runs of 5 or more text characters go text, everything else
// goes byte.
func EncodeHighLevel(msg string) ([]int, error) {
	if len(msg) == 0 {
		return nil, fmt.Errorf("empty message")
	}
	for i := 0; i < len(msg); i++ {
		if msg[i] > 255 {
			return nil, fmt.Errorf("byte %d not encodable at position %d", msg[i], i)
		}
	}

	var out []int
	mode := modeText
	submode := submodeAlpha
	p := 0
	for p < len(msg) {
		n := digitRun(msg, p)
		if n >= 13 {
			out = append(out, latchToNumeric)
			mode = modeNumeric
			submode = submodeAlpha
			out = encodeNumeric(msg[p:p+n], out)
			p += n
			continue
		}
		t := textRun(msg, p)
		if t >= 5 || t == len(msg)-p && t > 0 {
			if mode != modeText {
				out = append(out, latchToText)
				mode = modeText
				submode = submodeAlpha
			}
			out, submode = encodeText(msg[p:p+t], submode, out)
			p += t
			continue
		}
		b := binaryRun(msg, p)
		if b == 0 {
			b = 1
		}
		if b == 1 && mode == modeText {
			out = append(out, shiftToByte, int(msg[p]))
		} else {
			out = encodeBinary([]byte(msg[p:p+b]), out)
			mode = modeByte
			submode = submodeAlpha
		}
		p += b
	}
	return out, nil
}

// encodeText compacts a run of text characters, two sub-mode values per
// codeword, padding an odd tail with a punctuation shift.
func encodeText(msg string, submode int, out []int) ([]int, int) {
	var halves []int
	for i := 0; i < len(msg); {
		ch := msg[i]
		switch submode {
		case submodeAlpha:
			switch {
			case ch == ' ':
				halves = append(halves, 26)
			case ch >= 'A' && ch <= 'Z':
				halves = append(halves, int(ch-'A'))
			case ch >= 'a' && ch <= 'z':
				submode = submodeLower
				halves = append(halves, 27)
				continue
			case mixedTable[ch] != -1:
				submode = submodeMixed
				halves = append(halves, 28)
				continue
			default:
				halves = append(halves, 29, punctTable[ch])
			}

		case submodeLower:
			switch {
			case ch == ' ':
				halves = append(halves, 26)
			case ch >= 'a' && ch <= 'z':
				halves = append(halves, int(ch-'a'))
			case ch >= 'A' && ch <= 'Z':
				// alpha shift covers a single character
				halves = append(halves, 27, int(ch-'A'))
			case mixedTable[ch] != -1:
				submode = submodeMixed
				halves = append(halves, 28)
				continue
			default:
				halves = append(halves, 29, punctTable[ch])
			}

		case submodeMixed:
			switch {
			case ch == ' ':
				halves = append(halves, 26)
			case mixedTable[ch] != -1:
				halves = append(halves, mixedTable[ch])
			case ch >= 'A' && ch <= 'Z':
				submode = submodeAlpha
				halves = append(halves, 28)
				continue
			case ch >= 'a' && ch <= 'z':
				submode = submodeLower
				halves = append(halves, 27)
				continue
			default:
				if i+1 < len(msg) && punctTable[msg[i+1]] != -1 {
					submode = submodePunct
					halves = append(halves, 25)
					continue
				}
				halves = append(halves, 29, punctTable[ch])
			}

		default: // submodePunct
			if punctTable[ch] != -1 {
				halves = append(halves, punctTable[ch])
			} else {
				submode = submodeAlpha
				halves = append(halves, 29)
				continue
			}
		}
		i++
	}

	for i := 0; i+1 < len(halves); i += 2 {
		out = append(out, halves[i]*30+halves[i+1])
	}
	if len(halves)%2 != 0 {
		out = append(out, halves[len(halves)-1]*30+29)
	}
	return out, submode
}

// encodeBinary compacts bytes: full six-byte groups into five base 900
// codewords, a short tail byte-per-codeword. A multiple of six bytes uses
// the 924 latch, anything else 901.
func encodeBinary(data []byte, out []int) []int {
	if len(data)%6 == 0 {
		out = append(out, latchToByte)
	} else {
		out = append(out, latchToBytePadded)
	}

	i := 0
	for len(data)-i >= 6 {
		var value int64
		for j := 0; j < 6; j++ {
			value = value<<8 + int64(data[i+j])
		}
		var group [5]int
		for j := 4; j >= 0; j-- {
			group[j] = int(value % 900)
			value /= 900
		}
		out = append(out, group[:]...)
		i += 6
	}
	for ; i < len(data); i++ {
		out = append(out, int(data[i]))
	}
	return out
}

// encodeNumeric compacts a digit run in batches of up to 44 digits, each
// prefixed with a marker '1' and converted to base 900.
func encodeNumeric(digits string, out []int) []int {
	num900 := big.NewInt(900)
	zero := big.NewInt(0)
	for p := 0; p < len(digits); {
		batch := len(digits) - p
		if batch > 44 {
			batch = 44
		}
		value := new(big.Int)
		value.SetString("1"+digits[p:p+batch], 10)

		var words []int
		mod := new(big.Int)
		for {
			value.DivMod(value, num900, mod)
			words = append(words, int(mod.Int64()))
			if value.Cmp(zero) == 0 {
				break
			}
		}
		for i := len(words) - 1; i >= 0; i-- {
			out = append(out, words[i])
		}
		p += batch
	}
	return out
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isText(ch byte) bool {
	return ch == '\t' || ch == '\n' || ch == '\r' || (ch >= 32 && ch <= 126)
}

func digitRun(msg string, p int) int {
	n := 0
	for p+n < len(msg) && isDigit(msg[p+n]) {
		n++
	}
	return n
}

// textRun counts characters encodable as text, stopping short of a digit
// run long enough for numeric compaction.
func textRun(msg string, p int) int {
	idx := p
	for idx < len(msg) {
		digits := 0
		for digits < 13 && idx+digits < len(msg) && isDigit(msg[idx+digits]) {
			digits++
		}
		if digits >= 13 {
			return idx - p
		}
		if digits > 0 {
			idx += digits
			continue
		}
		if !isText(msg[idx]) {
			break
		}
		idx++
	}
	return idx - p
}

// binaryRun counts characters until a digit run long enough for numeric
// compaction begins.
func binaryRun(msg string, p int) int {
	idx := p
	for idx < len(msg) {
		digits := 0
		for digits < 13 && idx+digits < len(msg) && isDigit(msg[idx+digits]) {
			digits++
		}
		if digits >= 13 {
			return idx - p
		}
		idx++
	}
	return idx - p
}
