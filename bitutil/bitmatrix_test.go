package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	m := NewBitMatrix(33, 33)
	if m.Width() != 33 || m.Height() != 33 {
		t.Fatalf("dimensions = %dx%d, want 33x33", m.Width(), m.Height())
	}
	for y := 0; y < 33; y++ {
		for x := 0; x < 33; x++ {
			if y*x%3 == 0 {
				m.Set(x, y)
			}
		}
	}
	for y := 0; y < 33; y++ {
		for x := 0; x < 33; x++ {
			want := y*x%3 == 0
			if m.Get(x, y) != want {
				t.Fatalf("Get(%d,%d) = %v, want %v", x, y, m.Get(x, y), want)
			}
		}
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	m := NewBitMatrix(5, 5)
	m.SetRegion(1, 1, 3, 3)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := y >= 1 && y <= 3 && x >= 1 && x <= 3
			if m.Get(x, y) != want {
				t.Errorf("Get(%d,%d) = %v, want %v", x, y, m.Get(x, y), want)
			}
		}
	}
}

func TestBitMatrixRowRoundTrip(t *testing.T) {
	m := NewBitMatrix(70, 3)
	m.Set(0, 1)
	m.Set(41, 1)
	m.Set(69, 1)
	row := m.Row(1, nil)
	m2 := NewBitMatrix(70, 3)
	m2.SetRow(1, row)
	if !m.Equals(m2) {
		t.Error("matrix differs after Row/SetRow round trip")
	}
}

func TestBitMatrixRotate180(t *testing.T) {
	m := ParseStringMatrix("X..\n...\n...\n", "X", ".")
	want := ParseStringMatrix("...\n...\n..X\n", "X", ".")
	m.Rotate180()
	if !m.Equals(want) {
		t.Errorf("after Rotate180:\n%v\nwant:\n%v", m, want)
	}
}

func TestBitMatrixRotate90(t *testing.T) {
	m := NewBitMatrix(3, 2)
	m.Set(2, 0)
	m.Rotate90()
	if m.Width() != 2 || m.Height() != 3 {
		t.Fatalf("dimensions = %dx%d after Rotate90, want 2x3", m.Width(), m.Height())
	}
	if !m.Get(0, 0) {
		t.Errorf("expected (0,0) set after Rotate90:\n%v", m)
	}
}

func TestBitMatrixRotateFullCircle(t *testing.T) {
	m := NewBitMatrix(7, 5)
	m.Set(3, 2)
	m.Set(6, 4)
	orig := m.Clone()
	for i := 0; i < 4; i++ {
		m.Rotate(90)
	}
	if !m.Equals(orig) {
		t.Error("four 90-degree rotations did not restore the matrix")
	}
}

func TestBitMatrixClone(t *testing.T) {
	m := NewBitMatrix(4, 4)
	m.Set(1, 2)
	c := m.Clone()
	c.Flip(1, 2)
	if !m.Get(1, 2) {
		t.Error("mutating clone changed original")
	}
}
