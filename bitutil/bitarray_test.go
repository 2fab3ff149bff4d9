package bitutil

import "testing"

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(33)
	for i := 0; i < 33; i++ {
		if ba.Get(i) {
			t.Errorf("bit %d set in fresh array", i)
		}
		ba.Set(i)
		if !ba.Get(i) {
			t.Errorf("bit %d not set after Set", i)
		}
	}
}

func TestBitArrayFlip(t *testing.T) {
	ba := NewBitArray(10)
	ba.Flip(7)
	if !ba.Get(7) {
		t.Error("bit 7 not set after flip")
	}
	ba.Flip(7)
	if ba.Get(7) {
		t.Error("bit 7 still set after second flip")
	}
}

func TestBitArrayGetNextSet(t *testing.T) {
	for i := 0; i < 32; i++ {
		ba := NewBitArray(32)
		if got := ba.GetNextSet(i); got != 32 {
			t.Errorf("empty array: GetNextSet(%d) = %d, want 32", i, got)
		}
	}
	ba := NewBitArray(34)
	ba.Set(33)
	for i := 0; i <= 33; i++ {
		if got := ba.GetNextSet(i); got != 33 {
			t.Errorf("GetNextSet(%d) = %d, want 33", i, got)
		}
	}
}

func TestBitArrayGetNextUnset(t *testing.T) {
	ba := NewBitArray(35)
	for i := 0; i < 34; i++ {
		ba.Set(i)
	}
	if got := ba.GetNextUnset(0); got != 34 {
		t.Errorf("GetNextUnset(0) = %d, want 34", got)
	}
	if got := ba.GetNextUnset(34); got != 34 {
		t.Errorf("GetNextUnset(34) = %d, want 34", got)
	}
}

func TestBitArrayClear(t *testing.T) {
	ba := NewBitArray(64)
	for i := 0; i < 64; i++ {
		ba.Set(i)
	}
	ba.Clear()
	for i := 0; i < 64; i++ {
		if ba.Get(i) {
			t.Fatalf("bit %d set after Clear", i)
		}
	}
}

func TestBitArrayReverse(t *testing.T) {
	ba := NewBitArray(17)
	ba.Set(0)
	ba.Set(3)
	ba.Set(16)
	ba.Reverse()
	want := map[int]bool{0: true, 13: true, 16: true}
	for i := 0; i < 17; i++ {
		if ba.Get(i) != want[i] {
			t.Errorf("bit %d = %v after reverse, want %v", i, ba.Get(i), want[i])
		}
	}
}

func TestBitArrayReverseEven(t *testing.T) {
	ba := NewBitArray(64)
	ba.Set(1)
	ba.Set(40)
	ba.Reverse()
	if !ba.Get(62) || !ba.Get(23) {
		t.Errorf("reversed bits not where expected: %v", ba)
	}
}
