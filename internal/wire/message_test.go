package wire

import "testing"

func TestArgWriterReaderRoundTrip(t *testing.T) {
	w := NewArgWriter().
		PutUint32(42).
		PutInt32(-7).
		PutFixed(FixedFromFloat64(12.5)).
		PutString("hello").
		PutArray([]byte{1, 2, 3})

	r := NewArgReader(w.Bytes())

	u, err := r.Uint32()
	if err != nil || u != 42 {
		t.Fatalf("Uint32() = %d, %v; want 42, nil", u, err)
	}
	i, err := r.Int32()
	if err != nil || i != -7 {
		t.Fatalf("Int32() = %d, %v; want -7, nil", i, err)
	}
	f, err := r.Fixed()
	if err != nil {
		t.Fatalf("Fixed() error: %v", err)
	}
	if got := f.Float64(); got != 12.5 {
		t.Fatalf("Fixed().Float64() = %v, want 12.5", got)
	}
	s, err := r.String()
	if err != nil || s != "hello" {
		t.Fatalf("String() = %q, %v; want \"hello\", nil", s, err)
	}
	arr, err := r.Array()
	if err != nil {
		t.Fatalf("Array() error: %v", err)
	}
	if len(arr) != 3 || arr[0] != 1 || arr[1] != 2 || arr[2] != 3 {
		t.Fatalf("Array() = %v, want [1 2 3]", arr)
	}
}

func TestArgReaderShortRead(t *testing.T) {
	r := NewArgReader([]byte{1, 2, 3})
	if _, err := r.Uint32(); err == nil {
		t.Fatal("Uint32() on 3-byte buffer: want error, got nil")
	}
}

func TestStringPadding(t *testing.T) {
	// "ab" (2 bytes) needs 2 bytes of padding to reach a 4-byte boundary
	// after its 4-byte length prefix.
	w := NewArgWriter().PutString("ab").PutUint32(99)
	r := NewArgReader(w.Bytes())
	s, err := r.String()
	if err != nil || s != "ab" {
		t.Fatalf("String() = %q, %v", s, err)
	}
	u, err := r.Uint32()
	if err != nil || u != 99 {
		t.Fatalf("Uint32() after padded string = %d, %v; want 99, nil", u, err)
	}
}

func TestFixedRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.5, -3.5, 100.25}
	for _, f := range cases {
		got := FixedFromFloat64(f).Float64()
		if got != f {
			t.Errorf("FixedFromFloat64(%v).Float64() = %v, want %v", f, got, f)
		}
	}
}
