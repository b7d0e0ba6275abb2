package brackets

import (
	"errors"
	"testing"
)

func TestSize(t *testing.T) {
	cases := []struct {
		participants int
		wantSize     int
	}{
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{16, 16},
		{17, 32},
		{33, 64},
		{64, 64},
	}

	for _, c := range cases {
		size, err := Size(c.participants)
		if err != nil {
			t.Fatalf("Size(%d): unexpected error: %v", c.participants, err)
		}
		if size != c.wantSize {
			t.Errorf("Size(%d) = %d, want %d", c.participants, size, c.wantSize)
		}
	}
}

func TestSizeBounds(t *testing.T) {
	for n := 2; n <= 128; n++ {
		size, err := Size(n)
		if err != nil {
			t.Fatalf("Size(%d): %v", n, err)
		}
		if size < n {
			t.Errorf("Size(%d) = %d does not fit the participants", n, size)
		}
		if size/2 >= n {
			t.Errorf("Size(%d) = %d is not the smallest fitting power of two", n, size)
		}
		if size&(size-1) != 0 {
			t.Errorf("Size(%d) = %d is not a power of two", n, size)
		}
	}
}

func TestSizeRejectsTinyRosters(t *testing.T) {
	for _, n := range []int{-3, 0, 1} {
		if _, err := Size(n); !errors.Is(err, ErrInsufficientParticipants) {
			t.Errorf("Size(%d): got %v, want ErrInsufficientParticipants", n, err)
		}
	}
}

func TestRoundCount(t *testing.T) {
	cases := map[int]int{2: 1, 4: 2, 8: 3, 16: 4, 32: 5, 64: 6}
	for size, want := range cases {
		if got := RoundCount(size); got != want {
			t.Errorf("RoundCount(%d) = %d, want %d", size, got, want)
		}
	}
}
