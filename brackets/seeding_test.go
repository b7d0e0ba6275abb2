package brackets

import (
	"reflect"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
)

func TestSeedingOrder(t *testing.T) {
	cases := map[int][]int{
		2: {1, 2},
		4: {1, 4, 2, 3},
		8: {1, 8, 4, 5, 2, 7, 3, 6},
	}
	for size, want := range cases {
		if got := SeedingOrder(size); !reflect.DeepEqual(got, want) {
			t.Errorf("SeedingOrder(%d) = %v, want %v", size, got, want)
		}
	}
}

func TestSeedingOrderIsPermutation(t *testing.T) {
	for _, size := range []int{2, 4, 8, 16, 32, 64} {
		order := SeedingOrder(size)
		if len(order) != size {
			t.Fatalf("SeedingOrder(%d) has length %d", size, len(order))
		}
		seen := make(map[int]bool, size)
		for _, s := range order {
			if s < 1 || s > size || seen[s] {
				t.Fatalf("SeedingOrder(%d) is not a permutation of 1..%d: %v", size, size, order)
			}
			seen[s] = true
		}
	}
}

// Seeds 1 and 2 must land in opposite halves so they can only meet in the
// final, and each pair of consecutive seed bands splits across halves too.
func TestSeedingOrderSplitsTopSeeds(t *testing.T) {
	for _, size := range []int{4, 8, 16, 32} {
		order := SeedingOrder(size)
		halfOf := make(map[int]models.GroupHalf, size)
		for slot, seed := range order {
			halfOf[seed] = HalfOfSlot(slot, size)
		}
		if halfOf[1] == halfOf[2] {
			t.Errorf("size %d: seeds 1 and 2 share half %s", size, halfOf[1])
		}
		if halfOf[3] == halfOf[4] {
			t.Errorf("size %d: seeds 3 and 4 share half %s", size, halfOf[3])
		}
	}
}

func TestHalfOfSlot(t *testing.T) {
	if HalfOfSlot(0, 8) != models.GroupHalfA || HalfOfSlot(3, 8) != models.GroupHalfA {
		t.Error("first half of the slots should map to group A")
	}
	if HalfOfSlot(4, 8) != models.GroupHalfB || HalfOfSlot(7, 8) != models.GroupHalfB {
		t.Error("second half of the slots should map to group B")
	}
}

func TestAssignSeeds(t *testing.T) {
	ids := []int{101, 102, 103, 104, 105, 106, 107, 108}
	entries, err := AssignSeeds(ids, 8)
	if err != nil {
		t.Fatalf("AssignSeeds: %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("got %d entries, want 8", len(entries))
	}

	for i, e := range entries {
		if e.ParticipantID != ids[i] {
			t.Errorf("entry %d: participant %d, want %d", i, e.ParticipantID, ids[i])
		}
		if e.Seed != i+1 {
			t.Errorf("entry %d: seed %d, want %d", i, e.Seed, i+1)
		}
	}

	wantHalves := map[int]models.GroupHalf{
		1: models.GroupHalfA, 4: models.GroupHalfA, 5: models.GroupHalfA, 8: models.GroupHalfA,
		2: models.GroupHalfB, 3: models.GroupHalfB, 6: models.GroupHalfB, 7: models.GroupHalfB,
	}
	for _, e := range entries {
		if e.Half != wantHalves[e.Seed] {
			t.Errorf("seed %d: half %s, want %s", e.Seed, e.Half, wantHalves[e.Seed])
		}
	}
}

func TestAssignSeedsSnakePattern(t *testing.T) {
	// With a full bracket of 16, the halves must alternate in consecutive
	// seed pairs: 1|2, 3|4 reversed, 5|6, 7|8 reversed, and so on.
	ids := make([]int, 16)
	for i := range ids {
		ids[i] = i + 1
	}
	entries, err := AssignSeeds(ids, 16)
	if err != nil {
		t.Fatalf("AssignSeeds: %v", err)
	}

	countA := 0
	for _, e := range entries {
		if e.Half == models.GroupHalfA {
			countA++
		}
	}
	if countA != 8 {
		t.Fatalf("half A holds %d seeds, want 8", countA)
	}

	for i := 0; i < 16; i += 2 {
		if entries[i].Half == entries[i+1].Half {
			t.Errorf("seeds %d and %d share half %s", entries[i].Seed, entries[i+1].Seed, entries[i].Half)
		}
	}
}

func TestAssignSeedsRejectsOverflow(t *testing.T) {
	if _, err := AssignSeeds([]int{1, 2, 3, 4, 5}, 4); err == nil {
		t.Fatal("expected an error for 5 participants in a bracket of 4")
	}
	if _, err := AssignSeeds([]int{1}, 2); err == nil {
		t.Fatal("expected an error for a single participant")
	}
}
