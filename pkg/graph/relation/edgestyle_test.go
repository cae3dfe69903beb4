package relation

import "testing"

func TestAssigner_CyclesThroughBuckets(t *testing.T) {
	a := NewAssigner()
	a.StartSource()

	want := []int{0, 1, 2, 3, 0, 1}
	for i, w := range want {
		if got := a.Record(i); got != w {
			t.Errorf("Record(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestAssigner_ResetsPerSource(t *testing.T) {
	a := NewAssigner()

	a.StartSource()
	a.Record(0)
	a.Record(1)
	a.Record(2)

	a.StartSource()
	if got := a.Record(3); got != 0 {
		t.Errorf("first Record() after StartSource() = %d, want 0", got)
	}
}

func TestAssigner_BucketContents(t *testing.T) {
	a := NewAssigner()
	a.StartSource()
	for seq := 10; seq < 15; seq++ {
		a.Record(seq)
	}

	buckets := a.Buckets()
	if len(buckets[0]) != 2 || buckets[0][0] != 10 || buckets[0][1] != 14 {
		t.Errorf("buckets[0] = %v, want [10 14]", buckets[0])
	}
	if len(buckets[3]) != 1 || buckets[3][0] != 13 {
		t.Errorf("buckets[3] = %v, want [13]", buckets[3])
	}
}

func TestAssigner_IndexNeverExceedsBound(t *testing.T) {
	a := NewAssigner()
	for src := 0; src < 3; src++ {
		a.StartSource()
		for i := 0; i < 10; i++ {
			if got := a.Record(src*10 + i); got < 0 || got >= NumBuckets {
				t.Fatalf("Record() = %d, out of [0,%d)", got, NumBuckets)
			}
		}
	}
}
