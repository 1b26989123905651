package reconcile

import "testing"

func TestKeySetOrder(t *testing.T) {
	set := NewKeySet[string](4)
	for _, k := range []string{"c", "a", "b"} {
		if !set.Add(k) {
			t.Errorf("Add(%q) = false, want true", k)
		}
	}

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	want := []string{"c", "a", "b"}
	for i, k := range want {
		if got := set.At(i); got != k {
			t.Errorf("At(%d) = %q, want %q", i, got, k)
		}
	}
}

func TestKeySetAddDuplicate(t *testing.T) {
	set := NewKeySet[int](2)
	set.Add(7)

	if set.Add(7) {
		t.Error("Add(7) second time = true, want false")
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
}

func TestKeySetIndexOf(t *testing.T) {
	set := NewKeySet[string](2)
	set.Add("x")
	set.Add("y")

	idx, ok := set.IndexOf("y")
	if !ok || idx != 1 {
		t.Errorf("IndexOf(y) = (%d, %v), want (1, true)", idx, ok)
	}

	if _, ok := set.IndexOf("z"); ok {
		t.Error("IndexOf(z) found, want missing")
	}

	if !set.Contains("x") {
		t.Error("Contains(x) = false, want true")
	}
}

func TestKeysOf(t *testing.T) {
	type row struct {
		id   int
		name string
	}
	items := []row{{1, "a"}, {2, "b"}, {3, "c"}}

	set := KeysOf(items, func(r row) int { return r.id })

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
	for i, want := range []int{1, 2, 3} {
		if got := set.At(i); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestKeysOfDropsDuplicates(t *testing.T) {
	items := []string{"a", "b", "a"}

	set := KeysOf(items, func(s string) string { return s })

	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
}
