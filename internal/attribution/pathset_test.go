package attribution

import "testing"

func TestPathSetDeduplicates(t *testing.T) {
	s := NewPathSet("a", "b", "a")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestPathSetRemove(t *testing.T) {
	s := NewPathSet("a", "b")

	if !s.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if s.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if s.Remove("missing") {
		t.Error("Remove(missing) = true, want false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if s.Contains("a") {
		t.Error("Contains(a) = true after removal")
	}
	if !s.Contains("b") {
		t.Error("Contains(b) = false, want true")
	}
}

func TestPathSetPathsSorted(t *testing.T) {
	s := NewPathSet("z", "a", "m")
	paths := s.Paths()

	want := []string{"a", "m", "z"}
	if len(paths) != len(want) {
		t.Fatalf("Paths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("Paths() = %v, want %v", paths, want)
		}
	}
}
