package dfedit

import "testing"

func TestStackSpill(t *testing.T) {
	var st stack[Dist]
	const n = 2*StackSize + 3
	for i := 0; i < n; i++ {
		st.push(Dist(i))
	}
	if st.len() != n {
		t.Fatalf("len %d, want %d", st.len(), n)
	}
	for i := n - 1; i >= 0; i-- {
		if got := st.pop(); got != Dist(i) {
			t.Fatalf("pop %d: got %g", i, got)
		}
	}
	st.push(1)
	st.reset()
	if st.len() != 0 {
		t.Error("reset did not empty stack")
	}
	defer func() {
		if recover() == nil {
			t.Error("pop on empty stack must panic")
		}
	}()
	st.pop()
}
