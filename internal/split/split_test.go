package split_test

import (
	"fmt"
	"testing"

	"yoloprep/internal/index"
	"yoloprep/internal/labels"
	"yoloprep/internal/split"
)

func box(class int) labels.Line {
	return labels.Line{Class: class, Values: [4]float64{0.5, 0.5, 0.1, 0.1}}
}

func singleLabelIndex(class, n int) *index.Index {
	idx := index.New()
	for i := 0; i < n; i++ {
		idx.Add(labels.File{
			Ref:   labels.Ref{Split: labels.SplitTrain, Name: fmt.Sprintf("c%d_%03d.txt", class, i)},
			Lines: []labels.Line{box(class)},
		})
	}
	return idx
}

var defaultOpts = split.Options{ValRatio: 0.1, TestRatio: 0.1, Seed: 42}

func TestAssignSingleLabelCounts(t *testing.T) {
	assignment, summary := split.Assign(singleLabelIndex(0, 100), defaultOpts)
	counts := assignment.Counts()
	if counts[labels.SplitVal] != 10 || counts[labels.SplitTest] != 10 || counts[labels.SplitTrain] != 80 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if len(summary.Classes) != 1 || summary.Classes[0].Drifted() {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestAssignCountFormula(t *testing.T) {
	cases := []struct {
		n                   int
		val, test, train    int
		valRatio, testRatio float64
	}{
		{n: 1, val: 1, test: 0, train: 0, valRatio: 0.1, testRatio: 0.1},
		{n: 3, val: 1, test: 1, train: 1, valRatio: 0.1, testRatio: 0.1},
		{n: 15, val: 2, test: 2, train: 11, valRatio: 0.1, testRatio: 0.1},
		{n: 20, val: 4, test: 2, train: 14, valRatio: 0.2, testRatio: 0.1},
		{n: 7, val: 1, test: 1, train: 5, valRatio: 0, testRatio: 0},
	}
	for _, tc := range cases {
		opts := split.Options{ValRatio: tc.valRatio, TestRatio: tc.testRatio, Seed: 7}
		assignment, _ := split.Assign(singleLabelIndex(3, tc.n), opts)
		counts := assignment.Counts()
		if counts[labels.SplitVal] != tc.val || counts[labels.SplitTest] != tc.test || counts[labels.SplitTrain] != tc.train {
			t.Fatalf("n=%d: got %v want val=%d test=%d train=%d", tc.n, counts, tc.val, tc.test, tc.train)
		}
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	idx := index.New()
	for i := 0; i < 40; i++ {
		idx.Add(labels.File{
			Ref:   labels.Ref{Split: labels.SplitVal, Name: fmt.Sprintf("img%02d.txt", i)},
			Lines: []labels.Line{box(i % 3), box((i + 1) % 4)},
		})
	}
	first, _ := split.Assign(idx, defaultOpts)
	second, _ := split.Assign(idx, defaultOpts)
	for _, ref := range first.Refs() {
		a, _ := first.Target(ref)
		b, _ := second.Target(ref)
		if a != b {
			t.Fatalf("assignment differs for %s: %s vs %s", ref, a, b)
		}
	}
	other, _ := split.Assign(idx, split.Options{ValRatio: 0.1, TestRatio: 0.1, Seed: 43})
	if other.Len() != first.Len() {
		t.Fatalf("every labeled file must be assigned: %d vs %d", other.Len(), first.Len())
	}
}

// A file shared by class 0 and class 1 is held out by class 0 (processed
// first); class 1 must leave it where it is.
func TestAssignHeldOutIsSticky(t *testing.T) {
	shared := labels.Ref{Split: labels.SplitTrain, Name: "shared.txt"}
	idx := index.New()
	idx.Add(labels.File{Ref: shared, Lines: []labels.Line{box(0), box(1)}})
	for i := 0; i < 30; i++ {
		idx.Add(labels.File{
			Ref:   labels.Ref{Split: labels.SplitTrain, Name: fmt.Sprintf("b%02d.txt", i)},
			Lines: []labels.Line{box(1)},
		})
	}

	// Class 0 has a single member, so it is always its val pick.
	assignment, summary := split.Assign(idx, defaultOpts)
	got, ok := assignment.Target(shared)
	if !ok || got != labels.SplitVal {
		t.Fatalf("shared file: got %q want val", got)
	}
	if assignment.Len() != 31 {
		t.Fatalf("each file assigned once: got %d want 31", assignment.Len())
	}

	var class1 split.ClassSummary
	for _, cs := range summary.Classes {
		if cs.Class == 1 {
			class1 = cs
		}
	}
	if class1.Val+class1.Test+class1.Train != class1.Files {
		t.Fatalf("class 1 realized counts must cover its files: %+v", class1)
	}
}

func TestAssignPromotesEarlierTrain(t *testing.T) {
	shared := labels.Ref{Split: labels.SplitTrain, Name: "zz-shared.txt"}
	build := func(sharedClasses ...int) *index.Index {
		idx := index.New()
		for i := 0; i < 50; i++ {
			idx.Add(labels.File{
				Ref:   labels.Ref{Split: labels.SplitTrain, Name: fmt.Sprintf("a%02d.txt", i)},
				Lines: []labels.Line{box(0)},
			})
		}
		lines := make([]labels.Line, 0, len(sharedClasses))
		for _, class := range sharedClasses {
			lines = append(lines, box(class))
		}
		idx.Add(labels.File{Ref: shared, Lines: lines})
		return idx
	}

	// Class 0 is shuffled identically in both indexes, so this is where
	// class 0 alone places the shared file.
	alone, _ := split.Assign(build(0), defaultOpts)
	first, _ := alone.Target(shared)

	// Class 1 has the shared file as its only member and holds it out.
	assignment, summary := split.Assign(build(0, 1), defaultOpts)
	got, _ := assignment.Target(shared)
	want := first
	if first == labels.SplitTrain {
		want = labels.SplitVal
	}
	if got != want {
		t.Fatalf("shared file: got %q want %q (class 0 alone placed it in %q)", got, want, first)
	}
	for _, cs := range summary.Classes {
		if cs.Class == 1 && (cs.Files != 1 || cs.Train != 0) {
			t.Fatalf("class 1 summary: %+v", cs)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := defaultOpts.Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	if err := (split.Options{ValRatio: 0.6, TestRatio: 0.5}).Validate(); err == nil {
		t.Fatal("expected ratio sum error")
	}
}
