package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"yoloprep/internal/index"
	"yoloprep/internal/labels"
)

// Options configures the splitter.
type Options struct {
	ValRatio  float64
	TestRatio float64
	Seed      uint64
}

// Validate checks the ratios.
func (o Options) Validate() error {
	if o.ValRatio < 0 || o.ValRatio >= 1 {
		return fmt.Errorf("val ratio %v outside [0,1)", o.ValRatio)
	}
	if o.TestRatio < 0 || o.TestRatio >= 1 {
		return fmt.Errorf("test ratio %v outside [0,1)", o.TestRatio)
	}
	if o.ValRatio+o.TestRatio >= 1 {
		return fmt.Errorf("val ratio + test ratio must be below 1, got %v", o.ValRatio+o.TestRatio)
	}
	return nil
}

// Assignment maps each file to its target split.
type Assignment struct {
	targets map[labels.Ref]string
}

// Target returns the split assigned to ref.
func (a Assignment) Target(ref labels.Ref) (string, bool) {
	split, ok := a.targets[ref]
	return split, ok
}

// Len returns the number of assigned files.
func (a Assignment) Len() int {
	return len(a.targets)
}

// Refs returns the assigned files ordered by source split then name.
func (a Assignment) Refs() []labels.Ref {
	refs := make([]labels.Ref, 0, len(a.targets))
	for ref := range a.targets {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// Counts returns the number of files per target split.
func (a Assignment) Counts() map[string]int {
	counts := map[string]int{labels.SplitTrain: 0, labels.SplitVal: 0, labels.SplitTest: 0}
	for _, split := range a.targets {
		counts[split]++
	}
	return counts
}

// ClassSummary compares a class's planned split sizes with where its files
// ended up after precedence resolution.
type ClassSummary struct {
	Class        int `json:"class"`
	Files        int `json:"files"`
	PlannedVal   int `json:"planned_val"`
	PlannedTest  int `json:"planned_test"`
	PlannedTrain int `json:"planned_train"`
	Val          int `json:"val"`
	Test         int `json:"test"`
	Train        int `json:"train"`
}

// Drifted reports whether precedence moved any of the class's files.
func (c ClassSummary) Drifted() bool {
	return c.Val != c.PlannedVal || c.Test != c.PlannedTest || c.Train != c.PlannedTrain
}

// Summary describes an assignment per class.
type Summary struct {
	Classes []ClassSummary `json:"classes"`
	Train   int            `json:"train"`
	Val     int            `json:"val"`
	Test    int            `json:"test"`
}

// HeldOut returns the planned val and test sizes for a class of n files.
func HeldOut(n int, opts Options) (nVal, nTest int) {
	nVal = max(1, int(math.Round(float64(n)*opts.ValRatio)))
	nTest = max(1, int(math.Round(float64(n)*opts.TestRatio)))
	return nVal, nTest
}

// Assign computes a fresh assignment from the index.
func Assign(idx *index.Index, opts Options) (Assignment, Summary) {
	rng := rand.New(rand.NewPCG(opts.Seed, 0))
	targets := make(map[labels.Ref]string)
	classes := idx.Classes()
	planned := make([]ClassSummary, 0, len(classes))

	for _, class := range classes {
		members := idx.Members(class)
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})

		n := len(members)
		nVal, nTest := HeldOut(n, opts)
		valEnd := min(nVal, n)
		testEnd := min(nVal+nTest, n)

		for i, ref := range members {
			target := labels.SplitTrain
			switch {
			case i < valEnd:
				target = labels.SplitVal
			case i < testEnd:
				target = labels.SplitTest
			}
			place(targets, ref, target)
		}

		planned = append(planned, ClassSummary{
			Class:        class,
			Files:        n,
			PlannedVal:   valEnd,
			PlannedTest:  testEnd - valEnd,
			PlannedTrain: n - testEnd,
		})
	}

	assignment := Assignment{targets: targets}
	summary := Summary{Classes: planned}
	for i := range summary.Classes {
		cs := &summary.Classes[i]
		for _, ref := range idx.Members(cs.Class) {
			switch targets[ref] {
			case labels.SplitVal:
				cs.Val++
			case labels.SplitTest:
				cs.Test++
			default:
				cs.Train++
			}
		}
	}
	counts := assignment.Counts()
	summary.Train = counts[labels.SplitTrain]
	summary.Val = counts[labels.SplitVal]
	summary.Test = counts[labels.SplitTest]
	return assignment, summary
}

// place applies the precedence rule: held-out splits are sticky and train
// only fills files nothing else claimed.
func place(targets map[labels.Ref]string, ref labels.Ref, target string) {
	current, assigned := targets[ref]
	if !assigned {
		targets[ref] = target
		return
	}
	if target != labels.SplitTrain && current == labels.SplitTrain {
		targets[ref] = target
	}
}
