package workflow_test

import (
	"testing"

	"github.com/carevox/dictascribe/pkg/workflow"
)

func TestType_IsValid(t *testing.T) {
	t.Parallel()

	for _, wf := range workflow.All() {
		if !wf.IsValid() {
			t.Errorf("%q: IsValid=false, want true", wf)
		}
	}
	for _, wf := range []workflow.Type{"", "vitals", "VITAL-SIGNS"} {
		if wf.IsValid() {
			t.Errorf("%q: IsValid=true, want false", wf)
		}
	}
}

func TestAll_CoversEveryWorkflow(t *testing.T) {
	t.Parallel()

	if got := len(workflow.All()); got != 8 {
		t.Errorf("len(All()) = %d, want 8", got)
	}
}

func TestFieldKind_IsValid(t *testing.T) {
	t.Parallel()

	valid := []workflow.FieldKind{
		workflow.KindNumber, workflow.KindText, workflow.KindTextarea, workflow.KindSelect,
	}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("%q: IsValid=false, want true", k)
		}
	}
	if workflow.FieldKind("checkbox").IsValid() {
		t.Errorf("checkbox: IsValid=true, want false")
	}
}
