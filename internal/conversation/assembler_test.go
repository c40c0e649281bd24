package conversation

import (
	"reflect"
	"testing"

	"github.com/mzhao/synogpt/internal/provider"
)

func TestAssemblerPreservesOrder(t *testing.T) {
	a := NewAssembler("be terse", false)
	history := []provider.Message{
		{Role: provider.RoleUser, Content: "one"},
		{Role: provider.RoleAssistant, Content: "two"},
		{Role: provider.RoleUser, Content: "three"},
	}

	got := a.Build(history)
	if !reflect.DeepEqual(got, history) {
		t.Fatalf("Build() = %+v, want history unchanged", got)
	}
}

func TestAssemblerSystemPromptDisabledByDefault(t *testing.T) {
	a := NewAssembler("be terse", false)
	got := a.Build([]provider.Message{{Role: provider.RoleUser, Content: "hi"}})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (no system preamble)", len(got))
	}
}

func TestAssemblerSystemPromptWhenEnabled(t *testing.T) {
	a := NewAssembler("be terse", true)
	got := a.Build([]provider.Message{{Role: provider.RoleUser, Content: "hi"}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Role != provider.RoleSystem || got[0].Content != "be terse" {
		t.Fatalf("system preamble = %+v", got[0])
	}
}

func TestAssemblerIdempotent(t *testing.T) {
	a := NewAssembler("", false)
	history := []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
		{Role: provider.RoleAssistant, Content: "hello"},
	}

	first := a.Build(history)
	second := a.Build(history)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two builds over the same state differ: %+v vs %+v", first, second)
	}
}

func TestAssemblerReturnsFreshSlice(t *testing.T) {
	a := NewAssembler("", false)
	history := []provider.Message{{Role: provider.RoleUser, Content: "hi"}}

	got := a.Build(history)
	got[0].Content = "mutated"
	if history[0].Content != "hi" {
		t.Fatalf("Build() aliased its input")
	}
}
