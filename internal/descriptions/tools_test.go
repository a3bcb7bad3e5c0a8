package descriptions

import (
	"sort"
	"strings"
	"testing"
)

func TestGetToolDescription(t *testing.T) {
	for name := range ToolDescriptions {
		if desc := GetToolDescription(name); desc == "" || !strings.Contains(desc, "**When to use:**") {
			t.Errorf("description of %s should explain when to use it", name)
		}
	}
	if got := GetToolDescription("unknown_tool"); got != "Tool description not available" {
		t.Errorf("unknown tool description = %q", got)
	}
}

func TestGetAllToolNames(t *testing.T) {
	names := GetAllToolNames()
	if len(names) != len(ToolDescriptions) {
		t.Fatalf("GetAllToolNames() returned %d names, want %d", len(names), len(ToolDescriptions))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names should be sorted: %v", names)
	}
}

func TestSummary(t *testing.T) {
	want := "Import every span of a drawing into damage records."
	if got := Summary("damage_import"); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
