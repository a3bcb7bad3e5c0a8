package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Drawing tools
	DXFExtractAnnotationsDescription = `List the damage annotations of one span of an inspection drawing.

**When to use:** Need to see which texts of a span sheet will be read as damage shorthand before importing.

**Why it's useful:** Shows each candidate annotation with its insertion point and the photo label linked to it, so misplaced leaders and missing labels are found early.

**Examples:**
• Check a span: "List annotations of span 2 in project 橋梁A, drawing 桁下面"
• Check a local file: "List annotations of span 1 in /data/drawings/damage.dxf"

**Common workflows:**
1. Review: Extract annotations → Fix text with dxf_edit_annotation → damage_import
2. Troubleshooting: damage_import reports a skipped span → Extract annotations to see what the span contains

**Best practices:** Span titles read "1径間", "2径間"... Only span 1 falls back to the "損傷図" title.`

	DXFEditAnnotationDescription = `Read or replace the annotation text at a drawing coordinate.

**When to use:** An annotation was mistyped and its records need correcting.

**Why it's useful:** Rewrites the text in the stored drawing and deletes the records imported from that coordinate, so the next import recreates them from the corrected text.

**Examples:**
• Read: "What text is at 120.5, 80 on drawing 桁下面?"
• Fix: "Replace the text at 120.5, 80 with '主桁 Mg0101 ①腐食-c'"

**Common workflows:**
1. Correction: Read text → Edit text → damage_import

**Best practices:** Coordinates must match the insertion point within 0.001. Omit text to read without editing.`

	// Parsing tools
	ShorthandNormalizeDescription = `Parse inspector shorthand into parts, damages and damage records.

**When to use:** Need to check how a piece of shorthand is understood without touching any drawing.

**Why it's useful:** Shows range expansion, group alignment, the synthesised comment and the photo specification exactly as an import would produce them.

**Examples:**
• "Normalize '主桁 Mg0101～0103 ①腐食-c'"
• "Normalize '支承本体 Bh0201' with label '⑬遊間の異常-c'"
• "Normalize a ※ block with back-referenced damage codes"

**Best practices:** Pass the leader text as text and the frame-layer label as label.`

	PhotoResolveDescription = `Find the photo files named by a photo specification.

**When to use:** Need to check which photos a label such as "9月8日 S47,53" points to.

**Why it's useful:** Expands photographer initials, inherits dates and names across comma lists, and lists the matching photos from the object store.

**Examples:**
• "Resolve '9月8日 S47,53' for project 橋梁A, drawing 桁下面"

**Best practices:** Keys are returned in the order the label names them. An empty result means no folder or file matched.`

	// Record tools
	DamageImportDescription = `Import every span of a drawing into damage records.

**When to use:** A drawing was uploaded or edited and its records must be (re)built.

**Why it's useful:** Walks the spans in order, assembles records with comments and photos, and stores them. Re-importing leaves existing records untouched.

**Examples:**
• "Import drawing 桁下面 of project 橋梁A"
• "Import the first 3 spans of drawing 桁下面"

**Common workflows:**
1. Import → damage_records → damage_report
2. Import → read diagnostics → dxf_extract_annotations for skipped spans

**Best practices:** Leave spans empty to import every titled span. Read the diagnostics: skipped spans and empty photo lookups are reported, not fatal.`

	DamageRecordsDescription = `List the stored damage records of a drawing in report order.

**When to use:** Need the records of a drawing after import.

**Why it's useful:** Records are ordered by part, element number, damage, severity and coordinate, exactly as the report shows them.

**Examples:**
• "Show the damage records of drawing 桁下面 in project 橋梁A"`

	DamageReportDescription = `Render the damage list and photo ledger of a drawing to a spreadsheet.

**When to use:** The records of a drawing are final and the report is needed.

**Why it's useful:** Writes one row per record with member, damage, severity and comment, plus a photo ledger with the photos embedded.

**Examples:**
• "Write the report of drawing 桁下面 to /tmp/桁下面.xlsx"

**Best practices:** Import first. Photos that cannot be fetched are left out of the ledger and logged.`

	InspectionServerInfoDescription = `Get server status, configuration and the available tools.

**When to use:** Starting a session or checking which store and database the server uses.

**Examples:**
• "What can this server do?"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"dxf_extract_annotations": DXFExtractAnnotationsDescription,
	"dxf_edit_annotation":     DXFEditAnnotationDescription,
	"shorthand_normalize":     ShorthandNormalizeDescription,
	"photo_resolve":           PhotoResolveDescription,
	"damage_import":           DamageImportDescription,
	"damage_records":          DamageRecordsDescription,
	"damage_report":           DamageReportDescription,
	"inspection_server_info":  InspectionServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the available tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns the first line of a tool description
func Summary(toolName string) string {
	desc := GetToolDescription(toolName)
	for i, r := range desc {
		if r == '\n' {
			return desc[:i]
		}
	}
	return desc
}
