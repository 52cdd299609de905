package llm

import "testing"

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantName string
	}{
		{"plain object", `{"name": "Efteling"}`, true, "Efteling"},
		{"padded object", "\n  {\"name\": \"Efteling\"}  \n", true, "Efteling"},
		{"json fence", "Here you go:\n```json\n{\"name\": \"Vekoma\"}\n```\nDone.", true, "Vekoma"},
		{"bare fence", "```\n{\"name\": \"Intamin\"}\n```", true, "Intamin"},
		{"first valid fence wins", "```\nnot json\n```\ntext\n```json\n{\"name\": \"Mack\"}\n```\n```json\n{\"name\": \"Other\"}\n```", true, "Mack"},
		{"unclosed fence", "```json\n{\"name\": \"B&M\"}", true, "B&M"},
		{"array is not an object", `["a", "b"]`, false, ""},
		{"garbage", "I could not find anything.", false, ""},
		{"empty", "", false, ""},
		{"broken json", "```json\n{\"name\": \n```", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := ParseJSONObject(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v (obj=%v)", tt.wantOK, ok, obj)
			}
			if ok && obj["name"] != tt.wantName {
				t.Errorf("Expected name %q, got %v", tt.wantName, obj["name"])
			}
		})
	}
}

func TestFencedBlocks(t *testing.T) {
	blocks := FencedBlocks("a\n```go\nx := 1\n```\nb\n```\ny\n```")
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d: %q", len(blocks), blocks)
	}
	if blocks[0] != "x := 1\n" {
		t.Errorf("Unexpected first block: %q", blocks[0])
	}
	if blocks[1] != "y\n" {
		t.Errorf("Unexpected second block: %q", blocks[1])
	}

	if got := FencedBlocks("no fences here"); len(got) != 0 {
		t.Errorf("Expected no blocks, got %q", got)
	}
}
