package styles

import (
	"slices"
	"strings"
	"testing"

	"github.com/ebiiii/lineal/pkg/dag"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"c4f3d6e9a1b2c8d0", "c4f3d6e9"},
		{"abc", "abc"},
		{"", ""},
		{"12345678", "12345678"},
	}
	for _, tt := range tests {
		if got := ShortID(tt.id); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestPlainLabels(t *testing.T) {
	tests := []struct {
		name string
		node dag.Node
		want []string
	}{
		{
			name: "id only",
			node: dag.Node{ID: "c4f3d6e9a1b2"},
			want: []string{"c4f3d6e9"},
		},
		{
			name: "single label",
			node: dag.Node{ID: "c4f3d6e9a1b2", Labels: []string{"data/out.csv"}},
			want: []string{"c4f3d6e9 data/out.csv"},
		},
		{
			name: "extra labels keep their own lines",
			node: dag.Node{ID: "c4f3d6e9a1b2", Labels: []string{"data/out.csv", "second line"}},
			want: []string{"c4f3d6e9 data/out.csv", "second line"},
		},
		{
			name: "workflow annotation",
			node: dag.Node{
				ID:       "c4f3d6e9a1b2",
				Labels:   []string{"data/out.csv"},
				Workflow: "run.cwl",
			},
			want: []string{"c4f3d6e9 data/out.csv", "         (part of run.cwl)"},
		},
		{
			name: "submodule prefix",
			node: dag.Node{
				ID:     "c4f3d6e9a1b2",
				Labels: []string{"data/out.csv"},
				Meta:   dag.Metadata{"submodule": "sub"},
			},
			want: []string{"sub@c4f3d6e9 data/out.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainLabels(&tt.node); !slices.Equal(got, tt.want) {
				t.Errorf("PlainLabels = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabelsShape(t *testing.T) {
	n := &dag.Node{
		ID:       "c4f3d6e9a1b2",
		Labels:   []string{"data/out.csv"},
		Workflow: "run.cwl",
	}

	got := Labels(n)
	if len(got) != 2 {
		t.Fatalf("Labels returned %d lines, want 2", len(got))
	}
	if !strings.Contains(got[0], "c4f3d6e9") {
		t.Errorf("head %q missing short ID", got[0])
	}
	if !strings.Contains(got[0], "data/out.csv") {
		t.Errorf("head %q missing label", got[0])
	}
	if !strings.HasPrefix(got[1], "         (part of ") {
		t.Errorf("workflow line %q missing annotation indent", got[1])
	}
}
