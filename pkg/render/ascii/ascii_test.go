package ascii

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ebiiii/lineal/pkg/dag"
)

func mustGraph(t *testing.T, nodes []dag.Node) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return g
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		nodes []dag.Node
		opts  []Option
		want  []string
	}{
		{
			name: "linear chain",
			nodes: []dag.Node{
				{ID: "c", Labels: []string{"c.txt"}},
				{ID: "b", Parents: []string{"c"}, Labels: []string{"b.txt"}},
				{ID: "a", Parents: []string{"b"}, Labels: []string{"a.txt"}},
			},
			want: []string{
				"*  a.txt",
				"*  b.txt",
				"@  c.txt",
				"",
			},
		},
		{
			name: "two parent merge",
			nodes: []dag.Node{
				{ID: "p1", Labels: []string{"p1"}},
				{ID: "p2", Labels: []string{"p2"}},
				{ID: "m", Parents: []string{"p1", "p2"}, Labels: []string{"out"}},
			},
			want: []string{
				"*    out",
				`|\`,
				"| @  p2",
				"@  p1",
				"",
			},
		},
		{
			name: "shared parent fanout",
			nodes: []dag.Node{
				{ID: "b", Labels: []string{"b"}},
				{ID: "c", Parents: []string{"b"}, Labels: []string{"c"}},
				{ID: "d", Parents: []string{"b"}, Labels: []string{"d"}},
			},
			want: []string{
				"*  d",
				"| *  c",
				"|/",
				"@  b",
				"",
			},
		},
		{
			name: "three parents split over rows",
			nodes: []dag.Node{
				{ID: "p1", Labels: []string{"p1"}},
				{ID: "p2", Labels: []string{"p2"}},
				{ID: "p3", Labels: []string{"p3"}},
				{ID: "m", Parents: []string{"p1", "p2", "p3"}, Labels: []string{"wide"}},
			},
			want: []string{
				"*    wide",
				`|\`,
				`| \`,
				`| |\`,
				"| | @  p3",
				"| @  p2",
				"@  p1",
				"",
			},
		},
		{
			name: "diamond",
			nodes: []dag.Node{
				{ID: "r", Labels: []string{"r"}},
				{ID: "p1", Parents: []string{"r"}, Labels: []string{"p1"}},
				{ID: "p2", Parents: []string{"r"}, Labels: []string{"p2"}},
				{ID: "m", Parents: []string{"p1", "p2"}, Labels: []string{"m"}},
			},
			want: []string{
				"*    m",
				`|\`,
				"| *  p2",
				"* |  p1",
				"|/",
				"@  r",
				"",
			},
		},
		{
			name: "right crossing becomes merge bar",
			nodes: []dag.Node{
				{ID: "p", Labels: []string{"p"}},
				{ID: "b", Parents: []string{"p"}, Labels: []string{"b"}},
				{ID: "n", Parents: []string{"p"}, Labels: []string{"n"}},
				{ID: "a", Parents: []string{"b", "p"}, Labels: []string{"a"}},
				{ID: "t", Parents: []string{"n", "a"}, Labels: []string{"t"}},
			},
			want: []string{
				"*    t",
				`|\`,
				"| *    a",
				`| |\`,
				"*---+  n",
				" / /",
				"* /  b",
				"|/",
				"@  p",
				"",
			},
		},
		{
			name: "long label gets padding row",
			nodes: []dag.Node{
				{ID: "p", Labels: []string{"p"}},
				{ID: "b", Parents: []string{"p"}, Labels: []string{"b"}},
				{ID: "n", Parents: []string{"p"}, Labels: []string{"n1", "n2", "n3"}},
				{ID: "a", Parents: []string{"b", "p"}, Labels: []string{"a"}},
				{ID: "t", Parents: []string{"n", "a"}, Labels: []string{"t"}},
			},
			want: []string{
				"*    t",
				`|\`,
				"| *    a",
				`| |\`,
				"*---+  n1",
				"  | |  n2",
				" / /   n3",
				"* /  b",
				"|/",
				"@  p",
				"",
			},
		},
		{
			name: "two line label uses extension row",
			nodes: []dag.Node{
				{ID: "b", Labels: []string{"b.txt"}},
				{ID: "a", Parents: []string{"b"}, Labels: []string{"a.txt", "(part of run.cwl)"}},
			},
			want: []string{
				"*  a.txt",
				"|  (part of run.cwl)",
				"@  b.txt",
				"",
			},
		},
		{
			name: "full mode keeps vertical shift rows",
			nodes: []dag.Node{
				{ID: "c", Labels: []string{"c"}},
				{ID: "b", Parents: []string{"c"}, Labels: []string{"b"}},
				{ID: "a", Parents: []string{"b"}, Labels: []string{"a"}},
			},
			opts: []Option{WithCompact(false)},
			want: []string{
				"*  a",
				"|",
				"*  b",
				"|",
				"@  c",
				"",
				"",
			},
		},
		{
			name: "separators off",
			nodes: []dag.Node{
				{ID: "b", Labels: []string{"b"}},
				{ID: "a", Parents: []string{"b"}, Labels: []string{"a"}},
			},
			opts: []Option{WithSeparators(false)},
			want: []string{
				"*  a",
				"@  b",
			},
		},
		{
			name: "label falls back to node ID",
			nodes: []dag.Node{
				{ID: "deadbeef"},
			},
			want: []string{
				"@  deadbeef",
				"",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.nodes)
			got, err := Render(g, tt.opts...)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("rows mismatch\ngot:\n%s\nwant:\n%s",
					strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	g := mustGraph(t, []dag.Node{
		{ID: "r", Labels: []string{"r"}},
		{ID: "p1", Parents: []string{"r"}, Labels: []string{"p1"}},
		{ID: "p2", Parents: []string{"r"}, Labels: []string{"p2"}},
		{ID: "m", Parents: []string{"p1", "p2"}, Labels: []string{"m"}},
	})

	first, err := Render(g)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Render(g)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !slices.Equal(first, again) {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i,
				strings.Join(first, "\n"), strings.Join(again, "\n"))
		}
	}
}

func TestRenderCycle(t *testing.T) {
	g := dag.New()
	if err := g.AddNode(dag.Node{ID: "a", Parents: []string{"b"}}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(dag.Node{ID: "b", Parents: []string{"a"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := Render(g); !errors.Is(err, dag.ErrGraphHasCycle) {
		t.Fatalf("Render err = %v, want ErrGraphHasCycle", err)
	}
}

func TestRenderCustomLabels(t *testing.T) {
	g := mustGraph(t, []dag.Node{
		{ID: "b", Labels: []string{"ignored"}},
		{ID: "a", Parents: []string{"b"}, Labels: []string{"ignored"}},
	})

	got, err := Render(g, WithLabels(func(n *dag.Node) []string {
		return []string{strings.ToUpper(n.ID)}
	}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []string{"*  A", "@  B", ""}
	if !slices.Equal(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestStream(t *testing.T) {
	g := mustGraph(t, []dag.Node{
		{ID: "b", Labels: []string{"b"}},
		{ID: "a", Parents: []string{"b"}, Labels: []string{"a"}},
	})

	stream, err := NewStream(g)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}

	var rows []string
	for stream.Next() {
		rows = append(rows, stream.Row())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	want := []string{"*  a", "@  b", ""}
	if !slices.Equal(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}

	// Exhausted streams stay exhausted.
	if stream.Next() {
		t.Error("Next returned true after exhaustion")
	}
}

func TestStreamWriteTo(t *testing.T) {
	g := mustGraph(t, []dag.Node{
		{ID: "b", Labels: []string{"b"}},
		{ID: "a", Parents: []string{"b"}, Labels: []string{"a"}},
	})

	stream, err := NewStream(g)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}

	var buf bytes.Buffer
	if _, err := stream.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	want := "*  a\n@  b\n\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRenderString(t *testing.T) {
	g := mustGraph(t, []dag.Node{
		{ID: "b", Labels: []string{"b"}},
		{ID: "a", Parents: []string{"b"}, Labels: []string{"a"}},
	})

	got, err := RenderString(g)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := "*  a\n@  b\n"
	if got != want {
		t.Errorf("RenderString = %q, want %q", got, want)
	}
}

func TestClassifyParentsSelfReference(t *testing.T) {
	tr := newTracker()
	n := &dag.Node{ID: "a", Parents: []string{"a"}}
	if _, _, err := tr.classifyParents(n); !errors.Is(err, dag.ErrSelfParent) {
		t.Fatalf("classifyParents err = %v, want ErrSelfParent", err)
	}
}
