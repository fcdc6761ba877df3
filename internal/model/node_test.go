package model

import (
	"testing"
)

// sampleTree CEO -> [VP -> [Mgr, Lead], CFO]
func sampleTree() *Node {
	ceo := NewNode("CEO", "", Fields{{Column: "Dept", Value: "Exec"}})
	vp := NewNode("VP", "CEO", nil)
	cfo := NewNode("CFO", "CEO", nil)
	vp.AddChild(NewNode("Mgr", "VP", nil))
	vp.AddChild(NewNode("Lead", "VP", nil))
	ceo.AddChild(vp)
	ceo.AddChild(cfo)
	return ceo
}

func TestFields_Get(t *testing.T) {
	fs := Fields{{Column: "Dept", Value: "R&D"}, {Column: "Empty", Value: ""}}

	tests := []struct {
		column string
		value  string
		ok     bool
	}{
		{"Dept", "R&D", true},
		{"Empty", "", false},
		{"Missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			v, ok := fs.Get(tt.column)
			if v != tt.value || ok != tt.ok {
				t.Errorf("Get(%s) = (%q, %v), expected (%q, %v)", tt.column, v, ok, tt.value, tt.ok)
			}
		})
	}

	if cols := fs.Columns(); len(cols) != 2 || cols[0] != "Dept" {
		t.Errorf("Columns() = %v", cols)
	}
}

func TestNode_Counts(t *testing.T) {
	root := sampleTree()

	if root.GetChildrenCount() != 2 {
		t.Errorf("Expected 2 children, got %d", root.GetChildrenCount())
	}
	if root.GetTotalDescendantsCount() != 4 {
		t.Errorf("Expected 4 descendants, got %d", root.GetTotalDescendantsCount())
	}
	if root.LeafCount() != 3 {
		t.Errorf("Expected 3 leaves, got %d", root.LeafCount())
	}
	if root.MaxDepth() != 2 {
		t.Errorf("Expected max depth 2, got %d", root.MaxDepth())
	}
}

func TestNode_Find(t *testing.T) {
	root := sampleTree()

	if root.FindChild("VP") == nil {
		t.Error("Expected VP to be a direct child")
	}
	if root.FindChild("Mgr") != nil {
		t.Error("Mgr is not a direct child of CEO")
	}
	if found := root.Find("Lead"); found == nil || found.ManagerKey != "VP" {
		t.Errorf("Find(Lead) = %+v", found)
	}
	if root.Find("Ghost") != nil {
		t.Error("Expected Find to return nil for unknown id")
	}
}

func TestNode_ToFlatPreOrder(t *testing.T) {
	flat := sampleTree().ToFlat()
	expected := []string{"CEO", "VP", "Mgr", "Lead", "CFO"}

	if len(flat) != len(expected) {
		t.Fatalf("Expected %d nodes, got %d", len(expected), len(flat))
	}
	for i, id := range expected {
		if flat[i].ID != id {
			t.Errorf("flat[%d] = %s, expected %s", i, flat[i].ID, id)
		}
	}
}

func TestNode_WalkPrune(t *testing.T) {
	visited := 0
	sampleTree().Walk(func(n *Node, _ int) bool {
		visited++
		return n.ID != "VP"
	})
	// CEO, VP, CFO
	if visited != 3 {
		t.Errorf("Expected 3 visited nodes, got %d", visited)
	}
}

func TestNewVirtualRoot(t *testing.T) {
	a := NewNode("A", "", nil)
	b := NewNode("B", "", nil)
	root := NewVirtualRoot([]*Node{a, b})

	if root.ID != VirtualRootID || root.Position != VirtualRootPosition {
		t.Errorf("Unexpected virtual root identity: %s/%s", root.ID, root.Position)
	}
	if !root.Virtual || len(root.Data) != 0 {
		t.Error("Virtual root must be flagged and carry no data")
	}
	if root.GetChildrenCount() != 2 {
		t.Errorf("Expected 2 children, got %d", root.GetChildrenCount())
	}
}
