package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func TestParsePython(t *testing.T) {
	source := []byte(`def greet(name):
    return f"Hello, {name}"

class MyClass:
    def method(self):
        pass
`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}

	var funcCount, classCount int
	Walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			funcCount++
		case "class_definition":
			classCount++
		}
		return true
	})
	if funcCount != 2 {
		t.Errorf("expected 2 function_definitions, got %d", funcCount)
	}
	if classCount != 1 {
		t.Errorf("expected 1 class_definition, got %d", classCount)
	}
}

func TestParseSyntaxError(t *testing.T) {
	// tree-sitter never fails Parse outright; malformed source just
	// yields ERROR nodes in the tree rather than a non-nil error.
	source := []byte(`def broken(:\n`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	if tree.RootNode() == nil {
		t.Fatal("root node is nil")
	}
}

func TestWalkSkipsChildrenWhenFuncReturnsFalse(t *testing.T) {
	source := []byte(`class Outer:
    def inner(self):
        pass
`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	var classSeen, methodSeen bool
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "class_definition" {
			classSeen = true
			return false // children, including the nested method, are skipped
		}
		if n.Kind() == "function_definition" {
			methodSeen = true
		}
		return true
	})
	if !classSeen {
		t.Fatal("expected to visit the class_definition node")
	}
	if methodSeen {
		t.Error("expected Walk to skip the class's children after returning false")
	}
}

func TestNodeText(t *testing.T) {
	source := []byte(`def greet(name):
    return name
`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_definition" {
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				t.Error("function has no name node")
				return false
			}
			if got := NodeText(nameNode, source); got != "greet" {
				t.Errorf("expected greet, got %s", got)
			}
			return false
		}
		return true
	})
}

func TestLanguageReturnsPython(t *testing.T) {
	if Language() == nil {
		t.Fatal("Language() returned nil")
	}
}

func TestParsePooledAcrossCalls(t *testing.T) {
	// Parsers are pooled (sync.Pool); parsing back to back must not
	// return a parser still holding state from a prior call.
	for i := 0; i < 3; i++ {
		tree, err := Parse([]byte("x = 1\n"))
		if err != nil {
			t.Fatalf("Parse iteration %d: %v", i, err)
		}
		if tree.RootNode() == nil {
			t.Fatalf("iteration %d: root node is nil", i)
		}
		tree.Close()
	}
}
