// Package parser wraps the tree-sitter Python grammar behind a small,
// pooled parsing API, following the teacher's per-language parser-pool
// convention (github.com/DeusData/codebase-memory-mcp/internal/parser),
// narrowed to the single grammar this module needs.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var (
	languageOnce sync.Once
	pythonLang   *tree_sitter.Language
	pool         *sync.Pool
)

func initLanguage() {
	languageOnce.Do(func() {
		pythonLang = tree_sitter.NewLanguage(tree_sitter_python.Language())
		pool = &sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(pythonLang); err != nil {
					panic(fmt.Sprintf("set language: %v", err))
				}
				return p
			},
		}
	})
}

// Language returns the tree-sitter Python language definition.
func Language() *tree_sitter.Language {
	initLanguage()
	return pythonLang
}

// Parse parses Python source into a tree-sitter AST Tree. The caller must
// call tree.Close() when done. Parsers are pooled via sync.Pool to avoid
// per-file allocation during a repository-wide extraction run.
func Parse(source []byte) (*tree_sitter.Tree, error) {
	initLanguage()

	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to acquire python parser")
	}
	tree := p.Parse(source, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed")
	}
	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip the node's children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first, pre-order fashion.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the source text spanned by a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
