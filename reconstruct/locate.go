package reconstruct

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/reconstruct/parser"
	"github.com/arjunmahishi/reconstruct/types"
)

// locateSites runs the locator query over tree and keeps the calls to lookup with a single argument.
func locateSites(q *parser.Query, tree *sitter.Tree, source []byte, file, lookup string) []types.LocatorSite {
	var sites []types.LocatorSite
	q.Run(tree, func(captures []parser.Capture) {
		var method, key, args, call *sitter.Node
		for _, c := range captures {
			switch c.Name {
			case "method":
				method = c.Node
			case "key":
				key = c.Node
			case "args":
				args = c.Node
			case "call":
				call = c.Node
			}
		}
		if method == nil || key == nil || args == nil || call == nil {
			return
		}
		if method.Content(source) != lookup || args.NamedChildCount() != 1 {
			return
		}

		value, ok := parser.Unquote(key.Content(source))
		if !ok {
			return
		}
		site := types.LocatorSite{
			File:  file,
			Key:   value,
			Text:  call.Content(source),
			Range: parser.RangeOf(call),
		}
		site.Class, site.Method = enclosing(call, source)
		sites = append(sites, site)
	})
	return sites
}

// enclosing returns the names of the innermost class and method around n.
func enclosing(n *sitter.Node, source []byte) (class, method string) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "method_definition":
			if method == "" {
				method = nameOf(p, source)
			}
		case "class_declaration", "abstract_class_declaration", "class":
			return nameOf(p, source), method
		}
	}
	return "", method
}

func nameOf(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	return ""
}
