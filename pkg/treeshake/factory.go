package treeshake

import (
	"context"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/javascript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// factoryOpen balances the ")" that closes define(...) at the end of a
// factory body, so the body parses as one parenthesized expression.
const factoryOpen = "("

var (
	jsLanguage = sync.OnceValue(func() *sitter.Language {
		return sitter.NewLanguage(javascript.GetLanguage())
	})

	jsParserPool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(jsLanguage())

			return tsParser
		},
	}
)

// factoryParams returns the byte span within content of the text between the
// parentheses of the function that opens content, named or anonymous.
// Functions nested deeper in the body are never considered. ok is false when
// content does not start with a function.
func factoryParams(content string) (start, end int, ok bool) {
	lead := len(content) - len(strings.TrimLeft(content, " \t\r\n"))
	if !strings.HasPrefix(content[lead:], "function") {
		return 0, 0, false
	}

	tsParser, castOK := jsParserPool.Get().(*sitter.Parser)
	if !castOK {
		return 0, 0, false
	}

	defer jsParserPool.Put(tsParser)

	tree, err := tsParser.ParseString(context.Background(), nil, []byte(factoryOpen+content))
	if err != nil {
		return 0, 0, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return 0, 0, false
	}

	fn, found := leadingFunction(root, len(factoryOpen)+lead)
	if !found {
		return 0, 0, false
	}

	params := fn.ChildByFieldName("parameters")
	start = int(params.StartByte()) + 1 - len(factoryOpen)
	end = int(params.EndByte()) - 1 - len(factoryOpen)

	if start < 1 || end < start || end >= len(content) || content[start-1] != '(' || content[end] != ')' {
		return 0, 0, false
	}

	return start, end, true
}

// leadingFunction finds, in preorder, the function node starting exactly at
// offset at. Subtrees starting after at are skipped.
func leadingFunction(n sitter.Node, at int) (sitter.Node, bool) {
	if n.IsNull() || int(n.StartByte()) > at {
		return n, false
	}

	if int(n.StartByte()) == at && strings.Contains(n.Type(), "function") &&
		!n.ChildByFieldName("parameters").IsNull() {
		return n, true
	}

	for idx := range n.NamedChildCount() {
		if fn, ok := leadingFunction(n.NamedChild(idx), at); ok {
			return fn, true
		}
	}

	return n, false
}
