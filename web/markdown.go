package web

import (
	"html/template"
	"strings"

	"github.com/wansing/coursenotes/util"
	"gitlab.com/golang-commonmark/markdown"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var markdownParser = markdown.New(
	markdown.HTML(false),
	markdown.Breaks(true),
	markdown.Linkify(true),
	markdown.MaxNesting(10),
)

// renderNote renders the content of a note as CommonMark. Raw HTML is escaped, line breaks are kept and text is not rewritten. Links open in a new tab.
func renderNote(content string) (template.HTML, error) {

	root, err := util.CreateDomTree(strings.NewReader(markdownParser.RenderToString([]byte(content))))
	if err != nil {
		return "", err
	}

	err = util.ForEachDomNode(root, func(node *html.Node) (bool, error) {
		if node.Type == html.ElementNode && node.DataAtom == atom.A {
			util.SetAttr(node, "target", "_blank")
			util.SetAttr(node, "rel", "noopener noreferrer")
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}

	rendered, err := util.RenderDomTree(root)
	return template.HTML(rendered), err
}
