package util

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNilNode = errors.New("HTML node is nil")

// CreateDomTree reads from a reader and parses the content into an html.Node.
// It returns a body node.
func CreateDomTree(bodyReader io.Reader) (*html.Node, error) {

	parsed, err := html.ParseFragment(
		io.MultiReader(
			strings.NewReader("<body>"),
			bodyReader,
			strings.NewReader("</body>"),
		),
		&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Html,
			Data:     "html",
		},
	)
	if err != nil {
		return nil, err
	}

	for _, node := range parsed {
		if node.DataAtom == atom.Body {
			return node, nil
		}
	}
	return nil, errors.New("no body node")
}

// RenderDomTree renders the children of root into a string.
func RenderDomTree(root *html.Node) (string, error) {
	if root == nil {
		return "", ErrNilNode
	}
	var buf = &bytes.Buffer{}
	for node := root.FirstChild; node != nil; node = node.NextSibling {
		if err := html.Render(buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// ForEachDomNode calls a task func for each node, including root.
// It recurses (pre-order) if and only if the task returns true.
//
// The task might replace the node, so its NextSibling might change.
func ForEachDomNode(root *html.Node, task func(*html.Node) (bool, error)) error {

	if root == nil {
		return ErrNilNode
	}

	recurse, err := task(root)
	if err != nil {
		return err
	}
	if !recurse {
		return nil
	}

	for child := root.FirstChild; child != nil; {

		nextSiblingBackup := child.NextSibling // backup because the task might modify child.NextSibling

		if err = ForEachDomNode(child, task); err != nil {
			return err
		}

		child = nextSiblingBackup
	}

	return nil
}

// SetAttr sets an attribute of an element node, replacing an existing value.
func SetAttr(node *html.Node, key, val string) {
	for i := range node.Attr {
		if node.Attr[i].Namespace == "" && node.Attr[i].Key == key {
			node.Attr[i].Val = val
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: val})
}
