package markdown

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type NodeTransformer interface {
	Transform(n ast.Node) error
}

type NodeTransformerFunc func(n ast.Node) error

func (f NodeTransformerFunc) Transform(n ast.Node) error {
	if err := f(n); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type Transformer struct {
	transformers []NodeTransformer
	err          error
}

// Transform implements parser.ASTTransformer.
func (t *Transformer) Transform(root *ast.Document, reader text.Reader, pc parser.Context) {
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		for _, nodeTransformer := range t.transformers {
			if err := nodeTransformer.Transform(n); err != nil {
				return ast.WalkStop, errors.WithStack(err)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		t.err = errors.WithStack(err)
	}
}

func (t *Transformer) Error() error {
	if t.err == nil {
		return nil
	}
	return errors.WithStack(t.err)
}

var _ parser.ASTTransformer = &Transformer{}

// StripDataURL replaces inlined data URLs of images and links, which
// publishing platforms refuse.
var StripDataURL NodeTransformerFunc = func(n ast.Node) error {
	stripDataURL := func(destination []byte) []byte {
		if bytes.HasPrefix(destination, []byte("data:")) {
			return []byte("#stripped")
		}
		return destination
	}

	switch typ := n.(type) {
	case *ast.Image:
		typ.Destination = stripDataURL(typ.Destination)
	case *ast.Link:
		typ.Destination = stripDataURL(typ.Destination)
	}

	return nil
}

// RewriteImages returns a transformer applying fn to every image
// destination, relative references being resolved by fn.
func RewriteImages(fn func(destination string) string) NodeTransformerFunc {
	return func(n ast.Node) error {
		if image, ok := n.(*ast.Image); ok {
			image.Destination = []byte(fn(string(image.Destination)))
		}
		return nil
	}
}

// Normalize renders a variant back to markdown, applying the given
// transformers to its body. The front matter, if any, is kept as is.
func Normalize(content string, transformers ...NodeTransformer) (string, error) {
	header, body := splitHeader(content)

	transformer := &Transformer{transformers: transformers}

	md := New()
	md.Parser().AddOptions(parser.WithASTTransformers(util.Prioritized(transformer, 999)))

	var buff bytes.Buffer
	if err := md.Convert([]byte(body), &buff); err != nil {
		return "", errors.WithStack(err)
	}

	if err := transformer.Error(); err != nil {
		return "", errors.WithStack(err)
	}

	normalized := strings.TrimRight(buff.String(), "\n") + "\n"
	if header != "" {
		normalized = header + "\n" + normalized
	}

	return normalized, nil
}

func splitHeader(content string) (string, string) {
	if !strings.HasPrefix(content, "---\n") {
		return "", content
	}

	end := strings.Index(content[4:], "\n---\n")
	if end < 0 {
		return "", content
	}

	end += 4 + len("\n---\n")

	return content[:end], content[end:]
}
