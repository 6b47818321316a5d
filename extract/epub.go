package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"

	"github.com/poiesic/textmill/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EPUBExtractor extracts text from EPUB documents. Spine documents are read
// in reading order; every block-level HTML element starts a new block and
// every text node inside it is a span.
type EPUBExtractor struct{}

// NewEPUBExtractor creates an EPUB extractor.
func NewEPUBExtractor() *EPUBExtractor {
	return &EPUBExtractor{}
}

// Kind implements Extractor.
func (e *EPUBExtractor) Kind() core.Kind {
	return core.KindEPUB
}

// Open implements Extractor.
func (e *EPUBExtractor) Open(ctx context.Context, path string) (Handle, error) {
	h, err := openZip(path)
	if err != nil {
		return nil, err
	}
	return &epubHandle{zipHandle: h}, nil
}

type epubHandle struct {
	*zipHandle
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Items []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"href,attr"`
	} `xml:"manifest>item"`
	ItemRefs []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// ExtractRaw implements Extractor.
func (e *EPUBExtractor) ExtractRaw(ctx context.Context, h Handle) (core.RawUnit, error) {
	eh, ok := h.(*epubHandle)
	if !ok {
		return core.RawUnit{}, ErrHandleMismatch
	}

	docs, err := eh.spine()
	if err != nil {
		return core.RawUnit{}, openError(eh.path, err)
	}

	var c blockCollector
	for _, name := range docs {
		if err := ctx.Err(); err != nil {
			return core.RawUnit{}, err
		}
		data, err := eh.read(name)
		if err != nil {
			return core.RawUnit{}, openError(eh.path, err)
		}
		root, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return core.RawUnit{}, openError(eh.path, fmt.Errorf("%s: %w", name, err))
		}
		c.walk(root)
		c.flush()
	}
	return core.FlatText(MergeBlocks(c.blocks)), nil
}

// spine returns the archive paths of the content documents in reading order.
func (h *epubHandle) spine() ([]string, error) {
	data, err := h.read("META-INF/container.xml")
	if err != nil {
		return nil, err
	}
	var container epubContainer
	if err := xml.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("container.xml: %w", err)
	}
	opfPath := ""
	for _, rf := range container.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml") {
			opfPath = rf.FullPath
			break
		}
	}
	if opfPath == "" {
		return nil, fmt.Errorf("%w: package document", ErrMissingEntry)
	}

	data, err = h.read(opfPath)
	if err != nil {
		return nil, err
	}
	var pkg epubPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%s: %w", opfPath, err)
	}

	hrefs := make(map[string]string, len(pkg.Items))
	for _, item := range pkg.Items {
		hrefs[item.ID] = item.Href
	}
	base := path.Dir(opfPath)
	docs := make([]string, 0, len(pkg.ItemRefs))
	for _, ref := range pkg.ItemRefs {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		if unescaped, err := url.PathUnescape(href); err == nil {
			href = unescaped
		}
		docs = append(docs, path.Join(base, href))
	}
	return docs, nil
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true, atom.Br: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Title: true,
}

// blockCollector groups HTML text nodes into blocks of spans.
type blockCollector struct {
	blocks [][]string
	cur    []string
}

func (c *blockCollector) flush() {
	if len(c.cur) > 0 {
		c.blocks = append(c.blocks, c.cur)
		c.cur = nil
	}
}

func (c *blockCollector) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.cur = append(c.cur, n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		c.flush()
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
	if block {
		c.flush()
	}
}
