package main

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Entry is one version section of the changelog.
type Entry struct {
	Version string
	Date    string
	Body    string
}

// Document is a parsed changelog: its version entries in file order and
// the link definitions collected from the bottom of the file.
type Document struct {
	Entries []Entry
	Links   map[string]string
}

// Entry returns the section for version, tolerating a leading "v".
func (d *Document) Entry(version string) *Entry {
	version = strings.TrimPrefix(version, "v")
	for i := range d.Entries {
		if strings.TrimPrefix(d.Entries[i].Version, "v") == version {
			return &d.Entries[i]
		}
	}
	return nil
}

// section tracks an h2 heading and where its body starts in the source.
type section struct {
	version string
	date    string
	headAt  int
	bodyAt  int
}

// Parse reads a Keep a Changelog file. Version sections are the level-2
// headings; everything between one heading and the next is that
// version's body.
func Parse(source []byte) (*Document, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	doc := &Document{Links: map[string]string{}}
	for _, ref := range ctx.References() {
		doc.Links[string(ref.Label())] = string(ref.Destination())
	}

	var sections []section
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok || heading.Level != 2 {
			return ast.WalkContinue, nil
		}

		version, date := splitHeading(headingText(heading, source))
		sec := section{version: version, date: date}
		if lines := heading.Lines(); lines.Len() > 0 {
			sec.headAt = lines.At(0).Start
			sec.bodyAt = lines.At(lines.Len() - 1).Stop
		}
		sections = append(sections, sec)
		return ast.WalkContinue, nil
	})

	for i, sec := range sections {
		end := len(source)
		if i+1 < len(sections) {
			end = sections[i+1].headAt
		}
		body := ""
		if sec.bodyAt < end {
			body = strings.TrimSpace(string(source[sec.bodyAt:end]))
		}
		doc.Entries = append(doc.Entries, Entry{Version: sec.version, Date: sec.date, Body: body})
	}
	return doc, nil
}

// headingText flattens a heading's inline content, looking through links
// so "## [1.2.0] - 2026-01-01" yields the bracketed text.
func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Text:
				buf.Write(c.Segment.Value(source))
			case *ast.Link:
				walk(c)
			}
		}
	}
	walk(node)
	return buf.String()
}

// splitHeading takes "Version - Date" or "[Version] - Date" apart.
func splitHeading(heading string) (version, date string) {
	heading = strings.TrimSpace(strings.TrimPrefix(heading, "["))
	if idx := strings.Index(heading, "]"); idx != -1 {
		version = heading[:idx]
		rest := strings.TrimSpace(heading[idx+1:])
		date = strings.TrimSpace(strings.TrimPrefix(rest, "- "))
		return version, date
	}
	if idx := strings.Index(heading, " - "); idx != -1 {
		return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+3:])
	}
	return heading, ""
}
