// Package frontmatter reads, edits and writes documents made of a YAML front
// matter block and an opaque body:
//
//	---
//	title: Hello
//	tags:
//	  - go
//	---
//	Body text, never interpreted.
//
// [Parse] splits the text and composes the front matter into an ordered
// [node.Mapping]. The mutation methods on [Document] return an updated copy
// and never change the receiver. [Print] writes the document back under a
// [render.Profile].
//
// Example:
//
//	doc, err := frontmatter.Parse(text)
//	if err != nil {
//		return err
//	}
//	doc = doc.Set("title", node.Scalar("B"))
//	out, err := frontmatter.Print(doc, render.Defaults())
package frontmatter

import (
	"github.com/DandyLyons/frontrange/pkg/node"
)

// Document is a front matter mapping plus the body that follows it.
//
// The zero value is an empty document with no body. Documents have value
// semantics; share them freely, but serialize in-place replacement of one
// shared variable.
type Document struct {
	preamble node.Mapping
	body     string
	bom      bool // text started with a UTF-8 byte order mark

	// Source information, present only for documents returned by Parse and
	// dropped by every mutation.
	source  string
	closing int // 1-based line of the closing delimiter
}

// New returns a document holding a copy of preamble and body.
func New(preamble node.Mapping, body string) Document {
	return Document{preamble: preamble.Clone(), body: body}
}

// Preamble returns a copy of the front matter mapping.
func (d Document) Preamble() node.Mapping {
	return d.preamble.Clone()
}

// Body returns the text after the closing delimiter line.
func (d Document) Body() string {
	return d.body
}

// WithBody returns a copy of d with a different body.
func (d Document) WithBody(body string) Document {
	d.body = body

	return d
}

// Equal reports whether both documents hold equal preambles (order
// included) and identical bodies. A byte order mark is not compared.
func (d Document) Equal(other Document) bool {
	return d.body == other.body && d.preamble.Equal(other.preamble)
}

// Source returns the text d was parsed from, if it is unmodified.
func (d Document) Source() (string, bool) {
	return d.source, d.closing > 0
}

// edited returns d with a new preamble and no source information.
func (d Document) edited(m node.Mapping) Document {
	return Document{preamble: m, body: d.body, bom: d.bom}
}
