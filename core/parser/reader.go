package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
)

// maxLineSize bounds a single annotation line, long notes and entity texts included
const maxLineSize = 1024 * 1024

// Reader parses annotation lines into a Document.
// Cross references are not validated, see the validate package for that.
type Reader struct {
	scanner *bufio.Scanner
	docID   string
	text    string
}

// NewReader creates a Reader. docID and text are passed through to the
// resulting document unmodified, both may be empty.
func NewReader(r io.Reader, docID string, text string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		scanner: scanner,
		docID:   docID,
		text:    text,
	}
}

// Read consumes the whole input. On the first malformed line it returns a
// GrammarError carrying the line number, duplicate ids return the
// DuplicateIDError of the document. No partial document is returned.
func (r *Reader) Read() (*model.Document, error) {
	doc := model.NewDocument(r.docID, r.text)

	lineNo := 0
	for r.scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		if line == "" {
			continue
		}

		ann, err := ParseLine(line)
		if err != nil {
			var grammarErr *model.GrammarError
			if errors.As(err, &grammarErr) {
				grammarErr.LineNo = lineNo
			}
			return nil, err
		}

		if err := doc.AddAnnotation(ann); err != nil {
			return nil, helper.NewError(fmt.Sprintf("line %d", lineNo), err)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, helper.NewError("read annotations", err)
	}

	return doc, nil
}

// ReadDocument parses all lines of r into a Document
func ReadDocument(r io.Reader, docID string, text string) (*model.Document, error) {
	return NewReader(r, docID, text).Read()
}

// ParseString parses annotation lines held in a string
func ParseString(annotations string, docID string, text string) (*model.Document, error) {
	return ReadDocument(strings.NewReader(annotations), docID, text)
}

// Writer writes documents in the annotation line format
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes every record of doc in insertion order, one per line.
// Nothing is written when a record cannot be represented as a single line.
func (w *Writer) Write(doc *model.Document) error {
	for _, ann := range doc.Annotations() {
		if err := CheckAnnotation(ann); err != nil {
			return err
		}
	}

	for _, ann := range doc.Annotations() {
		if _, err := w.w.WriteString(FormatAnnotation(ann)); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// FormatDocument returns the annotation lines of doc as a string
func FormatDocument(doc *model.Document) (string, error) {
	var b strings.Builder
	if err := NewWriter(&b).Write(doc); err != nil {
		return "", err
	}
	return b.String(), nil
}
