package parser

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
	"golang.org/x/sync/errgroup"
)

const (
	AnnotationExtension = ".ann"
	TextExtension       = ".txt"
)

// ReadFile parses an annotation file. The document id is the file name without
// extension and the sibling text file, if present, becomes the document text.
func ReadFile(annPath string) (*model.Document, error) {
	f, err := os.Open(annPath)
	if err != nil {
		return nil, helper.NewError("open annotations", err)
	}
	defer f.Close()

	base := strings.TrimSuffix(annPath, filepath.Ext(annPath))
	docID := filepath.Base(base)

	var text string
	content, err := os.ReadFile(base + TextExtension)
	switch {
	case err == nil:
		text = string(content)
	case !os.IsNotExist(err):
		return nil, helper.NewError("read text", err)
	}

	doc, err := ReadDocument(f, docID, text)
	if err != nil {
		return nil, helper.NewError("parse "+annPath, err)
	}
	return doc, nil
}

// ReadCorpus parses every annotation file in dir with up to workers files in
// flight. The first error cancels the remaining work. Documents are sorted by id.
func ReadCorpus(ctx context.Context, dir string, workers int) ([]*model.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+AnnotationExtension))
	if err != nil {
		return nil, helper.NewError("list corpus", err)
	}

	if workers <= 0 {
		workers = 1
	}

	docs := make([]*model.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := ReadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].DocID < docs[j].DocID
	})

	return docs, nil
}
