package standoff

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/standoff/core/graph"
	"github.com/siherrmann/standoff/core/parser"
	"github.com/siherrmann/standoff/core/pipeline"
	"github.com/siherrmann/standoff/core/remap"
	"github.com/siherrmann/standoff/core/validate"
	"github.com/siherrmann/standoff/database"
	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
)

// Standoff stores annotated documents and runs the document operations on them
type Standoff struct {
	DB          *helper.Database
	Documents   *database.DocumentsDBHandler
	Annotations *database.AnnotationsDBHandler
	Pipeline    *pipeline.Pipeline // Optional pre-annotation pipeline
	// Logging
	log *slog.Logger
}

// NewStandoff connects to the database and initializes all handlers
func NewStandoff(config *helper.DatabaseConfiguration) (*Standoff, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db := helper.NewDatabase("standoff", config, logger)

	// Documents first, annotations reference them
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	annotations, err := database.NewAnnotationsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create annotations handler", err)
	}

	return &Standoff{
		DB:          db,
		Documents:   documents,
		Annotations: annotations,
		log:         logger,
	}, nil
}

// Close closes the database connection
func (s *Standoff) Close() error {
	return s.DB.Close()
}

// SetPipeline sets the pre-annotation pipeline
func (s *Standoff) SetPipeline(p *pipeline.Pipeline) {
	s.Pipeline = p
}

// UseDefaultPipeline sets up NER pre-annotation with distilbert-NER
func (s *Standoff) UseDefaultPipeline() error {
	extractor, err := pipeline.DefaultEntityExtractor()
	if err != nil {
		return helper.NewError("create default entity extractor", err)
	}

	s.Pipeline = pipeline.NewPipeline(extractor)
	return nil
}

// ImportDocument parses the annotation lines of r and stores them together
// with the document. Dangling references are logged, not rejected.
func (s *Standoff) ImportDocument(r io.Reader, name string, text string, metadata model.Metadata) (*model.Document, error) {
	doc, err := parser.ReadDocument(r, name, text)
	if err != nil {
		return nil, helper.NewError("parse document", err)
	}
	doc.Metadata = metadata

	err = s.store(doc)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ImportFile parses an annotation file with its sibling text file and stores it
func (s *Standoff) ImportFile(annPath string) (*model.Document, error) {
	doc, err := parser.ReadFile(annPath)
	if err != nil {
		return nil, err
	}

	err = s.store(doc)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ImportCorpus parses every annotation file in dir and stores the documents.
// Parsing runs on up to workers goroutines, storing is sequential.
func (s *Standoff) ImportCorpus(ctx context.Context, dir string, workers int) ([]*model.Document, error) {
	docs, err := parser.ReadCorpus(ctx, dir, workers)
	if err != nil {
		return nil, helper.NewError("read corpus", err)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.store(doc); err != nil {
			return nil, err
		}
	}

	s.log.Info("Imported corpus", slog.String("dir", dir), slog.Int("documents", len(docs)))

	return docs, nil
}

func (s *Standoff) store(doc *model.Document) error {
	for _, problem := range validate.Problems(validate.Validate(doc)) {
		s.log.Warn("Document has integrity problem", slog.String("document", doc.DocID), slog.String("problem", problem.Error()))
	}

	if err := s.Documents.InsertDocument(doc); err != nil {
		return helper.NewError("insert document", err)
	}

	if err := s.Annotations.InsertAnnotations(doc.ID, doc.Annotations()); err != nil {
		if deleteErr := s.Documents.DeleteDocument(doc.RID); deleteErr != nil {
			s.log.Error("Failed to remove partially imported document", slog.String("rid", doc.RID.String()), slog.String("error", deleteErr.Error()))
		}
		return helper.NewError("insert annotations", err)
	}

	s.log.Info("Imported document", slog.String("rid", doc.RID.String()), slog.String("name", doc.DocID), slog.Int("annotations", doc.Len()))

	return nil
}

// LoadDocument rebuilds a document with all its records
func (s *Standoff) LoadDocument(rid uuid.UUID) (*model.Document, error) {
	doc, err := s.Documents.SelectDocument(rid)
	if err != nil {
		return nil, helper.NewError("select document", err)
	}
	return s.withAnnotations(doc)
}

// LoadDocumentByName rebuilds a document with all its records by its document id
func (s *Standoff) LoadDocumentByName(name string) (*model.Document, error) {
	doc, err := s.Documents.SelectDocumentByName(name)
	if err != nil {
		return nil, helper.NewError("select document", err)
	}
	return s.withAnnotations(doc)
}

func (s *Standoff) withAnnotations(doc *model.Document) (*model.Document, error) {
	annotations, err := s.Annotations.SelectAnnotations(doc.ID)
	if err != nil {
		return nil, helper.NewError("select annotations", err)
	}

	for _, ann := range annotations {
		if err := doc.AddAnnotation(ann); err != nil {
			return nil, helper.NewError("add annotation", err)
		}
	}

	return doc, nil
}

// ReorderDocument renumbers the entities of a stored document by text position
// and replaces the stored records with the result.
func (s *Standoff) ReorderDocument(rid uuid.UUID, opts remap.Options) (*model.Document, error) {
	doc, err := s.LoadDocument(rid)
	if err != nil {
		return nil, err
	}

	reordered, err := remap.ReorderEntities(doc, opts)
	if err != nil {
		return nil, helper.NewError("reorder entities", err)
	}

	err = s.Annotations.ReplaceAnnotations(reordered.ID, reordered.Annotations())
	if err != nil {
		return nil, helper.NewError("replace annotations", err)
	}

	s.log.Info("Reordered document", slog.String("rid", rid.String()), slog.Int("entities", len(reordered.GetEntities())))

	return reordered, nil
}

// PreAnnotate runs the pipeline over the text of a stored document and stores
// the new records. Returns the number of added records.
func (s *Standoff) PreAnnotate(rid uuid.UUID) (int, error) {
	if s.Pipeline == nil {
		return 0, helper.NewError("pre-annotate", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	doc, err := s.LoadDocument(rid)
	if err != nil {
		return 0, err
	}

	before := doc.Len()
	added, err := s.Pipeline.Annotate(doc)
	if err != nil {
		return 0, helper.NewError("annotate", err)
	}
	if added == 0 {
		return 0, nil
	}

	err = s.Annotations.InsertAnnotations(doc.ID, doc.Annotations()[before:])
	if err != nil {
		return 0, helper.NewError("insert annotations", err)
	}

	s.log.Info("Pre-annotated document", slog.String("rid", rid.String()), slog.Int("added", added))

	return added, nil
}

// ValidateDocument checks the references of a stored document
func (s *Standoff) ValidateDocument(rid uuid.UUID) error {
	doc, err := s.LoadDocument(rid)
	if err != nil {
		return err
	}
	return validate.Validate(doc)
}

// Dependents returns the records of a stored document referencing id, directly or
// through up to maxHops intermediate records.
func (s *Standoff) Dependents(ctx context.Context, rid uuid.UUID, id string, maxHops int) ([]*graph.TraversalResult, error) {
	doc, err := s.LoadDocument(rid)
	if err != nil {
		return nil, err
	}

	results, err := graph.BFS(ctx, doc, id, maxHops, graph.Incoming)
	if err != nil {
		return nil, helper.NewError("traverse", err)
	}

	return results[1:], nil
}

// ExportDocument writes the records of a stored document in the annotation line format
func (s *Standoff) ExportDocument(rid uuid.UUID, w io.Writer) error {
	doc, err := s.LoadDocument(rid)
	if err != nil {
		return err
	}

	return parser.NewWriter(w).Write(doc)
}

// DeleteDocument deletes a stored document with all its records
func (s *Standoff) DeleteDocument(rid uuid.UUID) error {
	if err := s.Documents.DeleteDocument(rid); err != nil {
		return helper.NewError("delete document", err)
	}
	return nil
}
