package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/standoff/core/parser"
	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
	loadSql "github.com/siherrmann/standoff/sql"
)

// AnnotationsDBHandlerFunctions defines the interface for Annotations database operations.
type AnnotationsDBHandlerFunctions interface {
	InsertAnnotations(documentID int64, annotations []model.Annotation) error
	ReplaceAnnotations(documentID int64, annotations []model.Annotation) error
	SelectAnnotations(documentID int64) ([]model.Annotation, error)
	SelectAnnotationsByKind(documentID int64, kind model.Kind) ([]model.Annotation, error)
	DeleteAnnotations(documentID int64) (int, error)
}

// AnnotationsDBHandler stores the records of a document, one row per record in
// document order. Each row keeps the serialized line so records round trip
// through the parser unchanged.
type AnnotationsDBHandler struct {
	db *helper.Database
}

// NewAnnotationsDBHandler creates a new annotations database handler.
// The documents table has to exist already.
// If force is true, it will reload the SQL functions even if they already exist.
func NewAnnotationsDBHandler(db *helper.Database, force bool) (*AnnotationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	annotationsDbHandler := &AnnotationsDBHandler{
		db: db,
	}

	err := loadSql.LoadAnnotationsSql(annotationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load annotations sql", err)
	}

	err = annotationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AnnotationsDBHandler")

	return annotationsDbHandler, nil
}

// CreateTable creates the 'annotations' table in the database.
// If the table already exists, it does not create it again.
func (h *AnnotationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_annotations();`)
	if err != nil {
		log.Panicf("error initializing annotations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table annotations")

	return nil
}

// InsertAnnotations appends the records after the ones already stored for the document.
// Either all records are stored or none.
func (h *AnnotationsDBHandler) InsertAnnotations(documentID int64, annotations []model.Annotation) error {
	return h.write(documentID, annotations, false)
}

// ReplaceAnnotations atomically swaps the stored records of the document
func (h *AnnotationsDBHandler) ReplaceAnnotations(documentID int64, annotations []model.Annotation) error {
	return h.write(documentID, annotations, true)
}

func (h *AnnotationsDBHandler) write(documentID int64, annotations []model.Annotation, replace bool) error {
	for _, ann := range annotations {
		if err := parser.CheckAnnotation(ann); err != nil {
			return helper.NewError(fmt.Sprintf("check annotation %s", ann.GetID()), err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Row lock on the document serializes writers computing the next ordinal
	var lockedID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE id = $1 FOR UPDATE`, documentID).Scan(&lockedID)
	if err != nil {
		return notFound(fmt.Sprint(documentID), err)
	}

	if replace {
		_, err = tx.ExecContext(ctx, `SELECT delete_annotations($1)`, documentID)
		if err != nil {
			return helper.NewError("delete annotations", err)
		}
	}

	for _, ann := range annotations {
		_, err = tx.ExecContext(
			ctx,
			`SELECT insert_annotation($1, $2, $3, $4, $5)`,
			documentID,
			ann.GetID(),
			string(ann.Kind()),
			ann.GetType(),
			parser.FormatAnnotation(ann),
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert annotation %s", ann.GetID()), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	return nil
}

// SelectAnnotations retrieves the records of a document in document order
func (h *AnnotationsDBHandler) SelectAnnotations(documentID int64) ([]model.Annotation, error) {
	return h.query(`SELECT line FROM select_annotations($1)`, documentID)
}

// SelectAnnotationsByKind retrieves the records of one variant in document order
func (h *AnnotationsDBHandler) SelectAnnotationsByKind(documentID int64, kind model.Kind) ([]model.Annotation, error) {
	return h.query(`SELECT line FROM select_annotations_by_kind($1, $2)`, documentID, string(kind))
}

// DeleteAnnotations deletes all records of a document and returns how many were removed
func (h *AnnotationsDBHandler) DeleteAnnotations(documentID int64) (int, error) {
	var count int
	err := h.db.Instance.QueryRow(
		`SELECT delete_annotations($1)`,
		documentID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

func (h *AnnotationsDBHandler) query(query string, args ...any) ([]model.Annotation, error) {
	rows, err := h.db.Instance.Query(query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var annotations []model.Annotation
	for rows.Next() {
		var line string
		err := rows.Scan(&line)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		ann, err := parser.ParseLine(line)
		if err != nil {
			return nil, helper.NewError("parse stored annotation", err)
		}
		annotations = append(annotations, ann)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return annotations, nil
}
