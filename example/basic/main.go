package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/siherrmann/standoff"
	"github.com/siherrmann/standoff/core/remap"
	"github.com/siherrmann/standoff/helper"
	"github.com/siherrmann/standoff/model"
)

const sampleText = "Wolfgang met Angela in Berlin. Angela later moved to Munich."

const sampleAnnotations = `T1	Person 13 19	Angela
T2	Person 0 8	Wolfgang
T3	Location 23 29	Berlin
T4	Person 31 37	Angela
T5	Location 53 59	Munich
E1	Meeting:T2 Participant:T1 Place:T3
R1	Moved Agent:T4 Target:T5
A1	Certainty E1 High
#1	AnnotatorNotes T5	capital of Bavaria
*	Coref T1 T4
`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	s, err := standoff.NewStandoff(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create standoff: %v", err)
	}
	defer s.Close()

	fmt.Println("Importing document...")
	doc, err := s.ImportDocument(strings.NewReader(sampleAnnotations), "basic_example", sampleText, model.Metadata{
		"annotator": "Example Annotator",
	})
	if err != nil {
		log.Fatalf("Failed to import document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s (%d records)\n", doc.RID, doc.Len())

	fmt.Println("\nRecords depending on T5:")
	results, err := s.Dependents(context.Background(), doc.RID, "T5", 2)
	if err != nil {
		log.Fatalf("Failed to traverse: %v", err)
	}
	for _, result := range results {
		fmt.Printf("  %s (%s) at distance %d via %s\n", result.Annotation.GetID(), result.Annotation.Kind(), result.Distance, strings.Join(result.Path, " <- "))
	}

	fmt.Println("\nReordering entities by text position...")
	if _, err := s.ReorderDocument(doc.RID, remap.DefaultOptions()); err != nil {
		log.Fatalf("Failed to reorder document: %v", err)
	}

	if err := s.ExportDocument(doc.RID, os.Stdout); err != nil {
		log.Fatalf("Failed to export document: %v", err)
	}

	fmt.Println("\nBasic example completed successfully!")
}
