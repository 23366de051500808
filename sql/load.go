package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed documents.sql
var documentsSQL string

//go:embed graph.sql
var graphSQL string

// Function lists for verification
var DocumentsFunctions = []string{
	"init_documents",
	"upsert_document",
	"select_document",
	"select_all_documents",
	"delete_documents",
}

var GraphFunctions = []string{
	"init_graph",
	"insert_node",
	"insert_edge",
	"select_nodes",
	"select_edges",
	"delete_document_cascade",
}

// LoadDocumentsSql loads document-related SQL functions
func LoadDocumentsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, DocumentsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing documents functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(documentsSQL)
	if err != nil {
		return fmt.Errorf("error executing documents SQL: %w", err)
	}

	exist, err := checkFunctions(db, DocumentsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL documents functions loaded successfully")
	return nil
}

// LoadGraphSql loads graph-related SQL functions
func LoadGraphSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, GraphFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing graph functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(graphSQL)
	if err != nil {
		return fmt.Errorf("error executing graph SQL: %w", err)
	}

	exist, err := checkFunctions(db, GraphFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL graph functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadDocumentsSql(db, force); err != nil {
		return err
	}

	if err := LoadGraphSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
