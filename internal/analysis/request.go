package analysis

import "github.com/ben-ranford/d7audit/internal/database"

type Request struct {
	Docroot      string
	Database     database.Config
	SkipDatabase bool
	Workers      int
	QueryStats   string
}
