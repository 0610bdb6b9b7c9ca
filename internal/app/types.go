package app

import (
	"github.com/ben-ranford/d7audit/internal/config"
	"github.com/ben-ranford/d7audit/internal/report"
)

type Mode string

const (
	ModeAudit   Mode = "audit"
	ModeVersion Mode = "version"
	ModeSchema  Mode = "schema"
)

type Request struct {
	Mode  Mode
	Audit AuditRequest
}

type AuditRequest struct {
	Config     config.Values
	ConfigPath string
	Format     report.Format
	// OutputPath and Download are exclusive. With neither the report goes
	// to stdout.
	OutputPath string
	Download   bool
	Verbose    bool
}

func DefaultRequest() Request {
	return Request{
		Mode: ModeAudit,
		Audit: AuditRequest{
			Config: config.Defaults(),
			Format: report.FormatTable,
		},
	}
}
