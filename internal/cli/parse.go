package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ben-ranford/d7audit/internal/app"
	"github.com/ben-ranford/d7audit/internal/config"
	"github.com/ben-ranford/d7audit/internal/report"
)

var (
	ErrHelpRequested      = errors.New("help requested")
	ErrConflictingOutputs = errors.New("cannot use both --output and --download")
)

const (
	flagConfig   = "config"
	flagFormat   = "format"
	flagOutput   = "output"
	flagDownload = "download"
	flagVerbose  = "verbose"
)

// ParseArgs turns the command line into a request. The command tree and its
// viper binding are rebuilt on every call.
func ParseArgs(args []string) (app.Request, error) {
	parser := &argParser{req: app.DefaultRequest(), workDir: "."}
	if len(args) == 0 {
		return parser.req, ErrHelpRequested
	}

	root := parser.rootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err != nil {
		return parser.req, err
	}
	if parser.helpRequested {
		return parser.req, ErrHelpRequested
	}
	return parser.req, nil
}

type argParser struct {
	req           app.Request
	workDir       string
	helpRequested bool
}

func (p *argParser) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "d7audit",
		Short:         "Audit a Drupal 7 installation",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(func(*cobra.Command, []string) {
		p.helpRequested = true
	})

	root.AddCommand(p.auditCommand(), p.modeCommand("version", "Print the version", app.ModeVersion), p.modeCommand("schema", "Print the JSON schema of --format json", app.ModeSchema))
	return root
}

func (p *argParser) modeCommand(use, short string, mode app.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p.req.Mode = mode
			return nil
		},
	}
}

func (p *argParser) auditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the database and codebase of a Drupal 7 site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return p.parseAudit(cmd)
		},
	}

	defaults := config.Defaults()
	flags := cmd.Flags()
	flags.String(config.KeyDocroot, defaults.Docroot, "Drupal docroot")
	flags.String(flagConfig, "", "config file path")
	flags.String(flagFormat, string(report.FormatTable), "output format")
	flags.StringP(flagOutput, "o", "", "write the report to a file")
	flags.Bool(flagDownload, false, "save the report as d7audit-DD-MM-YYYY in the working directory")
	flags.String(config.KeyDriver, defaults.Database.Driver, "database driver")
	flags.String(config.KeyHost, defaults.Database.Host, "database host")
	flags.Int(config.KeyPort, defaults.Database.Port, "database port")
	flags.String(config.KeyName, defaults.Database.Name, "database name")
	flags.String(config.KeyUser, defaults.Database.User, "database user")
	flags.String(config.KeyPassword, defaults.Database.Password, "database password")
	flags.String(config.KeyDSN, "", "driver DSN, or the sqlite file path")
	flags.Int(config.KeyWorkers, defaults.Workers, "concurrent module and theme profilers")
	flags.String(config.KeyQueryStats, defaults.QueryStats, "per-module query stats: last or sum")
	flags.Bool(config.KeySkipDatabase, false, "skip database inspection")
	flags.Bool(config.KeyDetectSettings, defaults.DetectSettings, "read credentials from sites/default/settings.php")
	flags.BoolP(flagVerbose, "v", false, "debug logging")
	return cmd
}

func (p *argParser) parseAudit(cmd *cobra.Command) error {
	v := config.NewViper()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	format, err := report.ParseFormat(v.GetString(flagFormat))
	if err != nil {
		return err
	}
	output := strings.TrimSpace(v.GetString(flagOutput))
	download := v.GetBool(flagDownload)
	if output != "" && download {
		return ErrConflictingOutputs
	}

	values, configPath, err := resolveValues(v, p.workDir, v.GetString(flagConfig))
	if err != nil {
		return err
	}

	p.req.Mode = app.ModeAudit
	p.req.Audit = app.AuditRequest{
		Config:     values,
		ConfigPath: configPath,
		Format:     format,
		OutputPath: output,
		Download:   download,
		Verbose:    v.GetBool(flagVerbose),
	}
	return nil
}

func resolveValues(v *viper.Viper, workDir, explicitConfig string) (config.Values, string, error) {
	fileOverrides, configPath, err := config.Load(workDir, explicitConfig)
	if err != nil {
		return config.Values{}, "", err
	}
	cliOverrides, err := config.FromViper(v)
	if err != nil {
		return config.Values{}, "", err
	}
	values, err := config.Resolve(fileOverrides, cliOverrides, config.SettingsOverrides)
	if err != nil {
		return config.Values{}, "", err
	}
	return values, configPath, nil
}
