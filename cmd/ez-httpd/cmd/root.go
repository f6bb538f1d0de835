package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelreyna/ez-httpd/pkg/config"
	"github.com/raphaelreyna/ez-httpd/pkg/log"
)

var version string

var (
	configFile string

	host          string
	port          uint16
	root          string
	readTimeout   time.Duration
	scriptTimeout time.Duration

	logDir   string
	jsonLogs bool
	verbose  bool
	quiet    bool
)

var RootCmd = &cobra.Command{
	Use:     "ez-httpd [flags]",
	Version: version,
	Short:   "A small HTTP/1.1 server for static files, directory listings and CGI scripts.",
	Long: `Serve a document root over HTTP/1.1.
Directories are answered with an HTML listing, files ending in .cgi are executed
and their standard output is returned, everything else is served as-is.
Only GET is supported and every connection carries exactly one request.
`,
	SilenceUsage: true,
	RunE:         run,
}

func SetFlags() {
	RootCmd.Flags().StringVarP(&configFile, "config", "c", config.DefaultFile, `Configuration file.
Files ending in .json are read as JSON, anything else as YAML.`,
	)

	RootCmd.Flags().StringVarP(&host, "host", "H", "", "Address to bind to. Overrides the config file.")
	RootCmd.Flags().Uint16VarP(&port, "port", "p", 0, "Port to bind to. Overrides the config file.")
	RootCmd.Flags().StringVarP(&root, "root", "r", "", "Document root. Overrides the config file.")

	RootCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "Deadline for reading a request (0 disables it).")
	RootCmd.Flags().DurationVar(&scriptTimeout, "script-timeout", 0, "Deadline for a CGI script run (0 disables it).")

	RootCmd.Flags().StringVar(&logDir, "log-dir", "", `Directory for dated log files.
Logs go to stderr when unset.`,
	)
	RootCmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON.")
	RootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	RootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors.")
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("root") {
		cfg.DocumentRoot = root
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = config.Duration(readTimeout)
	}
	if flags.Changed("script-timeout") {
		cfg.ScriptTimeout = config.Duration(scriptTimeout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func logOptions() []log.Option {
	var opts []log.Option
	switch {
	case verbose:
		opts = append(opts, log.WithLevel(log.DebugLevel))
	case quiet:
		opts = append(opts, log.WithLevel(log.ErrorLevel))
	}
	if jsonLogs {
		opts = append(opts, log.WithJSON())
	}
	if logDir != "" {
		opts = append(opts, log.WithLogDir(logDir), log.WithAlsoLogToStderr())
	}
	return opts
}

func run(cmd *cobra.Command, args []string) error {
	closer, err := log.Init(logOptions()...)
	if err != nil {
		return err
	}
	defer closer.Close()

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Config file %s not found, using defaults", configFile)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Errorf("Reading config failed: %v", err)
		return err
	}
	log.Debugf("Configuration: %+v", *cfg)

	s, err := newServer(cfg)
	if err != nil {
		return err
	}
	log.Infof("Serving %s on %s", s.root, cfg.Addr())

	return s.ListenAndServe(cmd.Context(), cfg.Addr())
}

// Execute runs the root command until SIGINT or SIGTERM.
func Execute() {
	SetFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
