package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/adl/internal/codeblock"
	"github.com/harrison/adl/internal/config"
	"github.com/harrison/adl/internal/formatter"
	"github.com/harrison/adl/internal/logger"
	"github.com/harrison/adl/internal/resolver"
	"github.com/harrison/adl/internal/store"
)

// env is the configuration and resources shared by one command run
type env struct {
	cfg        *config.Config
	projectDir string
	log        *multiLogger
	fileLog    *logger.FileLogger
}

// loadEnv loads the config named by --config, or .adl/config.yaml of the
// project, applies the persistent flags and validates the result. Console
// logging goes to stderr so stdout stays free for command output.
func loadEnv(cmd *cobra.Command, flags config.Flags) (*env, error) {
	projectDir, err := config.FindProjectDir(".")
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(projectDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		flags.LogLevel = &level
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level := "debug"
		flags.LogLevel = &level
	}
	if cmd.Flags().Changed("store-path") {
		path, _ := cmd.Flags().GetString("store-path")
		flags.StorePath = &path
	}
	cfg.MergeWithFlags(flags)

	cfg.LogDir = config.ResolvePath(projectDir, cfg.LogDir)
	cfg.StorePath = config.ResolvePath(projectDir, cfg.StorePath)
	cfg.UseCaseDir = config.ResolvePath(projectDir, cfg.UseCaseDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &env{
		cfg:        cfg,
		projectDir: projectDir,
		log: &multiLogger{
			loggers: []runLogger{logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)},
		},
	}, nil
}

// withFileLog adds a run log under the configured log directory
func (e *env) withFileLog() error {
	fileLog, err := logger.NewFileLoggerWithDirAndLevel(e.cfg.LogDir, e.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	e.fileLog = fileLog
	e.log.loggers = append(e.log.loggers, fileLog)
	return nil
}

// Close releases the run log
func (e *env) Close() error {
	if e.fileLog != nil {
		return e.fileLog.Close()
	}
	return nil
}

// openStore opens the configured document store, creating it if needed
func (e *env) openStore() (*store.Store, error) {
	s, err := store.NewStore(e.cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", e.cfg.StorePath, err)
	}
	return s, nil
}

// existingStore opens the store only when its file is already there
func (e *env) existingStore() (*store.Store, error) {
	if _, err := os.Stat(e.cfg.StorePath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access store: %w", err)
	}
	return e.openStore()
}

// references builds the source consulted for missing use cases: explicit
// --resolve directories first, then use_case_dir, then the store
func (e *env) references(dirs []string, s *store.Store) resolver.Source {
	var chain resolver.Chain
	for _, dir := range dirs {
		chain = append(chain, resolver.DirSource{Path: dir})
	}
	if e.cfg.UseCaseDir != "" {
		chain = append(chain, resolver.DirSource{Path: e.cfg.UseCaseDir})
	}
	if s != nil {
		chain = append(chain, resolver.StoreSource{Finder: s})
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

// processor returns the code block processor when code blocks are enabled
func (e *env) processor() formatter.CodeBlockProcessor {
	if !e.cfg.Render.CodeBlocks {
		return nil
	}
	return codeblock.NewProcessor(e.log, codeblock.DefaultRunners()...)
}
