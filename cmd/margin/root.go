package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/config"
	"github.com/japaniel/margin/pkg/corpus"
	"github.com/japaniel/margin/pkg/store"
	"github.com/japaniel/margin/pkg/vocab"

	_ "github.com/mattn/go-sqlite3"
)

// commandContext lazily resolves config and the database so that
// commands which need neither (help, config init) stay cheap.
type commandContext struct {
	configFlag string
	dbFlag     string

	cfg *config.Config
	db  *sql.DB
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configFlag)
	if err != nil {
		return cfg, err
	}
	if c.dbFlag != "" {
		cfg.DBPath = c.dbFlag
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) openDB() (*sql.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	if err := store.InitDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	c.db = db
	return db, nil
}

// loadEngine reads the persisted corpus and stat map and derives the
// frequency analysis every engine command starts from.
func (c *commandContext) loadEngine() (corpus.Corpus, map[string]vocab.VocabularyStat, *vocab.Analysis, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, nil, nil, err
	}
	crp, err := store.LoadCorpus(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load corpus: %w", err)
	}
	stats, err := store.LoadStats(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load stats: %w", err)
	}
	return crp, stats, vocab.Analyze(crp), nil
}

func (c *commandContext) close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "margin",
		Short:         "Vocabulary acquisition tracker for your reading corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "margin.toml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.dbFlag, "db", "", "Override the database path")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newLexiconCommand(ctx))
	rootCmd.AddCommand(newReadCommand(ctx))
	rootCmd.AddCommand(newLookupCommand(ctx))
	rootCmd.AddCommand(newStudyCommand(ctx))
	rootCmd.AddCommand(newLandscapeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
