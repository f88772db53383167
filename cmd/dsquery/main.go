/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command dsquery runs queries against a data service table from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/suparena/dataservice"
	"github.com/suparena/dataservice/config"
	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/datastore/ddb"
	"github.com/suparena/dataservice/logging"
	"github.com/suparena/dataservice/storagemodels"
)

// opener connects to the configured store
type opener func(ctx context.Context, cfg config.Config, log zerolog.Logger) (datastore.Session, error)

func openDynamoDB(ctx context.Context, cfg config.Config, log zerolog.Logger) (datastore.Session, error) {
	opts, err := cfg.SessionOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = log
	return ddb.NewSession(ctx, opts)
}

type app struct {
	open       opener
	configPath string
	wheres     []string
	orders     []string
	limit      int
	offset     int
	dryRun     bool

	log        zerolog.Logger
	translator *datastore.QueryTranslator
}

func main() {
	a := &app{open: openDynamoDB}
	if err := a.rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) rootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dsquery",
		Short:         "Query entities stored by the data service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")

	queryFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringArrayVarP(&a.wheres, "where", "w", nil, `filter such as "age>=18" (repeatable)`)
		cmd.Flags().StringArrayVarP(&a.orders, "order", "o", nil, `sort such as "-createdAt" (repeatable)`)
		cmd.Flags().IntVar(&a.limit, "limit", 0, "maximum number of results, 0 for no limit")
		cmd.Flags().IntVar(&a.offset, "offset", 0, "number of leading results to skip")
	}

	countCmd := &cobra.Command{
		Use:     "count <kind>",
		Short:   "Count matching entities",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.connect,
		RunE:    a.runCount,
	}
	listCmd := &cobra.Command{
		Use:     "list <kind>",
		Short:   "Print matching entities as JSON lines",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.connect,
		RunE:    a.runList,
	}
	keysCmd := &cobra.Command{
		Use:     "keys <kind>",
		Short:   "Print the keys of matching entities",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.connect,
		RunE:    a.runKeys,
	}
	deleteCmd := &cobra.Command{
		Use:     "delete <kind>",
		Short:   "Delete matching entities",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.connect,
		RunE:    a.runDelete,
	}
	for _, cmd := range []*cobra.Command{countCmd, listCmd, keysCmd, deleteCmd} {
		queryFlags(cmd)
	}
	deleteCmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "only print the keys that would be deleted")

	maxIDCmd := &cobra.Command{
		Use:     "max-id <kind>",
		Short:   "Print the largest numeric ID of a kind (scans every key)",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.connect,
		RunE:    a.runMaxID,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := dataservice.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "dsquery version %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", info.BuildDate)
		},
	}

	root.AddCommand(countCmd, listCmd, keysCmd, deleteCmd, maxIDCmd, versionCmd)
	return root
}

// connect loads configuration and opens the session before a data command runs
func (a *app) connect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.log = logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	session, err := a.open(cmd.Context(), cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	a.translator = datastore.NewQueryTranslator(session)
	return nil
}

func (a *app) translate(kind string) (datastore.NativeQuery, error) {
	q, err := buildQuery(a.wheres, a.orders, a.limit, a.offset)
	if err != nil {
		return nil, err
	}
	return a.translator.Translate(q, kind)
}

func (a *app) runCount(cmd *cobra.Command, args []string) error {
	nq, err := a.translate(args[0])
	if err != nil {
		return err
	}
	n, err := a.translator.CountMatching(cmd.Context(), nq)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	nq, err := a.translate(args[0])
	if err != nil {
		return err
	}
	items, err := a.translator.FetchMany(cmd.Context(), nq)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, item := range items {
		var doc map[string]any
		if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
			return fmt.Errorf("failed to decode %s item: %w", args[0], err)
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) keys(cmd *cobra.Command, kind string) ([]storagemodels.Key, error) {
	nq, err := a.translate(kind)
	if err != nil {
		return nil, err
	}
	return a.translator.FetchManyKeys(cmd.Context(), nq)
}

func (a *app) runKeys(cmd *cobra.Command, args []string) error {
	keys, err := a.keys(cmd, args[0])
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}
	return nil
}

func (a *app) runDelete(cmd *cobra.Command, args []string) error {
	keys, err := a.keys(cmd, args[0])
	if err != nil {
		return err
	}
	if a.dryRun {
		for _, key := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	}
	if len(keys) > 0 {
		if err := a.translator.Session().DeleteMulti(cmd.Context(), keys); err != nil {
			return err
		}
	}
	a.log.Info().Str("kind", args[0]).Int("deleted", len(keys)).Msg("delete complete")
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", len(keys))
	return nil
}

func (a *app) runMaxID(cmd *cobra.Command, args []string) error {
	a.wheres, a.orders, a.limit, a.offset = nil, nil, 0, 0
	keys, err := a.keys(cmd, args[0])
	if err != nil {
		return err
	}
	var maxID int64
	for _, key := range keys {
		if key.IsNumeric() && key.ID > maxID {
			maxID = key.ID
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), maxID)
	return nil
}
