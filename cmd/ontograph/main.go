/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Ontograph is a command line tool to load ontology catalogs, to resolve
identifiers and to traverse the ontology graph.

Available commands:

	load <file>                          Load a YAML catalog
	resolve <gid>                        Show a tag or a term
	tag <nid>                            Show a tag by its native id
	children <node> [predicates...]      Show the children of a node
	parents <node> [predicates...]       Show the parents of a node

The traversal commands follow the subclass predicate and the given
predicates. The flag --all follows all predicates.

Every command runs against a new instance. With the memory store backend a
catalog is only available to the command which loaded it, or to every
command if it is configured as CatalogFile. Use the sqlite store backend to
keep loaded catalogs between commands.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"devt.de/krotik/common/logutil"
	"github.com/milko/ontograph/catalog"
	"github.com/milko/ontograph/config"
	"github.com/milko/ontograph/graph"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/server"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

/*
app holds the state of a command line invocation.
*/
type app struct {
	configFile string // Configuration file
}

/*
rootHelp is the long help text of the root command.
*/
const rootHelp = `Ontology resolution and graph traversal.

Every command starts a new instance from the configuration file. The memory
store backend does not keep data between commands: either set CatalogFile to
load a catalog on every start or set StoreBackend to "sqlite" to keep loaded
catalogs in LocationDatastore.`

/*
newRootCmd creates the root command with all subcommands.
*/
func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "ontograph",
		Short:         "Ontology resolution and graph traversal",
		Long:          rootHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", config.DefaultConfigFile,
		"Configuration file (created with default values if missing)")

	cmd.AddCommand(&cobra.Command{
		Use:   "load <file>",
		Short: "Load a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  a.run(loadCatalog),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <gid>",
		Short: "Show a tag or a term by its global identifier",
		Args:  cobra.ExactArgs(1),
		RunE:  a.run(resolve),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <nid>",
		Short: "Show a tag by its native identifier",
		Args:  cobra.ExactArgs(1),
		RunE:  a.run(showTag),
	})

	cmd.AddCommand(traversalCmd(a, "children", "Show the children of a node", false))
	cmd.AddCommand(traversalCmd(a, "parents", "Show the parents of a node", true))

	return cmd
}

/*
command is the implementation of a subcommand.
*/
type command func(ctx context.Context, inst *server.Instance, out io.Writer, args []string) error

/*
run wraps a subcommand. The configuration is loaded and an instance is
started before the subcommand runs.
*/
func (a *app) run(f command) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if err := config.LoadConfigFile(a.configFile); err != nil {
			return err
		}

		level := logutil.StringToLoglevel(config.Str(config.LogLevel))
		if level == "" {
			level = logutil.Info
		}

		logutil.ClearLogSinks()
		logutil.GetLogger("ontograph").AddLogSink(level, logutil.SimpleFormatter(), cmd.ErrOrStderr())

		inst, err := server.StartInstance(ctx)
		if err != nil {
			return err
		}
		defer inst.Close()

		return f(ctx, inst, cmd.OutOrStdout(), args)
	}
}

/*
loadCatalog loads a catalog file.
*/
func loadCatalog(ctx context.Context, inst *server.Instance, out io.Writer, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := catalog.Load(ctx, inst.Onto, inst.Manager, f)

	if res != nil {
		fmt.Fprintln(out, "Loaded", res)

		for _, key := range res.NodeKeys() {
			fmt.Fprintf(out, "    %v : %v\n", key, res.Nodes[key])
		}
	}

	return err
}

/*
resolve shows a tag or a term.
*/
func resolve(ctx context.Context, inst *server.Instance, out io.Writer, args []string) error {
	lang := config.Str(config.DisplayLanguage)

	tag, err := inst.Onto.TagByGlobalID(ctx, args[0], false)
	if err != nil {
		return err
	} else if tag != nil {
		tag.Localize(lang)
		fmt.Fprint(out, tag)
		return nil
	}

	term, err := inst.Onto.Term(ctx, args[0], true)
	if err != nil {
		return err
	}

	term.Localize(lang)
	fmt.Fprint(out, term)

	return nil
}

/*
showTag shows a tag by its native identifier.
*/
func showTag(ctx context.Context, inst *server.Instance, out io.Writer, args []string) error {
	nid, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("Invalid native identifier: %v", args[0])
	}

	tag, err := inst.Onto.Tag(ctx, ontology.TagID(nid), true)
	if err != nil {
		return err
	}

	tag.Localize(config.Str(config.DisplayLanguage))
	fmt.Fprint(out, tag)

	return nil
}

/*
traversalCmd creates a traversal subcommand.
*/
func traversalCmd(a *app, name string, short string, parents bool) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   name + " <node> [predicates...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().BoolVar(&all, "all", false, "Follow all predicates")

	cmd.RunE = a.run(func(ctx context.Context, inst *server.Instance, out io.Writer, args []string) error {
		node, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("Invalid node id: %v", args[0])
		}

		preds := graph.Predicates(args[1:]...)
		if all {
			preds = graph.AllPredicates()
		}

		tc, err := inst.NewTraversalCache(ctx, node)
		if err != nil {
			return err
		}

		var res map[string][]uint64

		if parents {
			res, err = tc.Parents(ctx, node, preds)
		} else {
			res, err = tc.Children(ctx, node, preds)
		}

		if err != nil {
			return err
		}

		return printNeighbours(ctx, inst, tc, out, res)
	})

	return cmd
}

/*
printNeighbours prints neighbours grouped by predicate together with the
label of the object they reference.
*/
func printNeighbours(ctx context.Context, inst *server.Instance, tc *graph.TraversalCache,
	out io.Writer, res map[string][]uint64) error {

	preds := make([]string, 0, len(res))
	for p := range res {
		preds = append(preds, p)
	}
	sort.Strings(preds)

	for _, p := range preds {
		fmt.Fprintln(out, p)

		for _, id := range res[p] {
			var label string

			node := tc.Node(id)
			if node == nil {
				continue
			}

			if term := tc.Term(node.Term()); term != nil {
				label = term.Label(tc.Language())
			} else if gid := node.Tag(); gid != "" {
				nid, _, err := inst.Onto.Identifiers().TagID(ctx, gid, true)
				if err != nil {
					return err
				}

				if tag := tc.Tag(nid); tag != nil {
					label = tag.Label(tc.Language())
				}
			}

			fmt.Fprintf(out, "    %v %v %v\n", id, node.Reference(), label)
		}
	}

	return nil
}
