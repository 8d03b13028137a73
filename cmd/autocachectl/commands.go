package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/autocache"
	"github.com/unkn0wn-root/autocache/router/rendezvous"
)

var errMiss = errors.New("not cached")

func getCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a cached value and when it was loaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(g)
			if err != nil {
				return err
			}
			defer s.close()

			w, ok := s.m.Get(context.Background(), args[0])
			if !ok {
				return fmt.Errorf("%s: %w", s.m.StorageKey(args[0]), errMiss)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Key:       %s\n", s.m.StorageKey(args[0]))
			fmt.Fprintf(out, "Last load: %s\n", w.LastLoad.Format(time.RFC3339Nano))
			fmt.Fprintf(out, "Value:     %s\n", w.Value)
			return nil
		},
	}
}

func setCmd(g *globals) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a string value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(g)
			if err != nil {
				return err
			}
			defer s.close()

			w := autocache.Wrap(args[1])
			if err := s.m.Set(context.Background(), args[0], w, ttl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (loaded %s)\n", s.m.StorageKey(args[0]), w.LastLoad.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Entry TTL (0 = configured default)")
	return cmd
}

func delCmd(g *globals) *cobra.Command {
	var (
		typeName string
		method   string
		argsJSON string
		subKey   string
		byPrefix bool
		expr     string
	)

	cmd := &cobra.Command{
		Use:   "del [key|pattern]",
		Short: "Delete a key, a glob pattern, or a derived method-call key",
		Long: "Delete one key, or every key matching a pattern containing '*' or '?' on every shard.\n" +
			"With --type and --method the key is derived the way the default key generator builds it;\n" +
			"with --expr it is produced by a key template over --args.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var callArgs []any
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &callArgs); err != nil {
					return fmt.Errorf("--args must be a JSON array: %w", err)
				}
			}

			derived := typeName != "" || method != "" || expr != ""
			switch {
			case len(args) == 1 && derived:
				return errors.New("give a key or derivation flags, not both")
			case len(args) == 0 && !derived:
				return errors.New("nothing to delete")
			case (typeName == "") != (method == ""):
				return errors.New("--type and --method go together")
			case expr != "" && typeName != "":
				return errors.New("--expr excludes --type/--method")
			}

			s, err := openSession(g)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := context.Background()
			var removed []string
			switch {
			case expr != "":
				removed = s.m.DeleteByDefinedKey(ctx, expr, callArgs)
			case typeName != "":
				removed = s.m.DeleteByDefaultKey(ctx, typeName, method, callArgs, subKey, byPrefix)
			default:
				removed = s.m.Delete(ctx, args[0])
			}

			out := cmd.OutOrStdout()
			for _, k := range removed {
				fmt.Fprintln(out, k)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d key(s) removed\n", len(removed))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "Type name of the cached method")
	cmd.Flags().StringVar(&method, "method", "", "Cached method name")
	cmd.Flags().StringVar(&argsJSON, "args", "", "Call arguments as a JSON array")
	cmd.Flags().StringVar(&subKey, "sub-key", "", "Sub-key template of the cached method")
	cmd.Flags().BoolVar(&byPrefix, "prefix", false, "Delete every argument variant of the call")
	cmd.Flags().StringVar(&expr, "expr", "", "Key template, e.g. 'user:{{index .Args 0}}'")
	return cmd
}

func whereCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "where <key>...",
		Short: "Show which shard owns each key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(g)
			if err != nil {
				return err
			}
			defer s.close()

			rv, ok := s.router.(*rendezvous.Router)
			if !ok {
				return fmt.Errorf("where needs the rendezvous router, not %s", s.cfg.Router)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSHARD\tADDR")
			for _, k := range args {
				sk := s.m.StorageKey(k)
				shard := rv.ShardFor(sk)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sk, shard, s.cfg.Shards[shard])
			}
			return tw.Flush()
		},
	}
}
