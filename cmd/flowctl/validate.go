package main

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errInvalidDocuments = errors.New("invalid documents")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that pipeline flow documents are well formed",
		Long: `validate loads every document into its own controller and reports
schema and reference errors. Documents are checked concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]error, len(args))
			errGrp, dCtx := errgroup.WithContext(cmd.Context())
			errGrp.SetLimit(concurrency)
			for i, path := range args {
				errGrp.Go(func() error {
					if err := dCtx.Err(); err != nil {
						return err
					}
					_, results[i] = opts.controller(path)
					return nil
				})
			}
			if err := errGrp.Wait(); err != nil {
				return errors.Wrap(err, "validation interrupted")
			}

			failed := 0
			for i, path := range args {
				if results[i] != nil {
					failed++
					fmt.Fprintf(opts.out, "FAIL %s: %v\n", path, results[i])
					continue
				}
				fmt.Fprintf(opts.out, "ok   %s\n", path)
			}
			if failed > 0 {
				return errors.Wrapf(errInvalidDocuments, "%d of %d", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", runtime.NumCPU(), "documents validated at the same time")

	return cmd
}
