package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/seedrank/dataset"
)

type featurizeOptions struct {
	candidates string
	exec       string
	out        string
	candsOut   string
	strip      bool
	labelExpr  string
	workers    int
}

func newFeaturizeCmd(g *globalOptions) *cobra.Command {
	o := &featurizeOptions{}
	cmd := &cobra.Command{
		Use:   "featurize",
		Short: "Extract features from a candidate directory and merge execution labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeaturize(cmd, g, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.candidates, "candidates", "", "Directory of candidate input files")
	f.StringVar(&o.exec, "exec", "", "Execution metadata CSV (optional)")
	f.StringVarP(&o.out, "out", "o", "", "Labeled dataset output CSV")
	f.StringVar(&o.candsOut, "cands-out", "", "Unlabeled candidate features output CSV (optional)")
	f.BoolVar(&o.strip, "strip-placeholders", false, "Drop label and crashed columns from --cands-out")
	f.StringVar(&o.labelExpr, "label-expr", "", "Labeling rule as a CEL expression over execution columns")
	f.IntVar(&o.workers, "workers", 0, "Parallel feature extraction workers")
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runFeaturize(cmd *cobra.Command, g *globalOptions, o *featurizeOptions) error {
	ds := g.cfg.Dataset
	f := cmd.Flags()
	if f.Changed("label-expr") {
		ds.LabelExpr = o.labelExpr
	}
	if f.Changed("workers") {
		ds.Workers = o.workers
	}
	if f.Changed("strip-placeholders") {
		ds.StripPlaceholders = o.strip
	}

	policy, err := dataset.PolicyFromExpr(ds.LabelExpr)
	if err != nil {
		return fmt.Errorf("--label-expr: %w", err)
	}

	var exec *dataset.ExecutionTable
	if o.exec != "" {
		if exec, err = dataset.LoadExecutionTable(o.exec); err != nil {
			return err
		}
	}

	b := dataset.NewBuilder(
		dataset.WithPolicy(policy),
		dataset.WithWorkers(ds.Workers),
		dataset.WithStripPlaceholders(ds.StripPlaceholders),
	)
	res, err := b.Build(cmd.Context(), o.candidates, exec)
	if err != nil {
		return err
	}
	if err := dataset.WriteOutputs(res, o.out, o.candsOut); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wrote %s (%d rows)\n", o.out, res.Labeled.Len())
	if o.candsOut != "" {
		fmt.Fprintf(w, "Wrote %s\n", o.candsOut)
	}
	return nil
}
