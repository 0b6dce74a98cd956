package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/seedrank/table"
)

type rankOptions struct {
	rankerOptions
	postOptions
	input      string
	candidates string
	out        string
}

func newRankCmd(g *globalOptions) *cobra.Command {
	o := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Train on a labeled dataset, then score and sort a candidate table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.input, "input", "", "Labeled dataset CSV")
	f.StringVar(&o.candidates, "candidates", "", "Candidate feature CSV (unlabeled)")
	f.StringVarP(&o.out, "out", "o", "", "Ranked output CSV")
	o.rankerOptions.bind(cmd)
	o.postOptions.bind(cmd)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runRank(cmd *cobra.Command, g *globalOptions, o *rankOptions) error {
	tr, err := o.trainer(cmd, g)
	if err != nil {
		return err
	}
	labeled, err := table.ReadCSV(o.input)
	if err != nil {
		return err
	}
	res, err := tr.Train(cmd.Context(), labeled)
	if err != nil {
		return err
	}
	printTrainResult(cmd, tr, res)
	return scoreAndWrite(cmd, g, &o.postOptions, res.Artifact, o.candidates, o.out)
}
