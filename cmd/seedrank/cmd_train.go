package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/seedrank/rank"
	"github.com/rushteam/seedrank/table"
)

// rankerOptions train 与 rank 共用的训练参数，未显式指定时取配置文件
type rankerOptions struct {
	modelOut string
	trees    int
	folds    int
	seed     uint64
	kind     string
}

func (o *rankerOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.modelOut, "model-out", "", "Model artifact output path (default from config)")
	f.IntVar(&o.trees, "trees", 0, "Number of trees in the forest")
	f.IntVar(&o.folds, "folds", 0, "Stratified cross-validation folds")
	f.Uint64Var(&o.seed, "seed", 0, "Random seed")
	f.StringVar(&o.kind, "kind", "", "Model kind: forest or lr")
}

func (o *rankerOptions) trainer(cmd *cobra.Command, g *globalOptions) (*rank.Trainer, error) {
	cfg := *g.cfg
	r := &cfg.Ranker
	f := cmd.Flags()
	if f.Changed("model-out") {
		r.ModelPath = o.modelOut
	}
	if f.Changed("trees") {
		r.Trees = o.trees
	}
	if f.Changed("folds") {
		r.Folds = o.folds
	}
	if f.Changed("seed") {
		r.Seed = o.seed
	}
	if f.Changed("kind") {
		r.Kind = o.kind
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return rank.NewTrainer(
		rank.WithParams(r.Params),
		rank.WithFolds(r.Folds),
		rank.WithModelPath(r.ModelPath),
	), nil
}

type trainOptions struct {
	rankerOptions
	input string
}

func newTrainCmd(g *globalOptions) *cobra.Command {
	o := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a ranking model on a labeled dataset and report cross-validated ROC-AUC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, g, o)
		},
	}
	cmd.Flags().StringVar(&o.input, "input", "", "Labeled dataset CSV")
	o.bind(cmd)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runTrain(cmd *cobra.Command, g *globalOptions, o *trainOptions) error {
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
	return nil
}

func printTrainResult(cmd *cobra.Command, tr *rank.Trainer, res *rank.TrainResult) {
	w := cmd.OutOrStdout()
	if res.CV != nil && len(res.CV.Scores) > 0 {
		fmt.Fprintf(w, "CV ROC-AUC: %.3f ± %.3f\n", res.CV.Mean, res.CV.Std)
	} else {
		fmt.Fprintln(w, "CV ROC-AUC: skipped")
	}
	if tr.ModelPath != "" {
		fmt.Fprintf(w, "Saved model to %s\n", tr.ModelPath)
	}
}
