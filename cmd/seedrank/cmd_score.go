package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/seedrank/config"
	"github.com/rushteam/seedrank/filter"
	"github.com/rushteam/seedrank/model"
	"github.com/rushteam/seedrank/pipeline"
	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/rank"
	"github.com/rushteam/seedrank/store"
	"github.com/rushteam/seedrank/table"
)

// postOptions 打分之后的处理：配置中的 pipeline，以及可选的已入队过滤
type postOptions struct {
	skipQueued bool
	redis      string
	key        string
}

func (o *postOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.skipQueued, "skip-queued", false, "Drop candidates already present in the publish queue")
	f.StringVar(&o.redis, "redis", "", "Queue address for --skip-queued (default from config)")
	f.StringVar(&o.key, "key", "", "Queue key for --skip-queued (default from config)")
}

// build 构建打分后的 Pipeline。返回的 closer 释放队列连接，总是非 nil。
func (o *postOptions) build(ctx context.Context, cmd *cobra.Command, g *globalOptions) (*pipeline.Pipeline, func() error, error) {
	noop := func() error { return nil }

	p, err := g.cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		return nil, noop, err
	}
	p.Logger = logging.New("pipeline")
	if !o.skipQueued {
		return p, noop, nil
	}

	pub := g.cfg.Publish
	if cmd.Flags().Changed("redis") {
		pub.Redis = o.redis
	}
	if cmd.Flags().Changed("key") {
		pub.Key = o.key
	}
	s, err := store.Open(ctx, pub.Redis)
	if err != nil {
		return nil, noop, err
	}
	p.Nodes = append(p.Nodes, &filter.FilterNode{
		Filters: []filter.Filter{filter.NewExcludeFilter(nil, s, pub.Key)},
		Logger:  logging.New("filter"),
	})
	return p, s.Close, nil
}

type scoreOptions struct {
	postOptions
	modelPath  string
	candidates string
	out        string
}

func newScoreCmd(g *globalOptions) *cobra.Command {
	o := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a candidate feature table with a saved model and sort by score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.modelPath, "model", "", "Model artifact (default from config)")
	f.StringVar(&o.candidates, "candidates", "", "Candidate feature CSV")
	f.StringVarP(&o.out, "out", "o", "", "Ranked output CSV")
	o.bind(cmd)
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runScore(cmd *cobra.Command, g *globalOptions, o *scoreOptions) error {
	path := g.cfg.Ranker.ModelPath
	if cmd.Flags().Changed("model") {
		path = o.modelPath
	}
	art, err := model.Load(path)
	if err != nil {
		return err
	}
	return scoreAndWrite(cmd, g, &o.postOptions, art, o.candidates, o.out)
}

// scoreAndWrite 读取候选表、打分并原子写出排序表
func scoreAndWrite(cmd *cobra.Command, g *globalOptions, post *postOptions, art *model.Artifact, candidatesPath, out string) error {
	ctx := cmd.Context()
	cands, err := table.ReadCSV(candidatesPath)
	if err != nil {
		return err
	}
	p, closeStore, err := post.build(ctx, cmd, g)
	if err != nil {
		return err
	}
	defer closeStore()

	ranked, err := rank.NewScorer(art, p).Score(ctx, cands)
	if err != nil {
		return err
	}
	if err := ranked.WriteCSV(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote ranked candidates to %s\n", out)
	return nil
}
