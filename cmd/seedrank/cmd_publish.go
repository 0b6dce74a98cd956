package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/seedrank/pkg/logging"
	"github.com/rushteam/seedrank/rank"
	"github.com/rushteam/seedrank/store"
	"github.com/rushteam/seedrank/table"
)

type publishOptions struct {
	ranked  string
	redis   string
	key     string
	top     int
	replace bool
}

func newPublishCmd(g *globalOptions) *cobra.Command {
	o := &publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Push a ranked table into a sorted-set queue for the fuzzer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.ranked, "ranked", "", "Ranked CSV produced by score or rank")
	f.StringVar(&o.redis, "redis", "", "Redis address, redis://host:port/db or host:port (default from config)")
	f.StringVar(&o.key, "key", "", "Sorted set key (default from config)")
	f.IntVar(&o.top, "top", 0, "Publish only the first N rows, 0 means all")
	f.BoolVar(&o.replace, "replace", false, "Clear the key before publishing")
	_ = cmd.MarkFlagRequired("ranked")
	return cmd
}

func runPublish(cmd *cobra.Command, g *globalOptions, o *publishOptions) error {
	pub := g.cfg.Publish
	f := cmd.Flags()
	if f.Changed("redis") {
		pub.Redis = o.redis
	}
	if f.Changed("key") {
		pub.Key = o.key
	}
	if f.Changed("top") {
		pub.Top = o.top
	}
	if f.Changed("replace") {
		pub.Replace = o.replace
	}

	ranked, err := table.ReadCSV(o.ranked)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := store.Open(ctx, pub.Redis)
	if err != nil {
		return err
	}
	defer s.Close()

	p := &rank.Publisher{Store: s, Key: pub.Key, Top: pub.Top, Replace: pub.Replace, Logger: logging.New("rank")}
	n, err := p.Publish(ctx, ranked)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d candidates to %s via %s\n", n, pub.Key, s.Name())
	return nil
}
