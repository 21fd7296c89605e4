package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"mosbot.dev/web/internal/bundle"
	"mosbot.dev/web/internal/config"
)

func build(ctx context.Context, cfg config.Config, a *app, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	src := fs.String("public", cfg.PublicDir, "directory holding assets/")
	out := fs.String("out", cfg.OutDir, "output directory")
	keep := fs.Bool("keep", false, "do not empty the output directory first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := bundle.Build(ctx, bundle.Options{Source: *src, OutDir: *out, EmptyOutDir: !*keep}, a.renderIndex)
	if err != nil {
		return err
	}
	fields := []zap.Field{zap.String("out", *out), zap.Int("files", len(m.Files))}
	for chunk, files := range m.Chunks {
		fields = append(fields, zap.Int("chunk."+chunk, len(files)))
	}
	a.logger.Info("bundle written", fields...)
	return nil
}
