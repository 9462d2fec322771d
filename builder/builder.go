// Package builder turns a directory of reStructuredText sources into
// HTML pages, with the mcq directive and its transforms installed.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/matthewdargan/mcq"
	"github.com/matthewdargan/mcq/directive"
	"github.com/matthewdargan/mcq/html"
	"github.com/matthewdargan/mcq/internal/logging"
	"github.com/matthewdargan/mcq/nodes"
	"github.com/matthewdargan/mcq/parse"
)

// Builder runs builds for one configuration.
type Builder struct {
	cfg    Config
	logger *slog.Logger
	reg    *directive.Registry
	parser *parse.Parser
	writer *html.Writer
}

// New returns a Builder with the mcq directive registered. A nil logger
// discards all output.
func New(cfg Config, logger *slog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	reg := directive.NewRegistry()
	if err := mcq.Setup(reg); err != nil {
		return nil, fmt.Errorf("failed to register directives: %w", err)
	}
	return &Builder{
		cfg:    cfg,
		logger: logger,
		reg:    reg,
		parser: parse.New(reg, parse.WithLogger(logger)),
		writer: html.NewWriter(html.Options{
			Title:      cfg.Title,
			Stylesheet: cfg.Stylesheet,
			Language:   cfg.Language,
		}),
	}, nil
}

// Build converts every .rst file under the source directory into an
// .html file under the output directory, mirroring relative paths.
// Per-file failures are collected; the build keeps going.
func (b *Builder) Build(ctx context.Context) error {
	var errs []error
	n := 0
	err := filepath.WalkDir(b.cfg.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".rst") {
			return nil
		}
		if err := b.buildFile(path); err != nil {
			b.logger.Error("build failed", "source", path, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}
		n++
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	b.logger.Info("build finished", "files", n, "errors", len(errs))
	return errors.Join(errs...)
}

// BuildFile converts a single source file, which must live under the
// source directory.
func (b *Builder) BuildFile(path string) error {
	return b.buildFile(path)
}

func (b *Builder) buildFile(path string) error {
	rel, err := filepath.Rel(b.cfg.Source, path)
	if err != nil {
		return fmt.Errorf("source path outside source dir: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	doc, err := b.parser.ParseString(rel, string(data))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	env := directive.NewEnv(rel, b.logger)
	if err := b.reg.ApplyTransforms(doc, env); err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	out := filepath.Join(b.cfg.Output, outputName(rel))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := b.writeHTML(out, doc); err != nil {
		return err
	}
	b.logger.Debug("built", "source", rel, "output", out)
	return nil
}

// writeHTML renders doc to path using the atomic write pattern.
func (b *Builder) writeHTML(path string, doc *nodes.Document) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := b.writer.WriteDocument(f, doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to render: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename output: %w", err)
	}
	return nil
}

// outputName maps a relative source path to its output path.
func outputName(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
}
