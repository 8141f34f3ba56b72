// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	cmd "hastepack.dev/x/packager/cmd/hpk/cmd"
	"hastepack.dev/x/packager/pkg/packager"
	"hastepack.dev/x/packager/pkg/packagerconfig"
	"hastepack.dev/x/packager/pkg/utils"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

type format string

const (
	markdown format = "md"
	rst      format = "rst"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelFn()

	if err := docsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func docsCmd() *cobra.Command {
	var f string

	c := &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate the hpk CLI reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			switch format(f) {
			case markdown, rst:
			default:
				return fmt.Errorf("--format must be %q or %q", markdown, rst)
			}
			c.SilenceUsage = true

			if err := genDocs(c.Context(), args[0], format(f)); err != nil {
				return err
			}
			c.Printf("reference generated in %s\n", args[0])
			return nil
		},
	}

	c.Flags().StringVar(&f, "format", "", "(required) md or rst")
	_ = c.MarkFlagRequired("format")
	return c
}

func genDocs(ctx context.Context, dir string, f format) error {
	// keep generation away from the user's cache
	home, deleteFn, err := utils.MkdirTemp("", "")
	if err != nil {
		return err
	}
	defer func() { _ = deleteFn() }()
	if err := os.Setenv(packagerconfig.HomeEnvVar, home); err != nil {
		return err
	}

	root, err := cmd.RootCmd(ctx, &packager.Packager{OsArgs: []string{cmd.HpkName}})
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true

	if err := utils.EnsureDirs(dir); err != nil {
		return err
	}

	if f == rst {
		if err := doc.GenReSTTreeCustom(root, dir, rstHeader, rstLink); err != nil {
			return err
		}
		return writeTOC(dir)
	}
	return doc.GenMarkdownTreeCustom(root, dir, frontMatter, func(s string) string { return s })
}

func title(filename string) string {
	key := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.Split(key, "_")
	return strings.Join(lo.Map(words, func(w string, _ int) string {
		if w == "" {
			return w
		}
		return strings.ToUpper(w[:1]) + w[1:]
	}), " ")
}

func frontMatter(filename string) string {
	return fmt.Sprintf("---\nlayout: default\ntitle: %s\nparent: CLI reference\n---\n\n", title(filename))
}

func rstHeader(filename string) string {
	t := title(filename)
	return fmt.Sprintf("%s\n%s\n\n", t, strings.Repeat("=", len(t)))
}

func rstLink(name, ref string) string {
	return fmt.Sprintf(":ref:`%s <%s>`", name, ref)
}

func writeTOC(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	pages := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return "   " + strings.TrimSuffix(e.Name(), ".rst") + "\n",
			filepath.Ext(e.Name()) == ".rst" && e.Name() != "index.rst"
	})

	toc := ".. toctree::\n   :maxdepth: 2\n   :caption: CLI Reference:\n\n" + strings.Join(pages, "")
	return os.WriteFile(filepath.Join(dir, "index.rst"), []byte(toc), 0o644)
}
