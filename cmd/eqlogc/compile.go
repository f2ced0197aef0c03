// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/eqlog-go/eqlog"
	"github.com/eqlog-go/eqlog/internal/codegen"
)

// unit is one compilation unit: every .eq file directly inside a single
// directory is elaborated together into one Theory, mirroring how eqlogc's
// source trees group related sorts/predicates/functions by directory.
type unit struct {
	dir   string
	files []string
}

// processRoot walks root for .eq files, groups them into units by directory,
// compiles each unit concurrently (units are independent of one another:
// spec.md §5), and writes a generated wrapper under outDir mirroring root's
// directory structure. It returns the number of units compiled, or 0 and the
// first error encountered. A unit that fails to parse, elaborate or generate
// logs its diagnostic before returning it; units that have not started when
// the first error occurs are skipped.
func processRoot(ctx context.Context, log logrus.FieldLogger, root, outDir string, maxRounds int) (int, error) {
	units, err := discoverUnits(root)
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", root, err)
	}
	if len(units) == 0 {
		log.WithField("root", root).Warn("no .eq files found")
		return 0, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, u := range units {
		u := u
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			return compileUnit(log, u, root, outDir, maxRounds)
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return len(units), nil
}

func discoverUnits(root string) ([]unit, error) {
	byDir := map[string][]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".eq" {
			return nil
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var dirs []string
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	units := make([]unit, len(dirs))
	for i, dir := range dirs {
		files := byDir[dir]
		sort.Strings(files)
		units[i] = unit{dir: dir, files: files}
	}
	return units, nil
}

func compileUnit(log logrus.FieldLogger, u unit, root, outDir string, maxRounds int) error {
	ulog := log.WithField("dir", u.dir)

	mod := &eqlog.Module{}
	for _, path := range u.files {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fileMod, err := eqlog.Parse(path, string(src))
		if err != nil {
			ulog.WithField("file", path).Error(err)
			return err
		}
		mod.Sorts = append(mod.Sorts, fileMod.Sorts...)
		mod.Preds = append(mod.Preds, fileMod.Preds...)
		mod.Funcs = append(mod.Funcs, fileMod.Funcs...)
		mod.Axioms = append(mod.Axioms, fileMod.Axioms...)
	}

	th, err := eqlog.Elaborate(mod)
	if err != nil {
		ulog.Error(err)
		return err
	}

	pkg := packageName(u.dir)
	src, err := codegen.Generate(pkg, th)
	if err != nil {
		ulog.Error(err)
		return err
	}

	relDir, err := filepath.Rel(root, u.dir)
	if err != nil {
		return err
	}
	destDir := filepath.Join(outDir, relDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	destFile := filepath.Join(destDir, pkg+"_eqlog.go")
	if err := os.WriteFile(destFile, src, 0o644); err != nil {
		return err
	}

	ulog.WithFields(logrus.Fields{"out": destFile, "default_max_rounds": maxRounds}).Info("compiled")
	return nil
}

var nonIdent = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// packageName derives a Go package identifier from a source directory name:
// lowercased, non-identifier runs collapsed to an underscore, and prefixed
// with "theory_" if what's left wouldn't start with a letter.
func packageName(dir string) string {
	base := strings.ToLower(filepath.Base(dir))
	base = nonIdent.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	if base == "" || (base[0] >= '0' && base[0] <= '9') {
		base = "theory_" + base
	}
	return base
}
