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
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestPackageName(t *testing.T) {
	cases := map[string]string{
		"lattice":      "lattice",
		"my-theory":    "my_theory",
		"/a/b/Sets 2":  "sets_2",
		"123start":     "theory_123start",
		"___":          "theory_",
	}
	for dir, want := range cases {
		require.Equal(t, want, packageName(dir))
	}
}

func TestProcessRootCompilesDirectoryOfEqFiles(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	const theory = `
Sort N;
Pred Le(N, N);
Func Meet(N, N) -> N;
Axiom x:N => Le(x, x);
`
	require.NoError(t, os.WriteFile(filepath.Join(src, "lattice.eq"), []byte(theory), 0o644))

	log := logrus.New()
	log.SetOutput(os.Stderr)

	n, err := processRoot(context.Background(), log, src, out, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	generated, err := os.ReadFile(filepath.Join(out, packageName(src)+"_eqlog.go"))
	require.NoError(t, err)
	require.Contains(t, string(generated), "func InsertLe(")
}

func TestProcessRootReportsDiagnostics(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.eq"), []byte("Pred Le(Nope);"), 0o644))

	log := logrus.New()
	log.SetOutput(os.Stderr)

	_, err := processRoot(context.Background(), log, src, out, 0)
	require.Error(t, err)
}
