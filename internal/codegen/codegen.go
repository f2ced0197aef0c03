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

// Package codegen emits the small typed wrapper described in spec.md §6.4:
// for a compiled Theory, a file of `New<Sort>`/`Insert<Pred>`/`Define<Func>`/
// `<func>(...)`/`Equate<Sort>`/`AreEqual<Sort>`/`Iter<Sort|Pred|Func>`
// functions that take a generic *eqlog.Model as their first argument and
// delegate to it. The engine itself stays theory-agnostic (spec.md §2); this
// package only saves a caller from hand-writing the argument plumbing.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"github.com/eqlog-go/eqlog"
)

// Generate renders the wrapper source for th into a Go file in package pkg.
// The wrapper takes a *eqlog.Model as its first argument on every call, so
// it never needs th itself embedded in the generated code — th is only
// consulted here, at generation time, for symbol and sort names.
func Generate(pkg string, th *eqlog.Theory) ([]byte, error) {
	data := buildTemplateData(pkg, th)

	var buf bytes.Buffer
	if err := wrapperTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: gofmt: %w\n%s", err, buf.String())
	}
	return out, nil
}

type templateData struct {
	Package string
	Sorts   []string
	Preds   []predData
	Funcs   []funcData
}

type predData struct {
	Name     string
	ArgNames []string
	Domain   []string
}

type funcData struct {
	Name     string
	ArgNames []string
	Domain   []string
	Codomain string
}

func buildTemplateData(pkg string, th *eqlog.Theory) templateData {
	data := templateData{Package: pkg}

	sorts := append([]string{}, th.Sorts...)
	sort.Strings(sorts)
	data.Sorts = sorts

	var predNames, funcNames []string
	for name, sym := range th.Symbols {
		if sym.Kind == eqlog.SymPred {
			predNames = append(predNames, name)
		} else {
			funcNames = append(funcNames, name)
		}
	}
	sort.Strings(predNames)
	sort.Strings(funcNames)

	for _, name := range predNames {
		sym := th.Symbols[name]
		data.Preds = append(data.Preds, predData{
			Name:     name,
			ArgNames: argNames(sym.Domain),
			Domain:   sym.Domain,
		})
	}
	for _, name := range funcNames {
		sym := th.Symbols[name]
		data.Funcs = append(data.Funcs, funcData{
			Name:     name,
			ArgNames: argNames(sym.Domain),
			Domain:   sym.Domain,
			Codomain: sym.Codomain,
		})
	}
	return data
}

// argNames picks a1, a2, ... for a symbol's domain columns: distinct from
// the sort names themselves, and stable regardless of how many columns
// share a sort.
func argNames(domain []string) []string {
	names := make([]string, len(domain))
	for i := range domain {
		names[i] = fmt.Sprintf("a%d", i+1)
	}
	return names
}

var wrapperTemplate = template.Must(template.New("wrapper").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`// Code generated by eqlogc from a .eq source file. DO NOT EDIT.

package {{.Package}}

import "github.com/eqlog-go/eqlog"

{{range .Sorts}}
// New{{.}} mints a fresh {{.}} element.
func New{{.}}(m *eqlog.Model) (eqlog.Element, error) {
	return m.NewElement("{{.}}")
}

// Iter{{.}} enumerates the canonical elements of sort {{.}}.
func Iter{{.}}(m *eqlog.Model) ([]eqlog.Element, error) {
	return m.IterSort("{{.}}")
}

// Equate{{.}} merges the equivalence classes of two {{.}} elements.
func Equate{{.}}(m *eqlog.Model, a, b eqlog.Element) error {
	return m.Equate(a, b)
}

// AreEqual{{.}} reports whether a and b have the same canonical root.
func AreEqual{{.}}(m *eqlog.Model, a, b eqlog.Element) bool {
	return m.AreEqual(a, b)
}
{{end}}
{{range .Preds}}
// Insert{{.Name}} asserts the row {{.Name}}({{join .ArgNames ", "}}).
func Insert{{.Name}}(m *eqlog.Model{{range $i, $a := .ArgNames}}, {{$a}} eqlog.Element{{end}}) error {
	return m.Insert("{{.Name}}"{{range .ArgNames}}, {{.}}{{end}})
}

// Iter{{.Name}} enumerates the canonical rows of predicate {{.Name}}.
func Iter{{.Name}}(m *eqlog.Model) ([][]eqlog.Element, error) {
	return m.IterRel("{{.Name}}")
}
{{end}}
{{range .Funcs}}
// Define{{.Name}} asserts that {{.Name}}({{join .ArgNames ", "}}) equals
// result, unioning with any pre-existing result for the same arguments.
func Define{{.Name}}(m *eqlog.Model, result eqlog.Element{{range $i, $a := .ArgNames}}, {{$a}} eqlog.Element{{end}}) error {
	return m.Define("{{.Name}}", result{{range .ArgNames}}, {{.}}{{end}})
}

// {{.Name}} looks up the canonical result of {{.Name}}({{join .ArgNames ", "}}),
// if any row is on file.
func {{.Name}}(m *eqlog.Model{{range $i, $a := .ArgNames}}, {{$a}} eqlog.Element{{end}}) (eqlog.Element, bool, error) {
	return m.Lookup("{{.Name}}"{{range .ArgNames}}, {{.}}{{end}})
}

// Iter{{.Name}} enumerates the canonical rows of function {{.Name}}.
func Iter{{.Name}}(m *eqlog.Model) ([][]eqlog.Element, error) {
	return m.IterRel("{{.Name}}")
}
{{end}}
`))
