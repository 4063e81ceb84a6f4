// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.
//

package explain

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

import (
	"github.com/pkg/errors"

	"github.com/spf13/cast"

	"github.com/spf13/cobra"
)

import (
	"github.com/arana-db/sharding-core/cmd/cmds"
	"github.com/arana-db/sharding-core/pkg/boot"
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/constants"
	"github.com/arana-db/sharding-core/pkg/proto/hint"
	"github.com/arana-db/sharding-core/pkg/runtime/ast"
	rcontext "github.com/arana-db/sharding-core/pkg/runtime/context"
	"github.com/arana-db/sharding-core/pkg/trace"
	"github.com/arana-db/sharding-core/pkg/util/tableprint"
)

// Options controls the generated statement.
type Options struct {
	ConfigPath string
	Type       string // select or delete
	Table      string
	Column     string
	Value      string
	Hints      []string
}

func init() {
	var opts Options
	cmd := &cobra.Command{
		Use:     "explain",
		Short:   "route and rewrite an equality query of a sharding column",
		Example: "sharding explain -c sharding.yaml --table t_order --column user_id --value 11",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.ConfigPath) == 0 {
				var ok bool
				if opts.ConfigPath, ok = constants.FindConfigPath(); !ok {
					return errors.New("no sharding configuration found")
				}
			}
			return Run(cmd.Context(), os.Stdout, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, constants.ConfigPathKey, "c", "", "sharding configuration file path")
	flags.StringVarP(&opts.Type, "type", "t", "select", "statement type, select or delete")
	flags.StringVar(&opts.Table, "table", "", "logical table")
	flags.StringVar(&opts.Column, "column", "", "column of the equality condition")
	flags.StringVar(&opts.Value, "value", "", "value of the equality condition")
	flags.StringArrayVar(&opts.Hints, "hint", nil, "hint, eg: sharding_table(t_log=1)")
	_ = cmd.MarkPersistentFlagRequired("table")
	_ = cmd.MarkPersistentFlagRequired("column")

	cmds.Handle(func(root *cobra.Command) {
		root.AddCommand(cmd)
	})
}

// Run prints the execution units of the generated statement.
func Run(ctx context.Context, w io.Writer, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	stmt, err := BuildStatement(opts.Type, opts.Table, opts.Column)
	if err != nil {
		return err
	}

	if len(opts.Hints) > 0 {
		hints := make([]*hint.Hint, 0, len(opts.Hints))
		for _, it := range opts.Hints {
			h, err := hint.Parse(it)
			if err != nil {
				return err
			}
			hints = append(hints, h)
		}
		ctx = rcontext.WithHints(ctx, hints)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Trace != nil {
		if err = trace.Initialize(ctx, cfg.Trace); err != nil {
			return err
		}
	}
	registry, err := boot.NewRegistry()
	if err != nil {
		return err
	}
	defer func() {
		_ = registry.Close()
	}()

	ns, err := boot.BuildNamespace(cfg.Data, registry)
	if err != nil {
		return err
	}
	defer func() {
		_ = ns.Close()
	}()

	ctx = rcontext.WithSchema(rcontext.WithSQL(ctx, stmt.Text()), cfg.Data.Database)
	plan, err := ns.Plan(ctx, stmt, []interface{}{parseValue(opts.Value)})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "%s\n=> %s\n", stmt.Text(), plan.Route)

	rows := make([][]string, 0, len(plan.Units))
	for _, it := range plan.Units {
		rows = append(rows, []string{it.Unit.DataSource.Actual, it.SQL, fmt.Sprint(it.Params)})
	}
	tableprint.WriteTable(w, []string{"DATA SOURCE", "SQL", "PARAMS"}, rows)
	return nil
}

// BuildStatement generates a bound statement with one equality condition of the column
// on a parameter marker, eg: SELECT * FROM t_order WHERE user_id = ?
func BuildStatement(typ, table, column string) (ast.Statement, error) {
	if len(table) == 0 || len(column) == 0 {
		return nil, errors.New("table and column are required")
	}

	var prefix string
	switch strings.ToLower(typ) {
	case "", "select":
		prefix = "SELECT * FROM "
	case "delete":
		prefix = "DELETE FROM "
	default:
		return nil, errors.Errorf("unsupported statement type '%s'", typ)
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	tableSeg := &ast.TableSegment{Span: span(sb.Len(), table), Name: table}
	sb.WriteString(table)
	sb.WriteString(" WHERE ")
	columnSeg := &ast.ColumnSegment{Span: span(sb.Len(), column), Name: column, Table: table}
	sb.WriteString(column)
	sb.WriteString(" = ")
	marker := &ast.ParamExpr{Span: span(sb.Len(), "?"), Index: 0}
	sb.WriteString("?")

	where := &ast.BinaryExpr{Op: ast.OpEq, Left: &ast.ColumnExpr{Column: columnSeg}, Right: marker}
	if prefix == "DELETE FROM " {
		return &ast.DeleteStatement{SQL: sb.String(), Targets: []*ast.TableSegment{tableSeg}, Where: where}, nil
	}
	return &ast.SelectStatement{SQL: sb.String(), From: []*ast.TableSegment{tableSeg}, Where: where}, nil
}

// parseValue keeps integers as int64, everything else as string.
func parseValue(s string) interface{} {
	if n, err := cast.ToInt64E(s); err == nil {
		return n
	}
	return s
}

func span(start int, text string) ast.Span {
	return ast.Span{Start: start, Stop: start + len(text) - 1}
}
