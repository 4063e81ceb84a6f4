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

package check

import (
	"fmt"
	"io"
	"os"
	"strings"
)

import (
	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"go.uber.org/multierr"
)

import (
	"github.com/arana-db/sharding-core/cmd/cmds"
	"github.com/arana-db/sharding-core/pkg/boot"
	"github.com/arana-db/sharding-core/pkg/config"
	"github.com/arana-db/sharding-core/pkg/constants"
	"github.com/arana-db/sharding-core/pkg/proto/rule"
	"github.com/arana-db/sharding-core/pkg/util/tableprint"
)

func init() {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "validate a sharding configuration and print its data nodes",
		Example: "sharding check -c sharding.yaml",
		RunE:    run,
	}
	cmd.PersistentFlags().StringP(constants.ConfigPathKey, "c", "", "sharding configuration file path")

	cmds.Handle(func(root *cobra.Command) {
		root.AddCommand(cmd)
	})
}

func run(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.PersistentFlags().GetString(constants.ConfigPathKey)
	if len(path) == 0 {
		var ok bool
		if path, ok = constants.FindConfigPath(); !ok {
			return errors.New("no sharding configuration found")
		}
	}
	return Run(os.Stdout, path)
}

// Run builds the sharding rule of the configuration file and prints it.
// Every configuration error is printed before returning.
func Run(w io.Writer, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	registry, err := boot.NewRegistry()
	if err != nil {
		return err
	}
	defer func() {
		_ = registry.Close()
	}()

	ru, err := boot.BuildShardingRule(cfg.Data, registry)
	if err != nil {
		errs := multierr.Errors(err)
		_, _ = fmt.Fprintf(w, "%d configuration error(s) found in %s:\n", len(errs), path)
		for _, it := range errs {
			_, _ = fmt.Fprintf(w, "  - %v\n", it)
		}
		return errors.Errorf("invalid sharding configuration %s", path)
	}

	catalog, err := boot.BuildCatalog(cfg.Data)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "database '%s' with data sources %s\n", ru.Database(), strings.Join(ru.DataSourceNames(), ","))

	rows := make([][]string, 0, len(ru.TableRules()))
	for _, tr := range ru.TableRules() {
		binding := "-"
		if bg, ok := ru.BindingGroup(tr.LogicTable()); ok {
			binding = bg.String()
		}
		nodes := make([]string, 0, len(tr.DataNodes()))
		for _, it := range tr.DataNodes() {
			nodes = append(nodes, it.String())
		}
		rows = append(rows, []string{
			tr.LogicTable(),
			"SHARDING",
			strings.Join(nodes, ","),
			describeStrategy(ru.DatabaseStrategy(tr)),
			describeStrategy(ru.TableStrategy(tr)),
			binding,
		})
	}
	for _, it := range cfg.Data.BroadcastTables {
		rows = append(rows, []string{
			strings.ToLower(it), "BROADCAST", strings.Join(ru.DataSourceNames(), ","), "-", "-", "-",
		})
	}
	for _, it := range catalog.Tables() {
		if ds, ok := catalog.FindSingleTable(it); ok {
			rows = append(rows, []string{it, "SINGLE", ds + "." + it, "-", "-", "-"})
		}
	}

	tableprint.WriteTable(w, []string{"TABLE", "TYPE", "DATA NODES", "DATABASE STRATEGY", "TABLE STRATEGY", "BINDING"}, rows)
	return nil
}

func describeStrategy(s rule.Strategy) string {
	switch st := s.(type) {
	case nil:
		return "-"
	case *rule.StandardStrategy:
		return fmt.Sprintf("%s(%s) %s", st.Kind(), st.ShardingColumn, st.Algorithm.Type())
	case *rule.ComplexStrategy:
		return fmt.Sprintf("%s(%s) %s", st.Kind(), strings.Join(st.ShardingColumns, ","), st.Algorithm.Type())
	case *rule.HintStrategy:
		return fmt.Sprintf("%s %s", st.Kind(), st.Algorithm.Type())
	default:
		return s.Kind().String()
	}
}
