// Copyright 2025 Tom Barlow
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

// Package browse implements the list and describe commands.
package browse

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/cli/format"
	"github.com/tombee/awsdeck/internal/commands/completion"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/dispatch"
	"github.com/tombee/awsdeck/internal/registry"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// ListResponse is the JSON output of 'list'.
type ListResponse struct {
	shared.JSONResponse
	Resource string `json:"resource"`
	Region   string `json:"region"`
	Count    int    `json:"count"`
	Pages    int    `json:"pages"`

	// Truncated is set when --max-pages stopped the listing early.
	Truncated bool              `json:"truncated"`
	Records   []dispatch.Record `json:"records"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		maxPages int
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List instances of a resource",
		Long: `List every instance of a resource in the selected region, following
pagination tokens until the last page or --max-pages.

The table shows the resource's configured columns. --json emits every
mapped field; add --raw to include the unmapped API item.`,
		Example: `  awsdeck list ec2-instances
  awsdeck list s3-buckets --json
  awsdeck list log-groups --region eu-west-1 --max-pages 2`,
		Annotations:       map[string]string{"group": "browse"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteResourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxPages < 0 {
				return &pkgerrors.ValidationError{Field: "max-pages", Message: "must not be negative"}
			}
			return runList(cmd, args[0], maxPages, raw)
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Stop after this many pages (0 fetches all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Include the unmapped API item in JSON output")
	return cmd
}

func runList(cmd *cobra.Command, name string, maxPages int, raw bool) error {
	ctx := cmd.Context()
	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		return err
	}

	pager := rt.Dispatcher.List(ctx, name, rt.Region)
	var records []dispatch.Record
	for page, err := range pager.Pages(ctx) {
		if err != nil {
			return err
		}
		records = append(records, page...)
		if maxPages > 0 && pager.Page() >= maxPages {
			break
		}
	}
	truncated := !pager.Done()

	rt.Remember(func(s *config.Settings) {
		s.SetLastResource(name)
		s.SetRegion(rt.Region)
	})

	if !raw {
		for i := range records {
			records[i].Raw = nil
		}
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if records == nil {
			records = []dispatch.Record{}
		}
		return shared.EmitJSON(out, ListResponse{
			JSONResponse: shared.NewJSONResponse("list"),
			Resource:     name,
			Region:       rt.Region,
			Count:        len(records),
			Pages:        pager.Page(),
			Truncated:    truncated,
			Records:      records,
		})
	}

	def, _ := rt.Registry.Lookup(name)
	if err := RenderTable(out, def, records, shared.UseColor(out)); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	summary := fmt.Sprintf("%d %s in %s", len(records), plural(len(records), "record", "records"), rt.Region)
	if truncated {
		summary += fmt.Sprintf("; stopped after %d pages, raise --max-pages for more", pager.Page())
	}
	fmt.Fprintln(errOut, shared.RenderLabel(summary))
	return nil
}

// RenderTable writes records using def's columns. Definitions without
// columns show the id and name.
func RenderTable(w io.Writer, def *registry.ResourceDefinition, records []dispatch.Record, color bool) error {
	if len(def.Columns) == 0 {
		columns := []format.Column{{Header: "ID"}, {Header: "NAME"}}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.ID, r.Name})
		}
		return format.Table(w, columns, rows, color)
	}

	columns := make([]format.Column, 0, len(def.Columns))
	for _, c := range def.Columns {
		col := format.Column{Header: c.Header, Width: c.Width}
		if c.ColorMap != "" {
			colorMap := c.ColorMap
			col.Style = func(v string) string { return shared.ColorFor(colorMap, v) }
		}
		columns = append(columns, col)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, 0, len(def.Columns))
		for _, c := range def.Columns {
			row = append(row, r.Fields[c.JSONPath])
		}
		rows = append(rows, row)
	}
	return format.Table(w, columns, rows, color)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
