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

// Package resources implements the resources command, which shows what the
// registry can browse.
package resources

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/cli/format"
	"github.com/tombee/awsdeck/internal/commands/completion"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/registry"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// Summary is one resource in the JSON listing.
type Summary struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Service     string   `json:"service"`
	Global      bool     `json:"is_global"`
	Describable bool     `json:"describable"`
	Actions     []string `json:"actions,omitempty"`
}

// ListResponse is the JSON output of 'resources'.
type ListResponse struct {
	shared.JSONResponse
	Resources []Summary `json:"resources"`
}

// ShowResponse is the JSON output of 'resources <name>'.
type ShowResponse struct {
	shared.JSONResponse
	Resource *registry.ResourceDefinition `json:"resource"`
}

// NewCommand creates the resources command.
func NewCommand() *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "resources [resource]",
		Short: "List the resource types awsdeck can browse",
		Long: `List every resource type in the registry, or show one resource's
columns, fields and actions.

Resource types come from the bundled definitions plus any files found in
the definition_dirs of the settings file.`,
		Example: `  awsdeck resources
  awsdeck resources --service ec2
  awsdeck resources dynamodb-tables`,
		Annotations:       map[string]string{"group": "browse"},
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.CompleteResourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := shared.LoadSettings()
			if err != nil {
				return err
			}
			reg, err := shared.LoadRegistry(settings)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return showResource(cmd, reg, args[0])
			}
			return listResources(cmd, reg, service)
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Only show resources of this service")
	_ = cmd.RegisterFlagCompletionFunc("service", completion.CompleteServices)
	return cmd
}

func listResources(cmd *cobra.Command, reg *registry.Registry, service string) error {
	var summaries []Summary
	for def := range reg.All() {
		if service != "" && def.Service != service {
			continue
		}
		summaries = append(summaries, summarize(def))
	}
	if service != "" && len(summaries) == 0 {
		return &pkgerrors.NotFoundError{
			Resource: "service",
			ID:       service,
			Hint:     "Known services: " + strings.Join(reg.Services(), ", "),
		}
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, ListResponse{
			JSONResponse: shared.NewJSONResponse("resources"),
			Resources:    summaries,
		})
	}

	columns := []format.Column{
		{Header: "NAME"},
		{Header: "SERVICE"},
		{Header: "DISPLAY NAME"},
		{Header: "GLOBAL"},
		{Header: "ACTIONS"},
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		global := ""
		if s.Global {
			global = "yes"
		}
		rows = append(rows, []string{s.Name, s.Service, s.DisplayName, global, strings.Join(s.Actions, ", ")})
	}
	return format.Table(out, columns, rows, shared.UseColor(out))
}

func summarize(def *registry.ResourceDefinition) Summary {
	actions := make([]string, 0, len(def.ActionConfigs))
	for id := range def.ActionConfigs {
		actions = append(actions, id)
	}
	slices.Sort(actions)
	return Summary{
		Name:        def.Name,
		DisplayName: def.DisplayName,
		Service:     def.Service,
		Global:      def.IsGlobal,
		Describable: def.DescribeConfig != nil,
		Actions:     actions,
	}
}

func showResource(cmd *cobra.Command, reg *registry.Registry, name string) error {
	def, ok := reg.Lookup(name)
	if !ok {
		return &pkgerrors.NotFoundError{
			Resource: "resource",
			ID:       name,
			Hint:     "Run 'awsdeck resources' to see the available resource names",
		}
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, ShowResponse{
			JSONResponse: shared.NewJSONResponse("resources"),
			Resource:     def,
		})
	}

	rendered, err := format.Markdown(Describe(def), shared.UseColor(out))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// Describe renders def as a Markdown document.
func Describe(def *registry.ResourceDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", def.DisplayName)
	fmt.Fprintf(&b, "- **Name:** `%s`\n", def.Name)
	fmt.Fprintf(&b, "- **Service:** %s\n", def.Service)
	fmt.Fprintf(&b, "- **Protocol:** %s (`%s`)\n", def.APIConfig.Protocol, def.APIConfig.Action)
	fmt.Fprintf(&b, "- **ID field:** `%s`\n", def.IDField)
	if def.NameField != "" {
		fmt.Fprintf(&b, "- **Name field:** `%s`\n", def.NameField)
	}
	if def.IsGlobal {
		b.WriteString("- **Global:** yes\n")
	}
	if def.APIConfig.Pagination != nil {
		b.WriteString("- **Paginated:** yes\n")
	}
	if def.DescribeConfig == nil {
		b.WriteString("- **Describe:** not supported\n")
	}

	if len(def.Columns) > 0 {
		b.WriteString("\n## Columns\n\n| Header | Field | Width |\n|---|---|---|\n")
		for _, c := range def.Columns {
			fmt.Fprintf(&b, "| %s | `%s` | %d |\n", c.Header, c.JSONPath, c.Width)
		}
	}

	if names := def.FieldNames(); len(names) > 0 {
		b.WriteString("\n## Fields\n\n")
		for _, name := range names {
			m := def.FieldMappings[name]
			fmt.Fprintf(&b, "- `%s`", name)
			if m.Transform != "" {
				fmt.Fprintf(&b, " (%s)", m.Transform)
			}
			b.WriteString("\n")
		}
	}

	if len(def.ActionConfigs) > 0 {
		b.WriteString("\n## Actions\n\n| ID | Name | Confirmation |\n|---|---|---|\n")
		for _, id := range summarize(def).Actions {
			action, _, _ := def.FindAction(id)
			display, confirm := "", ""
			if action != nil {
				display = action.DisplayName
				if action.Confirm != nil {
					confirm = action.Confirm.Message
					if action.Confirm.Destructive {
						confirm += " (destructive)"
					}
				}
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", id, display, confirm)
		}
	}
	return b.String()
}
