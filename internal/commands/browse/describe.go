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

package browse

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/cli/format"
	"github.com/tombee/awsdeck/internal/commands/completion"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/dispatch"
)

// DescribeResponse is the JSON output of 'describe'.
type DescribeResponse struct {
	shared.JSONResponse
	Resource string           `json:"resource"`
	Region   string           `json:"region"`
	Record   *dispatch.Record `json:"record"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "describe <resource> <id>",
		Short: "Show one resource instance",
		Long: `Fetch one resource instance through the resource's describe call and
show every mapped field. --raw prints the unmapped API item instead.`,
		Example: `  awsdeck describe ec2-instances i-0abc123def4567890
  awsdeck describe dynamodb-tables orders --raw`,
		Annotations:       map[string]string{"group": "browse"},
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.CompleteResourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args[0], args[1], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Show the unmapped API item")
	return cmd
}

func runDescribe(cmd *cobra.Command, name, id string, raw bool) error {
	ctx := cmd.Context()
	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		return err
	}

	record, err := rt.Dispatcher.Describe(ctx, name, id, rt.Region)
	if err != nil {
		return err
	}
	rt.Remember(func(s *config.Settings) {
		s.SetLastResource(name)
		s.SetRegion(rt.Region)
	})

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if !raw {
			record.Raw = nil
		}
		return shared.EmitJSON(out, DescribeResponse{
			JSONResponse: shared.NewJSONResponse("describe"),
			Resource:     name,
			Region:       rt.Region,
			Record:       record,
		})
	}

	color := shared.UseColor(out)
	if raw {
		rendered, err := format.JSON(record.Raw, color)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	}

	def, _ := rt.Registry.Lookup(name)
	keys := def.FieldNames()
	values := make(map[string]string, len(record.Fields)+2)
	for k, v := range record.Fields {
		values[k] = v
	}
	// id and name lead unless they are mapped fields already
	var lead []string
	if !slices.Contains(keys, "id") {
		lead = append(lead, "id")
		values["id"] = record.ID
	}
	if record.Name != "" && !slices.Contains(keys, "name") {
		lead = append(lead, "name")
		values["name"] = record.Name
	}
	return format.KeyValues(out, append(lead, keys...), values, color)
}
