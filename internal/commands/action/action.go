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

// Package action implements the action command, which runs a resource
// action such as stopping an instance or deleting a table.
package action

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/cli/format"
	"github.com/tombee/awsdeck/internal/commands/completion"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/jq"
	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/registry"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// Response is the JSON output of 'action'.
type Response struct {
	shared.JSONResponse
	Resource string `json:"resource"`
	Action   string `json:"action"`
	ID       string `json:"id"`
	Region   string `json:"region"`

	// Result is the parsed API response, or the --query results.
	Result any `json:"result"`
}

type options struct {
	yes   bool
	query string
}

// NewCommand creates the action command.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "action <resource> <action-id> <id>",
		Short: "Run an action on a resource instance",
		Long: `Run one of a resource's actions on an instance. Actions with a
confirmation prompt ask before running; --yes skips the prompt and is
required in non-interactive sessions.

--query filters the API response with a jq expression. Actions are refused
in --readonly mode.`,
		Example: `  awsdeck action ec2-instances stop_instance i-0abc123def4567890
  awsdeck action dynamodb-tables delete_table scratch --yes
  awsdeck action ec2-instances start_instance i-0abc123 --query '.StartInstancesResponse.instancesSet'`,
		Annotations:       map[string]string{"group": "browse"},
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completion.CompleteActionIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "jq expression applied to the response")
	return cmd
}

func runAction(cmd *cobra.Command, name, actionID, id string, opts options) error {
	if shared.GetReadOnly() {
		return &pkgerrors.ValidationError{
			Field:   "readonly",
			Message: "actions are disabled in read-only mode",
			Hint:    "Run without --readonly to change resources",
		}
	}

	var query *jq.Query
	if opts.query != "" {
		q, err := compileQuery(opts.query)
		if err != nil {
			return err
		}
		query = q
	}

	ctx := cmd.Context()
	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		return err
	}

	def, ok := rt.Registry.Lookup(name)
	if !ok {
		return &pkgerrors.NotFoundError{
			Resource: "resource",
			ID:       name,
			Hint:     "Run 'awsdeck resources' to see the available resource names",
		}
	}
	action, _, ok := def.FindAction(actionID)
	if !ok {
		return &pkgerrors.NotFoundError{
			Resource: "action",
			ID:       actionID,
			Hint:     fmt.Sprintf("Run 'awsdeck resources %s' to see its actions", name),
		}
	}

	if !opts.yes {
		confirmed, err := confirm(def, action, id, rt.Region)
		if errors.Is(err, shared.ErrConfirmationRequired) {
			return shared.NewUsageError("refusing to run without confirmation", err)
		}
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderWarn("Cancelled."))
			return nil
		}
	}

	rt.Logger.Info("running action",
		log.String(log.ResourceKey, name),
		log.String(log.ActionKey, actionID),
		log.String("id", id),
		log.String(log.RegionKey, rt.Region))

	result, err := rt.Dispatcher.InvokeAction(ctx, name, actionID, id, rt.Region)
	if err != nil {
		return err
	}
	rt.Remember(func(s *config.Settings) {
		s.SetLastResource(name)
		s.SetRegion(rt.Region)
	})

	if query != nil {
		results, err := query.Run(ctx, result)
		if err != nil {
			return &pkgerrors.ValidationError{Field: "query", Message: err.Error()}
		}
		result = results
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, Response{
			JSONResponse: shared.NewJSONResponse("action"),
			Resource:     name,
			Action:       actionID,
			ID:           id,
			Region:       rt.Region,
			Result:       result,
		})
	}

	fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderOK(fmt.Sprintf("%s %s on %s", displayName(action, actionID), id, name)))
	if query != nil {
		return printResults(out, result.([]any))
	}
	return nil
}

// confirm asks before running actions that declare a confirmation.
func confirm(def *registry.ResourceDefinition, action *registry.ActionDefinition, id, region string) (bool, error) {
	if action == nil || action.Confirm == nil {
		return true, nil
	}
	title := action.Confirm.Message
	if title == "" {
		title = fmt.Sprintf("%s %s?", action.DisplayName, id)
	}
	return shared.DefaultConfirmer.Confirm(shared.ConfirmRequest{
		Title:       title,
		Description: fmt.Sprintf("%s %s in %s", def.DisplayName, id, region),
		DefaultYes:  action.Confirm.DefaultYes,
		Destructive: action.Confirm.Destructive,
	})
}

func displayName(action *registry.ActionDefinition, actionID string) string {
	if action != nil {
		return action.DisplayName
	}
	return actionID
}

func compileQuery(expression string) (*jq.Query, error) {
	q, err := jq.Compile(expression)
	if err != nil {
		return nil, &pkgerrors.ValidationError{
			Field:   "query",
			Message: err.Error(),
			Hint:    "See https://jqlang.github.io/jq/manual/ for the query syntax",
		}
	}
	return q, nil
}

// printResults writes strings bare and everything else as JSON, one
// result per line, the way jq -r does.
func printResults(w io.Writer, results []any) error {
	for _, r := range results {
		if s, ok := r.(string); ok {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
			continue
		}
		rendered, err := format.JSON(r, false)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}
