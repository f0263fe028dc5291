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

package session

import (
	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/cli/format"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/credentials"
)

// WhoamiResponse is the JSON output of 'whoami'.
type WhoamiResponse struct {
	shared.JSONResponse
	Identity *credentials.Identity `json:"identity"`
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the identity behind the current credentials",
		Long:        `Call STS GetCallerIdentity with the resolved profile and print the account, ARN and user id.`,
		Annotations: map[string]string{"group": "session"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			id, err := rt.Credentials.Verify(ctx)
			if err != nil {
				return err
			}
			id.Profile = rt.Profile
			id.Region = rt.Region

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, WhoamiResponse{
					JSONResponse: shared.NewJSONResponse("whoami"),
					Identity:     id,
				})
			}
			return format.KeyValues(out,
				[]string{"Account", "ARN", "UserID", "Profile", "Region"},
				map[string]string{
					"Account": id.Account,
					"ARN":     id.ARN,
					"UserID":  id.UserID,
					"Profile": id.Profile,
					"Region":  id.Region,
				}, shared.UseColor(out))
		},
	}
}
