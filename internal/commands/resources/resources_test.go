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

package resources

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/awsdeck/internal/commands/commandtest"
	"github.com/tombee/awsdeck/internal/commands/shared"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

func install(t *testing.T) {
	t.Helper()
	commandtest.Install(t, &commandtest.Credentials{}, commandtest.NewTransport())
}

func TestResourcesTable(t *testing.T) {
	install(t)

	out, err := commandtest.Run(t, NewCommand(), "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "dynamodb-tables")
	assert.Contains(t, out, "start_instance, stop_instance, terminate_instance")
}

func TestResourcesJSON(t *testing.T) {
	install(t)

	out, err := commandtest.Run(t, NewCommand(), "resources", "--service", "dynamodb", "--json")
	require.NoError(t, err)

	var resp ListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Resources, 1)
	assert.Equal(t, Summary{
		Name:        "dynamodb-tables",
		DisplayName: "DynamoDB Tables",
		Service:     "dynamodb",
		Describable: true,
		Actions:     []string{"delete_table"},
	}, resp.Resources[0])
}

func TestResourcesUnknownService(t *testing.T) {
	install(t)

	_, err := commandtest.Run(t, NewCommand(), "resources", "--service", "sqs")
	var notFound *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "service", notFound.Resource)
	assert.Equal(t, shared.ExitNotFound, shared.ExitCode(err))
}

func TestShowResource(t *testing.T) {
	install(t)

	out, err := commandtest.Run(t, NewCommand(), "resources", "ec2-instances")
	require.NoError(t, err)
	assert.Contains(t, out, "# EC2 Instances")
	assert.Contains(t, out, "| `terminate_instance` | Terminate | Terminate instance? This cannot be undone. (destructive) |")
	assert.Contains(t, out, "- `tags` (tags_to_map)")
}

func TestShowResourceJSON(t *testing.T) {
	install(t)

	out, err := commandtest.Run(t, NewCommand(), "resources", "dynamodb-tables", "--json")
	require.NoError(t, err)

	var resp struct {
		Resource struct {
			Name    string `json:"name"`
			Service string `json:"service"`
		} `json:"resource"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "dynamodb-tables", resp.Resource.Name)
	assert.Equal(t, "dynamodb", resp.Resource.Service)
}

func TestShowUnknownResource(t *testing.T) {
	install(t)

	_, err := commandtest.Run(t, NewCommand(), "resources", "nope")
	var notFound *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.ID)
}
