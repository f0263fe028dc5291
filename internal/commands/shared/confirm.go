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

package shared

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ConfirmRequest describes one yes/no question.
type ConfirmRequest struct {
	Title       string
	Description string
	DefaultYes  bool
	Destructive bool
}

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(req ConfirmRequest) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(req ConfirmRequest) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(req ConfirmRequest) (bool, error) {
	return f(req)
}

// ErrConfirmationRequired is returned when a prompt is needed but the
// session is non-interactive.
var ErrConfirmationRequired = errors.New("confirmation required; pass --yes in non-interactive sessions")

// DefaultConfirmer prompts on the terminal. Tests replace it.
var DefaultConfirmer Confirmer = huhConfirmer{}

type huhConfirmer struct{}

func (huhConfirmer) Confirm(req ConfirmRequest) (bool, error) {
	if IsNonInteractive() {
		return false, ErrConfirmationRequired
	}

	confirmed := req.DefaultYes
	affirmative := "Yes"
	if req.Destructive {
		affirmative = "Yes, proceed"
	}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(req.Title).
				Description(req.Description).
				Affirmative(affirmative).
				Negative("No").
				Value(&confirmed),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
