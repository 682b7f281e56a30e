package rules

import (
	"context"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
)

// Validator is the extension point for pluggable game rules. The
// registry consults it after turn ownership has been established; a
// real rule engine replaces the no-op base implementation.
type Validator interface {
	// ValidateAction checks an in-game action against the rules.
	// A non-nil error rejects the action.
	ValidateAction(ctx context.Context, session *model.Session, playerID model.PlayerID, action model.GameAction) error
}

// Nop accepts every action. The base system carries no card-game rules.
type Nop struct{}

// NewNop creates the no-op validator
func NewNop() *Nop {
	return &Nop{}
}

// ValidateAction accepts the action unconditionally
func (n *Nop) ValidateAction(_ context.Context, _ *model.Session, _ model.PlayerID, _ model.GameAction) error {
	return nil
}

var _ Validator = (*Nop)(nil)
