// Package action provides the context-sensitive operations a document
// exposes once submitted: creating a linked payment, creating a stock
// transfer, and jumping to the ledger entries it produced.
package action

import (
	"context"

	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/port"
	"github.com/openbooks/backend/internal/domain/document"
)

// Action groups
const (
	GroupCreate = "Create"
	GroupView   = "View"
)

// Context carries the collaborators an action needs to run
type Context struct {
	Store  port.DocumentStore
	Nav    port.Navigator
	Logger *zap.Logger
}

// Action is a stateless descriptor of a user-triggerable operation.
// Condition and Run must both be evaluated against the current document
// state at call time; caching a predicate result across a document mutation
// is a correctness bug.
type Action struct {
	Label     string
	Group     string
	Condition func(doc *document.Document) bool
	Run       func(ctx context.Context, doc *document.Document, ac Context) error
}

// Applicable filters actions down to those whose condition holds for doc
func Applicable(actions []Action, doc *document.Document) []Action {
	result := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.Condition == nil || a.Condition(doc) {
			result = append(result, a)
		}
	}
	return result
}
