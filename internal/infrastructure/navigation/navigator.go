// Package navigation adapts the host shell's navigation surface. The
// server build has no UI attached, so targets are logged for the shell to
// consume; fakes replace this in tests.
package navigation

import (
	"context"

	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/port"
)

// LogNavigator records navigation targets through the logger
type LogNavigator struct {
	logger *zap.Logger
}

// NewLogNavigator creates a navigator that logs every target
func NewLogNavigator(logger *zap.Logger) *LogNavigator {
	return &LogNavigator{logger: logger}
}

// RouteTo navigates to a literal path
func (n *LogNavigator) RouteTo(ctx context.Context, path string) error {
	n.logger.Info("Navigate", zap.String("path", path))
	return nil
}

// Route navigates to a named route with parameters
func (n *LogNavigator) Route(ctx context.Context, name string, params map[string]string) error {
	n.logger.Info("Navigate",
		zap.String("route", name),
		zap.Any("params", params))
	return nil
}

// QuickEdit opens the quick-edit surface for an armed payment
func (n *LogNavigator) QuickEdit(ctx context.Context, req port.QuickEditRequest) error {
	doc := req.Payment.Doc()
	if doc == nil {
		return nil
	}

	n.logger.Info("Quick edit",
		zap.String("schema", doc.SchemaName),
		zap.String("name", doc.Name),
		zap.Strings("hide_fields", req.HideFields))
	return nil
}
