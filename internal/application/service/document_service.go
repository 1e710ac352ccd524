package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/action"
	"github.com/openbooks/backend/internal/application/port"
	"github.com/openbooks/backend/internal/domain/document"
)

// ErrUnknownAction is returned when an action label does not exist for the
// document's schema.
var ErrUnknownAction = fmt.Errorf("unknown action")

// ActionDescriptor is the rendering-layer view of an action: its label,
// group and whether its condition currently holds.
type ActionDescriptor struct {
	Label   string `json:"label"`
	Group   string `json:"group"`
	Enabled bool   `json:"enabled"`
}

// DocumentService answers status and action queries for stored documents
// and executes actions against live document state.
type DocumentService struct {
	registry *document.Registry
	store    port.DocumentStore
	nav      port.Navigator
	logger   *zap.Logger
}

// NewDocumentService creates a document service
func NewDocumentService(registry *document.Registry, store port.DocumentStore, nav port.Navigator, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		registry: registry,
		store:    store,
		nav:      nav,
		logger:   logger,
	}
}

// Status derives the lifecycle status of the stored document
func (s *DocumentService) Status(ctx context.Context, schemaName, name string) (document.Status, error) {
	doc, err := s.store.Get(ctx, schemaName, name)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}

	return s.registry.Status(doc), nil
}

// Actions lists the document's actions with their conditions re-evaluated
// against the document's current state.
func (s *DocumentService) Actions(ctx context.Context, schemaName, name string) ([]ActionDescriptor, error) {
	doc, err := s.store.Get(ctx, schemaName, name)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	schema, _ := s.registry.Lookup(schemaName)
	actions := action.For(schema)

	descriptors := make([]ActionDescriptor, 0, len(actions))
	for _, a := range actions {
		descriptors = append(descriptors, ActionDescriptor{
			Label:   a.Label,
			Group:   a.Group,
			Enabled: a.Condition == nil || a.Condition(doc),
		})
	}

	return descriptors, nil
}

// RunAction executes the named action against the document's current
// state. A disabled action is a silent no-op, matching the behavior of a
// derivation that produces nothing.
func (s *DocumentService) RunAction(ctx context.Context, schemaName, name, label string) error {
	doc, err := s.store.Get(ctx, schemaName, name)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	schema, _ := s.registry.Lookup(schemaName)
	for _, a := range action.For(schema) {
		if a.Label != label {
			continue
		}

		if a.Condition != nil && !a.Condition(doc) {
			action.LogSkipped(s.logger, a.Label, doc)
			return nil
		}

		return a.Run(ctx, doc, action.Context{
			Store:  s.store,
			Nav:    s.nav,
			Logger: s.logger,
		})
	}

	return fmt.Errorf("%w: %s", ErrUnknownAction, label)
}
