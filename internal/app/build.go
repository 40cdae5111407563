// Package app assembles the service from its parts: configuration in,
// a ready-to-serve HTTP handler and its supporting components out.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ent0n29/planpilot/internal/agent"
	"github.com/ent0n29/planpilot/internal/config"
	"github.com/ent0n29/planpilot/internal/httpapi"
	"github.com/ent0n29/planpilot/internal/llm"
	"github.com/ent0n29/planpilot/internal/observability"
	"github.com/ent0n29/planpilot/internal/planner"
	"github.com/ent0n29/planpilot/internal/projects"
	"github.com/ent0n29/planpilot/internal/session"
)

// Components holds everything Build wires together. Handler is the full API
// surface; the rest is exposed for lifecycle management and tests.
type Components struct {
	Config   config.Config
	Metrics  *observability.Metrics
	Sessions *session.Manager
	Store    projects.Store
	Client   llm.Client
	Agent    *agent.Agent
	Pipeline *planner.Pipeline
	Handler  http.Handler
}

// Build constructs all components. The returned cleanup releases resources
// (currently the project store) and is safe to defer immediately.
func Build(ctx context.Context, cfg config.Config) (*Components, func(), error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := projects.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("project store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Printf("closing project store: %v", err)
		}
	}

	client, err := llm.NewClient(llm.Config{
		Mode:    cfg.LLMProvider,
		APIKey:  cfg.AnthropicAPIKey,
		BaseURL: cfg.AnthropicBaseURL,
		Model:   cfg.AnthropicModel,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("model gateway: %w", err)
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout, cfg.SessionHistoryWindow)
	sessions.SetExpireHook(func(s *session.Session) {
		metrics.ObserveSessionEvent("expired")
		metrics.SetActiveSessions(sessions.ActiveCount())
		log.Printf("session %s expired after inactivity (%d turns)", s.ID, len(s.Turns))
	})
	sessions.SetEvictHook(metrics.ObserveHistoryEviction)

	chatAgent := agent.New(client, sessions, metrics)
	pipeline := planner.New(client, metrics)
	api := httpapi.New(cfg, sessions, chatAgent, pipeline, store, metrics)

	return &Components{
		Config:   cfg,
		Metrics:  metrics,
		Sessions: sessions,
		Store:    store,
		Client:   client,
		Agent:    chatAgent,
		Pipeline: pipeline,
		Handler:  api.Router(),
	}, cleanup, nil
}
