package bootstrap

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/va6996/tripplanner/agents"
	"github.com/va6996/tripplanner/config"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/plugins/amadeus"
	"github.com/va6996/tripplanner/plugins/core"
	"github.com/va6996/tripplanner/plugins/itinerary"
	"github.com/va6996/tripplanner/session"
	"github.com/va6996/tripplanner/tools"
)

// App holds the initialized components of the application
type App struct {
	Genkit   *genkit.Genkit
	Registry *tools.Registry
	// Model is nil when AI_PLUGIN=none.
	Model    ai.Model
	Amadeus  *amadeus.Client
	Sessions *session.Store
	Planner  *agents.TripPlanner
}

// Setup initializes the application components based on the configuration
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	// 1. Setup Genkit with AI Plugin
	gk, model, err := setupGenkit(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	// 2. Init Tools Registry
	registry := tools.NewRegistry()

	// Initializing Amadeus client registers flight_search and hotel_search
	amadeusClient, err := amadeus.NewClient(cfg.Amadeus, gk, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Amadeus client: %w", err)
	}

	// date_tool and itinerary_generator
	core.NewClient(gk, registry)
	itinerary.NewTool(gk, registry)

	// 3. Session state and pipeline
	store, err := session.NewStore(cfg.Session.DSN)
	if err != nil {
		return nil, err
	}

	log.Infof(ctx, "Registered %d tools", len(registry.GetTools()))
	planner := agents.NewTripPlanner(amadeusClient, amadeusClient, store, gk, registry, model)

	return &App{
		Genkit:   gk,
		Registry: registry,
		Model:    model,
		Amadeus:  amadeusClient,
		Sessions: store,
		Planner:  planner,
	}, nil
}

// Close releases the session store.
func (a *App) Close() error {
	if a.Sessions == nil {
		return nil
	}
	return a.Sessions.Close()
}

func setupGenkit(ctx context.Context, cfg config.AIConfig) (*genkit.Genkit, ai.Model, error) {
	switch cfg.Plugin {
	case "ollama":
		log.Infof(ctx, "Using Ollama Plugin (Model: %s)...", cfg.Ollama.Model)
		ollamaPlugin := &ollama.Ollama{
			ServerAddress: cfg.Ollama.BaseURL,
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))

		// Define the model with capabilities - explicitly enable tool support
		model := ollamaPlugin.DefineModel(gk, ollama.ModelDefinition{
			Name: cfg.Ollama.Model,
			Type: "chat",
		}, &ai.ModelOptions{
			Supports: &ai.ModelSupports{
				Multiturn:  true,
				SystemRole: true,
				Tools:      true,
				Media:      false,
			},
		})
		return gk, model, nil

	case "none":
		log.Infof(ctx, "No AI plugin configured, tools only")
		return genkit.Init(ctx), nil, nil

	default:
		log.Infof(ctx, "Using Gemini Plugin (Model: %s)...", cfg.Gemini.Model)
		if cfg.Gemini.APIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY must be set (or set AI_PLUGIN=ollama or none)")
		}
		gk := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: cfg.Gemini.APIKey,
		}))
		return gk, googlegenai.GoogleAIModel(gk, cfg.Gemini.Model), nil
	}
}
