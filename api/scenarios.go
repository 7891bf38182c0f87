/*
scenarios.go - Demo saves for testing and demonstrations

PURPOSE:
  Provides pre-built save blobs that drop the game into a later phase, so
  a demo or a manual test does not have to click through the early game.

AVAILABLE SCENARIOS:
  startup:  Company founded, one talent, first product on the market
  lab:      Research lab open with two researchers and spare insights
  frontier: Deep learning done, transformers in progress, hardware upgraded

HOW SCENARIOS WORK:
  1. The blob is written to the store under the game's save key
  2. The game loads it like any other save

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "lab"}

ADDING NEW SCENARIOS:
  Add an entry with its blob to 'scenarios'. The blob uses the save
  document layout (game/snapshot.go); absent sections start fresh.

NOTE:
  Loading a scenario overwrites the current save.

SEE ALSO:
  - game/snapshot.go: Save document layout
*/
package api

import (
	"net/http"
)

type scenario struct {
	ScenarioDTO
	blob string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "startup",
			Name:        "Startup",
			Description: "Company founded with one talent and a calculator on the market",
			Phase:       "company",
		},
		blob: `{
			"phase": {"gamePhase": "company"},
			"resources": {"money": 400, "insights": 3},
			"time": {"elapsedMonths": 24},
			"talent": {"count": 1, "hasHired": true},
			"products": {"hasProduct": true, "hasLaunchedFirst": true, "activeProducts": [
				{"id": "calculator", "name": "Electronic Calculator", "category": "tools", "year": 1950, "baseCost": 1, "baseIncome": 10,
				 "launched": true, "saturation": 30, "currentIncome": 10.8}
			]}
		}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "lab",
			Name:        "Research Lab",
			Description: "Lab open with two researchers and insights to spend on the first discoveries",
			Phase:       "research",
		},
		blob: `{
			"phase": {"gamePhase": "research"},
			"resources": {"money": 1500, "insights": 40},
			"time": {"elapsedMonths": 120},
			"talent": {"count": 3, "hasHired": true},
			"researchers": {"count": 2, "hasHired": true, "allocation": 0.5}
		}`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "frontier",
			Name:        "Frontier",
			Description: "Deep learning complete, transformers under way on upgraded hardware",
			Phase:       "research",
		},
		blob: `{
			"phase": {"gamePhase": "research"},
			"resources": {"money": 50000, "insights": 500},
			"time": {"elapsedMonths": 720},
			"talent": {"count": 10, "hasHired": true},
			"researchers": {"count": 25, "hasHired": true, "allocation": 0.3},
			"techTree": {
				"completedIds": ["logic_theory", "statistics", "search_algorithms", "knowledge_representation",
					"perceptron", "backpropagation", "deep_learning"],
				"unlockedIds": ["transformers"],
				"progressById": {"transformers": {"required": 8000, "applied": 2000}},
				"selectedDiscovery": "transformers"
			},
			"hardware": {"currentTierIndex": 3, "savings": 0}
		}`,
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario writes the scenario's blob and loads it.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}

	var found *scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			found = &scenarios[i]
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	if err := h.Store.Set(r.Context(), h.Game.SaveKey(), found.blob); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write scenario", err)
		return
	}
	ok, err := h.Game.LoadGame(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	h.respond(w, ok)
}
