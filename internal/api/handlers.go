package api

import (
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/orchestrator"
)

type handler struct {
	state     *State
	reference string
	exchanges map[string]struct{}
	logger    zerolog.Logger
}

func newHandler(opts Options) *handler {
	exchanges := opts.Exchanges
	if len(exchanges) == 0 {
		exchanges = domain.Exchanges
	}
	set := make(map[string]struct{}, len(exchanges))
	for _, ex := range exchanges {
		set[ex] = struct{}{}
	}
	return &handler{
		state:     opts.State,
		reference: opts.ReferenceExchange,
		exchanges: set,
		logger:    opts.Logger.With().Str("component", "api").Logger(),
	}
}

// Handles GET /health.
func (h *handler) Health(c fiber.Ctx) error {
	res := h.state.Latest()
	if res == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"run":    nil,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"run":    res.Header(h.reference),
	})
}

// Handles GET /v1/scores?exchange=.
func (h *handler) ListScores(c fiber.Ctx) error {
	res, err := h.latest(c)
	if res == nil {
		return err
	}

	exchange := strings.ToUpper(c.Query("exchange"))
	if exchange != "" {
		if _, ok := h.exchanges[exchange]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown exchange " + exchange,
			})
		}
	}

	scores := res.SortedScores()
	if exchange != "" {
		filtered := scores[:0]
		for _, s := range scores {
			if s.Exchange == exchange {
				filtered = append(filtered, s)
			}
		}
		scores = filtered
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"run_id": res.RunID,
		"scores": scores,
	})
}

// Handles GET /v1/scores/:ticker.
func (h *handler) GetScores(c fiber.Ctx) error {
	res, err := h.latest(c)
	if res == nil {
		return err
	}

	ticker := strings.ToUpper(c.Params("ticker"))
	var scores []domain.ScoreRecord
	for _, s := range res.Scores {
		if s.Ticker == ticker {
			scores = append(scores, s)
		}
	}
	if len(scores) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no scores for ticker " + ticker,
		})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Exchange < scores[j].Exchange })

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"run_id": res.RunID,
		"ticker": ticker,
		"scores": scores,
	})
}

// Handles GET /v1/costs/:ticker.
func (h *handler) GetCost(c fiber.Ctx) error {
	res, err := h.latest(c)
	if res == nil {
		return err
	}

	ticker := strings.ToUpper(c.Params("ticker"))
	cost, ok := res.Costs[ticker]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no cost for ticker " + ticker,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"run_id":             res.RunID,
		"reference_exchange": h.reference,
		"cost":               cost,
		"unit_cost":          cost.UnitCost(),
		"detailed":           res.Detailed[ticker],
	})
}

// Handles GET /v1/arbitrage?ticker=.
func (h *handler) ListArbitrage(c fiber.Ctx) error {
	res, err := h.latest(c)
	if res == nil {
		return err
	}

	ticker := strings.ToUpper(c.Query("ticker"))
	opps := make([]domain.ArbitrageOpportunity, 0, len(res.Opportunities))
	for _, o := range res.Opportunities {
		if ticker == "" || o.Ticker == ticker {
			opps = append(opps, o)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"run_id":        res.RunID,
		"opportunities": opps,
	})
}

// Handles GET /v1/advice?ticker=.
func (h *handler) ListAdvice(c fiber.Ctx) error {
	res, err := h.latest(c)
	if res == nil {
		return err
	}

	ticker := strings.ToUpper(c.Query("ticker"))
	advice := make([]domain.ProductionAdvice, 0, len(res.Advice))
	for _, a := range res.Advice {
		if ticker == "" || a.Ticker == ticker {
			advice = append(advice, a)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"run_id": res.RunID,
		"advice": advice,
	})
}

// Handles GET /v1/bottlenecks. Balanced markets are omitted.
func (h *handler) ListBottlenecks(c fiber.Ctx) error {
	res, err := h.latest(c)
	if res == nil {
		return err
	}

	out := make([]domain.Bottleneck, 0, len(res.Bottlenecks))
	for _, b := range res.Bottlenecks {
		if b.Kind != domain.BottleneckBalanced {
			out = append(out, b)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"run_id":      res.RunID,
		"bottlenecks": out,
	})
}

// Handles POST /v1/passes.
func (h *handler) CreatePass(c fiber.Ctx) error {
	res, err := h.state.Recompute(c.Context())
	switch {
	case errors.Is(err, ErrPassInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case err != nil:
		h.logger.Error().Err(err).Msg("on-demand pass failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.logger.Info().Str("run_id", res.RunID).Msg("on-demand pass completed")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"run":      res.Header(h.reference),
		"warnings": res.Warnings,
	})
}

// latest returns the current result, or nil and the error from writing a 503.
func (h *handler) latest(c fiber.Ctx) (*orchestrator.RunResult, error) {
	res := h.state.Latest()
	if res == nil {
		return nil, c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no analysis pass has completed",
		})
	}
	return res, nil
}
