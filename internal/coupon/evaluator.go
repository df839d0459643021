package coupon

import (
	"context"
	"fmt"
	"sync"

	"foodhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// evaluator implements Evaluator over a read-only rule set.
type evaluator struct {
	rules  RuleSet
	logger zerolog.Logger
}

// EvaluatorConfig holds configuration for the coupon evaluator.
type EvaluatorConfig struct {
	// FilePaths is the list of rule files to load. When empty the
	// built-in DefaultRules are used.
	FilePaths []string
}

// NewEvaluator creates a coupon evaluator.
// It loads all rule files at initialization time.
func NewEvaluator(ctx context.Context, config *EvaluatorConfig, loader Loader, logger zerolog.Logger) (Evaluator, error) {
	if config == nil {
		config = &EvaluatorConfig{}
	}

	logger = logger.With().Str("component", "coupon-evaluator").Logger()

	if len(config.FilePaths) == 0 {
		rules, err := NewRuleSet(DefaultRules())
		if err != nil {
			return nil, err
		}
		logger.Info().Int("total_coupons", rules.Size()).Msg("using built-in coupon rules")
		return &evaluator{rules: rules, logger: logger}, nil
	}

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("initialising coupon evaluator")

	// Load all rule files concurrently
	type loadResult struct {
		index int
		set   RuleSet
		err   error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, set: set, err: err}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order so duplicate errors are deterministic
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := &mapRuleSet{rules: make(map[string]Rule)}
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load coupon rules")
			return nil, fmt.Errorf("failed to load coupon rules %s: %w", config.FilePaths[i], result.err)
		}
		if err := merged.merge(result.set); err != nil {
			return nil, fmt.Errorf("coupon rules %s: %w", config.FilePaths[i], err)
		}
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("size", result.set.Size()).
			Msg("coupon rules loaded")
	}

	logger.Info().
		Int("total_coupons", merged.Size()).
		Msg("coupon evaluator initialised successfully")

	return &evaluator{rules: merged, logger: logger}, nil
}

// NewStaticEvaluator builds an evaluator over a fixed list of rules.
func NewStaticEvaluator(rules []Rule, logger zerolog.Logger) (Evaluator, error) {
	set, err := NewRuleSet(rules)
	if err != nil {
		return nil, err
	}
	return &evaluator{
		rules:  set,
		logger: logger.With().Str("component", "coupon-evaluator").Logger(),
	}, nil
}

// Lookup returns the rule registered under code.
func (e *evaluator) Lookup(code string) (Rule, error) {
	normalized := NormalizeCode(code)
	rule, ok := e.rules.Get(normalized)
	if !ok {
		e.logger.Debug().Str("coupon_code", normalized).Msg("unknown coupon code")
		return Rule{}, model.ErrInvalidCoupon
	}
	return rule, nil
}

// Evaluate prices line under code.
func (e *evaluator) Evaluate(code string, line Line) (Pricing, error) {
	qty := decimal.NewFromInt(int64(line.Quantity))
	pricing := Pricing{
		UnitPrice:           line.UnitPrice,
		DiscountedUnitPrice: line.UnitPrice,
		Subtotal:            line.UnitPrice.Mul(qty),
	}

	if NormalizeCode(code) != "" {
		rule, err := e.Lookup(code)
		if err != nil {
			return Pricing{}, err
		}
		if rule.Matches(line) {
			pricing.DiscountedUnitPrice = rule.DiscountedPrice(line.UnitPrice)
			pricing.Applied = true
		}
	}

	pricing.Total = pricing.DiscountedUnitPrice.Mul(qty)
	pricing.Discount = pricing.Subtotal.Sub(pricing.Total)
	return pricing, nil
}
