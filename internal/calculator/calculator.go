// Package calculator runs the configured scenarios through the amortization
// engine and collects the results for rendering.
package calculator

import (
	"errors"
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"go.uber.org/zap"
)

// Result holds the schedule of one scenario under one repayment type.
type Result struct {
	Name       string
	Type       amortization.RepaymentType
	Parameters amortization.LoanParameters
	Months     []string // calendar month per row, nil without a start date
	Schedule   []amortization.PaymentScheduleRow
	Summary    amortization.Summary
	Repayment  *amortization.Repayment
}

// Calculate processes all active Scenarios. A scenario of type both yields
// two Results. Incomplete scenarios are skipped with a warning.
func Calculate(logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Result
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "calculator.Calculate"),
			)
			continue
		}

		params, err := scenario.LoanParameters()
		if errors.Is(err, config.ErrIncompleteScenario) {
			logger.Warn(fmt.Sprintf("skipping scenario %s because its input is incomplete", scenario.Name),
				zap.String("op", "calculator.Calculate"),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return results, err
		}

		types, err := scenario.RepaymentTypes()
		if err != nil {
			return results, err
		}

		for _, repaymentType := range types {
			result, err := calculateScenario(logger, scenario, params, repaymentType)
			if err != nil {
				return results, err
			}
			results = append(results, result)
		}
	}

	return results, nil
}

func calculateScenario(logger *zap.Logger, scenario config.Scenario, params amortization.LoanParameters,
	repaymentType amortization.RepaymentType) (Result, error) {
	schedule, err := amortization.GenerateSchedule(params, repaymentType)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	result := Result{
		Name:       scenario.Name,
		Type:       repaymentType,
		Parameters: params,
		Schedule:   schedule,
		Summary:    amortization.Summarize(schedule),
	}

	result.Months, err = datetime.MonthLabels(scenario.StartDate, len(schedule))
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: invalid start date: %w", scenario.Name, err)
	}

	logger.Debug("computed schedule",
		zap.String("op", "calculator.calculateScenario"),
		zap.String("scenario", scenario.Name),
		zap.String("type", string(repaymentType)),
		zap.Int("months", len(schedule)),
		zap.Float64("totalPayment", result.Summary.TotalPayment),
	)

	if scenario.EarlyRepayment == nil || scenario.EarlyRepayment.Amount <= 0 {
		return result, nil
	}

	effect, err := amortization.ParseRepaymentEffect(scenario.EarlyRepayment.Effect)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	repayment, err := amortization.SimulateEarlyRepayment(params, repaymentType, scenario.EarlyRepayment.Amount, effect)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	if repayment.Outcome == amortization.OutcomeNoFeasibleEffect {
		logger.Warn(fmt.Sprintf("early repayment of scenario %s cannot shorten the term", scenario.Name),
			zap.String("op", "calculator.calculateScenario"),
		)
	}
	result.Repayment = &repayment

	return result, nil
}
