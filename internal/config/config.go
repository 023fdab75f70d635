// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// ErrIncompleteScenario is returned when a scenario lacks the inputs needed
// to compute a schedule. Callers skip such scenarios rather than guess.
var ErrIncompleteScenario = errors.New("incomplete scenario")

// Configuration holds all configuration for loan-calculator.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format    string `yaml:"format,omitempty"`    // pretty, csv, pdf
	Currency  string `yaml:"currency,omitempty"`  // RON, EUR, GBP, USD
	Directory string `yaml:"directory,omitempty"` // where pdf reports are written
}

// Scenario holds the loan inputs of one calculation. Numeric inputs are
// pointers so that a value left out of the file is distinguishable from 0.
type Scenario struct {
	Name           string          `yaml:"name"`
	Active         bool            `yaml:"active"`
	Type           string          `yaml:"type,omitempty"` // annuity, linear, both
	Amount         *float64        `yaml:"amount,omitempty"`
	Period         *int            `yaml:"period,omitempty"` // months
	Rate           *float64        `yaml:"rate,omitempty"`   // fixed rate for advanced scenarios
	FixedMonths    *int            `yaml:"fixedMonths,omitempty"`
	VariableRate   *float64        `yaml:"variableRate,omitempty"`
	InsuranceRate  *float64        `yaml:"insuranceRate,omitempty"`
	StartDate      string          `yaml:"startDate,omitempty"`
	EarlyRepayment *EarlyRepayment `yaml:"earlyRepayment,omitempty"`
}

// EarlyRepayment is a lump sum paid at the start of the loan.
type EarlyRepayment struct {
	Amount float64 `yaml:"amount"`
	Effect string  `yaml:"effect"` // amount, period
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// Advanced reports whether the scenario has a fixed to variable rate split.
func (s Scenario) Advanced() bool {
	return s.FixedMonths != nil || s.VariableRate != nil
}

// LoanParameters converts the scenario into engine input. Missing inputs
// yield ErrIncompleteScenario; out of range inputs yield
// amortization.ErrInvalidParameters.
func (s Scenario) LoanParameters() (amortization.LoanParameters, error) {
	var missing []string
	if s.Amount == nil {
		missing = append(missing, "amount")
	}
	if s.Period == nil {
		missing = append(missing, "period")
	}
	if s.Rate == nil {
		missing = append(missing, "rate")
	}
	if s.Advanced() {
		if s.FixedMonths == nil {
			missing = append(missing, "fixedMonths")
		}
		if s.VariableRate == nil {
			missing = append(missing, "variableRate")
		}
	}
	if len(missing) > 0 {
		return amortization.LoanParameters{}, fmt.Errorf("%w: scenario %q is missing %v", ErrIncompleteScenario, s.Name, missing)
	}

	params := amortization.LoanParameters{
		Amount:        *s.Amount,
		Period:        *s.Period,
		AnnualRate:    *s.Rate,
		InsuranceRate: s.InsuranceRate,
	}
	if s.Advanced() {
		params.FixedMonths = *s.FixedMonths
		params.VariableRate = s.VariableRate
	}

	if err := params.Validate(); err != nil {
		return amortization.LoanParameters{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return params, nil
}

// RepaymentTypes lists the conventions requested by the scenario; annuity
// when none is set.
func (s Scenario) RepaymentTypes() ([]amortization.RepaymentType, error) {
	switch s.Type {
	case "":
		return []amortization.RepaymentType{amortization.Annuity}, nil
	case constants.RepaymentTypeBoth:
		return []amortization.RepaymentType{amortization.Annuity, amortization.Linear}, nil
	default:
		t, err := amortization.ParseRepaymentType(s.Type)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		return []amortization.RepaymentType{t}, nil
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Output.Currency != "" {
		if err := validation.ValidateCurrency(c.Output.Currency); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	active := 0
	for _, scenario := range c.Scenarios {
		if !scenario.Active {
			continue
		}
		active++
		warnings = append(warnings, scenario.warnings()...)
	}

	if active == 0 {
		warnings = append(warnings, "no active scenarios configured")
	}

	return warnings
}

func (s Scenario) warnings() []string {
	var warnings []string

	params, err := s.LoanParameters()
	if err != nil {
		warnings = append(warnings, err.Error())
	}

	if s.Type != "" {
		if err := validation.ValidateRepaymentType(s.Type); err != nil {
			warnings = append(warnings, fmt.Sprintf("scenario %q: %v", s.Name, err))
		}
	}

	if s.StartDate != "" {
		if err := datetime.ValidateMonth(s.StartDate); err != nil {
			warnings = append(warnings, fmt.Sprintf("scenario %q: start date %q is not in %s format",
				s.Name, s.StartDate, constants.DateTimeLayout))
		}
	}

	if s.EarlyRepayment != nil {
		if err := validation.ValidateRepaymentEffect(s.EarlyRepayment.Effect); err != nil {
			warnings = append(warnings, fmt.Sprintf("scenario %q: %v", s.Name, err))
		}
		if s.EarlyRepayment.Amount <= 0 {
			warnings = append(warnings, fmt.Sprintf("scenario %q: early repayment amount %.2f has no effect",
				s.Name, s.EarlyRepayment.Amount))
		} else if err == nil && s.EarlyRepayment.Amount >= params.Amount {
			warnings = append(warnings, fmt.Sprintf("scenario %q: early repayment %.2f pays off the whole loan of %.2f",
				s.Name, s.EarlyRepayment.Amount, params.Amount))
		}
	}

	return warnings
}
