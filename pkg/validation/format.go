// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(outputFormat string) error {
	switch outputFormat {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatPDF:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatPDF, outputFormat)
}

// ValidateRepaymentType checks a scenario type, which may also request both
// conventions.
func ValidateRepaymentType(repaymentType string) error {
	switch repaymentType {
	case constants.RepaymentTypeAnnuity, constants.RepaymentTypeLinear, constants.RepaymentTypeBoth:
		return nil
	}
	return fmt.Errorf("expected repayment type of %s, %s or %s, got %s",
		constants.RepaymentTypeAnnuity, constants.RepaymentTypeLinear, constants.RepaymentTypeBoth, repaymentType)
}

// ValidateRepaymentEffect checks an early repayment effect.
func ValidateRepaymentEffect(effect string) error {
	if effect != constants.EffectAmount && effect != constants.EffectPeriod {
		return fmt.Errorf("expected repayment effect of %s or %s, got %s",
			constants.EffectAmount, constants.EffectPeriod, effect)
	}
	return nil
}

// ValidateCurrency checks that a currency code is supported.
func ValidateCurrency(code string) error {
	_, err := format.LookupCurrency(code)
	return err
}
