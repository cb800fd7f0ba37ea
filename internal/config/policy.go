package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PolicyFile is the YAML shape of a payroll policy file:
//
//	working_days: [mon, tue, wed, thu, fri]
//	holidays: ["2025-01-01", "2025-12-25"]
//	rounding_mode: half_up
//	half_day_factor: "0.5"
type PolicyFile struct {
	WorkingDays   []string `yaml:"working_days"`
	Holidays      []string `yaml:"holidays"`
	RoundingMode  string   `yaml:"rounding_mode"`
	HalfDayFactor string   `yaml:"half_day_factor"`
}

// LoadPolicy reads and validates a YAML policy file. Omitted keys keep the defaults.
func LoadPolicy(path string) (payroll.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return payroll.Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	return file.Policy()
}

// Policy converts the raw file values into a validated payroll.Policy.
func (f PolicyFile) Policy() (payroll.Policy, error) {
	policy := payroll.DefaultPolicy()

	if len(f.WorkingDays) > 0 {
		days, err := payroll.ParseWeekdays(f.WorkingDays)
		if err != nil {
			return payroll.Policy{}, err
		}
		policy.WorkingDays = days
	}

	for _, h := range f.Holidays {
		date, err := time.Parse("2006-01-02", h)
		if err != nil {
			return payroll.Policy{}, fmt.Errorf("%w: invalid holiday %q", payroll.ErrInvalidPolicy, h)
		}
		policy.Holidays = append(policy.Holidays, date)
	}

	if f.RoundingMode != "" {
		policy.RoundingMode = payroll.RoundingMode(f.RoundingMode)
	}

	if f.HalfDayFactor != "" {
		factor, err := decimal.NewFromString(f.HalfDayFactor)
		if err != nil {
			return payroll.Policy{}, fmt.Errorf("%w: invalid half_day_factor %q", payroll.ErrInvalidPolicy, f.HalfDayFactor)
		}
		policy.HalfDayFactor = factor
	}

	if err := policy.Validate(); err != nil {
		return payroll.Policy{}, err
	}
	return policy, nil
}

// Policy resolves the payroll policy: the policy file when configured, else env values.
func (c PayrollConfig) Policy() (payroll.Policy, error) {
	if c.PolicyFile != "" {
		return LoadPolicy(c.PolicyFile)
	}
	return PolicyFile{
		WorkingDays:   c.WorkingDays,
		Holidays:      c.Holidays,
		RoundingMode:  c.RoundingMode,
		HalfDayFactor: c.HalfDayFactor,
	}.Policy()
}
