package enums

import "fmt"

type PlanType string

const (
	PlanTypeFixed  PlanType = "fixed"
	PlanTypeCustom PlanType = "custom"
)

func (p PlanType) IsValid() bool {
	return p == PlanTypeFixed || p == PlanTypeCustom
}

func ParsePlanType(value string) (PlanType, error) {
	if p := PlanType(value); p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
	BillingCycleCustom  BillingCycle = "custom"
)

func (b BillingCycle) IsValid() bool {
	switch b {
	case BillingCycleMonthly, BillingCycleYearly, BillingCycleCustom:
		return true
	}
	return false
}

func ParseBillingCycle(value string) (BillingCycle, error) {
	if b := BillingCycle(value); b.IsValid() {
		return b, nil
	}
	return "", fmt.Errorf("invalid billing cycle %q", value)
}
