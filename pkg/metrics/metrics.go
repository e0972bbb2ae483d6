package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	CampaignsFundedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "taskquer",
			Name:      "campaigns_funded_total",
			Help:      "Campaigns moved from draft to active by a verified deposit.",
		},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskquer",
			Name:      "submissions_total",
			Help:      "Task submissions by resulting status.",
		},
		[]string{"status"},
	)

	RewardsPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "taskquer",
			Name:      "rewards_paid",
			Help:      "Sum of rewards credited to taskers.",
		},
	)

	WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskquer",
			Name:      "withdrawals_total",
			Help:      "Withdrawals by settlement status.",
		},
		[]string{"status"},
	)

	BalanceAdjustmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskquer",
			Name:      "balance_adjustments_total",
			Help:      "Admin balance overrides by action.",
		},
		[]string{"action"},
	)

	ReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskquer",
			Name:      "reconciled_withdrawals_total",
			Help:      "Stale withdrawals resolved by the reconciler.",
		},
		[]string{"outcome"},
	)
)

var once sync.Once

func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			CampaignsFundedTotal,
			SubmissionsTotal,
			RewardsPaid,
			WithdrawalsTotal,
			BalanceAdjustmentsTotal,
			ReconciledTotal,
		)
	})
}

// AddAmount adds a decimal amount to a float counter. Metrics tolerate the precision loss, balances never see it.
func AddAmount(c prometheus.Counter, amount decimal.Decimal) {
	if amount.IsPositive() {
		c.Add(amount.InexactFloat64())
	}
}
