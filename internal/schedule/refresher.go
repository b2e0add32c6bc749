package schedule

import (
	"time"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/pkg/utils"
)

// Refresh recomputes the pending/overdue status of every non-paid
// installment against today. Paid is terminal and never revisited. The
// sweep is total and idempotent, so it is safe to run on every load.
func Refresh(installments []*domain.Installment, today time.Time) {
	for _, inst := range installments {
		if inst.Paid() {
			continue
		}
		if utils.DateBefore(inst.DueDate, today) {
			inst.Status = domain.StatusOverdue
		} else {
			inst.Status = domain.StatusPending
		}
	}
}

// RefreshAll sweeps every installment of every financing.
func RefreshAll(financings []*domain.Financing, today time.Time) {
	for _, f := range financings {
		Refresh(f.Installments, today)
	}
}
