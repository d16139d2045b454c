package analytics

import (
	"github.com/etuitionbd/server/internal/domain/payment"
	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
)

// Counts maps a grouping value (role, status) to the number of documents carrying it.
type Counts map[string]int64

func (c Counts) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}

type UserStats struct {
	Total    int64 `json:"total"`
	Students int64 `json:"students"`
	Tutors   int64 `json:"tutors"`
	Admins   int64 `json:"admins"`
}

type StatusStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type PaymentStats struct {
	Count         int64          `json:"count"`
	TotalEarnings payment.Amount `json:"totalEarnings"`
}

type Report struct {
	Users        UserStats    `json:"users"`
	Tuitions     StatusStats  `json:"tuitions"`
	Applications StatusStats  `json:"applications"`
	Payments     PaymentStats `json:"payments"`
}

func NewReport(usersByRole, tuitionsByStatus, applicationsByStatus Counts, paymentCount int64, earned payment.Amount) Report {
	return Report{
		Users: UserStats{
			Total:    usersByRole.Total(),
			Students: usersByRole[user.RoleStudent],
			Tutors:   usersByRole[user.RoleTutor],
			Admins:   usersByRole[user.RoleAdmin],
		},
		Tuitions:     statusStats(tuitionsByStatus),
		Applications: statusStats(applicationsByStatus),
		Payments: PaymentStats{
			Count:         paymentCount,
			TotalEarnings: earned,
		},
	}
}

// application and tuition statuses share their spelling
func statusStats(c Counts) StatusStats {
	return StatusStats{
		Total:    c.Total(),
		Pending:  c[tuition.StatusPending],
		Approved: c[tuition.StatusApproved],
		Rejected: c[tuition.StatusRejected],
	}
}

// Transactions is the admin ledger view.
type Transactions struct {
	Transactions []payment.Payment `json:"transactions"`
	Count        int               `json:"count"`
	Total        payment.Amount    `json:"total"`
}

func NewTransactions(payments []payment.Payment) Transactions {
	if payments == nil {
		payments = []payment.Payment{}
	}
	return Transactions{
		Transactions: payments,
		Count:        len(payments),
		Total:        payment.Sum(payments),
	}
}
