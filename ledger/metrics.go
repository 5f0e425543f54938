/*
metrics.go - Derived sales metrics

PURPOSE:
  Metrics are computed by scanning the ticket and recharge collections at
  read time. There is no separately maintained aggregate, so the numbers
  are always consistent with record state by construction.

SEE ALSO:
  - types.go: Metrics / TypeMetrics
*/
package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// ComputeMetrics scans tickets and the recharge log. Revenue is the sum of
// all recharge amounts; the per-type breakdown is ordered by name.
func (s *Service) ComputeMetrics(ctx context.Context) (Metrics, error) {
	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return Metrics{}, err
	}
	recharges, err := s.store.Recharges(ctx)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		TicketsPurchased: len(tickets),
		RechargeCount:    len(recharges),
		TotalRevenue:     decimal.Zero,
	}

	byType := make(map[TicketTypeID]*TypeMetrics)
	for _, t := range tickets {
		tm, ok := byType[t.TypeID]
		if !ok {
			tm = &TypeMetrics{TypeID: t.TypeID}
			if t.Type != nil {
				tm.Name = t.Type.Name
			}
			byType[t.TypeID] = tm
		}
		tm.Purchased++
		if t.Consumed {
			tm.Consumed++
			m.TicketsConsumed++
		}
	}

	for _, tm := range byType {
		m.ByType = append(m.ByType, *tm)
	}
	sort.Slice(m.ByType, func(i, j int) bool { return m.ByType[i].Name < m.ByType[j].Name })

	for _, r := range recharges {
		m.TotalRevenue = m.TotalRevenue.Add(r.Amount)
	}

	return m, nil
}
