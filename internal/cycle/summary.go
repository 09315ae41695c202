package cycle

import (
	"time"

	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// Summary aggregates one cycle's outcomes. It is built fresh per cycle and
// returned to whatever scheduler invoked the run; it is never persisted.
type Summary struct {
	TradesExecuted   int                   `json:"trades_executed"`
	BuyOrders        int                   `json:"buy_orders"`
	SellOrders       int                   `json:"sell_orders"`
	TotalVolume      int                   `json:"total_volume"`
	TotalValueTraded float64               `json:"total_value_traded"`
	ByArchetype      map[npc.Archetype]int `json:"by_archetype"`
	FailedOrders     int                   `json:"failed_orders"`
	Errors           []string              `json:"errors,omitempty"`
	Duration         time.Duration         `json:"duration"`
}

func newSummary() *Summary {
	return &Summary{ByArchetype: map[npc.Archetype]int{}}
}

// merge folds a worker's partial summary into the cycle total. Partials are
// merged after the workers finish, so no counter is ever shared mid-flight.
func (s *Summary) merge(p *Summary) {
	s.TradesExecuted += p.TradesExecuted
	s.BuyOrders += p.BuyOrders
	s.SellOrders += p.SellOrders
	s.TotalVolume += p.TotalVolume
	s.TotalValueTraded += p.TotalValueTraded
	s.FailedOrders += p.FailedOrders
	s.Errors = append(s.Errors, p.Errors...)
	for a, n := range p.ByArchetype {
		s.ByArchetype[a] += n
	}
}

func (s *Summary) recordFailure(err error) {
	s.FailedOrders++
	s.Errors = append(s.Errors, err.Error())
}
