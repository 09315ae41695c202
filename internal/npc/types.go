package npc

import "time"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Archetype is a trader's behavioral category. The set is closed; rows read
// from storage with labels outside this set parse to ArchetypeUnknown.
type Archetype string

const (
	MomentumChaser Archetype = "momentum_chaser"
	DayTrader      Archetype = "day_trader"
	Contrarian     Archetype = "contrarian"
	ValueInvestor  Archetype = "value_investor"
	PanicSeller    Archetype = "panic_seller"
	SwingTrader    Archetype = "swing_trader"
	Whale          Archetype = "whale"

	ArchetypeUnknown Archetype = "unknown"
)

// Archetypes lists every recognized archetype in a stable order.
func Archetypes() []Archetype {
	return []Archetype{
		MomentumChaser, DayTrader, Contrarian, ValueInvestor,
		PanicSeller, SwingTrader, Whale,
	}
}

// ParseArchetype normalizes a stored label. Unrecognized labels are kept
// tradeable via ArchetypeUnknown rather than rejected.
func ParseArchetype(s string) Archetype {
	a := Archetype(s)
	for _, known := range Archetypes() {
		if a == known {
			return a
		}
	}
	return ArchetypeUnknown
}

// NewsReaction describes how a trader weighs news in its decisions.
type NewsReaction string

const (
	ReactionIgnore    NewsReaction = "ignore"
	ReactionConsider  NewsReaction = "consider"
	ReactionEmotional NewsReaction = "emotional"
)

// LossCutSpeed describes how quickly a trader exits losing positions.
type LossCutSpeed string

const (
	LossCutInstant LossCutSpeed = "instant"
	LossCutSlow    LossCutSpeed = "slow"
	LossCutNever   LossCutSpeed = "never"
)

// Trader is one autonomous market participant. Capital and the trade
// counters are the persisted system of record between cycles.
type Trader struct {
	ID            string
	Name          string
	Archetype     Archetype
	RiskTolerance float64 // 0..100
	SkillLevel    int     // 1..10
	Capital       float64 // non-negative
	TotalTrades   int
	WinRate       float64 // 0..100
	Active        bool
}

// Strategy holds a trader's fixed trading parameters. Immutable for the
// duration of a cycle.
type Strategy struct {
	TraderID            string
	MaxPositionPct      float64 // ceiling on one position, percent of capital
	HoldingPeriodDays   int
	StopLossPct         float64
	TakeProfitPct       float64
	PreferredAssetTypes []string // empty = trades anything
}

// Psychology holds a trader's behavioral thresholds. Immutable for the
// duration of a cycle.
type Psychology struct {
	TraderID           string
	PanicThreshold     float64 // 0..100
	GreedThreshold     float64 // 0..100
	FomoSusceptibility float64 // 0..100
	NewsReaction       NewsReaction
	LossCutSpeed       LossCutSpeed
}

// Personality is the parameter bundle handed to the personality-evaluation
// contract. It is assembled from Trader, Strategy, and Psychology when cycle
// context is loaded, never persisted on its own.
type Personality struct {
	Archetype          Archetype
	RiskTolerance      float64
	SkillLevel         int
	MaxPositionPct     float64
	PanicThreshold     float64
	GreedThreshold     float64
	FomoSusceptibility float64
	NewsReaction       NewsReaction
	LossCutSpeed       LossCutSpeed
}

// BuildPersonality flattens a trader's stored context into the evaluation
// parameter bundle.
func BuildPersonality(t Trader, s Strategy, p Psychology) Personality {
	return Personality{
		Archetype:          t.Archetype,
		RiskTolerance:      t.RiskTolerance,
		SkillLevel:         t.SkillLevel,
		MaxPositionPct:     s.MaxPositionPct,
		PanicThreshold:     p.PanicThreshold,
		GreedThreshold:     p.GreedThreshold,
		FomoSusceptibility: p.FomoSusceptibility,
		NewsReaction:       p.NewsReaction,
		LossCutSpeed:       p.LossCutSpeed,
	}
}

// Position is a trader's holding in one asset. At most one record exists per
// (trader, asset); quantity reaching zero deletes the record.
type Position struct {
	TraderID   string
	AssetID    string
	Quantity   int     // always > 0 for a stored record
	EntryPrice float64 // volume-weighted average across buys
	EntryDate  time.Time
}

// AssetRef identifies a tradeable asset and its type, for preference filters.
type AssetRef struct {
	ID   string
	Type string
}

// ActivityEntry is one append-only audit record of a trader's action.
// Quantity and Price are zero for analysis-only entries.
type ActivityEntry struct {
	TraderID  string    `json:"trader_id"`
	Action    string    `json:"action"` // "buy" | "sell" | "analyze"
	AssetID   string    `json:"asset_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Reasoning string    `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
}

const ActionAnalyze = "analyze"
