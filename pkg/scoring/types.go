package scoring

// Multipliers carries the eight independent dimension multipliers.
type Multipliers struct {
	Follower     float64
	Channel      float64
	Holdings     float64
	Collectible  float64
	VoteBreadth  float64
	Share        float64
	Reputation   float64
	Subscription float64
}

func (m Multipliers) Product() float64 {
	return m.Follower *
		m.Channel *
		m.Holdings *
		m.Collectible *
		m.VoteBreadth *
		m.Share *
		m.Reputation *
		m.Subscription
}

// Challenge is one row of the user-facing breakdown: the raw signal, the
// multiplier it earned and what it takes to reach the next tier.
type Challenge struct {
	Name          string   `json:"name"`
	CurrentValue  float64  `json:"currentValue"`
	Multiplier    float64  `json:"multiplier"`
	NextThreshold *float64 `json:"nextThreshold,omitempty"`
	Completed     bool     `json:"completed"`
	Degraded      bool     `json:"degraded"`
}

// AirdropCalculation is the full result of one eligibility computation.
type AirdropCalculation struct {
	Fid             uint64      `json:"fid"`
	BasePoints      int64       `json:"basePoints"`
	Multipliers     Multipliers `json:"multipliers"`
	TotalMultiplier float64     `json:"totalMultiplier"`
	FinalScore      int64       `json:"finalScore"`
	Challenges      []Challenge `json:"challenges"`
}
