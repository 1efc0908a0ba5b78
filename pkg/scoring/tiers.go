package scoring

// TierStep maps a raw signal threshold to the multiplier awarded at or above it.
type TierStep struct {
	Threshold  float64
	Multiplier float64
}

// TierTable is an ordered list of steps, ascending by threshold. The same
// table drives both the scoring path and the challenge breakdown, so the two
// can never disagree.
type TierTable struct {
	Name  string
	Steps []TierStep
}

// Evaluate returns the multiplier for the highest step whose threshold the
// value meets, or the neutral 1.0 below the first step.
func (t TierTable) Evaluate(value float64) float64 {
	multiplier := NeutralMultiplier
	for _, step := range t.Steps {
		if value >= step.Threshold {
			multiplier = step.Multiplier
		} else {
			break
		}
	}
	return multiplier
}

// NextThreshold returns the threshold of the next unmet step, or false when
// the value already meets the final step.
func (t TierTable) NextThreshold(value float64) (float64, bool) {
	for _, step := range t.Steps {
		if value < step.Threshold {
			return step.Threshold, true
		}
	}
	return 0, false
}

// Completed reports whether the value meets the table's final step.
func (t TierTable) Completed(value float64) bool {
	if len(t.Steps) == 0 {
		return false
	}
	return value >= t.Steps[len(t.Steps)-1].Threshold
}

// NeutralMultiplier is the value a dimension degrades to when its backing
// signal is unavailable.
const NeutralMultiplier = 1.0

// Channel engagement levels feed ChannelTiers as a numeric signal.
const (
	ChannelEngagementNone      = 0
	ChannelEngagementFollowing = 1
	ChannelEngagementCasting   = 2
)

var (
	FollowerTiers = TierTable{
		Name: "followers",
		Steps: []TierStep{
			{Threshold: 100, Multiplier: 1.2},
			{Threshold: 1_000, Multiplier: 1.4},
			{Threshold: 10_000, Multiplier: 1.6},
			{Threshold: 50_000, Multiplier: 1.8},
		},
	}

	// Channel engagement caps at 1.4: following earns 1.2, following plus
	// casting in the channel earns 1.4.
	ChannelTiers = TierTable{
		Name: "channel",
		Steps: []TierStep{
			{Threshold: ChannelEngagementFollowing, Multiplier: 1.2},
			{Threshold: ChannelEngagementCasting, Multiplier: 1.4},
		},
	}

	HoldingsTiers = TierTable{
		Name: "holdings",
		Steps: []TierStep{
			{Threshold: 100_000_000, Multiplier: 1.2},
			{Threshold: 200_000_000, Multiplier: 1.4},
			{Threshold: 400_000_000, Multiplier: 1.6},
			{Threshold: 800_000_000, Multiplier: 1.8},
		},
	}

	CollectibleTiers = TierTable{
		Name: "collectibles",
		Steps: []TierStep{
			{Threshold: 1, Multiplier: 1.2},
			{Threshold: 3, Multiplier: 1.4},
			{Threshold: 5, Multiplier: 1.6},
			{Threshold: 10, Multiplier: 1.8},
		},
	}

	VoteBreadthTiers = TierTable{
		Name: "voteBreadth",
		Steps: []TierStep{
			{Threshold: 5, Multiplier: 1.2},
			{Threshold: 15, Multiplier: 1.4},
			{Threshold: 30, Multiplier: 1.6},
			{Threshold: 50, Multiplier: 1.8},
		},
	}

	ShareTiers = TierTable{
		Name: "shares",
		Steps: []TierStep{
			{Threshold: 3, Multiplier: 1.2},
			{Threshold: 10, Multiplier: 1.4},
			{Threshold: 25, Multiplier: 1.6},
			{Threshold: 50, Multiplier: 1.8},
		},
	}

	ReputationTiers = TierTable{
		Name: "reputation",
		Steps: []TierStep{
			{Threshold: 0.50, Multiplier: 1.2},
			{Threshold: 0.70, Multiplier: 1.4},
			{Threshold: 0.85, Multiplier: 1.6},
			{Threshold: 0.95, Multiplier: 1.8},
		},
	}

	SubscriptionTiers = TierTable{
		Name: "subscription",
		Steps: []TierStep{
			{Threshold: 1, Multiplier: 1.5},
		},
	}
)

// AllTiers lists every dimension in breakdown display order.
var AllTiers = []TierTable{
	FollowerTiers,
	ChannelTiers,
	HoldingsTiers,
	CollectibleTiers,
	VoteBreadthTiers,
	ShareTiers,
	ReputationTiers,
	SubscriptionTiers,
}
