// Package loyalty computes the customer rewards summary: a flat number of
// points per placed order, with a free dessert at every full card.
package loyalty

const (
	PointsPerOrder = 10
	RewardAt       = 100
)

type Summary struct {
	Points             int `json:"points"`               // lifetime points
	PointsTowardReward int `json:"points_toward_reward"` // progress on the current card
	OrdersUntilReward  int `json:"orders_until_reward"`
	RewardsEarned      int `json:"rewards_earned"`
}

// Summarize derives the loyalty view from the number of orders the account
// has placed.
func Summarize(ordersPlaced int) Summary {
	if ordersPlaced < 0 {
		ordersPlaced = 0
	}
	points := ordersPlaced * PointsPerOrder
	toward := points % RewardAt
	return Summary{
		Points:             points,
		PointsTowardReward: toward,
		OrdersUntilReward:  (RewardAt - toward + PointsPerOrder - 1) / PointsPerOrder,
		RewardsEarned:      points / RewardAt,
	}
}
