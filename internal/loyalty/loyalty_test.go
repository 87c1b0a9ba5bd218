package loyalty

import "testing"

func TestSummarize(t *testing.T) {
	cases := []struct {
		orders            int
		points            int
		toward            int
		ordersUntilReward int
		rewards           int
	}{
		{0, 0, 0, 10, 0},
		{1, 10, 10, 9, 0},
		{7, 70, 70, 3, 0}, // "3 more orders for a free dessert"
		{10, 100, 0, 10, 1},
		{13, 130, 30, 7, 1},
		{-5, 0, 0, 10, 0}, // defensive
	}
	for _, tc := range cases {
		got := Summarize(tc.orders)
		if got.Points != tc.points || got.PointsTowardReward != tc.toward ||
			got.OrdersUntilReward != tc.ordersUntilReward || got.RewardsEarned != tc.rewards {
			t.Fatalf("Summarize(%d)=%+v, esperaba {%d %d %d %d}",
				tc.orders, got, tc.points, tc.toward, tc.ordersUntilReward, tc.rewards)
		}
	}
}
