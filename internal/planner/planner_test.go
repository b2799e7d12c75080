package planner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

func candidate(id string, adults, children, available int, stayPrice string) Candidate {
	return Candidate{
		RoomType:  model.RoomType{ID: id, Name: id, MaxAdults: adults, MaxChildren: children},
		Available: available,
		StayPrice: decimal.RequireFromString(stayPrice),
	}
}

// summary renders a plan as "type x count + ..." for readable assertions.
func summary(p model.BookingPlan) string {
	s := ""
	for i, it := range p.Items {
		if i > 0 {
			s += " + "
		}
		s += it.RoomTypeID + "x" + decimal.NewFromInt(int64(it.Count)).String()
	}
	return s
}

func summaries(plans []model.BookingPlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = summary(p)
	}
	return out
}

func TestGenerateRanksBothViews(t *testing.T) {
	cands := []Candidate{
		candidate("b-dlx", 3, 2, 2, "400.00"),
		candidate("a-std", 2, 1, 3, "200.00"),
	}

	res := Generate(5, 0, cands, DefaultOptions)
	require.False(t, res.Truncated)
	assert.Equal(t, 4, res.Feasible)

	assert.Equal(t, []string{
		"a-stdx1 + b-dlxx1", // 600, 2 rooms
		"a-stdx3",           // 600, 3 rooms
		"b-dlxx2",           // 800, 2 rooms
		"a-stdx2 + b-dlxx1", // 800, 3 rooms
	}, summaries(res.Plans.BudgetFriendly))

	assert.Equal(t, []string{
		"a-stdx1 + b-dlxx1", // 2 rooms, 600
		"b-dlxx2",           // 2 rooms, 800
		"a-stdx3",           // 3 rooms, 600
		"a-stdx2 + b-dlxx1", // 3 rooms, 800
	}, summaries(res.Plans.Convenience))

	for _, p := range res.Plans.BudgetFriendly {
		assert.GreaterOrEqual(t, p.TotalAdults, 5)
	}
	first := res.Plans.BudgetFriendly[0]
	assert.Equal(t, "600", first.TotalPrice.String())
	assert.Equal(t, 2, first.TotalRooms)
}

func TestGenerateRankingInvariants(t *testing.T) {
	cands := []Candidate{
		candidate("a", 1, 0, 6, "90.00"),
		candidate("b", 2, 1, 4, "150.00"),
		candidate("c", 3, 2, 3, "260.00"),
		candidate("d", 4, 3, 2, "330.00"),
	}
	res := Generate(7, 2, cands, DefaultOptions)
	require.Greater(t, res.Feasible, 5)

	budget := res.Plans.BudgetFriendly
	conv := res.Plans.Convenience
	assert.Len(t, budget, 5)
	assert.Len(t, conv, 5)

	for i := 1; i < len(budget); i++ {
		assert.True(t, budget[i-1].TotalPrice.LessThanOrEqual(budget[i].TotalPrice), "budget view must ascend by price")
	}
	for i := 1; i < len(conv); i++ {
		prev, cur := conv[i-1], conv[i]
		assert.LessOrEqual(t, prev.TotalRooms, cur.TotalRooms, "convenience view must ascend by rooms")
		if prev.TotalRooms == cur.TotalRooms {
			assert.True(t, prev.TotalPrice.LessThanOrEqual(cur.TotalPrice), "equal rooms ascend by price")
		}
	}
	for _, p := range append(budget, conv...) {
		assert.GreaterOrEqual(t, p.TotalAdults, 7)
		assert.GreaterOrEqual(t, p.TotalChildren, 2)
		for _, it := range p.Items {
			assert.True(t, it.Subtotal.Equal(it.StayPrice.Mul(decimal.NewFromInt(int64(it.Count)))))
		}
	}
}

func TestGenerateRespectsLiveInventory(t *testing.T) {
	cands := []Candidate{
		candidate("a-std", 2, 1, 1, "200.00"),
		candidate("b-dlx", 3, 2, 2, "400.00"),
		candidate("c-fam", 4, 3, 0, "600.00"),
	}
	res := Generate(5, 0, cands, DefaultOptions)

	got := summaries(res.Plans.BudgetFriendly)
	assert.ElementsMatch(t, []string{"a-stdx1 + b-dlxx1", "b-dlxx2"}, got)
	for _, p := range res.Plans.BudgetFriendly {
		for _, it := range p.Items {
			assert.NotEqual(t, "c-fam", it.RoomTypeID, "types without available rooms are not candidates")
		}
	}
}

func TestGenerateFiveAdultsWithTwoAdultRooms(t *testing.T) {
	cands := []Candidate{candidate("std", 2, 1, 3, "200.00")}
	res := Generate(5, 0, cands, DefaultOptions)

	require.NotEmpty(t, res.Plans.BudgetFriendly)
	assert.Equal(t, []string{"stdx3"}, summaries(res.Plans.BudgetFriendly))
	assert.Equal(t, 6, res.Plans.BudgetFriendly[0].TotalAdults)
}

func TestGenerateDepthCap(t *testing.T) {
	cands := []Candidate{candidate("single", 1, 0, 20, "50.00")}

	t.Run("sequences longer than the cap are dropped", func(t *testing.T) {
		res := Generate(12, 0, cands, DefaultOptions)
		assert.Empty(t, res.Plans.BudgetFriendly)
		assert.Empty(t, res.Plans.Convenience)
		assert.Zero(t, res.Feasible)
	})

	t.Run("a sequence at the cap is kept", func(t *testing.T) {
		res := Generate(10, 0, cands, DefaultOptions)
		require.Len(t, res.Plans.BudgetFriendly, 1)
		assert.Equal(t, 10, res.Plans.BudgetFriendly[0].TotalRooms)
		assert.Equal(t, "500", res.Plans.BudgetFriendly[0].TotalPrice.String())
	})
}

func TestGenerateExpansionBudget(t *testing.T) {
	cands := []Candidate{
		candidate("a", 1, 1, 10, "10.00"),
		candidate("b", 1, 1, 10, "11.00"),
		candidate("c", 1, 1, 10, "12.00"),
	}
	res := Generate(8, 8, cands, Options{MaxDepth: 10, MaxExpansions: 100, Limit: 5})
	assert.True(t, res.Truncated)
	assert.True(t, res.Plans.Truncated, "callers must see that the views are partial")
	assert.LessOrEqual(t, len(res.Plans.BudgetFriendly), 5)
}

func TestGenerateFindsCheapestPlanOnLargeInventory(t *testing.T) {
	cands := []Candidate{
		candidate("a", 2, 0, 10, "500.00"),
		candidate("b", 2, 0, 10, "400.00"),
		candidate("c", 2, 0, 10, "300.00"),
		candidate("d", 2, 0, 10, "200.00"),
		candidate("e", 2, 0, 10, "100.00"),
	}
	res := Generate(16, 0, cands, DefaultOptions)

	require.False(t, res.Truncated)
	assert.False(t, res.Plans.Truncated)
	assert.Equal(t, 495, res.Feasible, "every 8-room multiset over 5 types")
	assert.Equal(t, res.Feasible, res.Sequences, "each multiset is reached once")

	budget := summaries(res.Plans.BudgetFriendly)
	require.Len(t, budget, 5)
	assert.Equal(t, "ex8", budget[0])
	assert.Equal(t, "dx1 + ex7", budget[1])
	assert.Equal(t, "800", res.Plans.BudgetFriendly[0].TotalPrice.String())
	assert.Equal(t, "ex8", summary(res.Plans.Convenience[0]))
}

func TestGenerateNoCandidates(t *testing.T) {
	res := Generate(3, 1, nil, DefaultOptions)
	assert.Empty(t, res.Plans.BudgetFriendly)
	assert.Empty(t, res.Plans.Convenience)
	assert.False(t, res.Truncated)
}

func TestGenerateIsDeterministic(t *testing.T) {
	cands := []Candidate{
		candidate("x", 2, 2, 3, "100.00"),
		candidate("y", 2, 2, 3, "100.00"),
	}
	first := Generate(4, 0, cands, DefaultOptions)
	reversed := Generate(4, 0, []Candidate{cands[1], cands[0]}, DefaultOptions)
	assert.Equal(t, summaries(first.Plans.BudgetFriendly), summaries(reversed.Plans.BudgetFriendly))
	assert.Equal(t, summaries(first.Plans.Convenience), summaries(reversed.Plans.Convenience))
}
