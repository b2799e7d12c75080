// Package planner searches multi-room booking plans for parties that no
// single room type can hold.
//
// The search walks an explicit stack instead of recursing. Each frame is a
// sequence of room types (repetition allowed) and the residual party still
// to seat. A frame is complete once both residuals are <= 0. Frames deeper
// than MaxDepth are dropped, and the whole walk stops after MaxExpansions
// pushes, so termination does not depend on the call stack.
//
// Sequences only grow in non-decreasing candidate order, so each room type
// -> count multiset is reached by exactly one sequence. Permutations would
// collapse into the same plan anyway; skipping them keeps the walk complete
// within the depth cap for realistic inventories.
package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// Candidate is a room type with live inventory for the requested stay.
type Candidate struct {
	RoomType model.RoomType
	// Available is the number of rooms of this type bookable for the stay.
	Available int
	// StayPrice is the total price of the stay in one room of this type.
	StayPrice decimal.Decimal
}

// Options bound the search and the ranked views.
type Options struct {
	MaxDepth      int
	MaxExpansions int
	Limit         int
}

// DefaultOptions are used by the reservation service.
var DefaultOptions = Options{
	MaxDepth:      10,
	MaxExpansions: 50_000,
	Limit:         5,
}

// Result is the outcome of a plan search.
type Result struct {
	Plans model.Plans
	// Feasible is the number of distinct feasible plans before ranking caps.
	Feasible int
	// Sequences is the number of completed sequences found.
	Sequences int
	// Truncated is set when MaxExpansions stopped the walk early.
	Truncated bool
}

type frame struct {
	seq      []int
	adults   int
	children int
}

// Generate enumerates capacity-filling sequences over the candidates,
// keeps the ones that live inventory can satisfy, prices them and returns
// the budget-friendly and convenience rankings.
func Generate(adults, children int, candidates []Candidate, opts Options) Result {
	opts = withDefaults(opts)

	cands := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Available > 0 {
			cands = append(cands, c)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].RoomType.ID < cands[j].RoomType.ID
	})

	seqs, truncated := enumerate(adults, children, cands, opts)

	seen := make(map[string]struct{})
	var plans []model.BookingPlan
	var keys []string
	for _, seq := range seqs {
		counts := aggregate(seq, len(cands))
		if !feasible(counts, cands) {
			continue
		}
		key := multisetKey(counts)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		plans = append(plans, buildPlan(counts, cands))
		keys = append(keys, key)
	}

	return Result{
		Plans: model.Plans{
			BudgetFriendly: rank(plans, keys, byPrice, opts.Limit),
			Convenience:    rank(plans, keys, byRooms, opts.Limit),
			Truncated:      truncated,
		},
		Feasible:  len(plans),
		Sequences: len(seqs),
		Truncated: truncated,
	}
}

func withDefaults(opts Options) Options {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions.MaxDepth
	}
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = DefaultOptions.MaxExpansions
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions.Limit
	}
	return opts
}

// enumerate returns every completed non-decreasing sequence of candidate
// indexes, and whether the expansion budget cut the walk short.
func enumerate(adults, children int, cands []Candidate, opts Options) ([][]int, bool) {
	var out [][]int
	stack := []frame{{adults: adults, children: children}}
	expansions := 0

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.adults <= 0 && f.children <= 0 {
			if len(f.seq) > 0 {
				out = append(out, f.seq)
			}
			continue
		}
		if len(f.seq) >= opts.MaxDepth {
			continue
		}

		first := 0
		if n := len(f.seq); n > 0 {
			first = f.seq[n-1]
		}
		// Push in reverse so candidates are expanded in index order.
		for i := len(cands) - 1; i >= first; i-- {
			rt := cands[i].RoomType
			if !reduces(rt, f.adults, f.children) {
				continue
			}
			if occurrences(f.seq, i) >= cands[i].Available {
				continue
			}
			expansions++
			if expansions > opts.MaxExpansions {
				return out, true
			}
			seq := make([]int, len(f.seq), len(f.seq)+1)
			copy(seq, f.seq)
			stack = append(stack, frame{
				seq:      append(seq, i),
				adults:   f.adults - rt.MaxAdults,
				children: f.children - rt.MaxChildren,
			})
		}
	}
	return out, false
}

// reduces reports whether a room of rt seats anyone still unseated.
func reduces(rt model.RoomType, adults, children int) bool {
	return (adults > 0 && rt.MaxAdults > 0) || (children > 0 && rt.MaxChildren > 0)
}

func occurrences(seq []int, idx int) int {
	n := 0
	for _, v := range seq {
		if v == idx {
			n++
		}
	}
	return n
}

func aggregate(seq []int, n int) []int {
	counts := make([]int, n)
	for _, idx := range seq {
		counts[idx]++
	}
	return counts
}

func feasible(counts []int, cands []Candidate) bool {
	for i, n := range counts {
		if n > cands[i].Available {
			return false
		}
	}
	return true
}

func multisetKey(counts []int) string {
	parts := make([]string, 0, len(counts))
	for i, n := range counts {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d", i, n))
		}
	}
	return strings.Join(parts, ",")
}

func buildPlan(counts []int, cands []Candidate) model.BookingPlan {
	plan := model.BookingPlan{TotalPrice: decimal.Zero}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		c := cands[i]
		subtotal := c.StayPrice.Mul(decimal.NewFromInt(int64(n)))
		plan.Items = append(plan.Items, model.PlanItem{
			RoomTypeID:   c.RoomType.ID,
			RoomTypeName: c.RoomType.Name,
			Count:        n,
			MaxAdults:    c.RoomType.MaxAdults,
			MaxChildren:  c.RoomType.MaxChildren,
			StayPrice:    c.StayPrice,
			Subtotal:     subtotal,
		})
		plan.TotalRooms += n
		plan.TotalAdults += n * c.RoomType.MaxAdults
		plan.TotalChildren += n * c.RoomType.MaxChildren
		plan.TotalPrice = plan.TotalPrice.Add(subtotal)
	}
	return plan
}

type order int

const (
	byPrice order = iota
	byRooms
)

// rank sorts a copy of plans and keeps the first limit entries. Ties fall
// through to the other criterion and finally to the multiset key.
func rank(plans []model.BookingPlan, keys []string, o order, limit int) []model.BookingPlan {
	idx := make([]int, len(plans))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := plans[idx[a]], plans[idx[b]]
		cmpPrice := pa.TotalPrice.Cmp(pb.TotalPrice)
		cmpRooms := pa.TotalRooms - pb.TotalRooms
		first, second := cmpPrice, cmpRooms
		if o == byRooms {
			first, second = cmpRooms, cmpPrice
		}
		if first != 0 {
			return first < 0
		}
		if second != 0 {
			return second < 0
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]model.BookingPlan, 0, len(idx))
	for _, i := range idx {
		out = append(out, plans[i])
	}
	return out
}
