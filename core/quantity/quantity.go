// Package quantity computes unrounded component quantities for a
// single fence run. All results stay decimal; rounding to purchasable
// units happens only at aggregation so rounding error never compounds
// across line items sharing a project.
package quantity

import (
	"github.com/shopspring/decimal"

	"fence-cost/core/types"
)

var (
	one    = decimal.NewFromInt(1)
	two    = decimal.NewFromInt(2)
	twelve = decimal.NewFromInt(12)
)

// Inputs are the resolved values a run's formulas are driven by
type Inputs struct {
	// NetLengthFt is total footage minus the waste buffer
	NetLengthFt decimal.Decimal

	// Lines is the number of fence lines
	Lines int

	// PostSpacingFt is the resolved on-center post spacing
	PostSpacingFt decimal.Decimal

	// RailCount is the number of horizontal rails
	RailCount int

	// PostType is the post material family
	PostType types.PostType

	// WasteFactor scales the picket count (e.g., 1.025)
	WasteFactor decimal.Decimal

	// PicketMultiplier is the style multiplier (good-neighbor 1.10,
	// board-on-board 1.14, standard 1)
	PicketMultiplier decimal.Decimal

	// PicketWidthIn is the selected picket's actual face width
	PicketWidthIn decimal.Decimal

	// ConcreteBagsPerPost is the resolved concrete parameter
	ConcreteBagsPerPost decimal.Decimal
}

// Posts is the line post count before gate adjustments:
// ceil(net/spacing) + 1 + ceil(max(lines-2, 0)/2). Each line past the
// second shares a terminal post with a neighbor, hence the half.
func Posts(in Inputs) decimal.Decimal {
	if in.PostSpacingFt.Sign() <= 0 || in.NetLengthFt.Sign() <= 0 {
		return decimal.Zero
	}

	posts := in.NetLengthFt.Div(in.PostSpacingFt).Ceil().Add(one)

	if in.Lines > 2 {
		extra := decimal.NewFromInt(int64(in.Lines - 2))
		posts = posts.Add(extra.Div(two).Ceil())
	}
	return posts
}

// Pickets is ceil((net * 12 / picket_width) * waste * multiplier). The
// style multiplier applies inside the ceiling so a 246th good-neighbor
// picket is not lost to early rounding.
func Pickets(in Inputs) decimal.Decimal {
	if in.PicketWidthIn.Sign() <= 0 || in.NetLengthFt.Sign() <= 0 {
		return decimal.Zero
	}

	raw := in.NetLengthFt.Mul(twelve).Div(in.PicketWidthIn)
	raw = raw.Mul(in.WasteFactor)
	if in.PicketMultiplier.Sign() > 0 {
		raw = raw.Mul(in.PicketMultiplier)
	}
	return raw.Ceil()
}

// Rails is (posts - 1) * rail_count
func Rails(posts decimal.Decimal, railCount int) decimal.Decimal {
	if posts.Sign() <= 0 || railCount <= 0 {
		return decimal.Zero
	}
	return posts.Sub(one).Mul(decimal.NewFromInt(int64(railCount)))
}

// Brackets is posts * rail_count for steel posts; wood posts take
// nailed rails and need none.
func Brackets(posts decimal.Decimal, railCount int, postType types.PostType) decimal.Decimal {
	if postType != types.PostSteel || posts.Sign() <= 0 || railCount <= 0 {
		return decimal.Zero
	}
	return posts.Mul(decimal.NewFromInt(int64(railCount)))
}

// Caps is one per post
func Caps(posts decimal.Decimal) decimal.Decimal {
	if posts.Sign() <= 0 {
		return decimal.Zero
	}
	return posts
}

// ConcreteBags is posts * bags_per_post, unrounded
func ConcreteBags(posts, bagsPerPost decimal.Decimal) decimal.Decimal {
	if posts.Sign() <= 0 || bagsPerPost.Sign() <= 0 {
		return decimal.Zero
	}
	return posts.Mul(bagsPerPost)
}
