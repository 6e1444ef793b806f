package reconcile

// SummaryValueMap maps each recognized summary label kind to the cents value
// bound to it, at most one entry per kind.
type SummaryValueMap map[LabelKind]int64

// associate pairs labels to amounts by proximity. Labels are partitioned
// into runs: a maximal consecutive sequence with no amount between two
// labels forms a group read column-wise (k-th label binds the k-th amount
// after the run); an isolated label binds the nearest following amount.
// Either way an amount must start within MaxLabelDistance characters of the
// label run it serves, and each amount is consumed at most once. The first
// valid binding per kind wins.
func (e *Engine) associate(text string, labels []LabelToken, amounts []AmountToken) SummaryValueMap {
	summary := make(SummaryValueMap)
	if len(labels) == 0 || len(amounts) == 0 {
		return summary
	}
	used := make([]bool, len(amounts))

	bind := func(kind LabelKind, idx int) {
		if _, seen := summary[kind]; !seen {
			summary[kind] = amounts[idx].Cents
		}
		used[idx] = true
	}

	i := 0
	for i < len(labels) {
		j := i + 1
		for j < len(labels) {
			if anyAmountBetween(amounts, used, labels[j-1].End, labels[j].Start) {
				break
			}
			j++
		}
		group := labels[i:j]

		if len(group) == 1 {
			// Standalone label: nearest following amount before the next
			// label. Amounts are in text order, so the first hit is nearest.
			limit := len(text)
			if j < len(labels) {
				limit = labels[j].Start
			}
			for k, amt := range amounts {
				if used[k] || amt.Start < group[0].End || amt.Start >= limit {
					continue
				}
				if amt.Start-group[0].End > e.opts.MaxLabelDistance {
					continue
				}
				bind(group[0].Kind, k)
				break
			}
		} else {
			// Grouped run: label column followed by a value column.
			lastEnd := group[len(group)-1].End
			var after []int
			for k, amt := range amounts {
				if used[k] || amt.Start < lastEnd {
					continue
				}
				if amt.Start-lastEnd > e.opts.MaxLabelDistance {
					continue
				}
				after = append(after, k)
			}
			for g, lbl := range group {
				if g >= len(after) {
					break
				}
				bind(lbl.Kind, after[g])
			}
		}
		i = j
	}
	return summary
}

func anyAmountBetween(amounts []AmountToken, used []bool, from, to int) bool {
	for k, amt := range amounts {
		if used[k] {
			continue
		}
		if amt.Start >= from && amt.Start < to {
			return true
		}
	}
	return false
}
