package crawler

import "github.com/jeon99yu/Algosa/store"

// DedupReviews collapses repeated review records from overlapping pages into
// a canonical set keyed by review number. When a number appears more than
// once the variant with the greatest creation date is kept; on equal dates
// the one seen later in fetch order wins. Output preserves first-seen order.
func DedupReviews(reviews []store.Review) []store.Review {
	if len(reviews) <= 1 {
		return reviews
	}

	byNo := make(map[string]store.Review, len(reviews))
	order := make([]string, 0, len(reviews))

	for _, r := range reviews {
		prev, seen := byNo[r.ReviewNo]
		if !seen {
			byNo[r.ReviewNo] = r
			order = append(order, r.ReviewNo)
			continue
		}
		if !r.CreateDate.Before(prev.CreateDate) {
			byNo[r.ReviewNo] = r
		}
	}

	out := make([]store.Review, 0, len(order))
	for _, no := range order {
		out = append(out, byNo[no])
	}
	return out
}
