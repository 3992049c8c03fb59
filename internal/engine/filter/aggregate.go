package filter

import "github.com/mamadbah2/piggery/internal/domain/models"

// SowCounts summarises a sow collection.
type SowCounts struct {
	Total     int `json:"total"`
	Pregnant  int `json:"pregnant"`
	Available int `json:"available"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
}

// SowStats counts sows per dashboard category.
func SowStats(sows []models.Sow) SowCounts {
	var c SowCounts
	for _, s := range sows {
		c.Total++
		if s.IsAvailable {
			c.Available++
		} else {
			c.Pregnant++
		}
		if s.IsActive {
			c.Active++
		} else {
			c.Inactive++
		}
	}
	return c
}

// AverageLitterSize is the floored mean born count over confirmed, non-aborted farrowings.
func AverageLitterSize(breedings []models.Breeding) int {
	var sum, n int
	for _, b := range breedings {
		if !b.IsFarrowed() {
			continue
		}
		sum += b.PigletsBornCount
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// AverageSaleWeight is the floored mean of recorded positive litter weights.
func AverageSaleWeight(litters []models.Litter) int {
	var sum float64
	var n int
	for _, l := range litters {
		if l.AvgWeight == nil || *l.AvgWeight <= 0 {
			continue
		}
		sum += *l.AvgWeight
		n++
	}
	if n == 0 {
		return 0
	}
	return int(sum / float64(n))
}

// TotalPiglets sums live piglets across litters that are not yet sold.
func TotalPiglets(litters []models.Litter) int {
	var total int
	for _, l := range litters {
		if l.IsSold() {
			continue
		}
		total += l.PigletCount()
	}
	return total
}
