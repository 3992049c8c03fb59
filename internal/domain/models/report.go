package models

import "time"

// DashboardSnapshot is the aggregated herd status persisted once per scheduled run.
type DashboardSnapshot struct {
	UserID           string    `bson:"user_id" json:"user_id"`
	Date             time.Time `bson:"date" json:"date"`
	TotalSows        int       `bson:"total_sows" json:"total_sows"`
	PregnantSows     int       `bson:"pregnant_sows" json:"pregnant_sows"`
	AvailableSows    int       `bson:"available_sows" json:"available_sows"`
	AvgLitterSize    int       `bson:"avg_litter_size" json:"avg_litter_size"`
	AvgSaleWeight    int       `bson:"avg_sale_weight" json:"avg_sale_weight"`
	UpcomingFarrows  int       `bson:"upcoming_farrows" json:"upcoming_farrows"`
	OverdueFarrows   int       `bson:"overdue_farrows" json:"overdue_farrows"`
	UpcomingSaleable int       `bson:"upcoming_saleable" json:"upcoming_saleable"`
	PastDueSaleable  int       `bson:"past_due_saleable" json:"past_due_saleable"`
	SkippedRecords   int       `bson:"skipped_records" json:"skipped_records"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
