package purchase

import "time"

// Record is one over-the-counter sale logged by a pharmacist.
type Record struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	PharmacistID int64     `db:"pharmacist_id" json:"pharmacist_id"`
	MedicationID int64     `db:"medication_id" json:"medication_id"`
	DatePurchase time.Time `db:"date_purchase" json:"date_purchase"`
	Quantity     int       `db:"quantity" json:"quantity"`
	TotalPayment float64   `db:"total_payment" json:"total_payment"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DailySales is one day of an organization's sales series.
type DailySales struct {
	Day   time.Time `json:"day"`
	Total float64   `json:"total"`
}

// MedicationSales aggregates an organization's sales per catalogue entry.
type MedicationSales struct {
	MedicationID int64   `json:"medication_id"`
	Name         string  `json:"name"`
	Quantity     int64   `json:"quantity"`
	Total        float64 `json:"total"`
}

// Statistics is the pharmacist dashboard block.
type Statistics struct {
	TotalPurchases int64              `json:"total_purchases"`
	TotalSales     float64            `json:"total_sales"`
	TodaySales     float64            `json:"today_sales"`
	DailyLastMonth []*DailySales      `json:"daily_last_month"`
	ByMedication   []*MedicationSales `json:"by_medication"`
}
