package workload

import (
	"fmt"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// MonthKeys lists the month-of-year bucket keys in calendar order.
var MonthKeys = []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

// BucketForYear groups records of the given year by month of year. The result
// always holds all twelve keys; records with unparseable dates or from another
// year are left out.
func BucketForYear(records []models.ScheduleRecord, year int) map[string][]models.ScheduleRecord {
	buckets := make(map[string][]models.ScheduleRecord, len(MonthKeys))
	for _, key := range MonthKeys {
		buckets[key] = nil
	}

	for _, record := range records {
		day, ok := models.ParseDay(record.Date)
		if !ok || day.Year() != year {
			continue
		}
		key := fmt.Sprintf("%02d", int(day.Month()))
		buckets[key] = append(buckets[key], record)
	}

	return buckets
}

// BucketForMonth returns the records falling inside the YYYY-MM month. An
// invalid month key yields no records.
func BucketForMonth(records []models.ScheduleRecord, yearMonth string) []models.ScheduleRecord {
	month, ok := models.ParseMonth(yearMonth)
	if !ok {
		return nil
	}

	var out []models.ScheduleRecord
	for _, record := range records {
		day, ok := models.ParseDay(record.Date)
		if !ok {
			continue
		}
		if day.Year() == month.Year() && day.Month() == month.Month() {
			out = append(out, record)
		}
	}
	return out
}
