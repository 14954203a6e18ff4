package workload

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpmontada/equinos/internal/domain/models"
)

func TestBucketForYear(t *testing.T) {
	t.Run("always returns twelve months", func(t *testing.T) {
		buckets := BucketForYear(nil, 2024)
		require.Len(t, buckets, 12)
		for _, key := range MonthKeys {
			records, ok := buckets[key]
			assert.True(t, ok, "missing month %s", key)
			assert.Empty(t, records)
			assert.Zero(t, Aggregate(records).Total)
		}
	})

	t.Run("drops other years and bad dates", func(t *testing.T) {
		records := []models.ScheduleRecord{
			{HorseID: "A", Date: "2024-03-10", WorkHours: 4},
			{HorseID: "A", Date: "2023-03-10", WorkHours: 4},
			{HorseID: "B", Date: "10/03/2024", WorkHours: 4},
			{HorseID: "B", Date: "", WorkHours: 4},
			{HorseID: "C", Date: "2024-12-31T10:00:00Z", WorkHours: 2},
		}

		buckets := BucketForYear(records, 2024)
		assert.Len(t, buckets["03"], 1)
		assert.Len(t, buckets["12"], 1)

		count := 0
		for _, bucket := range buckets {
			count += len(bucket)
		}
		assert.Equal(t, 2, count)
	})

	t.Run("buckets by utc day", func(t *testing.T) {
		records := []models.ScheduleRecord{
			{HorseID: "A", Date: "2024-01-31T23:30:00-03:00", WorkHours: 3},
		}
		buckets := BucketForYear(records, 2024)
		assert.Empty(t, buckets["01"])
		assert.Len(t, buckets["02"], 1)
	})
}

func TestBucketForMonth(t *testing.T) {
	records := []models.ScheduleRecord{
		{HorseID: "A", Date: "2024-03-01", WorkHours: 1},
		{HorseID: "A", Date: "2024-03-31T18:00:00Z", WorkHours: 1},
		{HorseID: "A", Date: "2024-04-01", WorkHours: 1},
		{HorseID: "A", Date: "2024-3-15", WorkHours: 1},
	}

	assert.Len(t, BucketForMonth(records, "2024-03"), 2)
	assert.Len(t, BucketForMonth(records, "2024-04"), 1)
	assert.Nil(t, BucketForMonth(records, "2024-13"))
	assert.Nil(t, BucketForMonth(records, "março"))
}

func TestAggregate(t *testing.T) {
	t.Run("spring scenario", func(t *testing.T) {
		records := []models.ScheduleRecord{
			{HorseID: "A", Date: "2024-03-10", WorkHours: 40},
			{HorseID: "B", Date: "2024-03-20", WorkHours: 20},
		}

		totals := Aggregate(BucketForYear(records, 2024)["03"])
		assert.Equal(t, 60.0, totals.Total)
		assert.Equal(t, []string{"A", "B"}, totals.PerHorse.IDs())
		assert.Equal(t, 40.0, totals.PerHorse.Hours("A"))
		assert.Equal(t, 20.0, totals.PerHorse.Hours("B"))

		lookup := models.HorseLookup{"A": "A", "B": "B"}
		assert.Equal(t, []string{"A — 40h", "B — 20h"}, TopN(totals.PerHorse, lookup, 2))
	})

	t.Run("repeated horses add up", func(t *testing.T) {
		records := []models.ScheduleRecord{
			{HorseID: "A", WorkHours: 1.1},
			{HorseID: "B", WorkHours: 2.2},
			{HorseID: "A", WorkHours: 3.3},
		}
		totals := Aggregate(records)
		assert.Equal(t, 6.6, totals.Total)
		assert.Equal(t, 4.4, totals.PerHorse.Hours("A"))
		assert.Equal(t, 2, totals.PerHorse.Len())
	})

	t.Run("conserves totals", func(t *testing.T) {
		records := []models.ScheduleRecord{
			{HorseID: "A", WorkHours: 0.1},
			{HorseID: "B", WorkHours: 0.2},
			{HorseID: "C", WorkHours: 0.3},
			{HorseID: "A", WorkHours: 7.25},
			{HorseID: "", WorkHours: 1},
		}
		totals := Aggregate(records)
		assert.Equal(t, totals.Total, totals.PerHorse.Sum())
		assert.Equal(t, 8.85, totals.Total)
	})

	t.Run("bad hours count as zero", func(t *testing.T) {
		var records []models.ScheduleRecord
		payload := `[
			{"equinoId":"A","data":"2024-05-01","cargaHoraria":"abc"},
			{"equinoId":"A","data":"2024-05-02","cargaHoraria":-4},
			{"equinoId":"B","data":"2024-05-03","cargaHoraria":null},
			{"equinoId":"B","data":"2024-05-04","cargaHoraria":"2,5"},
			{"equinoId":"C","data":"2024-05-05","cargaHoraria":"6"},
			{"equinoId":"C","data":"2024-05-06"}
		]`
		require.NoError(t, json.Unmarshal([]byte(payload), &records))

		totals := Aggregate(records)
		assert.Equal(t, 8.5, totals.Total)
		assert.Equal(t, 0.0, totals.PerHorse.Hours("A"))
		assert.Equal(t, 3, totals.PerHorse.Len())
	})
}

func TestTopN(t *testing.T) {
	lookup := models.HorseLookup{"1": "Trovão", "2": "Relâmpago", "3": "Estrela", "4": "Faísca"}

	t.Run("sorted and capped", func(t *testing.T) {
		per := NewPerHorse()
		add(per, "1", 10)
		add(per, "2", 30)
		add(per, "3", 20)
		add(per, "4", 5)

		assert.Equal(t, []string{"Relâmpago — 30h", "Estrela — 20h", "Trovão — 10h"}, TopN(per, lookup, 0))
		assert.Len(t, TopN(per, lookup, 1), 1)
	})

	t.Run("ties keep first appearance", func(t *testing.T) {
		per := NewPerHorse()
		add(per, "3", 8)
		add(per, "1", 8)
		add(per, "2", 8)

		assert.Equal(t, []string{"Estrela — 8h", "Trovão — 8h"}, TopN(per, lookup, 2))
	})

	t.Run("zero total returns sentinel", func(t *testing.T) {
		per := NewPerHorse()
		add(per, "1", 0)
		add(per, "2", 0)

		assert.Equal(t, []string{NoHighlights}, TopN(per, lookup, 3))
		assert.Equal(t, []string{NoHighlights}, TopN(nil, lookup, 3))
	})

	t.Run("unknown horse keeps its hours", func(t *testing.T) {
		per := NewPerHorse()
		add(per, "99", 12.5)
		add(per, "", 1)

		assert.Equal(t, []string{"#99 — 12.5h", "Desconhecido — 1h"}, TopN(per, lookup, 3))
	})
}

func add(per *PerHorse, id string, hours float64) {
	per.Add(id, decimal.NewFromFloat(hours))
}
