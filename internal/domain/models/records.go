package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// HorseStatus is the operational state of a horse in the unit.
type HorseStatus string

const (
	HorseActive  HorseStatus = "Ativo"
	HorseRetired HorseStatus = "Baixado"
)

// ID is a record identifier. The backend serves ids as strings or as
// numbers depending on how the row was created; both decode to their text.
type ID string

// UnmarshalJSON accepts strings and numbers. Null and any other JSON value
// decode to the empty id.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*id = ""
	if len(data) == 0 {
		return nil
	}

	switch {
	case data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err == nil {
			*id = ID(raw)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var num json.Number
		if err := json.Unmarshal(data, &num); err == nil {
			*id = ID(num.String())
		}
	}
	return nil
}

// Horse mirrors an equino row served by the record backend.
type Horse struct {
	ID                 ID          `json:"id"`
	Name               string      `json:"nome"`
	Status             HorseStatus `json:"status"`
	Breed              string      `json:"raca"`
	Coat               string      `json:"pelagem"`
	RegistrationNumber string      `json:"registro"`
	Sex                string      `json:"sexo"`
	Unit               string      `json:"unidade"`
	BirthDate          string      `json:"dataNascimento"`
}

// ScheduleRecord is a duty roster (escala) entry.
type ScheduleRecord struct {
	ID           ID     `json:"id,omitempty"`
	HorseID      ID     `json:"equinoId"`
	Date         string `json:"data"`
	WorkHours    Hours  `json:"cargaHoraria"`
	WorkLocation string `json:"local"`
	Rider        string `json:"cavaleiro"`
}

// VisitRecord is a medical visit (atendimento).
type VisitRecord struct {
	ID      ID     `json:"id"`
	HorseID ID     `json:"equinoId"`
	Date    string `json:"data"`
	Reason  string `json:"motivo"`
	Vet     string `json:"veterinario"`
	Notes   string `json:"observacoes"`
}

// TreatmentKind distinguishes vaccination from deworming rows.
type TreatmentKind string

const (
	KindVaccination TreatmentKind = "vacinacao"
	KindDeworming   TreatmentKind = "vermifugacao"
)

// ParseTreatmentKind normalizes the kind name used in query strings and commands.
func ParseTreatmentKind(value string) (TreatmentKind, bool) {
	switch TreatmentKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindVaccination:
		return KindVaccination, true
	case KindDeworming:
		return KindDeworming, true
	default:
		return "", false
	}
}

// TreatmentRecord is a vaccination or deworming entry.
type TreatmentRecord struct {
	ID          ID     `json:"id"`
	HorseID     ID     `json:"equinoId"`
	Date        string `json:"data"`
	NextDueDate string `json:"proximaData,omitempty"`
	ProductName string `json:"produto"`
	Notes       string `json:"observacoes"`
}

// Hours is a work-hours quantity decoded leniently from user-entered data.
// Anything that is not a finite non-negative number decodes to 0.
type Hours float64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (h *Hours) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*h = 0
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			*h = 0
			return nil
		}
	} else {
		raw = string(data)
	}

	*h = ParseHours(raw)
	return nil
}

// ParseHours converts free text into Hours, accepting a comma decimal separator.
func ParseHours(raw string) Hours {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "h"))
	raw = strings.Replace(raw, ",", ".", 1)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return Hours(value).Coerce()
}

// Coerce maps negative and non-finite values to 0.
func (h Hours) Coerce() Hours {
	v := float64(h)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return h
}
