package models

// Draft holds the booking form fields remembered between visits.
// Date, time slot and terms acceptance are never part of a draft.
type Draft struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	City       string   `json:"city"`
	Address    string   `json:"address"`
	Packages   []string `json:"packages"`
	Car        string   `json:"car"`
	WaterPower bool     `json:"waterPower"`
}
