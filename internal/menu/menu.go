// Package menu generates weekly meal plans from finished user profiles.
package menu

import (
	"time"
)

// Slot holds the details for one meal.
type Slot struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Ingredients      []string `json:"ingredients"`
	PreparationSteps []string `json:"preparation_steps"`
}

// DailyMenu is the menu for one day. Slots the user does not cook are nil.
type DailyMenu struct {
	Breakfast *Slot `json:"breakfast,omitempty"`
	Lunch     *Slot `json:"lunch,omitempty"`
	Dinner    *Slot `json:"dinner,omitempty"`
}

// WeeklyMenu is a full weekly meal plan.
type WeeklyMenu struct {
	Monday    DailyMenu `json:"monday"`
	Tuesday   DailyMenu `json:"tuesday"`
	Wednesday DailyMenu `json:"wednesday"`
	Thursday  DailyMenu `json:"thursday"`
	Friday    DailyMenu `json:"friday"`
	Saturday  DailyMenu `json:"saturday"`
	Sunday    DailyMenu `json:"sunday"`
}

// Document is the stored form of a generated menu.
type Document struct {
	UserID        string     `json:"user_id"`
	WeekStartDate string     `json:"week_start_date"`
	CreatedAt     time.Time  `json:"created_at"`
	Menu          WeeklyMenu `json:"menu"`
}

// skippedName marks a slot the model was told not to fill. The generation
// schema requires every slot to be present, so non-cooked slots come back as
// SKIPPED and are converted to nil before persistence.
const skippedName = "SKIPPED"

// strictSlot and friends mirror the generation schema, where every slot is
// mandatory.
type strictDailyMenu struct {
	Breakfast Slot `json:"breakfast"`
	Lunch     Slot `json:"lunch"`
	Dinner    Slot `json:"dinner"`
}

type strictWeeklyMenu struct {
	Monday    strictDailyMenu `json:"monday"`
	Tuesday   strictDailyMenu `json:"tuesday"`
	Wednesday strictDailyMenu `json:"wednesday"`
	Thursday  strictDailyMenu `json:"thursday"`
	Friday    strictDailyMenu `json:"friday"`
	Saturday  strictDailyMenu `json:"saturday"`
	Sunday    strictDailyMenu `json:"sunday"`
}

func (s strictDailyMenu) toDailyMenu() DailyMenu {
	keep := func(slot Slot) *Slot {
		if slot.Name == skippedName {
			return nil
		}
		copied := slot
		return &copied
	}
	return DailyMenu{
		Breakfast: keep(s.Breakfast),
		Lunch:     keep(s.Lunch),
		Dinner:    keep(s.Dinner),
	}
}

func (s strictWeeklyMenu) toWeeklyMenu() WeeklyMenu {
	return WeeklyMenu{
		Monday:    s.Monday.toDailyMenu(),
		Tuesday:   s.Tuesday.toDailyMenu(),
		Wednesday: s.Wednesday.toDailyMenu(),
		Thursday:  s.Thursday.toDailyMenu(),
		Friday:    s.Friday.toDailyMenu(),
		Saturday:  s.Saturday.toDailyMenu(),
		Sunday:    s.Sunday.toDailyMenu(),
	}
}
