// Package profile defines the structured user profile produced by onboarding
// and consumed by menu generation.
package profile

import "time"

// Location is the user's location, supplied at onboarding start and used for
// cold-start prompting and dietary-default fallback.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Household is the household composition.
type Household struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// DailyMeals flags which meals the user cooks at home on a given day.
type DailyMeals struct {
	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`
}

// WeeklySchedule holds one DailyMeals entry per weekday.
type WeeklySchedule struct {
	Monday    DailyMeals `json:"monday"`
	Tuesday   DailyMeals `json:"tuesday"`
	Wednesday DailyMeals `json:"wednesday"`
	Thursday  DailyMeals `json:"thursday"`
	Friday    DailyMeals `json:"friday"`
	Saturday  DailyMeals `json:"saturday"`
	Sunday    DailyMeals `json:"sunday"`
}

// DefaultDailyMeals returns the default plan: dinner cooked at home,
// breakfast and lunch not.
func DefaultDailyMeals() DailyMeals {
	return DailyMeals{Breakfast: false, Lunch: false, Dinner: true}
}

// DefaultWeeklySchedule returns a schedule with every day defaulted.
func DefaultWeeklySchedule() WeeklySchedule {
	return WeeklySchedule{
		Monday:    DefaultDailyMeals(),
		Tuesday:   DefaultDailyMeals(),
		Wednesday: DefaultDailyMeals(),
		Thursday:  DefaultDailyMeals(),
		Friday:    DefaultDailyMeals(),
		Saturday:  DefaultDailyMeals(),
		Sunday:    DefaultDailyMeals(),
	}
}

// Days iterates the schedule in weekday order.
func (ws WeeklySchedule) Days() []struct {
	Name  string
	Meals DailyMeals
} {
	return []struct {
		Name  string
		Meals DailyMeals
	}{
		{"Monday", ws.Monday},
		{"Tuesday", ws.Tuesday},
		{"Wednesday", ws.Wednesday},
		{"Thursday", ws.Thursday},
		{"Friday", ws.Friday},
		{"Saturday", ws.Saturday},
		{"Sunday", ws.Sunday},
	}
}

// Profile is the complete user profile for meal planning.
type Profile struct {
	UserID             string         `json:"user_id"`
	Location           Location       `json:"location"`
	Household          Household      `json:"household"`
	DietaryPreferences []string       `json:"dietary_preferences"`
	AllergiesDislikes  []string       `json:"allergies_dislikes"`
	MealSchedule       WeeklySchedule `json:"meal_schedule"`
	CreatedAt          time.Time      `json:"created_at"`
}
