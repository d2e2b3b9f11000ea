package menu

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/JimmyUA/menu-master/internal/docstore"
	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/metrics"
	"github.com/JimmyUA/menu-master/internal/profile"
)

//go:embed menu_prompt.md
var menuPrompt string

const menuCollection = "generated_menus"

const (
	menuTemperature = 0.7
	menuMaxTokens   = 8192
)

// ErrNoMenu is returned when a user has no generated menu yet.
var ErrNoMenu = errors.New("no menu found")

type menuPromptData struct {
	City                string
	Country             string
	Adults              int
	Children            int
	DietaryPreferences  string
	AllergiesDislikes   string
	ScheduleDescription string
}

// Generator creates and persists weekly menus for users.
type Generator struct {
	textGen  llm.TextGenerator
	profiles *profile.Repository
	menus    docstore.Collection
	recorder metrics.Recorder
}

// NewGenerator creates a menu Generator. recorder may be nil.
func NewGenerator(textGen llm.TextGenerator, profiles *profile.Repository, store docstore.Store, recorder metrics.Recorder) *Generator {
	return &Generator{
		textGen:  textGen,
		profiles: profiles,
		menus:    store.Collection(menuCollection),
		recorder: recorder,
	}
}

// GenerateWeeklyMenu generates a menu for the given profile.
func (g *Generator) GenerateWeeklyMenu(ctx context.Context, p *profile.Profile) (*WeeklyMenu, error) {
	prompt, err := buildMenuPrompt(p)
	if err != nil {
		return nil, fmt.Errorf("failed to build menu prompt: %w", err)
	}

	start := time.Now()
	response, err := g.textGen.GenerateText(ctx, prompt, llm.GenerateOptions{
		Temperature:     menuTemperature,
		MaxOutputTokens: menuMaxTokens,
		JSONResponse:    true,
	})
	g.record(ctx, time.Since(start), err != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate menu: %w", err)
	}

	var strict strictWeeklyMenu
	if err := json.Unmarshal([]byte(response), &strict); err != nil {
		return nil, fmt.Errorf("failed to parse menu JSON: %w. Response: %s", err, response)
	}

	menu := strict.toWeeklyMenu()
	return &menu, nil
}

// SaveMenu persists a generated menu keyed by user and week start date.
func (g *Generator) SaveMenu(ctx context.Context, userID, weekStartDate string, menu *WeeklyMenu) error {
	doc := Document{
		UserID:        userID,
		WeekStartDate: weekStartDate,
		CreatedAt:     time.Now().UTC(),
		Menu:          *menu,
	}
	docID := fmt.Sprintf("%s_%s", userID, weekStartDate)
	if err := g.menus.Set(ctx, docID, &doc); err != nil {
		return fmt.Errorf("failed to save menu %s: %w", docID, err)
	}
	log.Printf("saved menu for user %s (week: %s)", userID, weekStartDate)
	return nil
}

// LatestMenu retrieves the most recent generated menu for a user.
func (g *Generator) LatestMenu(ctx context.Context, userID string) (*Document, error) {
	raws, err := g.menus.Query(ctx, "user_id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menus for %s: %w", userID, err)
	}

	var docs []Document
	for _, raw := range raws {
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("skipping invalid menu document for %s: %v", userID, err)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, ErrNoMenu
	}

	// week_start_date is YYYY-MM-DD, so a string sort is chronological.
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].WeekStartDate > docs[j].WeekStartDate
	})
	return &docs[0], nil
}

// GenerateForUser generates and saves this week's menu for a single user.
// Triggered after onboarding completes.
func (g *Generator) GenerateForUser(ctx context.Context, userID string) error {
	p, err := g.profiles.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	weekStart := mondayOf(time.Now()).Format("2006-01-02")
	menu, err := g.GenerateWeeklyMenu(ctx, p)
	if err != nil {
		return err
	}
	return g.SaveMenu(ctx, userID, weekStart, menu)
}

// ProcessAllUsers generates next week's menus for every stored profile and
// returns success and error counts. Per-user failures do not stop the batch.
func (g *Generator) ProcessAllUsers(ctx context.Context) (int, int, error) {
	profiles, err := g.profiles.All(ctx)
	if err != nil {
		return 0, 0, err
	}

	weekStart := mondayOf(time.Now()).AddDate(0, 0, 7).Format("2006-01-02")

	success, failed := 0, 0
	for _, p := range profiles {
		menu, err := g.GenerateWeeklyMenu(ctx, p)
		if err != nil {
			log.Printf("failed to generate menu for %s: %v", p.UserID, err)
			failed++
			continue
		}
		if err := g.SaveMenu(ctx, p.UserID, weekStart, menu); err != nil {
			log.Printf("failed to save menu for %s: %v", p.UserID, err)
			failed++
			continue
		}
		success++
	}
	log.Printf("menu batch completed. success: %d, errors: %d", success, failed)
	return success, failed, nil
}

func (g *Generator) record(ctx context.Context, latency time.Duration, failed bool) {
	if g.recorder == nil {
		return
	}
	err := g.recorder.Record(ctx, metrics.ExecutionMetric{
		AgentName: "MenuGenerator",
		Model:     "gemini",
		LatencyMS: latency.Milliseconds(),
		Fallback:  failed,
	})
	if err != nil {
		log.Printf("failed to record menu metric: %v", err)
	}
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func buildMenuPrompt(p *profile.Profile) (string, error) {
	tmpl, err := template.New("menu").Parse(menuPrompt)
	if err != nil {
		return "", err
	}

	data := menuPromptData{
		City:                p.Location.City,
		Country:             p.Location.Country,
		Adults:              p.Household.Adults,
		Children:            p.Household.Children,
		DietaryPreferences:  joinOrNone(p.DietaryPreferences),
		AllergiesDislikes:   joinOrNone(p.AllergiesDislikes),
		ScheduleDescription: describeSchedule(p.MealSchedule),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func describeSchedule(schedule profile.WeeklySchedule) string {
	var lines []string
	for _, day := range schedule.Days() {
		var meals []string
		if day.Meals.Breakfast {
			meals = append(meals, "Breakfast")
		}
		if day.Meals.Lunch {
			meals = append(meals, "Lunch")
		}
		if day.Meals.Dinner {
			meals = append(meals, "Dinner")
		}

		if len(meals) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", day.Name, strings.Join(meals, ", ")))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: No meals cooked at home", day.Name))
		}
	}
	return strings.Join(lines, "\n")
}
