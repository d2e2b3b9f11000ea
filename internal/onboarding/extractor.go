package onboarding

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/JimmyUA/menu-master/internal/llm"
	"github.com/JimmyUA/menu-master/internal/metrics"
	"github.com/JimmyUA/menu-master/internal/profile"
)

//go:embed extraction_prompt.md
var extractionPrompt string

const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 512
)

// Extractor converts a finished conversation transcript into a structured
// profile using a low-temperature, JSON-constrained generation request.
type Extractor struct {
	textGen  llm.TextGenerator
	recorder metrics.Recorder
}

// NewExtractor creates an Extractor. recorder may be nil; when set, fallback
// substitutions are recorded so silent degradation stays observable.
func NewExtractor(textGen llm.TextGenerator, recorder metrics.Recorder) *Extractor {
	return &Extractor{textGen: textGen, recorder: recorder}
}

// extractedData mirrors the JSON payload requested from the model.
type extractedData struct {
	Household          json.RawMessage            `json:"household"`
	DietaryPreferences []string                   `json:"dietary_preferences"`
	AllergiesDislikes  []string                   `json:"allergies_dislikes"`
	MealSchedule       map[string]json.RawMessage `json:"meal_schedule"`
}

// Extract returns a fully populated, schema-valid profile shaped from the
// transcript, minus UserID which the caller supplies. On generation or parse
// failure a conservative default payload is substituted: a degraded profile
// is preferred over blocking account creation.
func (e *Extractor) Extract(ctx context.Context, turns []ChatTurn, location profile.Location) *profile.Profile {
	start := time.Now()
	data, fellBack := e.extract(ctx, turns)
	e.record(ctx, time.Since(start), fellBack)

	p := &profile.Profile{
		Location:           location,
		Household:          parseHousehold(data.Household),
		DietaryPreferences: data.DietaryPreferences,
		AllergiesDislikes:  data.AllergiesDislikes,
		MealSchedule:       parseSchedule(data.MealSchedule),
		CreatedAt:          time.Now().UTC(),
	}

	if len(p.DietaryPreferences) == 0 {
		p.DietaryPreferences = profile.DefaultCuisines(location.Country)
	}
	if p.AllergiesDislikes == nil {
		p.AllergiesDislikes = []string{}
	}
	return p
}

func (e *Extractor) extract(ctx context.Context, turns []ChatTurn) (extractedData, bool) {
	prompt, err := buildExtractionPrompt(turns)
	if err != nil {
		log.Printf("failed to build extraction prompt: %v", err)
		return extractedData{}, true
	}

	response, err := e.textGen.GenerateText(ctx, prompt, llm.GenerateOptions{
		Temperature:     extractionTemperature,
		MaxOutputTokens: extractionMaxTokens,
		JSONResponse:    true,
	})
	if err != nil {
		log.Printf("profile extraction generation failed, using defaults: %v", err)
		return extractedData{}, true
	}

	var data extractedData
	if err := json.Unmarshal([]byte(response), &data); err != nil {
		log.Printf("failed to parse extraction payload, using defaults: %v. Response: %s", err, response)
		return extractedData{}, true
	}
	return data, false
}

func (e *Extractor) record(ctx context.Context, latency time.Duration, fellBack bool) {
	if e.recorder == nil {
		return
	}
	err := e.recorder.Record(ctx, metrics.ExecutionMetric{
		AgentName: "ProfileExtractor",
		Model:     "gemini",
		LatencyMS: latency.Milliseconds(),
		Fallback:  fellBack,
	})
	if err != nil {
		log.Printf("failed to record extraction metric: %v", err)
	}
}

// parseHousehold applies the defaults (1 adult, 0 children) for missing
// fields and clamps negatives so the result is always schema-valid.
func parseHousehold(raw json.RawMessage) profile.Household {
	household := profile.Household{Adults: 1, Children: 0}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &household); err != nil {
			return profile.Household{Adults: 1, Children: 0}
		}
	}
	if household.Adults < 0 {
		household.Adults = 0
	}
	if household.Children < 0 {
		household.Children = 0
	}
	return household
}

// parseSchedule builds the weekly schedule from the extracted per-day
// payloads. Unstated days and unstated meal slots keep the default of
// cooking dinner only.
func parseSchedule(raw map[string]json.RawMessage) profile.WeeklySchedule {
	schedule := profile.DefaultWeeklySchedule()

	parseDay := func(name string, target *profile.DailyMeals) {
		day, ok := raw[name]
		if !ok {
			return
		}
		meals := profile.DefaultDailyMeals()
		if err := json.Unmarshal(day, &meals); err != nil {
			return
		}
		*target = meals
	}

	parseDay("monday", &schedule.Monday)
	parseDay("tuesday", &schedule.Tuesday)
	parseDay("wednesday", &schedule.Wednesday)
	parseDay("thursday", &schedule.Thursday)
	parseDay("friday", &schedule.Friday)
	parseDay("saturday", &schedule.Saturday)
	parseDay("sunday", &schedule.Sunday)

	return schedule
}

func buildExtractionPrompt(turns []ChatTurn) (string, error) {
	tmpl, err := template.New("extraction").Parse(extractionPrompt)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, turn := range turns {
		prefix := "Assistant"
		if turn.Role == llm.RoleUser {
			prefix = "User"
		}
		lines = append(lines, prefix+": "+turn.Text)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct{ Conversation string }{Conversation: strings.Join(lines, "\n")})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
