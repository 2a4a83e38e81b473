// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the natural-language prompts sent to the
// conversational business-search API: the initial search prompt and the
// refine and coach follow-ups that embed compacted context.
package prompt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/pdiddy/feastfit/pkg/types"
)

// searchPromptTmpl asks for macro-friendly restaurants with one concrete
// dish per business and a rough macro estimate the extractor can mine.
var searchPromptTmpl = template.Must(template.New("search").Parse(`You are FeastFit, a fitness nutrition guide. Recommend nearby restaurants that are macro-friendly and work well for someone tracking calories and protein.

Target for this single meal: about {{.Calories}} calories and at least {{.Protein}}g protein.
Dietary preference: {{.Diet}}.
{{- if .Radius}}
Keep suggestions within about {{.Radius}} meters.
{{- end}}
{{- if .Price}}
Preferred price levels: {{.Price}}.
{{- end}}

Prioritize:
- higher-protein mains (grilled or lean meats, fish, tofu, legumes)
- bowls, plates, or salads with a clear protein anchor
- fewer deep-fried or ultra-heavy options by default

This meal is {{.MealType}}.
User is in the mood for: "{{.Query}}".

For each recommended restaurant, also describe ONE specific macro-friendly dish or way to order there (for example, "grilled chicken bowl with extra veggies, light sauce") and briefly explain why it fits the calorie/protein goal with a rough qualitative macro estimate (e.g. "roughly 550–650 kcal, 35–45g protein").

Return businesses that are a good fit for this goal and craving.`))

// refinePromptTmpl re-explains prior results under a new constraint.
var refinePromptTmpl = template.Must(template.New("refine").Parse(`You are FeastFit, a nutrition coach.
User is in {{.Location}} aiming for ~{{.Calories}} kcal and >= {{.Protein}}g protein.
Diet: {{.Diet}}.
Original search: "{{.Query}}".
You will see a small list of restaurants with approximate macros.
Briefly respond to the user's refinement, suggest adjustments, and mention 2–3 restaurants from the list as examples.
Do not invent new restaurants.

User refinement: "{{.Message}}".
Restaurants (compact JSON): {{.Restaurants}}`))

// coachPromptTmpl answers a question using the last search and today's logs.
var coachPromptTmpl = template.Must(template.New("coach").Parse(`You are FeastFit's Meal Coach. The user's targets are roughly {{.Calories}} kcal and at least {{.Protein}}g protein per meal, with diet preference: {{.Diet}}.
{{if .HasSearch -}}
Their last search was for "{{.Query}}" in {{.Location}}. Below is a compact list of the restaurants they saw: {{.Restaurants}}.
{{- else -}}
No recent search data.
{{- end}}
{{if .LogCount -}}
Today they have already logged {{.LogCount}} meal(s), totaling about {{.LoggedCalories}} kcal and {{.LoggedProtein}}g protein.
{{- else -}}
No meals logged today.
{{- end}}
Your job is to:
- Briefly acknowledge what they asked.
- Give personalized advice using the above context (logged meals, last search, targets).
- Do NOT invent restaurants; only mention those in the provided list.
- Keep answers concise and actionable.

User message: "{{.Message}}"`))

// BuildSearch renders the search prompt for req and returns it with the
// geo context. The coordinate is the configured placeholder.
func BuildSearch(req types.SearchRequest, geo types.GeoConfig) (string, types.GeoContext, error) {
	mealType := req.MealType
	if mealType == "" {
		mealType = types.DefaultMealType
	}

	data := struct {
		Calories string
		Protein  string
		Diet     string
		Radius   int
		Price    string
		MealType types.MealType
		Query    string
	}{
		Calories: FormatNumber(req.CaloriesTarget),
		Protein:  FormatNumber(req.ProteinMin),
		Diet:     orDefault(req.Diet, "none specified"),
		Radius:   req.RadiusMeters,
		Price:    formatPriceLevels(req.PriceLevels),
		MealType: mealType,
		Query:    req.Query,
	}

	text, err := render(searchPromptTmpl, data)
	if err != nil {
		return "", types.GeoContext{}, err
	}

	lat, lon := geo.Latitude, geo.Longitude
	return text, types.GeoContext{
		Locale:    orDefault(geo.Locale, "en_US"),
		Latitude:  &lat,
		Longitude: &lon,
	}, nil
}

// RefineInput is the context embedded in a refine prompt. Restaurants is
// already-compacted JSON.
type RefineInput struct {
	Location    string
	Calories    float64
	Protein     float64
	Diet        string
	Query       string
	Message     string
	Restaurants string
}

// BuildRefine renders the refine prompt.
func BuildRefine(in RefineInput) (string, error) {
	return render(refinePromptTmpl, struct {
		Location, Calories, Protein, Diet, Query, Message, Restaurants string
	}{
		Location:    in.Location,
		Calories:    FormatNumber(in.Calories),
		Protein:     FormatNumber(in.Protein),
		Diet:        orDefault(in.Diet, "none"),
		Query:       in.Query,
		Message:     in.Message,
		Restaurants: in.Restaurants,
	})
}

// CoachInput is the context embedded in a coach prompt. When HasSearch is
// false the target fields are rendered as "unknown".
type CoachInput struct {
	HasSearch      bool
	Location       string
	Calories       float64
	Protein        float64
	Diet           string
	Query          string
	Restaurants    string
	LogCount       int
	LoggedCalories float64
	LoggedProtein  float64
	Message        string
}

// BuildCoach renders the coach prompt.
func BuildCoach(in CoachInput) (string, error) {
	calories, protein := "unknown", "unknown"
	if in.HasSearch {
		calories = FormatNumber(in.Calories)
		protein = FormatNumber(in.Protein)
	}
	return render(coachPromptTmpl, struct {
		HasSearch      bool
		Location       string
		Calories       string
		Protein        string
		Diet           string
		Query          string
		Restaurants    string
		LogCount       int
		LoggedCalories string
		LoggedProtein  string
		Message        string
	}{
		HasSearch:      in.HasSearch,
		Location:       in.Location,
		Calories:       calories,
		Protein:        protein,
		Diet:           orDefault(in.Diet, "none"),
		Query:          in.Query,
		Restaurants:    in.Restaurants,
		LogCount:       in.LogCount,
		LoggedCalories: FormatNumber(in.LoggedCalories),
		LoggedProtein:  FormatNumber(in.LoggedProtein),
		Message:        in.Message,
	})
}

// FormatNumber prints whole numbers without a decimal point and keeps
// fractional values as short as possible.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPriceLevels renders levels 1..4 as dollar signs; others are dropped.
func formatPriceLevels(levels []int) string {
	if len(levels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		if l >= 1 && l <= 4 {
			parts = append(parts, strings.Repeat("$", l))
		}
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
