// Package diet generates brain-health-friendly meal plans and caches the last plan per meal.
package diet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/at-ishikawa/neuronest/internal/clock"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/kvstore"
)

type Meal string

const (
	Breakfast Meal = "Breakfast"
	Lunch     Meal = "Lunch"
	Dinner    Meal = "Dinner"
)

var Meals = []Meal{Breakfast, Lunch, Dinner}

const (
	CacheKeyPrefix = "neuronest.diet.cache."
	DefaultBudget  = "budget"
)

// ParseMeal accepts a meal name in any letter case.
func ParseMeal(s string) (Meal, error) {
	for _, m := range Meals {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown meal %q: must be one of Breakfast, Lunch, Dinner", s)
}

type CachedMeal struct {
	Meal    Meal      `json:"meal"`
	Text    string    `json:"text"`
	SavedAt time.Time `json:"savedAt"`
}

const systemPrompt = `You are Neuronest AI diet coach.
Target user: American (US grocery stores like Walmart/Costco/Kroger are OK).
Do NOT provide medical diagnosis or medical claims.
Focus on practical, affordable, brain-health-friendly meals.
Keep output structured and easy to follow.
Use US units (cups, tbsp, oz, lb).`

type Planner struct {
	client inference.Client
	store  kvstore.Store
	clock  clock.Clock
}

func NewPlanner(client inference.Client, store kvstore.Store, c clock.Clock) *Planner {
	return &Planner{client: client, store: store, clock: c}
}

// Generate asks for a new plan and caches it. An empty budget means DefaultBudget.
func (p *Planner) Generate(ctx context.Context, meal Meal, budget string, caloriesHint string) (CachedMeal, error) {
	text, err := p.client.Generate(ctx, inference.GenerateRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt(meal, budget, caloriesHint),
	})
	if err != nil {
		return CachedMeal{}, fmt.Errorf("client.Generate() > %w", err)
	}

	item := CachedMeal{Meal: meal, Text: text, SavedAt: p.clock.Now()}
	if err := kvstore.SetJSON(ctx, p.store, cacheKey(meal), item); err != nil {
		return CachedMeal{}, fmt.Errorf("kvstore.SetJSON() > %w", err)
	}
	return item, nil
}

// Cached returns the stored plan for meal. A corrupt entry reads as absent.
func (p *Planner) Cached(ctx context.Context, meal Meal) (CachedMeal, bool, error) {
	item, ok, err := kvstore.GetJSON[CachedMeal](ctx, p.store, cacheKey(meal))
	if err != nil {
		return CachedMeal{}, false, fmt.Errorf("kvstore.GetJSON() > %w", err)
	}
	return item, ok, nil
}

func (p *Planner) Delete(ctx context.Context, meal Meal) error {
	if err := p.store.Delete(ctx, cacheKey(meal)); err != nil {
		return fmt.Errorf("store.Delete() > %w", err)
	}
	return nil
}

func (p *Planner) ClearAll(ctx context.Context) error {
	for _, meal := range Meals {
		if err := p.Delete(ctx, meal); err != nil {
			return err
		}
	}
	return nil
}

func userPrompt(meal Meal, budget string, caloriesHint string) string {
	if strings.TrimSpace(budget) == "" {
		budget = DefaultBudget
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Create a brain-health-friendly %s plan.\n\n", meal)
	b.WriteString(`Requirements:
1) Menu name: 1 main dish + 2 sides + 1 drink option
2) Ingredients list with approximate amounts (US units)
3) Step-by-step cooking instructions
4) Time estimate (prep + cook)
5) Why it supports brain health (short, non-medical)
6) Budget tip (how to keep it cheap in the US)
7) "Swap options" (2 simple substitutions)

Style:
- concise but complete
- no extra long essays
- no medical claims
`)
	fmt.Fprintf(&b, "Budget level: %s", budget)
	if hint := strings.TrimSpace(caloriesHint); hint != "" {
		fmt.Fprintf(&b, "\nCalories preference (optional): %s", hint)
	}
	return b.String()
}

func cacheKey(meal Meal) string {
	return CacheKeyPrefix + string(meal)
}
