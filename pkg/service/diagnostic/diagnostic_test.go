package diagnostic_test

import (
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/service/diagnostic"
	"github.com/m-mizutani/gt"
)

func TestSuggestCategories(t *testing.T) {
	cases := []struct {
		problem  string
		category diagnostic.Category
	}{
		{"the app cannot connect to the server", diagnostic.CategoryConnection},
		{"my wifi keeps dropping", diagnostic.CategoryConnection},
		{"it shows error 500 and then crashes", diagnostic.CategoryError},
		{"the program stopped working after the update", diagnostic.CategoryError},
		{"everything is painfully slow today", diagnostic.CategoryPerformance},
		{"the dashboard takes forever to load", diagnostic.CategoryPerformance},
		{"something odd is happening with my account", diagnostic.CategoryGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.problem, func(t *testing.T) {
			category, steps := diagnostic.Suggest(tc.problem)
			gt.Equal(t, category, tc.category)
			gt.Number(t, len(steps)).Greater(0)
		})
	}
}

func TestSuggestReturnsCopy(t *testing.T) {
	_, first := diagnostic.Suggest("cannot connect")
	first[0] = "mutated"

	_, second := diagnostic.Suggest("cannot connect")
	gt.Bool(t, second[0] == "mutated").False()
}
