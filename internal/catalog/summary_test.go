package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/models"
)

func TestSummarize(t *testing.T) {
	got := catalog.Summarize([]models.Project{
		{Title: "Shop", Category: "Web", Description: "store", TechStack: []string{"Go", "React"}},
		{Title: "Bot", Category: "AI", Description: "assistant"},
	})
	assert.Equal(t, "- Shop (Web): store. Stack: Go, React\n- Bot (AI): assistant. Stack: ", got)
	assert.Equal(t, "", catalog.Summarize(nil))
}

func TestParseTechStack(t *testing.T) {
	assert.Equal(t, []string{"React", "Three.js", "Go"}, catalog.ParseTechStack(" React, Three.js ,,Go "))
	assert.Equal(t, []string{}, catalog.ParseTechStack(""))
}
