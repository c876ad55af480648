package pageport_test

import (
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	t.Parallel()

	critical := pageport.DependencyCheck{Detected: true, Severity: pageport.SeverityCritical}
	warning := pageport.DependencyCheck{Detected: true, Severity: pageport.SeverityWarning}

	t.Run("exactly 100 with no checks", func(t *testing.T) {
		t.Parallel()

		score, ok := pageport.Score(nil)

		assert.Equal(t, 100, score)
		assert.True(t, ok)
	})

	t.Run("warnings cost 5 each", func(t *testing.T) {
		t.Parallel()

		score, ok := pageport.Score([]pageport.DependencyCheck{warning, warning})

		assert.Equal(t, 90, score)
		assert.True(t, ok)
	})

	t.Run("three warnings drop below plugin-free threshold", func(t *testing.T) {
		t.Parallel()

		score, ok := pageport.Score([]pageport.DependencyCheck{warning, warning, warning})

		assert.Equal(t, 85, score)
		assert.False(t, ok)
	})

	t.Run("any critical fails plugin-free", func(t *testing.T) {
		t.Parallel()

		score, ok := pageport.Score([]pageport.DependencyCheck{critical})

		assert.Equal(t, 80, score)
		assert.False(t, ok)
	})

	t.Run("never below zero", func(t *testing.T) {
		t.Parallel()

		checks := make([]pageport.DependencyCheck, 10)
		for i := range checks {
			checks[i] = critical
		}

		score, ok := pageport.Score(checks)

		assert.Equal(t, 0, score)
		assert.False(t, ok)
	})

	t.Run("undetected checks are ignored", func(t *testing.T) {
		t.Parallel()

		score, _ := pageport.Score([]pageport.DependencyCheck{{Detected: false, Severity: pageport.SeverityCritical}})

		assert.Equal(t, 100, score)
	})
}

func TestVerificationReport_CriticalCount(t *testing.T) {
	t.Parallel()

	r := &pageport.VerificationReport{Dependencies: []pageport.DependencyCheck{
		{Detected: true, Severity: pageport.SeverityCritical},
		{Detected: true, Severity: pageport.SeverityWarning},
		{Detected: false, Severity: pageport.SeverityCritical},
	}}

	assert.Equal(t, 1, r.CriticalCount())
}

func TestRemovedItem_String(t *testing.T) {
	t.Parallel()

	item := pageport.RemovedItem{Family: "elementor", Kind: pageport.RemovedClass, Detail: "elementor-widget"}

	assert.Equal(t, "[elementor] class: elementor-widget", item.String())
}
