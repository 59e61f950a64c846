package inputval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"centralita@radiotaxi.example",
		"ana.garcia+turnos@example.com",
		"admin@localhost",
	}
	for _, s := range valid {
		assert.True(t, IsValidEmail(s), s)
	}

	invalid := []string{
		"",
		"   ",
		"ana",
		"ana@",
		"@example.com",
		"ana..garcia@example.com",
		"Ana Garcia <ana@example.com>",
		"ana @example.com",
	}
	for _, s := range invalid {
		assert.False(t, IsValidEmail(s), s)
	}
}

func TestIsValidDateAndHour(t *testing.T) {
	assert.True(t, IsValidDate("2026-02-28"))
	assert.False(t, IsValidDate("2026-02-30"))
	assert.False(t, IsValidDate("28/02/2026"))

	assert.True(t, IsValidHour("07:05"))
	assert.True(t, IsValidHour("23:59"))
	assert.False(t, IsValidHour("7:05"))
	assert.False(t, IsValidHour("24:00"))
	assert.False(t, IsValidHour("07:05:00"))
}
