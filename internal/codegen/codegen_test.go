package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeFor(t *testing.T) {
	cases := []struct {
		prefix   string
		label    string
		suffix   string
		expected string
	}{
		{prefix: "UF", expected: "UF"},
		{prefix: "TASA_SIS", expected: "TASA_SIS"},
		{prefix: "AFP", label: "Capital", suffix: "TRAB", expected: "AFP_CAPITAL_TRAB"},
		{prefix: "AFP", label: "  Plan   Vital ", suffix: "EMP", expected: "AFP_PLAN_VITAL_EMP"},
		{prefix: "AFP", label: "ProVida", suffix: "indep", expected: "AFP_PROVIDA_INDEP"},
		{prefix: "AFP", label: "Habitat (1)", suffix: "TOTAL", expected: "AFP_HABITAT_1_TOTAL"},
		{prefix: "CESANTIA", label: "11 años", suffix: "EMP", expected: "CESANTIA_11_ANOS_EMP"},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, CodeFor(test.prefix, test.label, test.suffix))
	}
}

func TestCodeForIsDeterministic(t *testing.T) {
	first := CodeFor("AFP", "Cuprum", "TOTAL")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, CodeFor("AFP", "Cuprum", "TOTAL"))
	}
	// a different upstream casing is still a different label
	require.NotEqual(t, CodeFor("AFP", "PlanVital", "TRAB"), CodeFor("AFP", "Plan Vital", "TRAB"))
}

func TestLabelTable(t *testing.T) {
	table := NewLabelTable(
		LabelEntry{Key: "CAPITAL", Aliases: []string{"Capital"}},
		LabelEntry{Key: "PLANVITAL", Aliases: []string{"PlanVital"}},
		LabelEntry{Key: "UNO", Aliases: []string{"Uno"}},
	)

	cases := []struct {
		label    string
		expected string
		ok       bool
	}{
		{label: "Capital", expected: "CAPITAL", ok: true},
		{label: "AFP Capital S.A.", expected: "CAPITAL", ok: true},
		{label: "Plan Vital", expected: "PLANVITAL", ok: true},
		{label: "PLANVITAL", expected: "PLANVITAL", ok: true},
		{label: "Capitol", expected: "CAPITAL", ok: true},
		{label: "Fondo Nuevo", ok: false},
		{label: "   ", ok: false},
	}

	for _, test := range cases {
		key, ok := table.Resolve(test.label)
		require.Equal(t, test.ok, ok, test.label)
		require.Equal(t, test.expected, key, test.label)
	}

	require.Equal(t, []string{"CAPITAL", "PLANVITAL", "UNO"}, table.Keys())
}

func TestLabelTableOrder(t *testing.T) {
	table := NewLabelTable(
		LabelEntry{Key: "11ANOS", Aliases: []string{"11 años"}},
		LabelEntry{Key: "INDEF", Aliases: []string{"Plazo Indefinido"}},
	)

	key, ok := table.Resolve("Trabajadores Plazo Indefinido 11 años o más")
	require.True(t, ok)
	require.Equal(t, "11ANOS", key)

	key, ok = table.Resolve("Plazo Indefinido")
	require.True(t, ok)
	require.Equal(t, "INDEF", key)
}
