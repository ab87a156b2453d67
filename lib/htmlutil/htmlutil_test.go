package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func findFirst(node *html.Node, tag string) *html.Node {
	if node.Type == html.ElementNode && node.Data == tag {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestTextExtraction(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<table><tr><td>Tasa SIS <b>1,49%</b> vigente</td></tr></table>`,
	))
	require.NoError(t, err)

	td := findFirst(doc, "td")
	require.NotNil(t, td)
	require.Equal(t, "Tasa SIS 1,49% vigente", GetText(td))
	require.Equal(t, "Tasa SIS  vigente", GetOwnText(td))
	require.Equal(t, "", GetOwnText(nil))
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "  Plazo Indefinido \n", expected: "Plazo Indefinido"},
		{input: "\tCapital\t", expected: "Capital"},
		{input: "Trab.   Dependientes\n\n e Independientes", expected: "Trab. Dependientes e Independientes"},
		{input: "\u00a0", expected: ""},
		{input: "ProVida\u200b", expected: "ProVida"},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, Normalize(test.input))
	}
}
