package textnorm

import (
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"empty":              {input: "", expected: ""},
		"ascii_lowercase":    {input: "Sopa de Verduras", expected: "sopa de verduras"},
		"uppercase_accent":   {input: "CAFÉ", expected: "cafe"},
		"spanish_vowels":     {input: "Ají de Gallina á é í ó ú", expected: "aji de gallina a e i o u"},
		"enie":               {input: "Año", expected: "ano"},
		"dieresis":           {input: "Pingüino", expected: "pinguino"},
		"decomposed_input":   {input: "cafe\u0301", expected: "cafe"},
		"non_letters_intact": {input: "Menú #3 (S/ 12.50)", expected: "menu #3 (s/ 12.50)"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	if Normalize("CAFÉ") != Normalize("cafe") {
		t.Errorf("expected CAFÉ and cafe to normalize equally, got %q and %q", Normalize("CAFÉ"), Normalize("cafe"))
	}
}

func TestValue(t *testing.T) {
	tests := map[string]struct {
		input    interface{}
		expected string
	}{
		"nil":    {input: nil, expected: ""},
		"string": {input: "Ensalada", expected: "ensalada"},
		"number": {input: 42.0, expected: ""},
		"bool":   {input: true, expected: ""},
		"map":    {input: map[string]interface{}{"a": "b"}, expected: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Value(tc.input); got != tc.expected {
				t.Errorf("Value(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestHighlight(t *testing.T) {
	tests := map[string]struct {
		input    string
		needle   string
		expected string
	}{
		"simple":         {input: "Sopa de verduras", needle: "sopa", expected: "<mark>Sopa</mark> de verduras"},
		"accented":       {input: "Café con leche", needle: "cafe", expected: "<mark>Café</mark> con leche"},
		"multiple":       {input: "papa a la papa", needle: "papa", expected: "<mark>papa</mark> a la <mark>papa</mark>"},
		"decomposed":     {input: "cafe\u0301 negro", needle: "cafe", expected: "<mark>cafe\u0301</mark> negro"},
		"no_match":       {input: "Ensalada", needle: "sopa", expected: "Ensalada"},
		"middle_of_word": {input: "Ají de gallina", needle: "aji", expected: "<mark>Ají</mark> de gallina"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Highlight(tc.input, tc.needle, "<mark>", "</mark>")
			if got != tc.expected {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tc.input, tc.needle, got, tc.expected)
			}
		})
	}
}

func TestFindEmpty(t *testing.T) {
	if spans := Find("", "a"); spans != nil {
		t.Errorf("expected no spans for empty input, got %v", spans)
	}
	if spans := Find("abc", ""); spans != nil {
		t.Errorf("expected no spans for empty needle, got %v", spans)
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := Normalize("Árbol Ñandú"); got != "arbol nandu" {
					t.Errorf("unexpected normalization %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
