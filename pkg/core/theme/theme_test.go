package theme

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Theme
	}{
		{"cyber", "A data breach or ransomware attack could disrupt operations and expose customer data.", Cybersecurity},
		{"regulatory", "Changes in legislation and government compliance requirements increase costs.", Regulatory},
		{"supply chain", "We depend on a single supplier and global logistics; a shortage of raw material would hurt production.", SupplyChain},
		{"macro", "A recession, rising inflation, or higher interest rate environments reduce demand.", Macro},
		{"talent", "Failure to retain key personnel or hire skilled employees across our workforce.", Talent},
		{"no keywords", "The quick brown fox jumps over the lazy dog.", Other},
		{"empty", "", Other},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyTieBreaksByTaxonomyOrder(t *testing.T) {
	// One cybersecurity keyword and one litigation keyword: cybersecurity is
	// declared earlier and must win the tie.
	text := "A malware incident could trigger a lawsuit."
	if got := Classify(text); got != Cybersecurity {
		t.Errorf("tie should go to the earlier theme, got %q", got)
	}
}

func TestTaxonomyCoverage(t *testing.T) {
	for _, th := range Taxonomy {
		kws := Keywords(th)
		if len(kws) < 4 {
			t.Errorf("theme %q has %d keywords, want at least 4", th, len(kws))
		}
	}
	if Keywords(Other) != nil {
		t.Error("Other must not have keywords; it is the zero-score fallback")
	}
}
