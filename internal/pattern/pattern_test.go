package pattern

import "testing"

func TestInferDotConvention(t *testing.T) {
	samples := []string{"john.doe@x.com", "jane.smith@x.com"}
	if got := Infer(samples); got != "first.last" {
		t.Errorf("Infer = %q, want first.last", got)
	}
}

func TestSynthesizeFollowsConvention(t *testing.T) {
	cases := []struct {
		samples []string
		want    string
	}{
		{[]string{"john.doe@x.com", "jane.smith@x.com"}, "maria.rossi@x.com"},
		{[]string{"john_doe@x.com"}, "maria_rossi@x.com"},
		{[]string{"john-doe@x.com"}, "maria-rossi@x.com"},
	}
	for _, c := range cases {
		if got := Synthesize("María", "Rossi", c.samples, "x.com"); got != c.want {
			t.Errorf("Synthesize(%v) = %q, want %q", c.samples, got, c.want)
		}
	}
}

func TestSynthesizeRequiresSamples(t *testing.T) {
	if got := Synthesize("Jane", "Smith", nil, "x.com"); got != "" {
		t.Errorf("synthesized %q with no samples", got)
	}
}

func TestSynthesizeRequiresName(t *testing.T) {
	if got := Synthesize("", "Smith", []string{"a.b@x.com"}, "x.com"); got != "" {
		t.Errorf("synthesized %q with empty first name", got)
	}
}

func TestSynthesizeNoHypothesisMatch(t *testing.T) {
	if got := Synthesize("Jane", "Smith", []string{"J.D.42@x.com"}, "x.com"); got != "" {
		t.Errorf("synthesized %q from unmatchable samples", got)
	}
}

func TestBestObservedRanking(t *testing.T) {
	samples := []string{"info@x.com", "marketing.team@x.com", "director-office@x.com", "owner@x.com"}
	if got := BestObserved(samples); got != "owner@x.com" {
		t.Errorf("BestObserved = %q, want owner@x.com", got)
	}

	samples = []string{"info@x.com", "jane.smith@x.com"}
	if got := BestObserved(samples); got != "jane.smith@x.com" {
		t.Errorf("BestObserved = %q, want jane.smith@x.com", got)
	}

	if got := BestObserved(nil); got != "" {
		t.Errorf("BestObserved(nil) = %q, want empty", got)
	}
}
