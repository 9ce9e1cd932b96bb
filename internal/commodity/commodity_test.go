package commodity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// sunflower family
		{"Sunflower Seeds Meal", "SFS_MEAL"},
		{"sunflower meal pellets", "SFS_MEAL"},
		{"Sun-flower oil crude", "SFS_OIL"},
		{"SUNFLOWER SEEDS", "SFS"},
		// rapeseed family
		{"RAPESEED MEAL", "RPS_MEAL"},
		{"Canola Oil", "RPS_OIL"},
		{"Rape seed", "RPS"},
		{"canola", "RPS"},
		// corn
		{"Maize", "CORN"},
		{"yellow corn", "CORN"},
		// pass-through
		{"Durum Wheat", "Durum Wheat"},
		{"  Feed Barley ", "Feed Barley"},
		{"Oilseed mix", "Oilseed mix"},
		{"Cornflakes", "Cornflakes"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRules_Individually(t *testing.T) {
	samples := map[string]string{
		"sunflower meal": "sunflower meal",
		"sunflower oil":  "sunflower oil",
		"sunflower":      "sunflower seeds",
		"rapeseed meal":  "rapeseed meal",
		"rapeseed oil":   "rapeseed oil",
		"rapeseed":       "rapeseed",
		"corn":           "corn",
	}
	for _, r := range Rules {
		sample, ok := samples[r.Name]
		if !ok {
			t.Errorf("rule %q has no sample", r.Name)
			continue
		}
		if !r.Matches(sample) {
			t.Errorf("rule %q does not match %q", r.Name, sample)
		}
		if r.Matches("durum wheat") {
			t.Errorf("rule %q matches durum wheat", r.Name)
		}
	}
}

func TestRules_QualifierBeforeBare(t *testing.T) {
	seen := make(map[Taxon]int)
	for i, r := range Rules {
		seen[r.Taxon] = i
	}
	pairs := [][2]Taxon{{SFSMeal, SFS}, {SFSOil, SFS}, {RPSMeal, RPS}, {RPSOil, RPS}}
	for _, p := range pairs {
		if seen[p[0]] > seen[p[1]] {
			t.Errorf("%s is tested after %s", p[0], p[1])
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"Sunflower Seeds Meal", "Canola Oil", "Maize", "Durum Wheat"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(%q) = %q, then %q", in, once, twice)
		}
	}
	for _, taxon := range Taxa {
		if !IsTaxon(string(taxon)) {
			t.Errorf("IsTaxon(%s) = false", taxon)
		}
		if got := Normalize(" " + string(taxon) + " "); got != string(taxon) {
			t.Errorf("Normalize(%s) = %q, want it unchanged", taxon, got)
		}
	}
	if IsTaxon("Durum Wheat") {
		t.Error("IsTaxon(Durum Wheat) = true")
	}
}
