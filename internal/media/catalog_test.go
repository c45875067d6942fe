package media

import (
	"errors"
	"testing"
	"time"
)

func testItem(id string, phase Phase, quality int) Item {
	return Item{
		ID:           id,
		SessionID:    "s1",
		Kind:         KindImage,
		Timestamp:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Phase:        phase,
		QualityScore: quality,
	}
}

// --- Catalog Tests ---

func TestLoad_ExcludesFilteredItems(t *testing.T) {
	filtered := testItem("m2", PhaseOperative, 20)
	filtered.IsFiltered = true

	c, err := Load([]Item{
		testItem("m1", PhaseOperative, 80),
		filtered,
		testItem("m3", PhaseClosure, 70),
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 catalog items, got %d", c.Len())
	}
	if c.Contains("m2") {
		t.Error("filtered item m2 should not be in the catalog")
	}
	if _, err := c.ByID("m2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for filtered item, got %v", err)
	}
}

func TestLoad_DuplicateIDFails(t *testing.T) {
	_, err := Load([]Item{
		testItem("m1", PhaseOperative, 80),
		testItem("m1", PhaseClosure, 70),
	})
	if err == nil {
		t.Fatal("expected error for duplicate id, got nil")
	}
}

func TestByID(t *testing.T) {
	c, err := Load([]Item{testItem("m1", PhaseOperative, 80)})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	it, err := c.ByID("m1")
	if err != nil {
		t.Fatalf("ByID(m1) returned error: %v", err)
	}
	if it.QualityScore != 80 {
		t.Errorf("expected quality 80, got %d", it.QualityScore)
	}

	if _, err := c.ByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestByPhase_InsertionOrder(t *testing.T) {
	c, err := Load([]Item{
		testItem("m1", PhaseOperative, 80),
		testItem("m2", PhaseClosure, 60),
		testItem("m3", PhaseOperative, 70),
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	operative := c.ByPhase(PhaseOperative)
	if len(operative) != 2 {
		t.Fatalf("expected 2 operative items, got %d", len(operative))
	}
	if operative[0].ID != "m1" || operative[1].ID != "m3" {
		t.Errorf("expected insertion order [m1 m3], got [%s %s]", operative[0].ID, operative[1].ID)
	}

	if got := c.ByPhase(PhasePreparation); len(got) != 0 {
		t.Errorf("expected no preparation items, got %d", len(got))
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, err := Load([]Item{testItem("m1", PhaseOperative, 80)})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	all := c.All()
	all[0].ID = "mutated"

	it, _ := c.ByID("m1")
	if it.ID != "m1" {
		t.Error("mutating All() result changed the catalog")
	}
}

func TestSortByTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "late", Timestamp: base.Add(2 * time.Hour)},
		{ID: "early", Timestamp: base},
		{ID: "mid", Timestamp: base.Add(time.Hour)},
	}
	SortByTimestamp(items)

	want := []string{"early", "mid", "late"}
	for i, w := range want {
		if items[i].ID != w {
			t.Errorf("position %d: expected %s, got %s", i, w, items[i].ID)
		}
	}
}

// --- Phase Tests ---

func TestPhases_OrderAndValidity(t *testing.T) {
	phases := Phases()
	if len(phases) != 5 {
		t.Fatalf("expected 5 phases, got %d", len(phases))
	}
	if phases[0] != PhasePreparation || phases[4] != PhaseClosure {
		t.Errorf("unexpected phase order: %v", phases)
	}
	for i, p := range phases {
		if !p.Valid() {
			t.Errorf("phase %s should be valid", p)
		}
		if p.Ordinal() != i {
			t.Errorf("phase %s ordinal: expected %d, got %d", p, i, p.Ordinal())
		}
		if p.DisplayName() == "" {
			t.Errorf("phase %s has no display name", p)
		}
	}
	if Phase("bogus").Valid() {
		t.Error("unknown phase should not be valid")
	}
	if Phase("bogus").Ordinal() != -1 {
		t.Error("unknown phase ordinal should be -1")
	}
}

// --- Ranking Tests ---

func TestImportance_OperativeOutranksPreparation(t *testing.T) {
	op := testItem("a", PhaseOperative, 70)
	prep := testItem("b", PhasePreparation, 70)
	if Importance(op) <= Importance(prep) {
		t.Errorf("operative item should outrank preparation at equal quality: %d vs %d",
			Importance(op), Importance(prep))
	}
}

func TestImportance_SuggestedBonus(t *testing.T) {
	plain := testItem("a", PhaseExploration, 60)
	suggested := plain
	suggested.AISuggested = true
	if Importance(suggested) <= Importance(plain) {
		t.Error("AI-suggested item should score higher than the same item unsuggested")
	}
}

func TestImportance_Bounds(t *testing.T) {
	best := testItem("a", PhaseOperative, 100)
	best.AISuggested = true
	if got := Importance(best); got < 0 || got > 100 {
		t.Errorf("importance out of range: %d", got)
	}
	worst := testItem("b", PhasePreparation, 0)
	if got := Importance(worst); got < 0 || got > 100 {
		t.Errorf("importance out of range: %d", got)
	}
}

func TestRankByImportance_DescendingAndStable(t *testing.T) {
	items := []Item{
		testItem("low", PhasePreparation, 30),
		testItem("high", PhaseOperative, 90),
		testItem("mid", PhaseExploration, 60),
	}
	ranked := RankByImportance(items)

	if ranked[0].ID != "high" || ranked[2].ID != "low" {
		t.Errorf("unexpected ranking order: %s %s %s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	for i := 1; i < len(ranked); i++ {
		if Importance(ranked[i-1]) < Importance(ranked[i]) {
			t.Errorf("ranking not descending at position %d", i)
		}
	}
	// Input must be untouched.
	if items[0].ID != "low" {
		t.Error("RankByImportance mutated its input")
	}
}
