package tourney

import "testing"

func TestBanchoFormula(t *testing.T) {
	f, ok := FormulaByID(BanchoFormulaID)
	if !ok {
		t.Fatal("bancho formula not registered")
	}
	if f.Name() != "bancho" {
		t.Fatalf("name = %q", f.Name())
	}

	base := Score{Score: 700000, Accuracy: 95}
	pp := f.Calculate(base)
	if pp <= 0 {
		t.Fatalf("pp = %v, want positive", pp)
	}

	better := base
	better.Accuracy = 99
	if f.Calculate(better) <= pp {
		t.Fatal("higher accuracy must yield more pp")
	}

	fc := base
	fc.FullCombo = true
	if f.Calculate(fc) <= pp {
		t.Fatal("full combo must yield more pp")
	}

	missed := base
	missed.NumMisses = 10
	if f.Calculate(missed) >= pp {
		t.Fatal("misses must cost pp")
	}

	if got := f.Calculate(Score{}); got != 0 {
		t.Fatalf("empty score pp = %v, want 0", got)
	}
}

func TestFormulaRegistry(t *testing.T) {
	all := Formulas()
	if len(all) == 0 || all[0].ID() != BanchoFormulaID {
		t.Fatalf("formulas = %+v", all)
	}
	if _, ok := FormulaByID(12345); ok {
		t.Fatal("unknown id resolved")
	}
}
