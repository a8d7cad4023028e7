package tourney

import (
	"math"
	"sort"
	"sync"
)

// Formula converts a submitted score into performance points. Stages pin a
// formula id at creation so recalculating old stages stays reproducible even
// after new formulas ship.
type Formula interface {
	ID() int
	Name() string
	Calculate(s Score) float64
}

// BanchoFormulaID is the default formula for new stages.
const BanchoFormulaID = 1

var (
	formulaMu sync.RWMutex
	formulas  = map[int]Formula{
		BanchoFormulaID: banchoFormula{},
	}
)

// RegisterFormula adds a formula to the registry. Re-registering an id
// replaces the previous entry.
func RegisterFormula(f Formula) {
	formulaMu.Lock()
	defer formulaMu.Unlock()
	formulas[f.ID()] = f
}

// FormulaByID resolves a formula id.
func FormulaByID(fid int) (Formula, bool) {
	formulaMu.RLock()
	defer formulaMu.RUnlock()
	f, ok := formulas[fid]
	return f, ok
}

// Formulas lists the registered formulas ordered by id.
func Formulas() []Formula {
	formulaMu.RLock()
	defer formulaMu.RUnlock()
	out := make([]Formula, 0, len(formulas))
	for _, f := range formulas {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// banchoFormula approximates ppv2 from the fields a submission carries.
// Proper ppv2 needs the map's full difficulty attributes; this estimate uses
// only accuracy, combo and misses, which is enough to rank plays of the same
// map within a stage. Mod multipliers are already baked into the raw score.
type banchoFormula struct{}

func (banchoFormula) ID() int      { return BanchoFormulaID }
func (banchoFormula) Name() string { return "bancho" }

func (banchoFormula) Calculate(s Score) float64 {
	if s.Score <= 0 || s.Accuracy <= 0 {
		return 0
	}
	base := float64(s.Score) / 25000.0
	accFactor := math.Pow(s.Accuracy/100.0, 4)
	comboBonus := 1.0
	if s.FullCombo {
		comboBonus = 1.12
	}
	missPenalty := math.Pow(0.97, float64(s.NumMisses))
	pp := base * accFactor * comboBonus * missPenalty
	return math.Round(pp*100) / 100
}
