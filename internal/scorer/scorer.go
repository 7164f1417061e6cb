package scorer

import (
	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// NeutralScore is assigned when no usable clinical signal exists, so
// such patients neither dominate nor starve in the assignment.
const NeutralScore = 50.0

// RegionUnknown is the region default when neither the patient record
// nor any hospital supplies one.
const RegionUnknown = "Unknown"

// Scorer derives a single comparable urgency score per patient from the
// triage rank, MEWS severity and time-to-criticality signals. It never
// fails: partially missing inputs walk a fallback ladder and always end
// at a finite score.
type Scorer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// ScoreAll enriches every patient in place with a priority score and a
// defaulted region. This is the only writer of PriorityScore.
func (s *Scorer) ScoreAll(patients []models.Patient, hospitals []models.Hospital) {
	defaultRegion := RegionUnknown
	if len(hospitals) > 0 {
		defaultRegion = hospitals[0].Region
	}

	for i := range patients {
		p := &patients[i]
		if p.Region == "" {
			p.Region = defaultRegion
		}
		p.PriorityScore = s.score(p)
	}

	s.logger.Info("Scored patient snapshot",
		zap.Int("patients", len(patients)),
	)
}

// score applies the scoring formula, or the fallback ladder when
// signals are missing:
//
//	all three signals:  (5-rank)*5 + mews*2 + 60/(minutes+1)
//	derived severity:   severity * 10
//	nothing usable:     NeutralScore
func (s *Scorer) score(p *models.Patient) float64 {
	if p.TriageRank != nil && p.MEWSScore != nil && p.TimeCriticality != nil {
		minutes := *p.TimeCriticality
		if minutes < 0 {
			minutes = 0
		}
		return float64(5-*p.TriageRank)*5 + *p.MEWSScore*2 + 60/(minutes+1)
	}
	if p.DerivedSeverity != nil {
		return *p.DerivedSeverity * 10
	}
	return NeutralScore
}
