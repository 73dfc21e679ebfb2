package game

import "go.uber.org/zap"

// RegenZones are the maps that carry the phase-linked gate network.
var RegenZones = [...]Zone{ZoneFelucca, ZoneTrammel}

// RegenReport is what the regeneration command tells operators.
type RegenReport struct {
	PhaseGatesRemoved  int `json:"phaseGatesRemoved"`
	PublicGatesRemoved int `json:"publicGatesRemoved"`
	Created            int `json:"created"`
}

// RegenerateMoongates clears the phase circles of both regen zones and
// places one controller per phase per zone.
func (s *Shard) RegenerateMoongates() RegenReport {
	var report RegenReport
	for _, zone := range RegenZones {
		for phase := 0; phase < PhaseCount; phase++ {
			loc := Location{Point3D: PhaseDestination(phase), Zone: zone}
			for _, id := range s.Index.At(IndexController, loc) {
				s.DeleteController(id)
				report.PhaseGatesRemoved++
			}
			for _, id := range s.Index.At(IndexPublicGate, loc) {
				s.DeletePublicGate(id)
				report.PublicGatesRemoved++
			}
		}
	}
	for phase := 0; phase < PhaseCount; phase++ {
		for _, zone := range RegenZones {
			loc := Location{Point3D: PhaseDestination(phase), Zone: zone}
			if _, err := s.CreatePhaseController(loc, phase); err != nil {
				s.Log.Warn("phase controller not created", zap.Int("phase", phase), zap.Error(err))
				continue
			}
			report.Created++
		}
	}
	s.Log.Info("moongates regenerated",
		zap.Int("phaseGatesRemoved", report.PhaseGatesRemoved),
		zap.Int("publicGatesRemoved", report.PublicGatesRemoved),
		zap.Int("created", report.Created),
	)
	return report
}

// SiteTown names the phase circle at p, or "" when p is not one.
func SiteTown(p Point3D) string {
	return PhaseTown(phaseAt(p))
}
