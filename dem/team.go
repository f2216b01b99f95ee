// This file contains the team state bound to CCSTeam entities.

package dem

import "github.com/cskit/demparse/dem/demcore"

// TeamState is the live state of one team, backed by its CCSTeam entity.
type TeamState struct {
	// Team tag the state belongs to
	Team demcore.Team

	// Entity is the CCSTeam entity, nil before it entered the PVS.
	Entity *Entity
}

// Score returns the team's current score, or -1 if unknown.
func (ts *TeamState) Score() int {
	if ts.Entity == nil {
		return -1
	}
	return ts.Entity.PropertyValue("m_scoreTotal").Int()
}

// ClanName returns the team's clan name, or "" if unknown.
func (ts *TeamState) ClanName() string {
	if ts.Entity == nil {
		return ""
	}
	return ts.Entity.PropertyValue("m_szClanTeamname").String()
}
