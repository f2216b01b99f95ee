// This file contains the data-table phase: decoding the send-table
// declarations and the server class list, and flattening the recursive
// schema into the per-class property lists the entity decoder runs on.

package demparser

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/dem/demcore"
	"github.com/cskit/demparse/dem/demeq"
	"github.com/cskit/demparse/demparser/demmsg"
)

// Priority bucket that also attracts CHANGES_OFTEN properties regardless
// of their numeric priority.
const changesOftenPriority = 64

// parseDataTables runs the one-shot data-table phase: send tables until
// the sentinel, the class list, flattening, and freezing the class bits.
func (p *Parser) parseDataTables() {
	br := p.bitreader

	size := int(br.ReadSignedInt(32))
	br.BeginChunk(size << 3)

	for {
		kind := demmsg.MessageKind(br.ReadVarInt32())
		if kind != demmsg.KindSendTable {
			panic(fmt.Errorf("%w: expected send table (%d), got %d", ErrSchemaMismatch, demmsg.KindSendTable, kind))
		}

		msgSize := int(br.ReadVarInt32())
		br.BeginChunk(msgSize << 3)
		msg, err := demmsg.DecodeSendTable(br.ReadBytes(msgSize))
		if err != nil {
			panic(err)
		}
		br.EndChunk()

		table := convertSendTable(msg)
		table.Index = len(p.sendTables)

		if table.IsEnd {
			break
		}

		p.sendTables = append(p.sendTables, table)
		p.sendTablesByName[table.Name] = table
	}

	classCount := int(br.ReadInt(16))
	for i := 0; i < classCount; i++ {
		sc := p.readServerClass(i, classCount)

		if baseline, ok := p.pendingBaselines[sc.ID]; ok {
			sc.InstanceBaseline = baseline
			delete(p.pendingBaselines, sc.ID)
		}

		p.serverClasses = append(p.serverClasses, sc)
		p.serverClassesByName[sc.DtName] = sc
	}

	for _, sc := range p.serverClasses {
		p.flattenClass(sc)
	}

	for _, sc := range p.serverClasses {
		indexClassProps(sc)
	}

	p.serverClassBits = int(math.Ceil(math.Log2(float64(len(p.serverClasses)))))

	br.EndChunk()

	p.mapEquipment()
	p.bindEntityHandlers()
}

// convertSendTable turns the wire message into the schema declaration.
func convertSendTable(msg *demmsg.SendTable) *dem.SendTable {
	table := &dem.SendTable{
		Name:       msg.NetTableName,
		IsEnd:      msg.IsEnd,
		Properties: make([]dem.SendTableProperty, 0, len(msg.Props)),
		Index:      -1,
	}
	for _, prop := range msg.Props {
		table.Properties = append(table.Properties, dem.SendTableProperty{
			Flags:     dem.PropFlags(prop.Flags),
			Name:      prop.VarName,
			DtName:    prop.DtName,
			LowValue:  prop.LowValue,
			HighValue: prop.HighValue,
			NumBits:   int(prop.NumBits),
			NumElems:  int(prop.NumElements),
			Priority:  int(prop.Priority),
			RawType:   int(prop.Type),
		})
	}
	return table
}

// readServerClass decodes one entry of the class list following the send
// tables.
func (p *Parser) readServerClass(i, max int) *dem.ServerClass {
	classID := int(p.bitreader.ReadInt(16))
	if classID > max {
		panic(fmt.Errorf("%w: invalid class id %d", ErrSchemaMismatch, classID))
	}

	return &dem.ServerClass{
		ID:     classID,
		Name:   p.bitreader.ReadString(),
		DtName: p.bitreader.ReadString(),
		Index:  i,
	}
}

// subTable resolves a datatable property's linked table.
func (p *Parser) subTable(name string) *dem.SendTable {
	st, ok := p.sendTablesByName[name]
	if !ok {
		panic(fmt.Errorf("%w: unknown send table %q", ErrSchemaMismatch, name))
	}
	return st
}

// flattenClass collapses the class's send-table tree into its flat,
// priority-sorted property list.
func (p *Parser) flattenClass(sc *dem.ServerClass) {
	st, ok := p.sendTablesByName[sc.DtName]
	if !ok {
		return
	}

	baseClasses := make(map[string]bool)
	excludes := make(map[string]dem.ExcludeEntry)
	p.gatherPrerequisites(st, true, baseClasses, excludes)
	sc.BaseClassesByName = baseClasses

	p.gatherProps(st, sc, "", excludes)
	sortFlattenedProps(sc.FlattenedProps)
}

// gatherPrerequisites walks the table tree collecting exclusions and,
// while inside "baseclass" sub-tables, the class's base classes.
func (p *Parser) gatherPrerequisites(st *dem.SendTable, collectBaseClasses bool,
	baseClasses map[string]bool, excludes map[string]dem.ExcludeEntry) {

	for i := range st.Properties {
		prop := &st.Properties[i]

		if prop.Flags.HasFlagSet(dem.PropFlagExclude) {
			excludes[prop.Name] = dem.ExcludeEntry{
				VarName:     prop.Name,
				DtName:      prop.DtName,
				ExcludingDt: st.Name,
			}
		}

		if prop.RawType == dem.PropTypeDataTable {
			p.gatherPrerequisites(p.subTable(prop.DtName),
				collectBaseClasses && prop.Name == "baseclass", baseClasses, excludes)

			if collectBaseClasses && prop.Name == "baseclass" {
				if _, ok := p.serverClassesByName[prop.DtName]; ok {
					baseClasses[prop.DtName] = true
				}
			}
		}
	}
}

// gatherProps collects the leaf properties of st (and its sub-tables) into
// the class's flattened list, prefixing qualified names.
func (p *Parser) gatherProps(st *dem.SendTable, sc *dem.ServerClass, prefix string,
	excludes map[string]dem.ExcludeEntry) {

	tmp := make([]dem.FlattenedPropEntry, 0, 256)
	p.gatherPropsIterate(st, sc, prefix, &tmp, excludes)
	sc.FlattenedProps = append(sc.FlattenedProps, tmp...)
}

func (p *Parser) gatherPropsIterate(st *dem.SendTable, sc *dem.ServerClass, prefix string,
	flattened *[]dem.FlattenedPropEntry, excludes map[string]dem.ExcludeEntry) {

	for i := range st.Properties {
		prop := &st.Properties[i]

		if prop.Flags.HasFlagSet(dem.PropFlagInsideArray) ||
			prop.Flags.HasFlagSet(dem.PropFlagExclude) ||
			isPropExcluded(st, prop, excludes) {
			continue
		}

		if prop.RawType == dem.PropTypeDataTable {
			sub := p.subTable(prop.DtName)

			if prop.Flags.HasFlagSet(dem.PropFlagCollapsible) {
				p.gatherPropsIterate(sub, sc, prefix, flattened, excludes)
			} else {
				nfix := prefix
				if len(prop.Name) > 0 {
					nfix += prop.Name + "."
				}
				p.gatherProps(sub, sc, nfix, excludes)
			}
		} else {
			var arrayElem *dem.SendTableProperty
			if prop.RawType == dem.PropTypeArray {
				// The element descriptor is the property declared
				// immediately before the array.
				arrayElem = &st.Properties[i-1]
			}

			*flattened = append(*flattened, dem.FlattenedPropEntry{
				Name:          prefix + prop.Name,
				Prop:          *prop,
				ArrayElemProp: arrayElem,
				Index:         len(*flattened),
			})
		}
	}
}

// isPropExcluded matches a property against the collected exclude set;
// the match is (property name, declaring table name).
func isPropExcluded(st *dem.SendTable, prop *dem.SendTableProperty,
	excludes map[string]dem.ExcludeEntry) bool {

	exclude, ok := excludes[prop.Name]
	return ok && exclude.DtName == st.Name
}

// sortFlattenedProps orders the flattened list by ascending priority,
// with the changesOftenPriority bucket also attracting CHANGES_OFTEN
// properties. The wire format's property-index deltas assume this exact
// order.
func sortFlattenedProps(fps []dem.FlattenedPropEntry) {
	prioSet := map[int]bool{changesOftenPriority: true}
	for i := range fps {
		prioSet[fps[i].Prop.Priority] = true
	}

	prios := make([]int, 0, len(prioSet))
	for prio := range prioSet {
		prios = append(prios, prio)
	}
	sort.Ints(prios)

	start := 0
	for _, prio := range prios {
		for {
			cp := start
			for cp < len(fps) {
				prop := &fps[cp].Prop
				if prop.Priority == prio ||
					(prio == changesOftenPriority && prop.Flags.HasFlagSet(dem.PropFlagChangesOften)) {
					if start != cp {
						fps[start], fps[cp] = fps[cp], fps[start]
					}
					start++
					break
				}
				cp++
			}

			if cp == len(fps) {
				break
			}
		}
	}
}

// indexClassProps freezes the flattened indices and builds the
// qualified-name -> index map of the class.
func indexClassProps(sc *dem.ServerClass) {
	sc.PropNameToIdx = make(map[string]int, len(sc.FlattenedProps))
	for i := range sc.FlattenedProps {
		sc.FlattenedProps[i].Index = i
		sc.PropNameToIdx[sc.FlattenedProps[i].Name] = i
	}
}

// mapEquipment derives the server class id -> weapon mapping used to
// classify weapon entities.
func (p *Parser) mapEquipment() {
	for _, sc := range p.serverClasses {
		switch sc.Name {
		case "CC4":
			p.equipmentMapping[sc.ID] = demeq.WeaponBomb
		case "CWeaponNOVA", "CWeaponSawedoff", "CWeaponXM1014":
			p.equipmentMapping[sc.ID] = demeq.ByName(strings.ToLower(sc.Name[7:]))
		case "CKnife":
			p.equipmentMapping[sc.ID] = demeq.WeaponKnife
		case "CSnowball", "CWeaponShield", "CWeaponZoneRepulsor":
			continue
		default:
			if sc.BaseClassExists("DT_WeaponCSBaseGun") {
				p.equipmentMapping[sc.ID] = demeq.ByName(strings.ToLower(sc.DtName[9:]))
			} else if sc.BaseClassExists("DT_BaseCSGrenade") {
				p.equipmentMapping[sc.ID] = demeq.ByName(strings.ToLower(sc.DtName[3:]))
			}
		}
	}
}

// bindEntityHandlers registers the created handlers that keep the player,
// weapon, grenade and team state in sync with the entity store.
func (p *Parser) bindEntityHandlers() {
	p.bindTeamStates()
	p.bindPlayers()
	p.bindWeapons()
}

func (p *Parser) bindPlayers() {
	sc, ok := p.serverClassesByName["DT_CSPlayer"]
	if !ok {
		return
	}
	sc.CreatedHandlers = append(sc.CreatedHandlers, func(entityID int) {
		p.createOrUpdatePlayer(entityID)
	})
}

func (p *Parser) bindTeamStates() {
	sc, ok := p.serverClassesByName["DT_CSTeam"]
	if !ok {
		return
	}
	sc.CreatedHandlers = append(sc.CreatedHandlers, func(entityID int) {
		entity, ok := p.entities[entityID]
		if !ok {
			return
		}
		team := demcore.Team(entity.PropertyValue("m_iTeamNum").Int())
		if team == demcore.TeamTerrorists || team == demcore.TeamCounterTerrorists {
			p.teamStates[team] = &dem.TeamState{Team: team, Entity: entity}
		}
	})
}

func (p *Parser) bindWeapons() {
	for _, sc := range p.serverClasses {
		sc := sc
		switch {
		case sc.BaseClassExists("DT_WeaponCSBase") && !sc.BaseClassExists("DT_BaseCSGrenade"):
			sc.CreatedHandlers = append(sc.CreatedHandlers, func(entityID int) {
				p.bindWeapon(sc, entityID)
			})
		case sc.BaseClassExists("DT_BaseCSGrenade") || sc.BaseClassExists("DT_BaseGrenade"):
			sc.CreatedHandlers = append(sc.CreatedHandlers, func(entityID int) {
				if _, ok := p.grenadeProjectiles[entityID]; !ok {
					p.grenadeProjectiles[entityID] = dem.NewGrenadeProjectile(entityID)
				}
			})
		}
	}
}

// bindWeapon records a weapon entity and files it into its owner's
// inventory if the owner resolves to a live player.
func (p *Parser) bindWeapon(sc *dem.ServerClass, entityID int) {
	entity, ok := p.entities[entityID]
	if !ok {
		return
	}

	eq := dem.NewEquipment(p.equipmentMapping[sc.ID])
	eq.EntityID = entityID

	if owner := entity.PropertyValue("m_hOwner"); owner.Kind == dem.KindInt {
		if ownerID := demcore.HandleEntityID(owner.IntVal); ownerID != -1 {
			eq.OwnerEntityID = ownerID
			if pl, ok := p.playersByEntityID[ownerID]; ok {
				pl.Inventory[entityID] = eq
			}
		}
	}

	p.weapons[entityID] = eq
}
