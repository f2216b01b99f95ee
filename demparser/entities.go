// This file contains the entity store: creating entities on enter-PVS,
// applying delta-compressed property updates, and destroying entities on
// leave-PVS, together with the side-effects the update stream drives.

package demparser

import (
	"bytes"
	"fmt"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/dem/demcore"
	"github.com/cskit/demparse/dem/demeq"
	"github.com/cskit/demparse/demparser/bitread"
	"github.com/cskit/demparse/demparser/demmsg"
)

// handlePacketEntities decodes one svc_PacketEntities message: a run of
// entity-index deltas, each followed by 2 bits of (leave, enter) flags and
// the per-entity payload.
func (p *Parser) handlePacketEntities(b []byte) {
	pe, err := demmsg.DecodePacketEntities(b)
	if err != nil {
		panic(err)
	}

	r := bitread.NewSmallBitReader(bytes.NewReader(pe.EntityData))

	currentEntity := -1
	for i := 0; i < int(pe.UpdatedEntries); i++ {
		currentEntity += 1 + int(r.ReadUBitInt())

		cmd := r.ReadBitsToByte(2)
		switch {
		case cmd&1 == 0 && cmd&2 != 0:
			p.enterPVS(r, currentEntity)

		case cmd&1 == 0:
			if entity, ok := p.entities[currentEntity]; ok {
				p.applyEntityUpdate(entity, r)
			}

		case cmd&2 != 0:
			p.destroyEntity(currentEntity)

		default:
			// Marked out of the PVS; no entity-store change.
		}
	}
}

// enterPVS creates the entity for the given index from the enter-PVS
// payload and wires up players and grenade projectiles.
func (p *Parser) enterPVS(r *bitread.BitReader, entityID int) {
	classID := int(r.ReadInt(p.serverClassBits))
	if classID >= len(p.serverClasses) {
		panic(fmt.Errorf("%w: class id %d out of range", ErrSchemaMismatch, classID))
	}
	r.Skip(10) // serial number

	sc := p.serverClasses[classID]
	entity := p.newEntity(sc, entityID, r)

	// Link the userinfo record: the player's entity id is its userinfo
	// entry index + 1.
	if rp, ok := p.rawPlayers[entityID-1]; ok {
		rp.EntityID = entityID
	}

	p.entities[entityID] = entity

	for _, h := range sc.CreatedHandlers {
		h(entityID)
	}

	if proj, ok := p.grenadeProjectiles[entityID]; ok {
		p.retrievePotentialThrowerOwner(entity, proj)
		proj.WeaponInstance = p.playerWeapon(proj.ThrowerEntityID, proj.WeaponType)

		person := proj.ThrowerEntityID
		if person == -1 {
			person = proj.OwnerEntityID
		}
		p.addThrownGrenade(person, proj.WeaponInstance)

		p.dispatcher.Emit(TopicGrenadeProjectileThrow, &dem.GrenadeProjectileThrow{Projectile: proj})
	}
}

// newEntity constructs an entity of the class with empty property slots,
// applies the baseline, the first update from r, and returns it.
func (p *Parser) newEntity(sc *dem.ServerClass, id int, r *bitread.BitReader) *dem.Entity {
	entity := &dem.Entity{
		ServerClass:     sc,
		ID:              id,
		Props:           make([]dem.Property, len(sc.FlattenedProps)),
		PositionHistory: make(map[int]demcore.Vector),
		CreatedOnTick:   p.ingameTick,
	}
	for i := range sc.FlattenedProps {
		entity.Props[i].Entry = &sc.FlattenedProps[i]
	}

	entity.BindPositionAccessor()

	if len(sc.PreprocessedBaseline) > 0 {
		for i, v := range sc.PreprocessedBaseline {
			entity.Props[i].Value = v
		}
	} else if len(sc.InstanceBaseline) > 0 {
		// Decoding the raw baseline is expensive; memoize the per-slot
		// result for the rest of the demo.
		br := bitread.NewSmallBitReader(bytes.NewReader(sc.InstanceBaseline))
		p.applyEntityUpdate(entity, br)

		ppb := make([]dem.PropValue, len(entity.Props))
		for i := range entity.Props {
			ppb[i] = entity.Props[i].Value
		}
		sc.PreprocessedBaseline = ppb
	}

	p.applyEntityUpdate(entity, r)

	return entity
}

// applyEntityUpdate decodes one update payload into the entity: the
// "new way" bit, the field-index run, and each indexed property in place.
// The touched indices drive the position / projectile / buy-zone
// side-effects afterwards.
func (p *Parser) applyEntityUpdate(entity *dem.Entity, r *bitread.BitReader) {
	p.propIndices = p.propIndices[:0]

	idx := -1
	newWay := r.ReadBit()
	for {
		idx = r.ReadFieldIndex(idx, newWay)
		if idx == -1 {
			break
		}
		p.propIndices = append(p.propIndices, idx)
	}

	wasBlind := entity.IsBlind()
	positionUpdated := false

	for _, idx := range p.propIndices {
		if idx >= len(entity.Props) {
			panic(fmt.Errorf("%w: prop index %d out of range for %s", ErrSchemaMismatch, idx, entity.ServerClass.Name))
		}
		prop := &entity.Props[idx]
		decodeProp(prop, r)

		switch prop.Entry.Name {
		case dem.PropPlayerPositionXY, dem.PropPlayerPositionZ:
			if entity.IsPlayer() {
				positionUpdated = true
			}

		case dem.PropCellX, dem.PropCellY, dem.PropCellZ, dem.PropCellOrigin:
			if !entity.IsPlayer() {
				positionUpdated = true
			}

		case "m_nModelIndex":
			if proj, ok := p.grenadeProjectiles[entity.ID]; ok {
				if weapon, ok := p.grenadeModelIndices[prop.Value.Int()]; ok {
					proj.WeaponType = weapon
				}
			}

		case "m_hThrower", "m_hOwnerEntity":
			if proj, ok := p.grenadeProjectiles[entity.ID]; ok {
				handle := prop.Value.Int()
				if handle != demcore.InvalidHandle {
					referencedID := handle & demcore.HandleIndexMask
					// An unresolvable handle leaves the reference unset.
					if _, ok := p.playersByEntityID[referencedID]; ok {
						if prop.Entry.Name == "m_hThrower" {
							proj.ThrowerEntityID = referencedID
						} else {
							proj.OwnerEntityID = referencedID
						}
					}
				}
			}
		}
	}

	if entity.IsPlayer() {
		if buyZone := entity.PropertyValue("m_bInBuyZone"); buyZone.Kind == dem.KindInt {
			isInBuyZone := buyZone.IntVal == 1
			if entity.IsInBuyZone && !isInBuyZone {
				p.dispatcher.Emit(TopicPlayerLeftBuyZone, &dem.PlayerLeftBuyZone{
					EntityID: entity.ID,
					Team:     demcore.Team(entity.PropertyValue("m_iTeamNum").Int()),
					Position: entity.Position(),
				})
			}
			entity.IsInBuyZone = isInBuyZone
		}

		if wasBlind && !entity.IsBlind() {
			entity.LastFlashDuration = 0
			entity.FlashFrameAgg = 0
		} else if !wasBlind && entity.IsBlind() {
			entity.LastFlashDuration = entity.PropertyValue("m_flFlashDuration").Float()
		}
	} else if proj, ok := p.grenadeProjectiles[entity.ID]; ok && positionUpdated {
		newPos := entity.Position()
		if newPos != entity.LastPosition {
			proj.Trajectory = append(proj.Trajectory, newPos)
			entity.LastPosition = newPos
		}
	}
}

// destroyEntity removes the entity from the store and notifies the
// grenade subsystem if it was a projectile.
func (p *Parser) destroyEntity(entityID int) {
	if _, ok := p.entities[entityID]; !ok {
		return
	}
	delete(p.entities, entityID)

	proj, ok := p.grenadeProjectiles[entityID]
	if !ok {
		return
	}
	delete(p.grenadeProjectiles, entityID)

	// Infernos, smokes and decoys keep their effect alive past the
	// projectile, so their thrown-grenade entry is left in place; no other
	// path removes it.
	switch proj.WeaponInstance.Type {
	case demeq.WeaponMolotov, demeq.WeaponIncendiary, demeq.WeaponSmoke, demeq.WeaponDecoy:
	default:
		p.deleteThrownGrenade(proj.ThrowerEntityID, proj.WeaponInstance.Type)
	}

	if proj.ThrowerEntityID != -1 {
		p.dispatcher.Emit(TopicGrenadeProjectileDestroyed, &dem.GrenadeProjectileDestroyed{Projectile: proj})
	}
}

// retrievePotentialThrowerOwner resolves a freshly created projectile's
// thrower / owner through the handle properties, falling back through the
// owner chain and finally the original-owner steam id.
func (p *Parser) retrievePotentialThrowerOwner(entity *dem.Entity, proj *dem.GrenadeProjectile) {
	if handle := entity.PropertyValue("m_hThrower"); handle.Kind == dem.KindInt {
		p.resolveProjectileRef(handle.IntVal, proj, true)
		return
	}
	for _, name := range []string{"m_hOwner", "m_hOwnerEntity", "m_hPrevOwner"} {
		if handle := entity.PropertyValue(name); handle.Kind == dem.KindInt {
			p.resolveProjectileRef(handle.IntVal, proj, false)
			return
		}
	}

	lo := entity.PropertyValue("m_OriginalOwnerXuidLow")
	hi := entity.PropertyValue("m_OriginalOwnerXuidHigh")
	if lo.Kind == dem.KindInt && hi.Kind == dem.KindInt {
		steamID := uint64(uint32(lo.IntVal)) | uint64(uint32(hi.IntVal))<<32
		if pl, ok := p.playersBySteamID[steamID]; ok {
			proj.OwnerEntityID = pl.EntityID
		} else if pi, ok := p.playerInfoBySteamID[steamID]; ok {
			proj.OwnerInfo = pi
		}
	}
}

// resolveProjectileRef resolves one handle into the projectile's thrower
// (asThrower) or owner reference.
func (p *Parser) resolveProjectileRef(handle int, proj *dem.GrenadeProjectile, asThrower bool) {
	entityID := demcore.HandleEntityID(handle)
	if entityID == -1 {
		return
	}

	if _, ok := p.playersByEntityID[entityID]; ok {
		if asThrower {
			proj.ThrowerEntityID = entityID
		} else {
			proj.OwnerEntityID = entityID
		}
		return
	}

	if pi, ok := p.rawPlayers[entityID-1]; ok {
		if asThrower {
			proj.ThrowerInfo = pi
		} else {
			proj.OwnerInfo = pi
		}
	}
}

// playerWeapon returns the thrower's matching inventory weapon (or its
// loadout alternative), falling back to a detached instance of the type.
func (p *Parser) playerWeapon(throwerEntityID int, weaponType demeq.Weapon) dem.Equipment {
	if pl, ok := p.playersByEntityID[throwerEntityID]; ok {
		alt := demeq.Alternative(weaponType)
		for _, wep := range pl.Inventory {
			if wep.Type == weaponType || (alt != demeq.WeaponUnknown && wep.Type == alt) {
				return wep
			}
		}
	}
	return dem.NewEquipment(weaponType)
}

// addThrownGrenade files the equipment under the throwing player.
func (p *Parser) addThrownGrenade(playerEntityID int, wep dem.Equipment) {
	if playerEntityID == -1 {
		return
	}
	p.thrownGrenades[playerEntityID] = append(p.thrownGrenades[playerEntityID], wep)
}

// deleteThrownGrenade removes one matching grenade from the player's
// thrown list; molotov and incendiary count as the same.
func (p *Parser) deleteThrownGrenade(playerEntityID int, weaponType demeq.Weapon) {
	if playerEntityID == -1 {
		return
	}
	nades := p.thrownGrenades[playerEntityID]
	for i, wep := range nades {
		if demeq.Same(weaponType, wep.Type) {
			p.thrownGrenades[playerEntityID] = append(nades[:i], nades[i+1:]...)
			return
		}
	}
}

// createOrUpdatePlayer binds a freshly created player entity to its
// userinfo record, creating the live Player on first sight.
func (p *Parser) createOrUpdatePlayer(entityID int) {
	if pl, ok := p.playersByEntityID[entityID]; ok {
		pl.EntityID = entityID
		pl.IsConnected = true
		p.indexPlayerBySteamID(pl)
		p.indexPlayerByUserID(entityID, pl)
		return
	}

	rp, ok := p.rawPlayers[entityID-1]
	if !ok {
		// No userinfo record: keep an explicitly unknown player so the
		// entity still resolves.
		pl := &dem.Player{
			Name:        "unknown",
			IsUnknown:   true,
			EntityID:    entityID,
			IsConnected: true,
			Inventory:   make(map[int]dem.Equipment, 8),
		}
		p.playersByEntityID[entityID] = pl
		return
	}

	pl, ok := p.playersByUserID[rp.UserID]
	if !ok {
		pl = &dem.Player{
			Name:      rp.Name,
			SteamID:   rp.XUID,
			IsBot:     rp.IsFakePlayer || rp.GUID == "BOT",
			UserID:    rp.UserID,
			Inventory: make(map[int]dem.Equipment, 8),
		}
	}
	pl.EntityID = entityID
	pl.IsConnected = true

	p.playersByEntityID[entityID] = pl
	p.indexPlayerBySteamID(pl)
	p.indexPlayerByUserID(entityID, pl)
}

func (p *Parser) indexPlayerBySteamID(pl *dem.Player) {
	if pl.IsBot || pl.SteamID == 0 {
		return
	}
	p.playersBySteamID[pl.SteamID] = pl
}

func (p *Parser) indexPlayerByUserID(entityID int, pl *dem.Player) {
	if rp, ok := p.rawPlayers[entityID-1]; ok {
		p.playersByUserID[rp.UserID] = pl
	}
}
