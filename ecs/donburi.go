package ecs

import (
	"github.com/phanxgames/silhouette"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// HitEventType is the Donburi event type for silhouette hit events.
var HitEventType = events.NewEventType[silhouette.HitEvent]()

// HitboxData is the per-entity mirror of an engine hitbox.
type HitboxData struct {
	Node         silhouette.NodeID
	Image        string
	ScreenPoints []silhouette.Vec2
}

// Hitbox is the component SyncHitboxes maintains.
var Hitbox = donburi.NewComponentType[HitboxData]()

var hitboxQuery = donburi.NewQuery(filter.Contains(Hitbox))

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Hit events
// are published to HitEventType and can be consumed with events.Subscribe
// and ProcessEvents.
func NewDonburiSink(world donburi.World) silhouette.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitHit(event silhouette.HitEvent) {
	HitEventType.Publish(s.world, event)
}

// SyncHitboxes makes the world's Hitbox entities match the engine's
// hitboxes, one entity per node. Entities are created for new hitboxes,
// updated in place for existing ones and removed when their hitbox is gone.
// Screen points are copied, so later engine updates do not alias them.
func SyncHitboxes(world donburi.World, engine *silhouette.Engine) {
	existing := make(map[silhouette.NodeID]donburi.Entity)
	var stale []donburi.Entity
	hitboxQuery.Each(world, func(entry *donburi.Entry) {
		node := Hitbox.Get(entry).Node
		if _, dup := existing[node]; dup {
			stale = append(stale, entry.Entity())
			return
		}
		existing[node] = entry.Entity()
	})

	live := make(map[silhouette.NodeID]bool, len(engine.Hitboxes()))
	for _, h := range engine.Hitboxes() {
		if h == nil || live[h.Node] {
			continue
		}
		live[h.Node] = true

		ent, ok := existing[h.Node]
		if !ok {
			ent = world.Create(Hitbox)
		}
		Hitbox.SetValue(world.Entry(ent), HitboxData{
			Node:         h.Node,
			Image:        h.Image,
			ScreenPoints: append([]silhouette.Vec2(nil), h.ScreenPoints...),
		})
	}

	for node, ent := range existing {
		if !live[node] {
			stale = append(stale, ent)
		}
	}
	for _, ent := range stale {
		world.Remove(ent)
	}
}
