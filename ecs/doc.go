// Package ecs bridges silhouette hitboxes into a [Donburi] world.
//
// [NewDonburiSink] publishes engine hit events as typed Donburi events;
// subscribe to [HitEventType] in your systems to receive them.
// [SyncHitboxes] mirrors the engine's hitboxes onto entities carrying the
// [Hitbox] component so systems can query outlines directly.
//
// Usage:
//
//	engine.SetEventSink(ecs.NewDonburiSink(world))
//	// each frame, after engine.Tick():
//	ecs.SyncHitboxes(world, engine)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
