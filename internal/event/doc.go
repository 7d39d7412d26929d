// Package event provides a synchronous pub-sub event bus for reporting conveyor
// activity.
//
// # Main Types
//
//   - [Event]: interface every event implements (EventType, Timestamp)
//   - [Bus]: synchronous dispatcher, safe for concurrent use
//   - [Handler]: func(Event)
//
// # Event Types
//
//   - [BeltAdvancedEvent] ("belt.advanced"): a belt finished an advance
//   - [IntersectionPublishedEvent] ("intersection.published"): a belt released
//     an intersection and published its slot value there
//   - [FeedRejectedEvent] ("feed.rejected"): a feed failed before any mutation
//
// The conveyor publishes only after every intersection guard has been
// released, so handlers may call back into the system without deadlocking.
// Handlers run on the publishing goroutine; slow handlers slow the feeder.
//
// # Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeIntersectionPublished, func(e event.Event) {
//	    pub := e.(event.IntersectionPublishedEvent)
//	    counts[pub.Position]++
//	})
package event
