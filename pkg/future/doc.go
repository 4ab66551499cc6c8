// Package future provides a single-producer, single-consumer deferred
// result: a one-shot value cell with a producer side (Promise) and a
// consumer side (Future).
//
// # Semantics
//
// A Promise is fulfilled at most once, with a value (Fulfill) or an error
// (Fail). The paired Future observes the outcome either by blocking (Await)
// or by registering a continuation (Then):
//
//	p, f := future.New[int]()
//
//	go func() { _ = p.Fulfill(42) }()
//
//	v, err := f.Await()
//
// Continuations registered before fulfillment are invoked on the goroutine
// that fulfills the promise; a continuation registered after fulfillment
// runs inline on the registering goroutine. Writes preceding Fulfill/Fail
// happen-before any observation of the outcome.
//
// Ready and Failed construct pre-fulfilled futures for synchronous call
// sites.
package future
