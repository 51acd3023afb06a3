// Package events defines the run lifecycle event stream and the aggregate
// statistics carried on it.
//
// The scheduler is the single producer: it emits events in a total order per
// trial (started, then any slow notices, then finished) with RunStarted first
// and RunFinished last across the whole run. Every event carries an immutable
// snapshot of the run statistics taken at emission time, so consumers never
// observe live counter state and two consumers of the same event agree on
// every count.
package events
