// Package signal provides the edge-triggered refresh signal.
//
// The signal carries no payload; it means only "reconsider your state,
// re-fetch now", never "here is the new state". That keeps producers (a
// new-message event, a manual refresh command, a poll tick) decoupled from
// each consumer's fetch strategy.
//
// Observers run in subscription order on every flip, and once immediately
// at registration so late subscribers converge to current state.
package signal
