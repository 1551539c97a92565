// Package domain defines the immutable financial entities that event replay
// produces: accounts, bills, loans with per-person sub-loans, and the running
// balance ledger between participants.
//
// # Design Principles
//
// 1. **Immutability**: no entity is ever mutated in place. Every change goes
// through a "With..." transition that returns a fresh deep copy, so any State
// snapshot taken during replay stays valid forever.
//
// 2. **Closed entity set**: everything stored in a State is one of the four
// Entity kinds, discriminated by Kind(). There is no open "any" storage.
//
// 3. **Determinism**: any computation that walks a map (splits, debts,
// sub-loan balances) iterates in sorted key order, so replaying the same
// events twice produces identical results.
package domain
