// Package om declares the components of the oral messages agreement algorithm OM(m)
// of Lamport, Shostak and Pease.
//
// A commander sends a binary order to its lieutenants over an unauthenticated, fully
// connected fabric. Up to m participants are traitors and may relay anything. OM(m)
// makes every lieutenant act as a sub-commander relaying what it received, recursively
// m times, and resolves the reports by majority. With n > 3m generals it guarantees:
//
//   - Agreement: all loyal generals decide the same order.
//   - Validity: if the commander is loyal, that order is the commander's order.
//
// The subpackages implement the components:
//
//   - committee: assigns the commander and the traitors of a trial.
//   - oracle: draws the random orders traitors fabricate.
//   - aggregator: majority vote with ties resolved to Retreat.
//   - engine: the recursive relay protocol.
//   - verification: checks Agreement and Validity of a finished trial.
//   - trial: wires the above into single trials.
package om
