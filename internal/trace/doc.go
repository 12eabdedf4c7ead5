// Package trace defines the snapshot types produced by step generators.
//
// A [Trace] is an ordered list of [Step] values. Every step owns a complete
// copy of the data set, so any step can be rendered on its own:
//
//   - [Step.Array]: the whole array at this instant
//   - [Step.Comparing]: positions being compared, if any
//   - [Step.Swapped]: positions about to be exchanged, if any
//
// # Copy discipline
//
// Steps are values with slice fields. Constructors in this package always
// copy their arguments; callers that need to mutate a step must [Step.Clone]
// it first.
package trace
