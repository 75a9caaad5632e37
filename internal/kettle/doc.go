// Package kettle holds the domain types shared by the process model: the
// mutable [State] owned by the process controller, the cook [Phase]
// sequence, and the bounded [AlarmLog] and [History] containers the
// controller writes into each tick.
//
// Nothing in this package mutates state on its own; the step functions in
// internal/physics, the motor guard in internal/protection and the
// sequencer in internal/recipe all operate on these types, and only the
// controller in internal/process commits results.
package kettle
