// Package train defines the contracts between the command-line pipeline and
// the objects it assembles: the Trainer that runs the loop, the Model it
// optimises, the optional DataModule supplying batches, and the Callbacks
// observing the run. It also provides a default Trainer and a few built-in
// callbacks.
package train
