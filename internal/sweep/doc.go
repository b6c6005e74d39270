// Package sweep enumerates the Cartesian product of the sweep axes, derives
// a run name and a training command for every combination, and submits the
// combinations one at a time through a Submitter.
//
// Enumeration and formatting are pure functions of their inputs. The Runner
// is strictly sequential and stops at the first submission error.
package sweep
