// Package selection tracks selected and expanded items under a pluggable
// equality.
//
// Membership never depends on visibility: filtering an item out of view
// leaves it selected. Membership is a linear scan under the configured
// equality, so items need not be comparable in Go.
package selection
