// Package metrictree implements a vantage-point binary tree over a metric
// space (spec's "Metric Tree", Component A). Points are organized so that
// nearest, k-nearest, aspiration ("any point within delta"), and
// delta-close searches can prune whole subtrees using a per-node radius
// bound, without ever comparing points directly -- only through distances.
//
// Every public operation is resumable: a distance the tree needs but the
// Oracle has not cached yet does not block or panic, it returns a
// continuation capturing exactly enough state (the work stack, the
// best-so-far, the partial result list) to pick the operation back up once
// the distance arrives. This replaces the original implementation's
// exception-as-control-flow idiom (see DESIGN.md) with an explicit
// Done-or-Suspended return, which is the point of this package: nothing
// here blocks on I/O, and nothing here needs goroutines of its own.
package metrictree
