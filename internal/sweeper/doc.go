// Package sweeper expires stored artifacts once they outlive the retention
// TTL. It also collects orphaned scratch files, since those age out on the
// same clock.
package sweeper
